package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var ReviewsSubmittedCounter = promauto.NewCounter(prometheus.CounterOpts{
	Name: "scms_reviews_submitted_total",
	Help: "Number of reviews submitted",
})

var ReviewsDeletedCounter = promauto.NewCounter(prometheus.CounterOpts{
	Name: "scms_reviews_deleted_total",
	Help: "Number of reviews deleted",
})

var ScoreRecalculationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name: "scms_score_recalculation_duration_s",
	Help: "Duration of subcontractor rating recalculations",
	Buckets: []float64{
		0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.5, 1, 2, 5,
	},
})

var ScoreRecalculationErrorCounter = promauto.NewCounter(prometheus.CounterOpts{
	Name: "scms_score_recalculation_error_total",
	Help: "Number of failed rating recalculations",
})

var RepairJobsProcessedCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "scms_rating_repair_jobs_total",
	Help: "Number of rating repair jobs processed by outcome",
}, []string{"outcome"})

var RatingEventsPublishedCounter = promauto.NewCounter(prometheus.CounterOpts{
	Name: "scms_rating_events_published_total",
	Help: "Number of rating change events published to kafka",
})
