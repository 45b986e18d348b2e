package scoring

import (
	"log"

	"scms/metrics"
	"scms/repository"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

// Engine recomputes and persists the materialized rating aggregate of a
// subcontractor. It is triggered after every review create, update and delete
// and is idempotent: it is a pure function of the current review rows.
type Engine struct {
	db                      *gorm.DB
	reviewRepository        *repository.ReviewRepository
	subcontractorRepository *repository.SubcontractorRepository
	repairJobRepository     *repository.RepairJobRepository
}

func NewEngine(db *gorm.DB) *Engine {
	return &Engine{
		db:                      db,
		reviewRepository:        repository.NewReviewRepository(db),
		subcontractorRepository: repository.NewSubcontractorRepository(db),
		repairJobRepository:     repository.NewRepairJobRepository(db),
	}
}

// RecalculateRating reloads all active reviews of the subcontractor and
// persists the recomputed aggregate. Errors never propagate to the review
// mutation that triggered the recalculation: they are logged, counted and
// enqueued for the repair loop, and nil is returned.
func (e *Engine) RecalculateRating(subcontractorId uuid.UUID) *repository.RatingAggregate {
	timer := prometheus.NewTimer(metrics.ScoreRecalculationDuration)
	defer timer.ObserveDuration()

	aggregate, err := e.recalculate(subcontractorId)
	if err != nil {
		log.Printf("failed to recalculate rating for subcontractor %s: %v", subcontractorId, err)
		metrics.ScoreRecalculationErrorCounter.Inc()
		if enqueueErr := e.repairJobRepository.Enqueue(subcontractorId, err); enqueueErr != nil {
			log.Printf("failed to enqueue rating repair job for subcontractor %s: %v", subcontractorId, enqueueErr)
		}
		return nil
	}
	return aggregate
}

// Repair re-runs the recalculation for a previously failed subcontractor,
// propagating the error so the repair loop can track attempts.
func (e *Engine) Repair(subcontractorId uuid.UUID) (*repository.RatingAggregate, error) {
	return e.recalculate(subcontractorId)
}

// recalculate runs the load-compute-update sequence in a single transaction
// with a row lock on the subcontractor, so concurrent review mutations for the
// same subcontractor serialize instead of losing updates. With zero reviews
// the persisted aggregate keeps its initial defaults.
func (e *Engine) recalculate(subcontractorId uuid.UUID) (*repository.RatingAggregate, error) {
	var aggregate *repository.RatingAggregate
	err := e.db.Transaction(func(tx *gorm.DB) error {
		if err := e.subcontractorRepository.LockForAggregateUpdate(tx, subcontractorId); err != nil {
			return err
		}
		reviews, err := e.reviewRepository.GetActiveReviewsWithResponses(tx, subcontractorId)
		if err != nil {
			return err
		}
		computed, ok := ComputeAggregate(reviews)
		if !ok {
			return nil
		}
		if err := e.subcontractorRepository.UpdateAggregate(tx, subcontractorId, computed); err != nil {
			return err
		}
		aggregate = computed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return aggregate, nil
}
