package service

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"scms/config"
	"scms/metrics"
	"scms/repository"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// RatingEvent is the wire format published to the rating-events topic after a
// successful aggregate recomputation.
type RatingEvent struct {
	SubcontractorId uuid.UUID              `json:"subcontractor_id"`
	AverageRating   float64                `json:"average_rating"`
	LetterGrade     repository.LetterGrade `json:"letter_grade"`
	ReviewCount     int                    `json:"review_count"`
	OccurredAt      time.Time              `json:"occurred_at"`
}

// RatingEventService publishes rating changes to kafka for downstream
// consumers. Publication is best effort: without a configured broker it is a
// no-op, and write failures only log.
type RatingEventService struct {
	writer *kafka.Writer
	once   sync.Once
}

func NewRatingEventService() *RatingEventService {
	return &RatingEventService{}
}

func (s *RatingEventService) Publish(subcontractorId uuid.UUID, aggregate *repository.RatingAggregate) {
	if config.Env().KafkaBroker == "" || aggregate == nil {
		return
	}
	s.once.Do(func() {
		writer, err := config.GetRatingEventsWriter()
		if err != nil {
			log.Printf("failed to create rating events writer: %v", err)
			return
		}
		s.writer = writer
	})
	if s.writer == nil {
		return
	}

	event := RatingEvent{
		SubcontractorId: subcontractorId,
		AverageRating:   aggregate.AverageRating,
		LetterGrade:     aggregate.LetterGrade,
		ReviewCount:     aggregate.ReviewCount,
		OccurredAt:      time.Now(),
	}
	value, err := json.Marshal(event)
	if err != nil {
		log.Printf("failed to marshal rating event: %v", err)
		return
	}
	err = s.writer.WriteMessages(context.Background(), kafka.Message{
		Key:   []byte(subcontractorId.String()),
		Value: value,
	})
	if err != nil {
		log.Printf("failed to publish rating event for subcontractor %s: %v", subcontractorId, err)
		return
	}
	metrics.RatingEventsPublishedCounter.Inc()
}
