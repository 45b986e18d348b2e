package service

import (
	"errors"
	"log"
	"os"

	"scms/metrics"
	"scms/repository"
	"scms/scoring"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrReviewForbidden = errors.New("not allowed to modify this review")

type ReviewService struct {
	reviewRepository        *repository.ReviewRepository
	subcontractorRepository *repository.SubcontractorRepository
	questionRepository      *repository.QuestionRepository
	engine                  *scoring.Engine
	ratingEventService      *RatingEventService
}

func NewReviewService(db *gorm.DB) *ReviewService {
	return &ReviewService{
		reviewRepository:        repository.NewReviewRepository(db),
		subcontractorRepository: repository.NewSubcontractorRepository(db),
		questionRepository:      repository.NewQuestionRepository(db),
		engine:                  scoring.NewEngine(db),
		ratingEventService:      NewRatingEventService(),
	}
}

func (s *ReviewService) GetReviewsForSubcontractor(subcontractorId uuid.UUID) ([]*repository.Review, error) {
	return s.reviewRepository.GetReviewsForSubcontractor(subcontractorId)
}

// CreateReview persists the review with one response row per answered
// question, computes the per-review overall rating from the weighted
// responses and then triggers the rating recalculation for the subcontractor.
func (s *ReviewService) CreateReview(review *repository.Review, responses []*repository.ReviewResponse) (*repository.Review, error) {
	if _, err := s.subcontractorRepository.GetSubcontractorById(review.SubcontractorId); err != nil {
		return nil, err
	}
	for _, response := range responses {
		question, err := s.questionRepository.GetQuestionById(response.QuestionId)
		if err != nil {
			return nil, err
		}
		response.Question = question
	}
	review.OverallRating = scoring.OverallRating(responses)

	review, err := s.reviewRepository.Save(review)
	if err != nil {
		return nil, err
	}
	for _, response := range responses {
		response.ReviewId = review.Id
	}
	if err := s.reviewRepository.SaveResponses(responses); err != nil {
		return nil, err
	}
	review.Responses = responses
	metrics.ReviewsSubmittedCounter.Inc()

	aggregate := s.engine.RecalculateRating(review.SubcontractorId)
	s.ratingEventService.Publish(review.SubcontractorId, aggregate)
	return review, nil
}

// UpdateReview applies comment and response changes. Only the owner of the
// review or an admin may update it. The overall rating is recomputed from the
// full current response set, not just the changed rows.
func (s *ReviewService) UpdateReview(requester *repository.User, reviewId uuid.UUID, update *repository.Review, responses []*repository.ReviewResponse) (*repository.Review, error) {
	review, err := s.reviewRepository.GetReviewById(reviewId)
	if err != nil {
		return nil, err
	}
	if review.ReviewerId != requester.Id && !requester.IsAdmin() {
		return nil, ErrReviewForbidden
	}

	review.Comments = update.Comments
	if update.ProjectName != "" {
		review.ProjectName = update.ProjectName
	}
	if update.ProjectDate != nil {
		review.ProjectDate = update.ProjectDate
	}

	for _, response := range responses {
		if err := s.reviewRepository.UpdateResponseScore(reviewId, response.QuestionId, response.Score); err != nil {
			return nil, err
		}
	}

	currentResponses, err := s.reviewRepository.GetResponsesForReview(reviewId)
	if err != nil {
		return nil, err
	}
	review.OverallRating = scoring.OverallRating(currentResponses)
	if _, err := s.reviewRepository.Save(review); err != nil {
		return nil, err
	}

	aggregate := s.engine.RecalculateRating(review.SubcontractorId)
	s.ratingEventService.Publish(review.SubcontractorId, aggregate)
	return s.reviewRepository.GetReviewById(reviewId, "Responses.Question", "Attachments")
}

// DeleteReview soft-deletes the review with its responses and attachments and
// recomputes the subcontractor aggregate from the remaining reviews.
func (s *ReviewService) DeleteReview(requester *repository.User, reviewId uuid.UUID) error {
	review, err := s.reviewRepository.GetReviewById(reviewId)
	if err != nil {
		return err
	}
	// route middleware already requires the admin role, double-checked here
	if !requester.IsAdmin() {
		return ErrReviewForbidden
	}
	subcontractorId := review.SubcontractorId
	if err := s.reviewRepository.Delete(reviewId); err != nil {
		return err
	}
	metrics.ReviewsDeletedCounter.Inc()

	aggregate := s.engine.RecalculateRating(subcontractorId)
	s.ratingEventService.Publish(subcontractorId, aggregate)
	return nil
}

func (s *ReviewService) UploadAttachment(requester *repository.User, reviewId uuid.UUID, attachment *repository.ReviewAttachment) (*repository.ReviewAttachment, error) {
	review, err := s.reviewRepository.GetReviewById(reviewId)
	if err != nil {
		return nil, err
	}
	if review.ReviewerId != requester.Id && !requester.IsAdmin() {
		return nil, ErrReviewForbidden
	}
	attachment.ReviewId = reviewId
	return s.reviewRepository.SaveAttachment(attachment)
}

func (s *ReviewService) DeleteAttachment(requester *repository.User, reviewId uuid.UUID, attachmentId uuid.UUID) error {
	review, err := s.reviewRepository.GetReviewById(reviewId)
	if err != nil {
		return err
	}
	if review.ReviewerId != requester.Id && !requester.IsAdmin() {
		return ErrReviewForbidden
	}
	attachment, err := s.reviewRepository.GetAttachment(reviewId, attachmentId)
	if err != nil {
		return err
	}
	if attachment.FilePath != "" {
		if err := os.Remove(attachment.FilePath); err != nil && !os.IsNotExist(err) {
			log.Printf("failed to remove attachment file %s: %v", attachment.FilePath, err)
		}
	}
	return s.reviewRepository.DeleteAttachment(attachmentId)
}
