package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Review struct {
	Id              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SubcontractorId uuid.UUID `gorm:"type:uuid;not null;index"`
	ReviewerId      uuid.UUID `gorm:"type:uuid;not null;index"`
	OverallRating   int       `gorm:"not null"`
	Comments        string    `gorm:"null"`
	ProjectName     string    `gorm:"null"`
	ProjectDate     *time.Time `gorm:"null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       gorm.DeletedAt `gorm:"index"`

	Responses   []*ReviewResponse   `gorm:"foreignKey:ReviewId;constraint:OnDelete:CASCADE"`
	Attachments []*ReviewAttachment `gorm:"foreignKey:ReviewId;constraint:OnDelete:CASCADE"`
}

type ReviewResponse struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ReviewId   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_review_question"`
	QuestionId uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_review_question"`
	Score      int       `gorm:"not null"`
	Comment    string    `gorm:"null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Question *Question `gorm:"foreignKey:QuestionId"`
}

type ReviewAttachment struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ReviewId    uuid.UUID `gorm:"type:uuid;not null;index"`
	FileName    string    `gorm:"not null"`
	FilePath    string    `gorm:"not null"`
	FileType    string    `gorm:"not null"`
	FileSize    int64     `gorm:"not null;default:0"`
	Description string    `gorm:"null"`
	CreatedAt   time.Time
}

type ReviewRepository struct {
	DB *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{DB: db}
}

func (r *ReviewRepository) GetReviewById(reviewId uuid.UUID, preloads ...string) (*Review, error) {
	var review Review
	query := r.DB
	for _, preload := range preloads {
		query = query.Preload(preload)
	}
	result := query.First(&review, "id = ?", reviewId)
	if result.Error != nil {
		return nil, result.Error
	}
	return &review, nil
}

// GetActiveReviewsWithResponses loads every non-deleted review for the
// subcontractor with its responses and their questions. The soft-delete
// predicate is explicit so the scoring engine's input set is visible in the
// query itself instead of hiding behind gorm's default scope.
func (r *ReviewRepository) GetActiveReviewsWithResponses(tx *gorm.DB, subcontractorId uuid.UUID) ([]*Review, error) {
	reviews := make([]*Review, 0)
	result := tx.Preload("Responses.Question").
		Where("subcontractor_id = ? AND deleted_at IS NULL", subcontractorId).
		Find(&reviews)
	if result.Error != nil {
		return nil, result.Error
	}
	return reviews, nil
}

func (r *ReviewRepository) GetReviewsForSubcontractor(subcontractorId uuid.UUID) ([]*Review, error) {
	reviews := make([]*Review, 0)
	result := r.DB.Preload("Responses.Question").Preload("Attachments").
		Where("subcontractor_id = ?", subcontractorId).
		Order("created_at DESC").
		Find(&reviews)
	if result.Error != nil {
		return nil, result.Error
	}
	return reviews, nil
}

func (r *ReviewRepository) Save(review *Review) (*Review, error) {
	result := r.DB.Save(review)
	if result.Error != nil {
		return nil, result.Error
	}
	return review, nil
}

func (r *ReviewRepository) SaveResponses(responses []*ReviewResponse) error {
	if len(responses) == 0 {
		return nil
	}
	result := r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "review_id"}, {Name: "question_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"score", "comment", "updated_at"}),
	}).Create(responses)
	return result.Error
}

// UpdateResponseScore updates the existing response of the review for the
// given question. Responses for questions the review never answered are not
// created here.
func (r *ReviewRepository) UpdateResponseScore(reviewId uuid.UUID, questionId uuid.UUID, score int) error {
	result := r.DB.Model(&ReviewResponse{}).
		Where("review_id = ? AND question_id = ?", reviewId, questionId).
		Update("score", score)
	return result.Error
}

func (r *ReviewRepository) GetResponsesForReview(reviewId uuid.UUID) ([]*ReviewResponse, error) {
	responses := make([]*ReviewResponse, 0)
	result := r.DB.Preload("Question").Where("review_id = ?", reviewId).Find(&responses)
	if result.Error != nil {
		return nil, result.Error
	}
	return responses, nil
}

// Delete soft-deletes the review. Responses and attachments are removed
// outright since they carry no meaning without their review.
func (r *ReviewRepository) Delete(reviewId uuid.UUID) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&Review{}, "id = ?", reviewId)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Delete(&ReviewResponse{}, "review_id = ?", reviewId).Error; err != nil {
			return err
		}
		return tx.Delete(&ReviewAttachment{}, "review_id = ?", reviewId).Error
	})
}

func (r *ReviewRepository) SaveAttachment(attachment *ReviewAttachment) (*ReviewAttachment, error) {
	result := r.DB.Save(attachment)
	if result.Error != nil {
		return nil, result.Error
	}
	return attachment, nil
}

func (r *ReviewRepository) GetAttachment(reviewId uuid.UUID, attachmentId uuid.UUID) (*ReviewAttachment, error) {
	var attachment ReviewAttachment
	result := r.DB.First(&attachment, "id = ? AND review_id = ?", attachmentId, reviewId)
	if result.Error != nil {
		return nil, result.Error
	}
	return &attachment, nil
}

func (r *ReviewRepository) DeleteAttachment(attachmentId uuid.UUID) error {
	result := r.DB.Delete(&ReviewAttachment{}, "id = ?", attachmentId)
	return result.Error
}
