package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LetterGrade string

const (
	LetterGradeA LetterGrade = "A"
	LetterGradeB LetterGrade = "B"
	LetterGradeC LetterGrade = "C"
	LetterGradeD LetterGrade = "D"
	LetterGradeF LetterGrade = "F"
)

type Subcontractor struct {
	Id          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string         `gorm:"not null"`
	ContactName string         `gorm:"null"`
	Email       string         `gorm:"null"`
	Phone       string         `gorm:"null"`
	Address     string         `gorm:"null"`
	Specialties pq.StringArray `gorm:"type:text[];not null;default:'{}'"`
	Description string         `gorm:"null"`
	Website     string         `gorm:"null"`
	Status      AccountStatus  `gorm:"type:scms.account_status;not null;default:'active'"`

	// Materialized rating aggregate. Written exclusively by the scoring
	// engine, never by subcontractor or review CRUD paths.
	AverageRating float64     `gorm:"not null;default:0"`
	LetterGrade   LetterGrade `gorm:"type:scms.letter_grade;not null;default:'C'"`
	ReviewCount   int         `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`

	Reviews   []*Review   `gorm:"foreignKey:SubcontractorId;constraint:OnDelete:CASCADE"`
	Documents []*Document `gorm:"foreignKey:SubcontractorId;constraint:OnDelete:CASCADE"`
}

// RatingAggregate is the scoring engine's output shape.
type RatingAggregate struct {
	AverageRating float64     `json:"average_rating"`
	LetterGrade   LetterGrade `json:"letter_grade"`
	ReviewCount   int         `json:"review_count"`
}

type SubcontractorRepository struct {
	DB *gorm.DB
}

func NewSubcontractorRepository(db *gorm.DB) *SubcontractorRepository {
	return &SubcontractorRepository{DB: db}
}

func (r *SubcontractorRepository) GetSubcontractorById(id uuid.UUID, preloads ...string) (*Subcontractor, error) {
	var subcontractor Subcontractor
	query := r.DB
	for _, preload := range preloads {
		query = query.Preload(preload)
	}
	result := query.First(&subcontractor, "id = ?", id)
	if result.Error != nil {
		return nil, result.Error
	}
	return &subcontractor, nil
}

func (r *SubcontractorRepository) FindAll() ([]*Subcontractor, error) {
	subcontractors := make([]*Subcontractor, 0)
	result := r.DB.Order("name").Find(&subcontractors)
	if result.Error != nil {
		return nil, result.Error
	}
	return subcontractors, nil
}

func (r *SubcontractorRepository) Save(subcontractor *Subcontractor) (*Subcontractor, error) {
	result := r.DB.Save(subcontractor)
	if result.Error != nil {
		return nil, result.Error
	}
	return subcontractor, nil
}

func (r *SubcontractorRepository) Delete(id uuid.UUID) error {
	result := r.DB.Delete(&Subcontractor{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// LockForAggregateUpdate takes a row lock on the subcontractor inside tx so
// that concurrent review mutations serialize their rating recomputations.
func (r *SubcontractorRepository) LockForAggregateUpdate(tx *gorm.DB, id uuid.UUID) error {
	var subcontractor Subcontractor
	result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&subcontractor, "id = ?", id)
	return result.Error
}

func (r *SubcontractorRepository) UpdateAggregate(tx *gorm.DB, id uuid.UUID, aggregate *RatingAggregate) error {
	result := tx.Model(&Subcontractor{}).Where("id = ?", id).Updates(map[string]any{
		"average_rating": aggregate.AverageRating,
		"letter_grade":   aggregate.LetterGrade,
		"review_count":   aggregate.ReviewCount,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *SubcontractorRepository) GetAggregate(id uuid.UUID) (*RatingAggregate, error) {
	subcontractor, err := r.GetSubcontractorById(id)
	if err != nil {
		return nil, err
	}
	return &RatingAggregate{
		AverageRating: subcontractor.AverageRating,
		LetterGrade:   subcontractor.LetterGrade,
		ReviewCount:   subcontractor.ReviewCount,
	}, nil
}
