package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RatingRepairJob records a failed aggregate recomputation so the repair loop
// can retry it. Rating recomputation is a best-effort side effect of review
// mutations; this table is what keeps "best effort" from becoming "silently
// stale forever".
type RatingRepairJob struct {
	SubcontractorId uuid.UUID `gorm:"type:uuid;primaryKey"`
	Attempts        int       `gorm:"not null;default:0"`
	LastError       string    `gorm:"null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type RepairJobRepository struct {
	DB *gorm.DB
}

func NewRepairJobRepository(db *gorm.DB) *RepairJobRepository {
	return &RepairJobRepository{DB: db}
}

// Enqueue upserts a repair job for the subcontractor, bumping the attempt
// counter when one is already pending.
func (r *RepairJobRepository) Enqueue(subcontractorId uuid.UUID, cause error) error {
	job := &RatingRepairJob{
		SubcontractorId: subcontractorId,
		LastError:       cause.Error(),
	}
	result := r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "subcontractor_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"attempts":   gorm.Expr("rating_repair_jobs.attempts + 1"),
			"last_error": cause.Error(),
			"updated_at": time.Now(),
		}),
	}).Create(job)
	return result.Error
}

func (r *RepairJobRepository) GetPendingJobs(maxAttempts int) ([]*RatingRepairJob, error) {
	jobs := make([]*RatingRepairJob, 0)
	result := r.DB.Where("attempts < ?", maxAttempts).Order("updated_at").Find(&jobs)
	if result.Error != nil {
		return nil, result.Error
	}
	return jobs, nil
}

func (r *RepairJobRepository) MarkFailed(job *RatingRepairJob, cause error) error {
	result := r.DB.Model(job).Updates(map[string]any{
		"attempts":   job.Attempts + 1,
		"last_error": cause.Error(),
	})
	return result.Error
}

func (r *RepairJobRepository) Complete(subcontractorId uuid.UUID) error {
	result := r.DB.Delete(&RatingRepairJob{}, "subcontractor_id = ?", subcontractorId)
	return result.Error
}
