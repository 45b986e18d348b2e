package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DocumentCategory string

const (
	DocumentCategoryCertification DocumentCategory = "certification"
	DocumentCategoryLicense       DocumentCategory = "license"
	DocumentCategoryInsurance     DocumentCategory = "insurance"
	DocumentCategoryOther         DocumentCategory = "other"
)

type Document struct {
	Id              uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SubcontractorId uuid.UUID        `gorm:"type:uuid;not null;index"`
	UploaderId      uuid.UUID        `gorm:"type:uuid;not null"`
	Name            string           `gorm:"not null"`
	Description     string           `gorm:"null"`
	FilePath        string           `gorm:"not null"`
	FileType        string           `gorm:"not null"`
	FileSize        int64            `gorm:"not null;default:0"`
	Category        DocumentCategory `gorm:"type:scms.document_category;not null;default:'other'"`
	ExpiryDate      *time.Time       `gorm:"null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       gorm.DeletedAt `gorm:"index"`
}

type DocumentRepository struct {
	DB *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{DB: db}
}

func (r *DocumentRepository) GetDocument(subcontractorId uuid.UUID, documentId uuid.UUID) (*Document, error) {
	var document Document
	result := r.DB.First(&document, "id = ? AND subcontractor_id = ?", documentId, subcontractorId)
	if result.Error != nil {
		return nil, result.Error
	}
	return &document, nil
}

func (r *DocumentRepository) Save(document *Document) (*Document, error) {
	result := r.DB.Save(document)
	if result.Error != nil {
		return nil, result.Error
	}
	return document, nil
}

func (r *DocumentRepository) Delete(documentId uuid.UUID) error {
	result := r.DB.Delete(&Document{}, "id = ?", documentId)
	return result.Error
}
