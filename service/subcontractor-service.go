package service

import (
	"log"
	"os"

	"scms/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SubcontractorService struct {
	subcontractorRepository *repository.SubcontractorRepository
	documentRepository      *repository.DocumentRepository
}

func NewSubcontractorService(db *gorm.DB) *SubcontractorService {
	return &SubcontractorService{
		subcontractorRepository: repository.NewSubcontractorRepository(db),
		documentRepository:      repository.NewDocumentRepository(db),
	}
}

func (s *SubcontractorService) GetAllSubcontractors() ([]*repository.Subcontractor, error) {
	return s.subcontractorRepository.FindAll()
}

func (s *SubcontractorService) GetSubcontractorById(id uuid.UUID) (*repository.Subcontractor, error) {
	return s.subcontractorRepository.GetSubcontractorById(id, "Documents")
}

// CreateSubcontractor persists a new record with the initial rating defaults.
// The aggregate fields are owned by the scoring engine from here on.
func (s *SubcontractorService) CreateSubcontractor(subcontractor *repository.Subcontractor) (*repository.Subcontractor, error) {
	subcontractor.AverageRating = 0
	subcontractor.LetterGrade = repository.LetterGradeC
	subcontractor.ReviewCount = 0
	if subcontractor.Status == "" {
		subcontractor.Status = repository.AccountStatusActive
	}
	return s.subcontractorRepository.Save(subcontractor)
}

// UpdateSubcontractor applies profile changes onto the stored record. The
// rating aggregate is carried over untouched.
func (s *SubcontractorService) UpdateSubcontractor(id uuid.UUID, update *repository.Subcontractor) (*repository.Subcontractor, error) {
	subcontractor, err := s.subcontractorRepository.GetSubcontractorById(id)
	if err != nil {
		return nil, err
	}
	subcontractor.Name = update.Name
	subcontractor.ContactName = update.ContactName
	subcontractor.Email = update.Email
	subcontractor.Phone = update.Phone
	subcontractor.Address = update.Address
	subcontractor.Specialties = update.Specialties
	subcontractor.Description = update.Description
	subcontractor.Website = update.Website
	if update.Status != "" {
		subcontractor.Status = update.Status
	}
	return s.subcontractorRepository.Save(subcontractor)
}

func (s *SubcontractorService) DeleteSubcontractor(id uuid.UUID) error {
	return s.subcontractorRepository.Delete(id)
}

func (s *SubcontractorService) SaveDocument(document *repository.Document) (*repository.Document, error) {
	if _, err := s.subcontractorRepository.GetSubcontractorById(document.SubcontractorId); err != nil {
		return nil, err
	}
	return s.documentRepository.Save(document)
}

func (s *SubcontractorService) DeleteDocument(subcontractorId uuid.UUID, documentId uuid.UUID) error {
	document, err := s.documentRepository.GetDocument(subcontractorId, documentId)
	if err != nil {
		return err
	}
	if document.FilePath != "" {
		if err := os.Remove(document.FilePath); err != nil && !os.IsNotExist(err) {
			log.Printf("failed to remove document file %s: %v", document.FilePath, err)
		}
	}
	return s.documentRepository.Delete(documentId)
}
