package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QuestionCategory struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name         string    `gorm:"not null"`
	Description  string    `gorm:"null"`
	Weight       float64   `gorm:"not null;default:1.0"`
	DisplayOrder int       `gorm:"not null;default:0"`
	IsActive     bool      `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`

	Questions []*Question `gorm:"foreignKey:CategoryId;constraint:OnDelete:CASCADE"`
}

type Question struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CategoryId   uuid.UUID `gorm:"type:uuid;not null;index"`
	Text         string    `gorm:"not null"`
	Weight       float64   `gorm:"not null;default:1.0"`
	HelpText     string    `gorm:"null"`
	IsRequired   bool      `gorm:"not null;default:true"`
	DisplayOrder int       `gorm:"not null;default:0"`
	IsActive     bool      `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`

	Category *QuestionCategory `gorm:"foreignKey:CategoryId"`
}

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

// GetAllQuestions returns every question with its category, ordered by the
// category's display order and then the question's own.
func (r *QuestionRepository) GetAllQuestions() ([]*Question, error) {
	questions := make([]*Question, 0)
	result := r.DB.Preload("Category").
		Joins("JOIN scms.question_categories ON question_categories.id = questions.category_id").
		Order("question_categories.display_order, questions.display_order").
		Find(&questions)
	if result.Error != nil {
		return nil, result.Error
	}
	return questions, nil
}

func (r *QuestionRepository) GetQuestionById(questionId uuid.UUID) (*Question, error) {
	var question Question
	result := r.DB.First(&question, "id = ?", questionId)
	if result.Error != nil {
		return nil, result.Error
	}
	return &question, nil
}

func (r *QuestionRepository) GetQuestionsByCategory(categoryId uuid.UUID) ([]*Question, error) {
	questions := make([]*Question, 0)
	result := r.DB.Where("category_id = ?", categoryId).Order("display_order").Find(&questions)
	if result.Error != nil {
		return nil, result.Error
	}
	return questions, nil
}

func (r *QuestionRepository) SaveQuestion(question *Question) (*Question, error) {
	result := r.DB.Save(question)
	if result.Error != nil {
		return nil, result.Error
	}
	return question, nil
}

func (r *QuestionRepository) DeleteQuestion(questionId uuid.UUID) error {
	result := r.DB.Delete(&Question{}, "id = ?", questionId)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *QuestionRepository) GetAllCategories() ([]*QuestionCategory, error) {
	categories := make([]*QuestionCategory, 0)
	result := r.DB.Order("display_order").Find(&categories)
	if result.Error != nil {
		return nil, result.Error
	}
	return categories, nil
}

func (r *QuestionRepository) GetCategoryById(categoryId uuid.UUID) (*QuestionCategory, error) {
	var category QuestionCategory
	result := r.DB.First(&category, "id = ?", categoryId)
	if result.Error != nil {
		return nil, result.Error
	}
	return &category, nil
}

func (r *QuestionRepository) SaveCategory(category *QuestionCategory) (*QuestionCategory, error) {
	result := r.DB.Save(category)
	if result.Error != nil {
		return nil, result.Error
	}
	return category, nil
}

func (r *QuestionRepository) DeleteCategory(categoryId uuid.UUID) error {
	result := r.DB.Delete(&QuestionCategory{}, "id = ?", categoryId)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *QuestionRepository) CountQuestionsInCategory(categoryId uuid.UUID) (int64, error) {
	var count int64
	result := r.DB.Model(&Question{}).Where("category_id = ?", categoryId).Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}
	return count, nil
}
