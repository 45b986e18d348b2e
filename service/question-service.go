package service

import (
	"errors"

	"scms/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrCategoryHasQuestions = errors.New("cannot delete category with associated questions")

type QuestionService struct {
	questionRepository *repository.QuestionRepository
}

func NewQuestionService(db *gorm.DB) *QuestionService {
	return &QuestionService{
		questionRepository: repository.NewQuestionRepository(db),
	}
}

func (s *QuestionService) GetAllQuestions() ([]*repository.Question, error) {
	return s.questionRepository.GetAllQuestions()
}

func (s *QuestionService) GetQuestionsByCategory(categoryId uuid.UUID) ([]*repository.Question, error) {
	return s.questionRepository.GetQuestionsByCategory(categoryId)
}

// GetAllCategories returns the catalog, seeding a default category with a
// single question when the catalog is still empty so that the review form is
// never blank on a fresh install.
func (s *QuestionService) GetAllCategories() ([]*repository.QuestionCategory, error) {
	categories, err := s.questionRepository.GetAllCategories()
	if err != nil {
		return nil, err
	}
	if len(categories) > 0 {
		return categories, nil
	}
	category, err := s.questionRepository.SaveCategory(&repository.QuestionCategory{
		Name:        "General Feedback",
		Description: "General questions about the subcontractor",
		Weight:      1.0,
		IsActive:    true,
	})
	if err != nil {
		return nil, err
	}
	_, err = s.questionRepository.SaveQuestion(&repository.Question{
		CategoryId: category.Id,
		Text:       "How satisfied are you with the quality of work the subcontractor did?",
		Weight:     1.0,
		HelpText:   "Consider factors like craftsmanship, attention to detail, and adherence to specifications",
		IsRequired: true,
		IsActive:   true,
	})
	if err != nil {
		return nil, err
	}
	return s.questionRepository.GetAllCategories()
}

func (s *QuestionService) GetCategoryById(categoryId uuid.UUID) (*repository.QuestionCategory, error) {
	return s.questionRepository.GetCategoryById(categoryId)
}

func (s *QuestionService) SaveCategory(category *repository.QuestionCategory) (*repository.QuestionCategory, error) {
	if category.Weight == 0 {
		category.Weight = 1.0
	}
	return s.questionRepository.SaveCategory(category)
}

// DeleteCategory refuses to delete a category that still owns questions.
func (s *QuestionService) DeleteCategory(categoryId uuid.UUID) error {
	if _, err := s.questionRepository.GetCategoryById(categoryId); err != nil {
		return err
	}
	count, err := s.questionRepository.CountQuestionsInCategory(categoryId)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrCategoryHasQuestions
	}
	return s.questionRepository.DeleteCategory(categoryId)
}

func (s *QuestionService) GetQuestionById(questionId uuid.UUID) (*repository.Question, error) {
	return s.questionRepository.GetQuestionById(questionId)
}

func (s *QuestionService) SaveQuestion(question *repository.Question) (*repository.Question, error) {
	if _, err := s.questionRepository.GetCategoryById(question.CategoryId); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, err
	}
	if question.Weight == 0 {
		question.Weight = 1.0
	}
	return s.questionRepository.SaveQuestion(question)
}

func (s *QuestionService) DeleteQuestion(questionId uuid.UUID) error {
	return s.questionRepository.DeleteQuestion(questionId)
}
