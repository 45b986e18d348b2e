package controller

import (
	"errors"
	"time"

	"scms/repository"
	"scms/service"
	"scms/utils"

	"github.com/gin-contrib/cache"
	"github.com/gin-contrib/cache/persistence"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QuestionController struct {
	questionService *service.QuestionService
}

func NewQuestionController(db *gorm.DB) *QuestionController {
	return &QuestionController{
		questionService: service.NewQuestionService(db),
	}
}

func setupQuestionController(db *gorm.DB, cacheStore persistence.CacheStore) []RouteInfo {
	e := NewQuestionController(db)
	adminOnly := []repository.UserRole{repository.UserRoleAdmin}
	return []RouteInfo{
		{Method: "GET", Path: "/questions", HandlerFunc: cache.CachePage(cacheStore, time.Minute, e.getQuestionsHandler())},
		{Method: "POST", Path: "/questions", HandlerFunc: e.createQuestionHandler(), Authenticated: true, RequiredRoles: adminOnly},
		{Method: "PUT", Path: "/questions/:question_id", HandlerFunc: e.updateQuestionHandler(), Authenticated: true, RequiredRoles: adminOnly},
		{Method: "DELETE", Path: "/questions/:question_id", HandlerFunc: e.deleteQuestionHandler(), Authenticated: true, RequiredRoles: adminOnly},
		{Method: "GET", Path: "/question-categories", HandlerFunc: e.getCategoriesHandler()},
		{Method: "GET", Path: "/question-categories/:category_id/questions", HandlerFunc: e.getQuestionsByCategoryHandler()},
		{Method: "POST", Path: "/question-categories", HandlerFunc: e.createCategoryHandler(), Authenticated: true, RequiredRoles: adminOnly},
		{Method: "PUT", Path: "/question-categories/:category_id", HandlerFunc: e.updateCategoryHandler(), Authenticated: true, RequiredRoles: adminOnly},
		{Method: "DELETE", Path: "/question-categories/:category_id", HandlerFunc: e.deleteCategoryHandler(), Authenticated: true, RequiredRoles: adminOnly},
	}
}

// @id GetQuestions
// @Description Lists all questions ordered by category and display order
// @Tags questions
// @Produce json
// @Success 200 {array} QuestionResponse
// @Router /questions [get]
func (e *QuestionController) getQuestionsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		questions, err := e.questionService.GetAllQuestions()
		if err != nil {
			c.JSON(500, gin.H{"error": err.Error()})
			return
		}
		c.JSON(200, utils.Map(questions, toQuestionResponse))
	}
}

// @id CreateQuestion
// @Description Creates a question in a category
// @Tags questions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body QuestionCreate true "Question to create"
// @Success 201 {object} QuestionResponse
// @Router /questions [post]
func (e *QuestionController) createQuestionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var create QuestionCreate
		if err := c.BindJSON(&create); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		question, err := e.questionService.SaveQuestion(create.toModel())
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(404, gin.H{"error": "Question category not found"})
			} else {
				c.JSON(500, gin.H{"error": err.Error()})
			}
			return
		}
		c.JSON(201, toQuestionResponse(question))
	}
}

// @id UpdateQuestion
// @Description Updates a question
// @Tags questions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param question_id path string true "Question Id"
// @Param body body QuestionUpdate true "Question changes"
// @Success 200 {object} QuestionResponse
// @Router /questions/{question_id} [put]
func (e *QuestionController) updateQuestionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		questionId, err := uuid.Parse(c.Param("question_id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		var update QuestionUpdate
		if err := c.BindJSON(&update); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		question, err := e.questionService.GetQuestionById(questionId)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(404, gin.H{"error": "Question not found"})
			} else {
				c.JSON(500, gin.H{"error": err.Error()})
			}
			return
		}
		update.apply(question)
		question, err = e.questionService.SaveQuestion(question)
		if err != nil {
			c.JSON(500, gin.H{"error": err.Error()})
			return
		}
		c.JSON(200, toQuestionResponse(question))
	}
}

// @id DeleteQuestion
// @Description Deletes a question
// @Tags questions
// @Security BearerAuth
// @Param question_id path string true "Question Id"
// @Success 204
// @Router /questions/{question_id} [delete]
func (e *QuestionController) deleteQuestionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		questionId, err := uuid.Parse(c.Param("question_id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		if err := e.questionService.DeleteQuestion(questionId); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(404, gin.H{"error": "Question not found"})
			} else {
				c.JSON(500, gin.H{"error": err.Error()})
			}
			return
		}
		c.Status(204)
	}
}

// @id GetQuestionCategories
// @Description Lists all question categories, seeding a default when empty
// @Tags questions
// @Produce json
// @Success 200 {array} CategoryResponse
// @Router /question-categories [get]
func (e *QuestionController) getCategoriesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		categories, err := e.questionService.GetAllCategories()
		if err != nil {
			c.JSON(500, gin.H{"error": err.Error()})
			return
		}
		c.JSON(200, utils.Map(categories, toCategoryResponse))
	}
}

// @id GetQuestionsByCategory
// @Description Lists the questions of a category
// @Tags questions
// @Produce json
// @Param category_id path string true "Category Id"
// @Success 200 {array} QuestionResponse
// @Router /question-categories/{category_id}/questions [get]
func (e *QuestionController) getQuestionsByCategoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		categoryId, err := uuid.Parse(c.Param("category_id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		questions, err := e.questionService.GetQuestionsByCategory(categoryId)
		if err != nil {
			c.JSON(500, gin.H{"error": err.Error()})
			return
		}
		c.JSON(200, utils.Map(questions, toQuestionResponse))
	}
}

// @id CreateQuestionCategory
// @Description Creates a question category
// @Tags questions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CategoryCreate true "Category to create"
// @Success 201 {object} CategoryResponse
// @Router /question-categories [post]
func (e *QuestionController) createCategoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var create CategoryCreate
		if err := c.BindJSON(&create); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		category, err := e.questionService.SaveCategory(create.toModel())
		if err != nil {
			c.JSON(500, gin.H{"error": err.Error()})
			return
		}
		c.JSON(201, toCategoryResponse(category))
	}
}

// @id UpdateQuestionCategory
// @Description Updates a question category
// @Tags questions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param category_id path string true "Category Id"
// @Param body body CategoryUpdate true "Category changes"
// @Success 200 {object} CategoryResponse
// @Router /question-categories/{category_id} [put]
func (e *QuestionController) updateCategoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		categoryId, err := uuid.Parse(c.Param("category_id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		var update CategoryUpdate
		if err := c.BindJSON(&update); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		category, err := e.questionService.GetCategoryById(categoryId)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(404, gin.H{"error": "Question category not found"})
			} else {
				c.JSON(500, gin.H{"error": err.Error()})
			}
			return
		}
		update.apply(category)
		category, err = e.questionService.SaveCategory(category)
		if err != nil {
			c.JSON(500, gin.H{"error": err.Error()})
			return
		}
		c.JSON(200, toCategoryResponse(category))
	}
}

// @id DeleteQuestionCategory
// @Description Deletes a question category without questions
// @Tags questions
// @Security BearerAuth
// @Param category_id path string true "Category Id"
// @Success 204
// @Router /question-categories/{category_id} [delete]
func (e *QuestionController) deleteCategoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		categoryId, err := uuid.Parse(c.Param("category_id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		if err := e.questionService.DeleteCategory(categoryId); err != nil {
			switch {
			case errors.Is(err, service.ErrCategoryHasQuestions):
				c.JSON(400, gin.H{"error": err.Error()})
			case errors.Is(err, gorm.ErrRecordNotFound):
				c.JSON(404, gin.H{"error": "Question category not found"})
			default:
				c.JSON(500, gin.H{"error": err.Error()})
			}
			return
		}
		c.Status(204)
	}
}

type QuestionCreate struct {
	CategoryId   uuid.UUID `json:"category_id" binding:"required"`
	Text         string    `json:"text" binding:"required"`
	Weight       float64   `json:"weight" binding:"omitempty,min=0.1,max=10"`
	HelpText     string    `json:"help_text"`
	IsRequired   *bool     `json:"is_required"`
	DisplayOrder int       `json:"display_order"`
	IsActive     *bool     `json:"is_active"`
}

func (r *QuestionCreate) toModel() *repository.Question {
	question := &repository.Question{
		CategoryId:   r.CategoryId,
		Text:         r.Text,
		Weight:       r.Weight,
		HelpText:     r.HelpText,
		IsRequired:   true,
		DisplayOrder: r.DisplayOrder,
		IsActive:     true,
	}
	if r.IsRequired != nil {
		question.IsRequired = *r.IsRequired
	}
	if r.IsActive != nil {
		question.IsActive = *r.IsActive
	}
	return question
}

type QuestionUpdate struct {
	Text         string  `json:"text"`
	Weight       float64 `json:"weight" binding:"omitempty,min=0.1,max=10"`
	HelpText     string  `json:"help_text"`
	IsRequired   *bool   `json:"is_required"`
	DisplayOrder *int    `json:"display_order"`
	IsActive     *bool   `json:"is_active"`
}

func (r *QuestionUpdate) apply(question *repository.Question) {
	if r.Text != "" {
		question.Text = r.Text
	}
	if r.Weight != 0 {
		question.Weight = r.Weight
	}
	if r.HelpText != "" {
		question.HelpText = r.HelpText
	}
	if r.IsRequired != nil {
		question.IsRequired = *r.IsRequired
	}
	if r.DisplayOrder != nil {
		question.DisplayOrder = *r.DisplayOrder
	}
	if r.IsActive != nil {
		question.IsActive = *r.IsActive
	}
}

type QuestionResponse struct {
	Id           uuid.UUID         `json:"id"`
	CategoryId   uuid.UUID         `json:"category_id"`
	Category     *CategoryResponse `json:"category,omitempty"`
	Text         string            `json:"text"`
	Weight       float64           `json:"weight"`
	HelpText     string            `json:"help_text"`
	IsRequired   bool              `json:"is_required"`
	DisplayOrder int               `json:"display_order"`
	IsActive     bool              `json:"is_active"`
}

func toQuestionResponse(question *repository.Question) *QuestionResponse {
	response := &QuestionResponse{
		Id:           question.Id,
		CategoryId:   question.CategoryId,
		Text:         question.Text,
		Weight:       question.Weight,
		HelpText:     question.HelpText,
		IsRequired:   question.IsRequired,
		DisplayOrder: question.DisplayOrder,
		IsActive:     question.IsActive,
	}
	if question.Category != nil {
		response.Category = toCategoryResponse(question.Category)
	}
	return response
}

type CategoryCreate struct {
	Name         string  `json:"name" binding:"required"`
	Description  string  `json:"description"`
	Weight       float64 `json:"weight" binding:"omitempty,min=0.1,max=10"`
	DisplayOrder int     `json:"display_order"`
	IsActive     *bool   `json:"is_active"`
}

func (r *CategoryCreate) toModel() *repository.QuestionCategory {
	category := &repository.QuestionCategory{
		Name:         r.Name,
		Description:  r.Description,
		Weight:       r.Weight,
		DisplayOrder: r.DisplayOrder,
		IsActive:     true,
	}
	if r.IsActive != nil {
		category.IsActive = *r.IsActive
	}
	return category
}

type CategoryUpdate struct {
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Weight       float64 `json:"weight" binding:"omitempty,min=0.1,max=10"`
	DisplayOrder *int    `json:"display_order"`
	IsActive     *bool   `json:"is_active"`
}

func (r *CategoryUpdate) apply(category *repository.QuestionCategory) {
	if r.Name != "" {
		category.Name = r.Name
	}
	if r.Description != "" {
		category.Description = r.Description
	}
	if r.Weight != 0 {
		category.Weight = r.Weight
	}
	if r.DisplayOrder != nil {
		category.DisplayOrder = *r.DisplayOrder
	}
	if r.IsActive != nil {
		category.IsActive = *r.IsActive
	}
}

type CategoryResponse struct {
	Id           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Weight       float64   `json:"weight"`
	DisplayOrder int       `json:"display_order"`
	IsActive     bool      `json:"is_active"`
}

func toCategoryResponse(category *repository.QuestionCategory) *CategoryResponse {
	return &CategoryResponse{
		Id:           category.Id,
		Name:         category.Name,
		Description:  category.Description,
		Weight:       category.Weight,
		DisplayOrder: category.DisplayOrder,
		IsActive:     category.IsActive,
	}
}
