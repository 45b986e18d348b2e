package controller

import (
	"errors"
	"time"

	"scms/repository"
	"scms/service"
	"scms/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReviewController struct {
	reviewService *service.ReviewService
	userService   *service.UserService
}

func NewReviewController(db *gorm.DB) *ReviewController {
	return &ReviewController{
		reviewService: service.NewReviewService(db),
		userService:   service.NewUserService(db),
	}
}

func setupReviewController(db *gorm.DB) []RouteInfo {
	e := NewReviewController(db)
	basePath := "/reviews"
	adminOnly := []repository.UserRole{repository.UserRoleAdmin}
	routes := []RouteInfo{
		{Method: "GET", Path: "/subcontractor/:subcontractor_id", HandlerFunc: e.getReviewsHandler()},
		{Method: "POST", Path: "", HandlerFunc: e.createReviewHandler(), Authenticated: true},
		{Method: "PUT", Path: "/:review_id", HandlerFunc: e.updateReviewHandler(), Authenticated: true},
		{Method: "DELETE", Path: "/:review_id", HandlerFunc: e.deleteReviewHandler(), Authenticated: true, RequiredRoles: adminOnly},
		{Method: "POST", Path: "/:review_id/attachments", HandlerFunc: e.uploadAttachmentHandler(), Authenticated: true},
		{Method: "DELETE", Path: "/:review_id/attachments/:attachment_id", HandlerFunc: e.deleteAttachmentHandler(), Authenticated: true},
	}
	for i, route := range routes {
		routes[i].Path = basePath + route.Path
	}
	return routes
}

func getReviewId(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("review_id"))
	if err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return uuid.Nil, false
	}
	return id, true
}

// @id GetReviewsForSubcontractor
// @Description Lists all reviews of a subcontractor with responses and attachments
// @Tags reviews
// @Produce json
// @Param subcontractor_id path string true "Subcontractor Id"
// @Success 200 {array} ReviewResponse
// @Router /reviews/subcontractor/{subcontractor_id} [get]
func (e *ReviewController) getReviewsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		subcontractorId, ok := getSubcontractorId(c)
		if !ok {
			return
		}
		reviews, err := e.reviewService.GetReviewsForSubcontractor(subcontractorId)
		if err != nil {
			c.JSON(500, gin.H{"error": err.Error()})
			return
		}
		c.JSON(200, utils.Map(reviews, toReviewResponse))
	}
}

// @id CreateReview
// @Description Submits a review with one response per answered question.
// @Description The subcontractor's rating aggregate is recomputed afterwards
// @Description and must be fetched separately.
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ReviewCreate true "Review to submit"
// @Success 201 {object} ReviewMessageResponse
// @Router /reviews [post]
func (e *ReviewController) createReviewHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := e.userService.GetUserFromAuthHeader(c)
		if err != nil {
			c.JSON(401, gin.H{"error": "Not authenticated"})
			return
		}
		var create ReviewCreate
		if err := c.BindJSON(&create); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		review, responses := create.toModel()
		review.ReviewerId = user.Id
		review, err = e.reviewService.CreateReview(review, responses)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(404, gin.H{"error": "Subcontractor or question not found"})
			} else {
				c.JSON(500, gin.H{"error": err.Error()})
			}
			return
		}
		c.JSON(201, ReviewMessageResponse{
			Message: "Review submitted successfully",
			Review:  toReviewResponse(review),
		})
	}
}

// @id UpdateReview
// @Description Updates a review's comments and response scores. Only the
// @Description review owner or an admin may update it.
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param review_id path string true "Review Id"
// @Param body body ReviewUpdate true "Review changes"
// @Success 200 {object} ReviewMessageResponse
// @Router /reviews/{review_id} [put]
func (e *ReviewController) updateReviewHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		reviewId, ok := getReviewId(c)
		if !ok {
			return
		}
		user, err := e.userService.GetUserFromAuthHeader(c)
		if err != nil {
			c.JSON(401, gin.H{"error": "Not authenticated"})
			return
		}
		var update ReviewUpdate
		if err := c.BindJSON(&update); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		updateModel, responses := update.toModel()
		review, err := e.reviewService.UpdateReview(user, reviewId, updateModel, responses)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrReviewForbidden):
				c.JSON(403, gin.H{"error": err.Error()})
			case errors.Is(err, gorm.ErrRecordNotFound):
				c.JSON(404, gin.H{"error": "Review not found"})
			default:
				c.JSON(500, gin.H{"error": err.Error()})
			}
			return
		}
		c.JSON(200, ReviewMessageResponse{
			Message: "Review updated successfully",
			Review:  toReviewResponse(review),
		})
	}
}

// @id DeleteReview
// @Description Deletes a review with its responses and attachments and
// @Description recomputes the subcontractor's rating aggregate.
// @Tags reviews
// @Security BearerAuth
// @Param review_id path string true "Review Id"
// @Success 200 {object} MessageResponse
// @Router /reviews/{review_id} [delete]
func (e *ReviewController) deleteReviewHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		reviewId, ok := getReviewId(c)
		if !ok {
			return
		}
		user, err := e.userService.GetUserFromAuthHeader(c)
		if err != nil {
			c.JSON(401, gin.H{"error": "Not authenticated"})
			return
		}
		if err := e.reviewService.DeleteReview(user, reviewId); err != nil {
			switch {
			case errors.Is(err, service.ErrReviewForbidden):
				c.JSON(403, gin.H{"error": err.Error()})
			case errors.Is(err, gorm.ErrRecordNotFound):
				c.JSON(404, gin.H{"error": "Review not found"})
			default:
				c.JSON(500, gin.H{"error": err.Error()})
			}
			return
		}
		c.JSON(200, MessageResponse{Message: "Review deleted successfully"})
	}
}

// @id UploadReviewAttachment
// @Description Uploads an attachment for a review
// @Tags reviews
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param review_id path string true "Review Id"
// @Param file formData file true "Attachment file"
// @Success 201 {object} AttachmentResponse
// @Router /reviews/{review_id}/attachments [post]
func (e *ReviewController) uploadAttachmentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		reviewId, ok := getReviewId(c)
		if !ok {
			return
		}
		user, err := e.userService.GetUserFromAuthHeader(c)
		if err != nil {
			c.JSON(401, gin.H{"error": "Not authenticated"})
			return
		}
		file, err := c.FormFile("file")
		if err != nil {
			c.JSON(400, gin.H{"error": "No file uploaded"})
			return
		}
		path, err := storeUploadedFile(file, "reviews")
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		attachment, err := e.reviewService.UploadAttachment(user, reviewId, &repository.ReviewAttachment{
			FileName:    file.Filename,
			FilePath:    path,
			FileType:    file.Header.Get("Content-Type"),
			FileSize:    file.Size,
			Description: c.PostForm("description"),
		})
		if err != nil {
			switch {
			case errors.Is(err, service.ErrReviewForbidden):
				c.JSON(403, gin.H{"error": err.Error()})
			case errors.Is(err, gorm.ErrRecordNotFound):
				c.JSON(404, gin.H{"error": "Review not found"})
			default:
				c.JSON(500, gin.H{"error": err.Error()})
			}
			return
		}
		c.JSON(201, toAttachmentResponse(attachment))
	}
}

// @id DeleteReviewAttachment
// @Description Deletes a review attachment
// @Tags reviews
// @Security BearerAuth
// @Param review_id path string true "Review Id"
// @Param attachment_id path string true "Attachment Id"
// @Success 204
// @Router /reviews/{review_id}/attachments/{attachment_id} [delete]
func (e *ReviewController) deleteAttachmentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		reviewId, ok := getReviewId(c)
		if !ok {
			return
		}
		attachmentId, err := uuid.Parse(c.Param("attachment_id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		user, err := e.userService.GetUserFromAuthHeader(c)
		if err != nil {
			c.JSON(401, gin.H{"error": "Not authenticated"})
			return
		}
		if err := e.reviewService.DeleteAttachment(user, reviewId, attachmentId); err != nil {
			switch {
			case errors.Is(err, service.ErrReviewForbidden):
				c.JSON(403, gin.H{"error": err.Error()})
			case errors.Is(err, gorm.ErrRecordNotFound):
				c.JSON(404, gin.H{"error": "Attachment not found"})
			default:
				c.JSON(500, gin.H{"error": err.Error()})
			}
			return
		}
		c.Status(204)
	}
}

type ResponseCreate struct {
	QuestionId uuid.UUID `json:"question_id" binding:"required"`
	Score      int       `json:"score" binding:"required,min=1,max=5"`
	Comment    string    `json:"comment"`
}

type ReviewCreate struct {
	SubcontractorId uuid.UUID        `json:"subcontractor_id" binding:"required"`
	Comments        string           `json:"comments"`
	ProjectName     string           `json:"project_name"`
	ProjectDate     *time.Time       `json:"project_date"`
	Responses       []ResponseCreate `json:"responses" binding:"required,min=1,dive"`
}

func (r *ReviewCreate) toModel() (*repository.Review, []*repository.ReviewResponse) {
	review := &repository.Review{
		SubcontractorId: r.SubcontractorId,
		Comments:        r.Comments,
		ProjectName:     r.ProjectName,
		ProjectDate:     r.ProjectDate,
	}
	responses := utils.Map(r.Responses, func(response ResponseCreate) *repository.ReviewResponse {
		return &repository.ReviewResponse{
			QuestionId: response.QuestionId,
			Score:      response.Score,
			Comment:    response.Comment,
		}
	})
	return review, responses
}

type ReviewUpdate struct {
	Comments    string           `json:"comments"`
	ProjectName string           `json:"project_name"`
	ProjectDate *time.Time       `json:"project_date"`
	Responses   []ResponseCreate `json:"responses" binding:"omitempty,dive"`
}

func (r *ReviewUpdate) toModel() (*repository.Review, []*repository.ReviewResponse) {
	review := &repository.Review{
		Comments:    r.Comments,
		ProjectName: r.ProjectName,
		ProjectDate: r.ProjectDate,
	}
	responses := utils.Map(r.Responses, func(response ResponseCreate) *repository.ReviewResponse {
		return &repository.ReviewResponse{
			QuestionId: response.QuestionId,
			Score:      response.Score,
			Comment:    response.Comment,
		}
	})
	return review, responses
}

type ReviewResponse struct {
	Id              uuid.UUID                 `json:"id"`
	SubcontractorId uuid.UUID                 `json:"subcontractor_id"`
	ReviewerId      uuid.UUID                 `json:"reviewer_id"`
	OverallRating   int                       `json:"overall_rating"`
	Comments        string                    `json:"comments"`
	ProjectName     string                    `json:"project_name"`
	ProjectDate     *time.Time                `json:"project_date"`
	CreatedAt       time.Time                 `json:"created_at"`
	Responses       []*QuestionScoreResponse  `json:"responses"`
	Attachments     []*AttachmentResponse     `json:"attachments,omitempty"`
}

type QuestionScoreResponse struct {
	QuestionId uuid.UUID         `json:"question_id"`
	Question   *QuestionResponse `json:"question,omitempty"`
	Score      int               `json:"score"`
	Comment    string            `json:"comment"`
}

type AttachmentResponse struct {
	Id          uuid.UUID `json:"id"`
	FileName    string    `json:"file_name"`
	FileType    string    `json:"file_type"`
	FileSize    int64     `json:"file_size"`
	Description string    `json:"description"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

type ReviewMessageResponse struct {
	Message string          `json:"message"`
	Review  *ReviewResponse `json:"review"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func toReviewResponse(review *repository.Review) *ReviewResponse {
	response := &ReviewResponse{
		Id:              review.Id,
		SubcontractorId: review.SubcontractorId,
		ReviewerId:      review.ReviewerId,
		OverallRating:   review.OverallRating,
		Comments:        review.Comments,
		ProjectName:     review.ProjectName,
		ProjectDate:     review.ProjectDate,
		CreatedAt:       review.CreatedAt,
		Responses:       utils.Map(review.Responses, toQuestionScoreResponse),
	}
	if review.Attachments != nil {
		response.Attachments = utils.Map(review.Attachments, toAttachmentResponse)
	}
	return response
}

func toQuestionScoreResponse(response *repository.ReviewResponse) *QuestionScoreResponse {
	result := &QuestionScoreResponse{
		QuestionId: response.QuestionId,
		Score:      response.Score,
		Comment:    response.Comment,
	}
	if response.Question != nil {
		result.Question = toQuestionResponse(response.Question)
	}
	return result
}

func toAttachmentResponse(attachment *repository.ReviewAttachment) *AttachmentResponse {
	return &AttachmentResponse{
		Id:          attachment.Id,
		FileName:    attachment.FileName,
		FileType:    attachment.FileType,
		FileSize:    attachment.FileSize,
		Description: attachment.Description,
		UploadedAt:  attachment.CreatedAt,
	}
}
