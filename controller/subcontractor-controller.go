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
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type SubcontractorController struct {
	subcontractorService *service.SubcontractorService
	userService          *service.UserService
}

func NewSubcontractorController(db *gorm.DB) *SubcontractorController {
	return &SubcontractorController{
		subcontractorService: service.NewSubcontractorService(db),
		userService:          service.NewUserService(db),
	}
}

func setupSubcontractorController(db *gorm.DB, cacheStore persistence.CacheStore) []RouteInfo {
	e := NewSubcontractorController(db)
	basePath := "/subcontractors"
	adminOnly := []repository.UserRole{repository.UserRoleAdmin}
	routes := []RouteInfo{
		{Method: "GET", Path: "", HandlerFunc: cache.CachePage(cacheStore, 30*time.Second, e.getSubcontractorsHandler())},
		{Method: "GET", Path: "/:subcontractor_id", HandlerFunc: e.getSubcontractorHandler()},
		{Method: "POST", Path: "", HandlerFunc: e.createSubcontractorHandler(), Authenticated: true, RequiredRoles: adminOnly},
		{Method: "PUT", Path: "/:subcontractor_id", HandlerFunc: e.updateSubcontractorHandler(), Authenticated: true, RequiredRoles: adminOnly},
		{Method: "DELETE", Path: "/:subcontractor_id", HandlerFunc: e.deleteSubcontractorHandler(), Authenticated: true, RequiredRoles: adminOnly},
		{Method: "POST", Path: "/:subcontractor_id/documents", HandlerFunc: e.uploadDocumentHandler(), Authenticated: true, RequiredRoles: adminOnly},
		{Method: "DELETE", Path: "/:subcontractor_id/documents/:document_id", HandlerFunc: e.deleteDocumentHandler(), Authenticated: true, RequiredRoles: adminOnly},
	}
	for i, route := range routes {
		routes[i].Path = basePath + route.Path
	}
	return routes
}

func getSubcontractorId(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("subcontractor_id"))
	if err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return uuid.Nil, false
	}
	return id, true
}

// @id GetSubcontractors
// @Description Lists all subcontractors with their rating summary
// @Tags subcontractors
// @Produce json
// @Success 200 {array} SubcontractorResponse
// @Router /subcontractors [get]
func (e *SubcontractorController) getSubcontractorsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		subcontractors, err := e.subcontractorService.GetAllSubcontractors()
		if err != nil {
			c.JSON(500, gin.H{"error": err.Error()})
			return
		}
		c.JSON(200, utils.Map(subcontractors, toSubcontractorResponse))
	}
}

// @id GetSubcontractor
// @Description Returns a subcontractor with its documents
// @Tags subcontractors
// @Produce json
// @Param subcontractor_id path string true "Subcontractor Id"
// @Success 200 {object} SubcontractorResponse
// @Router /subcontractors/{subcontractor_id} [get]
func (e *SubcontractorController) getSubcontractorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := getSubcontractorId(c)
		if !ok {
			return
		}
		subcontractor, err := e.subcontractorService.GetSubcontractorById(id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(404, gin.H{"error": "Subcontractor not found"})
			} else {
				c.JSON(500, gin.H{"error": err.Error()})
			}
			return
		}
		c.JSON(200, toSubcontractorResponse(subcontractor))
	}
}

// @id CreateSubcontractor
// @Description Creates a subcontractor with default rating fields
// @Tags subcontractors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body SubcontractorCreate true "Subcontractor to create"
// @Success 201 {object} SubcontractorResponse
// @Router /subcontractors [post]
func (e *SubcontractorController) createSubcontractorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var create SubcontractorCreate
		if err := c.BindJSON(&create); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		subcontractor, err := e.subcontractorService.CreateSubcontractor(create.toModel())
		if err != nil {
			c.JSON(500, gin.H{"error": err.Error()})
			return
		}
		c.JSON(201, toSubcontractorResponse(subcontractor))
	}
}

// @id UpdateSubcontractor
// @Description Updates a subcontractor's profile
// @Tags subcontractors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param subcontractor_id path string true "Subcontractor Id"
// @Param body body SubcontractorCreate true "Profile changes"
// @Success 200 {object} SubcontractorResponse
// @Router /subcontractors/{subcontractor_id} [put]
func (e *SubcontractorController) updateSubcontractorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := getSubcontractorId(c)
		if !ok {
			return
		}
		var update SubcontractorCreate
		if err := c.BindJSON(&update); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		subcontractor, err := e.subcontractorService.UpdateSubcontractor(id, update.toModel())
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(404, gin.H{"error": "Subcontractor not found"})
			} else {
				c.JSON(500, gin.H{"error": err.Error()})
			}
			return
		}
		c.JSON(200, toSubcontractorResponse(subcontractor))
	}
}

// @id DeleteSubcontractor
// @Description Deletes a subcontractor with its reviews and documents
// @Tags subcontractors
// @Security BearerAuth
// @Param subcontractor_id path string true "Subcontractor Id"
// @Success 204
// @Router /subcontractors/{subcontractor_id} [delete]
func (e *SubcontractorController) deleteSubcontractorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := getSubcontractorId(c)
		if !ok {
			return
		}
		if err := e.subcontractorService.DeleteSubcontractor(id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(404, gin.H{"error": "Subcontractor not found"})
			} else {
				c.JSON(500, gin.H{"error": err.Error()})
			}
			return
		}
		c.Status(204)
	}
}

// @id UploadDocument
// @Description Uploads a document for a subcontractor
// @Tags subcontractors
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param subcontractor_id path string true "Subcontractor Id"
// @Param file formData file true "Document file"
// @Success 201 {object} DocumentResponse
// @Router /subcontractors/{subcontractor_id}/documents [post]
func (e *SubcontractorController) uploadDocumentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := getSubcontractorId(c)
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
		path, err := storeUploadedFile(file, "documents")
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		name := c.PostForm("name")
		if name == "" {
			name = file.Filename
		}
		category := repository.DocumentCategory(c.PostForm("category"))
		if category == "" {
			category = repository.DocumentCategoryOther
		}
		document, err := e.subcontractorService.SaveDocument(&repository.Document{
			SubcontractorId: id,
			UploaderId:      user.Id,
			Name:            name,
			Description:     c.PostForm("description"),
			FilePath:        path,
			FileType:        file.Header.Get("Content-Type"),
			FileSize:        file.Size,
			Category:        category,
		})
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(404, gin.H{"error": "Subcontractor not found"})
			} else {
				c.JSON(500, gin.H{"error": err.Error()})
			}
			return
		}
		c.JSON(201, toDocumentResponse(document))
	}
}

// @id DeleteDocument
// @Description Deletes a subcontractor document
// @Tags subcontractors
// @Security BearerAuth
// @Param subcontractor_id path string true "Subcontractor Id"
// @Param document_id path string true "Document Id"
// @Success 204
// @Router /subcontractors/{subcontractor_id}/documents/{document_id} [delete]
func (e *SubcontractorController) deleteDocumentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := getSubcontractorId(c)
		if !ok {
			return
		}
		documentId, err := uuid.Parse(c.Param("document_id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		if err := e.subcontractorService.DeleteDocument(id, documentId); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(404, gin.H{"error": "Document not found"})
			} else {
				c.JSON(500, gin.H{"error": err.Error()})
			}
			return
		}
		c.Status(204)
	}
}

type SubcontractorCreate struct {
	Name        string   `json:"name" binding:"required"`
	ContactName string   `json:"contact_name"`
	Email       string   `json:"email" binding:"omitempty,email"`
	Phone       string   `json:"phone"`
	Address     string   `json:"address"`
	Specialties []string `json:"specialties"`
	Description string   `json:"description"`
	Website     string   `json:"website"`
	Status      string   `json:"status" binding:"omitempty,oneof=active inactive"`
}

func (r *SubcontractorCreate) toModel() *repository.Subcontractor {
	return &repository.Subcontractor{
		Name:        r.Name,
		ContactName: r.ContactName,
		Email:       r.Email,
		Phone:       r.Phone,
		Address:     r.Address,
		Specialties: pq.StringArray(r.Specialties),
		Description: r.Description,
		Website:     r.Website,
		Status:      repository.AccountStatus(r.Status),
	}
}

type SubcontractorResponse struct {
	Id            uuid.UUID           `json:"id"`
	Name          string              `json:"name"`
	ContactName   string              `json:"contact_name"`
	Email         string              `json:"email"`
	Phone         string              `json:"phone"`
	Address       string              `json:"address"`
	Specialties   []string            `json:"specialties"`
	Description   string              `json:"description"`
	Website       string              `json:"website"`
	Status        string              `json:"status"`
	AverageRating float64             `json:"average_rating"`
	LetterGrade   string              `json:"letter_grade"`
	ReviewCount   int                 `json:"review_count"`
	Documents     []*DocumentResponse `json:"documents,omitempty"`
}

func toSubcontractorResponse(subcontractor *repository.Subcontractor) *SubcontractorResponse {
	response := &SubcontractorResponse{
		Id:            subcontractor.Id,
		Name:          subcontractor.Name,
		ContactName:   subcontractor.ContactName,
		Email:         subcontractor.Email,
		Phone:         subcontractor.Phone,
		Address:       subcontractor.Address,
		Specialties:   []string(subcontractor.Specialties),
		Description:   subcontractor.Description,
		Website:       subcontractor.Website,
		Status:        string(subcontractor.Status),
		AverageRating: subcontractor.AverageRating,
		LetterGrade:   string(subcontractor.LetterGrade),
		ReviewCount:   subcontractor.ReviewCount,
	}
	if subcontractor.Documents != nil {
		response.Documents = utils.Map(subcontractor.Documents, toDocumentResponse)
	}
	return response
}

type DocumentResponse struct {
	Id          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	FileType    string     `json:"file_type"`
	FileSize    int64      `json:"file_size"`
	Category    string     `json:"category"`
	ExpiryDate  *time.Time `json:"expiry_date"`
	UploadedAt  time.Time  `json:"uploaded_at"`
}

func toDocumentResponse(document *repository.Document) *DocumentResponse {
	return &DocumentResponse{
		Id:          document.Id,
		Name:        document.Name,
		Description: document.Description,
		FileType:    document.FileType,
		FileSize:    document.FileSize,
		Category:    string(document.Category),
		ExpiryDate:  document.ExpiryDate,
		UploadedAt:  document.CreatedAt,
	}
}
