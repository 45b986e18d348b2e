package controller

import (
	"errors"

	"scms/auth"
	"scms/repository"
	"scms/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AuthController struct {
	userService *service.UserService
}

func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{
		userService: service.NewUserService(db),
	}
}

func setupAuthController(db *gorm.DB) []RouteInfo {
	e := NewAuthController(db)
	basePath := "/auth"
	routes := []RouteInfo{
		{Method: "POST", Path: "/register", HandlerFunc: e.registerHandler()},
		{Method: "POST", Path: "/login", HandlerFunc: e.loginHandler()},
		{Method: "GET", Path: "/me", HandlerFunc: e.getCurrentUserHandler(), Authenticated: true},
	}
	for i, route := range routes {
		routes[i].Path = basePath + route.Path
	}
	return routes
}

// @id Register
// @Description Registers a new internal user and returns a token
// @Tags auth
// @Accept json
// @Produce json
// @Param body body RegisterRequest true "Registration data"
// @Success 201 {object} LoginResponse
// @Router /auth/register [post]
func (e *AuthController) registerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var request RegisterRequest
		if err := c.BindJSON(&request); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		user, err := e.userService.Register(request.toModel(), request.Password)
		if err != nil {
			if errors.Is(err, service.ErrUserExists) {
				c.JSON(400, gin.H{"error": err.Error()})
			} else {
				c.JSON(500, gin.H{"error": err.Error()})
			}
			return
		}
		token, err := auth.CreateToken(user)
		if err != nil {
			c.JSON(500, gin.H{"error": err.Error()})
			return
		}
		c.JSON(201, LoginResponse{Token: token, User: toUserResponse(user)})
	}
}

// @id Login
// @Description Authenticates a user by username or email and returns a token
// @Tags auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Credentials"
// @Success 200 {object} LoginResponse
// @Router /auth/login [post]
func (e *AuthController) loginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var request LoginRequest
		if err := c.BindJSON(&request); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		user, err := e.userService.Authenticate(request.Username, request.Password)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrInvalidCredentials):
				c.JSON(401, gin.H{"error": err.Error()})
			case errors.Is(err, service.ErrAccountInactive):
				c.JSON(403, gin.H{"error": err.Error()})
			default:
				c.JSON(500, gin.H{"error": err.Error()})
			}
			return
		}
		token, err := auth.CreateToken(user)
		if err != nil {
			c.JSON(500, gin.H{"error": err.Error()})
			return
		}
		c.JSON(200, LoginResponse{Token: token, User: toUserResponse(user)})
	}
}

// @id GetCurrentUser
// @Description Returns the authenticated user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Router /auth/me [get]
func (e *AuthController) getCurrentUserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := getClaims(c)
		user, err := e.userService.GetUserById(claims.UserId)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(404, gin.H{"error": "User not found"})
			} else {
				c.JSON(500, gin.H{"error": err.Error()})
			}
			return
		}
		c.JSON(200, toUserResponse(user))
	}
}

type RegisterRequest struct {
	Username   string `json:"username" binding:"required,min=3,max=50"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=8"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Department string `json:"department"`
}

func (r *RegisterRequest) toModel() *repository.User {
	return &repository.User{
		Username:   r.Username,
		Email:      r.Email,
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		Department: r.Department,
		Role:       repository.UserRoleInternal,
	}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string        `json:"token"`
	User  *UserResponse `json:"user"`
}
