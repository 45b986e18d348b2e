package controller

import (
	"errors"

	"scms/repository"
	"scms/service"
	"scms/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserController struct {
	userService *service.UserService
}

func NewUserController(db *gorm.DB) *UserController {
	return &UserController{
		userService: service.NewUserService(db),
	}
}

func setupUserController(db *gorm.DB) []RouteInfo {
	e := NewUserController(db)
	basePath := "/users"
	adminOnly := []repository.UserRole{repository.UserRoleAdmin}
	routes := []RouteInfo{
		{Method: "GET", Path: "/me", HandlerFunc: e.getCurrentUserHandler(), Authenticated: true},
		{Method: "PUT", Path: "/me", HandlerFunc: e.updateCurrentUserHandler(), Authenticated: true},
		{Method: "PUT", Path: "/me/password", HandlerFunc: e.changePasswordHandler(), Authenticated: true},
		{Method: "GET", Path: "", HandlerFunc: e.getUsersHandler(), Authenticated: true, RequiredRoles: adminOnly},
		{Method: "POST", Path: "", HandlerFunc: e.createUserHandler(), Authenticated: true, RequiredRoles: adminOnly},
		{Method: "GET", Path: "/:user_id", HandlerFunc: e.getUserHandler(), Authenticated: true, RequiredRoles: adminOnly},
		{Method: "PUT", Path: "/:user_id", HandlerFunc: e.updateUserHandler(), Authenticated: true, RequiredRoles: adminOnly},
		{Method: "PUT", Path: "/:user_id/password", HandlerFunc: e.resetPasswordHandler(), Authenticated: true, RequiredRoles: adminOnly},
		{Method: "DELETE", Path: "/:user_id", HandlerFunc: e.deleteUserHandler(), Authenticated: true, RequiredRoles: adminOnly},
	}
	for i, route := range routes {
		routes[i].Path = basePath + route.Path
	}
	return routes
}

// @id GetUserProfile
// @Description Returns the profile of the authenticated user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Router /users/me [get]
func (e *UserController) getCurrentUserHandler() gin.HandlerFunc {
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

// @id UpdateUserProfile
// @Description Updates the profile of the authenticated user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body UserProfileUpdate true "Profile changes"
// @Success 200 {object} UserResponse
// @Router /users/me [put]
func (e *UserController) updateCurrentUserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := getClaims(c)
		var update UserProfileUpdate
		if err := c.BindJSON(&update); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		user, err := e.userService.GetUserById(claims.UserId)
		if err != nil {
			c.JSON(404, gin.H{"error": "User not found"})
			return
		}
		if update.Email != "" {
			user.Email = update.Email
		}
		user.FirstName = update.FirstName
		user.LastName = update.LastName
		user.Department = update.Department
		user, err = e.userService.UpdateUser(user)
		if err != nil {
			c.JSON(500, gin.H{"error": err.Error()})
			return
		}
		c.JSON(200, toUserResponse(user))
	}
}

// @id ChangePassword
// @Description Changes the password of the authenticated user
// @Tags users
// @Accept json
// @Security BearerAuth
// @Param body body PasswordChange true "Current and new password"
// @Success 204
// @Router /users/me/password [put]
func (e *UserController) changePasswordHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := getClaims(c)
		var change PasswordChange
		if err := c.BindJSON(&change); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		err := e.userService.ChangePassword(claims.UserId, change.CurrentPassword, change.NewPassword)
		if err != nil {
			if errors.Is(err, service.ErrInvalidCredentials) {
				c.JSON(401, gin.H{"error": "Current password is incorrect"})
			} else {
				c.JSON(500, gin.H{"error": err.Error()})
			}
			return
		}
		c.Status(204)
	}
}

// @id GetUsers
// @Description Lists all users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} UserResponse
// @Router /users [get]
func (e *UserController) getUsersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := e.userService.GetAllUsers()
		if err != nil {
			c.JSON(500, gin.H{"error": err.Error()})
			return
		}
		c.JSON(200, utils.Map(users, toUserResponse))
	}
}

// @id GetUser
// @Description Returns a user by id
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param user_id path string true "User Id"
// @Success 200 {object} UserResponse
// @Router /users/{user_id} [get]
func (e *UserController) getUserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userId, err := uuid.Parse(c.Param("user_id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		user, err := e.userService.GetUserById(userId)
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

// @id CreateUser
// @Description Creates a user with an explicit role and status
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body UserCreate true "User to create"
// @Success 201 {object} UserResponse
// @Router /users [post]
func (e *UserController) createUserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var create UserCreate
		if err := c.BindJSON(&create); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		user, err := e.userService.Register(create.toModel(), create.Password)
		if err != nil {
			if errors.Is(err, service.ErrUserExists) {
				c.JSON(400, gin.H{"error": err.Error()})
			} else {
				c.JSON(500, gin.H{"error": err.Error()})
			}
			return
		}
		c.JSON(201, toUserResponse(user))
	}
}

// @id UpdateUser
// @Description Updates a user's profile, role and status
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param user_id path string true "User Id"
// @Param body body UserUpdate true "User changes"
// @Success 200 {object} UserResponse
// @Router /users/{user_id} [put]
func (e *UserController) updateUserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userId, err := uuid.Parse(c.Param("user_id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		var update UserUpdate
		if err := c.BindJSON(&update); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		user, err := e.userService.GetUserById(userId)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(404, gin.H{"error": "User not found"})
			} else {
				c.JSON(500, gin.H{"error": err.Error()})
			}
			return
		}
		update.apply(user)
		user, err = e.userService.UpdateUser(user)
		if err != nil {
			c.JSON(500, gin.H{"error": err.Error()})
			return
		}
		c.JSON(200, toUserResponse(user))
	}
}

// @id ResetUserPassword
// @Description Resets a user's password
// @Tags users
// @Accept json
// @Security BearerAuth
// @Param user_id path string true "User Id"
// @Param body body PasswordReset true "New password"
// @Success 204
// @Router /users/{user_id}/password [put]
func (e *UserController) resetPasswordHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userId, err := uuid.Parse(c.Param("user_id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		var reset PasswordReset
		if err := c.BindJSON(&reset); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		if err := e.userService.ResetPassword(userId, reset.NewPassword); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(404, gin.H{"error": "User not found"})
			} else {
				c.JSON(500, gin.H{"error": err.Error()})
			}
			return
		}
		c.Status(204)
	}
}

// @id DeleteUser
// @Description Deletes a user
// @Tags users
// @Security BearerAuth
// @Param user_id path string true "User Id"
// @Success 204
// @Router /users/{user_id} [delete]
func (e *UserController) deleteUserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userId, err := uuid.Parse(c.Param("user_id"))
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		if err := e.userService.DeleteUser(userId); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(404, gin.H{"error": "User not found"})
			} else {
				c.JSON(500, gin.H{"error": err.Error()})
			}
			return
		}
		c.Status(204)
	}
}

type UserResponse struct {
	Id         uuid.UUID `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Department string    `json:"department"`
	Role       string    `json:"role"`
	Status     string    `json:"status"`
}

func toUserResponse(user *repository.User) *UserResponse {
	return &UserResponse{
		Id:         user.Id,
		Username:   user.Username,
		Email:      user.Email,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		Department: user.Department,
		Role:       string(user.Role),
		Status:     string(user.Status),
	}
}

type UserProfileUpdate struct {
	Email      string `json:"email" binding:"omitempty,email"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Department string `json:"department"`
}

type PasswordChange struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

type PasswordReset struct {
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

type UserCreate struct {
	Username   string `json:"username" binding:"required,min=3,max=50"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=8"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Department string `json:"department"`
	Role       string `json:"role" binding:"omitempty,oneof=admin internal"`
	Status     string `json:"status" binding:"omitempty,oneof=active inactive"`
}

func (r *UserCreate) toModel() *repository.User {
	return &repository.User{
		Username:   r.Username,
		Email:      r.Email,
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		Department: r.Department,
		Role:       repository.UserRole(r.Role),
		Status:     repository.AccountStatus(r.Status),
	}
}

type UserUpdate struct {
	Email      string `json:"email" binding:"omitempty,email"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Department string `json:"department"`
	Role       string `json:"role" binding:"omitempty,oneof=admin internal"`
	Status     string `json:"status" binding:"omitempty,oneof=active inactive"`
}

func (r *UserUpdate) apply(user *repository.User) {
	if r.Email != "" {
		user.Email = r.Email
	}
	user.FirstName = r.FirstName
	user.LastName = r.LastName
	user.Department = r.Department
	if r.Role != "" {
		user.Role = repository.UserRole(r.Role)
	}
	if r.Status != "" {
		user.Status = repository.AccountStatus(r.Status)
	}
}
