package service

import (
	"errors"
	"fmt"

	"scms/auth"
	"scms/repository"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrUserExists         = errors.New("username or email already in use")
)

type UserService struct {
	userRepository *repository.UserRepository
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{
		userRepository: repository.NewUserRepository(db),
	}
}

func (s *UserService) Register(user *repository.User, password string) (*repository.User, error) {
	existing, err := s.userRepository.GetUserByUsernameOrEmail(user.Username, user.Email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUserExists
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash
	if user.Role == "" {
		user.Role = repository.UserRoleInternal
	}
	if user.Status == "" {
		user.Status = repository.AccountStatusActive
	}
	return s.userRepository.Save(user)
}

// Authenticate checks the credentials and returns the user. The login may be
// either the username or the email address.
func (s *UserService) Authenticate(login string, password string) (*repository.User, error) {
	user, err := s.userRepository.GetUserByLogin(login)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	if user.Status != repository.AccountStatusActive {
		return nil, ErrAccountInactive
	}
	return user, nil
}

func (s *UserService) GetUserById(userId uuid.UUID) (*repository.User, error) {
	return s.userRepository.GetUserById(userId)
}

func (s *UserService) GetAllUsers() ([]*repository.User, error) {
	return s.userRepository.FindAll()
}

func (s *UserService) UpdateUser(user *repository.User) (*repository.User, error) {
	return s.userRepository.Save(user)
}

func (s *UserService) ChangePassword(userId uuid.UUID, currentPassword string, newPassword string) error {
	user, err := s.userRepository.GetUserById(userId)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(user.PasswordHash, currentPassword) {
		return ErrInvalidCredentials
	}
	return s.setPassword(user, newPassword)
}

// ResetPassword sets a new password without checking the old one. Admin only,
// enforced at the route level.
func (s *UserService) ResetPassword(userId uuid.UUID, newPassword string) error {
	user, err := s.userRepository.GetUserById(userId)
	if err != nil {
		return err
	}
	return s.setPassword(user, newPassword)
}

func (s *UserService) setPassword(user *repository.User, password string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	_, err = s.userRepository.Save(user)
	return err
}

func (s *UserService) DeleteUser(userId uuid.UUID) error {
	return s.userRepository.Delete(userId)
}

func (s *UserService) GetUserFromAuthHeader(c *gin.Context) (*repository.User, error) {
	authHeader := c.Request.Header.Get("Authorization")
	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return nil, fmt.Errorf("authorization header is invalid")
	}
	return s.GetUserFromToken(authHeader[7:])
}

func (s *UserService) GetUserFromToken(tokenString string) (*repository.User, error) {
	token, err := auth.ParseToken(tokenString)
	if err != nil {
		return nil, err
	}

	claims := &auth.Claims{}
	if token.Valid {
		if err := claims.FromJWTClaims(token.Claims); err != nil {
			return nil, err
		}
		if err := claims.Valid(); err != nil {
			return nil, err
		}
		return s.GetUserById(claims.UserId)
	}
	return nil, jwt.ErrInvalidKey
}
