package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRole string

const (
	UserRoleAdmin    UserRole = "admin"
	UserRoleInternal UserRole = "internal"
)

type AccountStatus string

const (
	AccountStatusActive   AccountStatus = "active"
	AccountStatusInactive AccountStatus = "inactive"
)

type User struct {
	Id           uuid.UUID     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username     string        `gorm:"not null;uniqueIndex"`
	Email        string        `gorm:"not null;uniqueIndex"`
	PasswordHash string        `gorm:"not null"`
	FirstName    string        `gorm:"null"`
	LastName     string        `gorm:"null"`
	Department   string        `gorm:"null"`
	Role         UserRole      `gorm:"type:scms.user_role;not null;default:'internal'"`
	Status       AccountStatus `gorm:"type:scms.account_status;not null;default:'active'"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) GetUserById(userId uuid.UUID) (*User, error) {
	var user User
	result := r.DB.First(&user, "id = ?", userId)
	if result.Error != nil {
		return nil, result.Error
	}
	return &user, nil
}

// GetUserByLogin finds a user by username, falling back to email so that
// users can log in with either.
func (r *UserRepository) GetUserByLogin(login string) (*User, error) {
	var user User
	result := r.DB.First(&user, "username = ? OR email = ?", login, login)
	if result.Error != nil {
		return nil, result.Error
	}
	return &user, nil
}

func (r *UserRepository) GetUserByUsernameOrEmail(username string, email string) (*User, error) {
	var user User
	result := r.DB.First(&user, "username = ? OR email = ?", username, email)
	if result.Error != nil {
		return nil, result.Error
	}
	return &user, nil
}

func (r *UserRepository) Save(user *User) (*User, error) {
	result := r.DB.Save(user)
	if result.Error != nil {
		return nil, result.Error
	}
	return user, nil
}

func (r *UserRepository) FindAll() ([]*User, error) {
	users := make([]*User, 0)
	result := r.DB.Order("username").Find(&users)
	if result.Error != nil {
		return nil, result.Error
	}
	return users, nil
}

func (r *UserRepository) Delete(userId uuid.UUID) error {
	result := r.DB.Delete(&User{}, "id = ?", userId)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
