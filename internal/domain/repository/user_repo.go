package repository

import (
	"github.com/yourusername/exam-api/internal/domain/entity"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(user *entity.User) error
	GetByID(id uint) (*entity.User, error)
	GetByEmail(email string) (*entity.User, error)
	GetByVerificationToken(token string) (*entity.User, error)
	Update(user *entity.User) error
}
