package repository

import (
	"github.com/yourusername/exam-api/internal/domain/entity"
	"gorm.io/gorm"
)

// QuestionRepository defines persistence operations for exam questions.
type QuestionRepository interface {
	CreateBatch(tx *gorm.DB, questions []entity.Question) error
	GetByID(id uint) (*entity.Question, error)
	GetByExamID(examID uint) ([]entity.Question, error)
	Update(question *entity.Question) error
}
