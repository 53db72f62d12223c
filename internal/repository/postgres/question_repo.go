package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/exam-api/internal/domain/entity"
	apperrors "github.com/yourusername/exam-api/internal/pkg/errors"
)

// QuestionRepo implements repository.QuestionRepository.
type QuestionRepo struct {
	db *gorm.DB
}

// NewQuestionRepo creates a new question repository.
func NewQuestionRepo(db *gorm.DB) *QuestionRepo {
	return &QuestionRepo{db: db}
}

// CreateBatch inserts questions in one statement, inside tx when one is given.
func (r *QuestionRepo) CreateBatch(tx *gorm.DB, questions []entity.Question) error {
	db := r.db
	if tx != nil {
		db = tx
	}
	return db.Create(&questions).Error
}

// GetByID returns a question by ID.
func (r *QuestionRepo) GetByID(id uint) (*entity.Question, error) {
	var question entity.Question
	err := r.db.First(&question, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &question, nil
}

// GetByExamID returns the questions of an exam ordered by position.
func (r *QuestionRepo) GetByExamID(examID uint) ([]entity.Question, error) {
	var questions []entity.Question
	err := r.db.Where("exam_id = ?", examID).
		Order("position ASC").
		Find(&questions).Error
	return questions, err
}

// Update saves question changes.
func (r *QuestionRepo) Update(question *entity.Question) error {
	return r.db.Save(question).Error
}
