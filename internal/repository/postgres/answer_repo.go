package postgres

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yourusername/exam-api/internal/domain/entity"
)

// AnswerRepo implements repository.AnswerRepository.
type AnswerRepo struct {
	db *gorm.DB
}

// NewAnswerRepo creates a new answer repository.
func NewAnswerRepo(db *gorm.DB) *AnswerRepo {
	return &AnswerRepo{db: db}
}

// Upsert writes the answer keyed by (attempt, question). ON CONFLICT makes
// re-answering idempotent: the last selected option wins.
func (r *AnswerRepo) Upsert(answer *entity.Answer) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "attempt_id"}, {Name: "question_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"selected_option", "answered_at"}),
	}).Create(answer).Error
}

// GetByAttempt returns all answers recorded for an attempt.
func (r *AnswerRepo) GetByAttempt(attemptID uint) ([]entity.Answer, error) {
	var answers []entity.Answer
	err := r.db.Where("attempt_id = ?", attemptID).
		Order("question_id ASC").
		Find(&answers).Error
	return answers, err
}
