package repository

import (
	"github.com/yourusername/exam-api/internal/domain/entity"
)

// AnswerRepository defines persistence operations for per-question answers.
type AnswerRepository interface {
	// Upsert writes the answer keyed by (attempt, question); re-answering
	// the same question overwrites the earlier choice.
	Upsert(answer *entity.Answer) error
	GetByAttempt(attemptID uint) ([]entity.Answer, error)
}
