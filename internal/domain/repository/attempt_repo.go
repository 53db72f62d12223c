package repository

import (
	"errors"

	"github.com/yourusername/exam-api/internal/domain/entity"
	"gorm.io/gorm"
)

// ErrAttemptExists is returned when the (exam, student) unique index rejects
// a second attempt row. Callers re-fetch the existing attempt instead.
var ErrAttemptExists = errors.New("attempt already exists for this exam and student")

// AttemptRepository defines persistence operations for exam attempts.
type AttemptRepository interface {
	Create(attempt *entity.Attempt) error
	GetByID(id uint) (*entity.Attempt, error)
	// GetActive returns the in-progress attempt for the pair, ErrNotFound
	// when there is none.
	GetActive(examID, studentID uint) (*entity.Attempt, error)
	GetByExamAndStudent(examID, studentID uint) (*entity.Attempt, error)
	ListInProgress() ([]entity.Attempt, error)
	// MarkSubmitted transitions in_progress → submitted within tx and
	// reports the number of rows affected (0 means already submitted).
	MarkSubmitted(tx *gorm.DB, attemptID uint, timeTakenSec int) (int64, error)
}
