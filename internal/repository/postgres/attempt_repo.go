package postgres

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/yourusername/exam-api/internal/domain/entity"
	"github.com/yourusername/exam-api/internal/domain/repository"
	apperrors "github.com/yourusername/exam-api/internal/pkg/errors"
)

// AttemptRepo implements repository.AttemptRepository.
type AttemptRepo struct {
	db *gorm.DB
}

// NewAttemptRepo creates a new attempt repository.
func NewAttemptRepo(db *gorm.DB) *AttemptRepo {
	return &AttemptRepo{db: db}
}

// Create inserts a new attempt. The idx_exam_student unique index guarantees
// at most one attempt per (exam, student); a 23505 violation maps to
// repository.ErrAttemptExists so callers can fall back to the existing row.
func (r *AttemptRepo) Create(attempt *entity.Attempt) error {
	if err := r.db.Create(attempt).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: exam #%d student #%d", repository.ErrAttemptExists, attempt.ExamID, attempt.StudentID)
		}
		return err
	}
	return nil
}

// isUniqueViolation checks for a Postgres unique violation (23505) from
// either the pgconn or the lib/pq driver.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}
	return false
}

// GetByID returns an attempt by ID.
func (r *AttemptRepo) GetByID(id uint) (*entity.Attempt, error) {
	var attempt entity.Attempt
	err := r.db.First(&attempt, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &attempt, nil
}

// GetActive returns the in-progress attempt for the pair, if any.
func (r *AttemptRepo) GetActive(examID, studentID uint) (*entity.Attempt, error) {
	var attempt entity.Attempt
	err := r.db.Where("exam_id = ? AND student_id = ? AND status = ?",
		examID, studentID, entity.AttemptStatusInProgress).
		First(&attempt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &attempt, nil
}

// GetByExamAndStudent returns the attempt for the pair regardless of status.
func (r *AttemptRepo) GetByExamAndStudent(examID, studentID uint) (*entity.Attempt, error) {
	var attempt entity.Attempt
	err := r.db.Where("exam_id = ? AND student_id = ?", examID, studentID).
		First(&attempt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &attempt, nil
}

// ListInProgress returns all attempts that have not been submitted yet.
// Used to rearm deadline watchers after a restart.
func (r *AttemptRepo) ListInProgress() ([]entity.Attempt, error) {
	var attempts []entity.Attempt
	err := r.db.Where("status = ?", entity.AttemptStatusInProgress).
		Find(&attempts).Error
	return attempts, err
}

// MarkSubmitted transitions in_progress → submitted within tx. RowsAffected 0
// means the attempt was already submitted (or does not exist): the status
// predicate makes the transition race-safe under concurrent submits.
func (r *AttemptRepo) MarkSubmitted(tx *gorm.DB, attemptID uint, timeTakenSec int) (int64, error) {
	db := r.db
	if tx != nil {
		db = tx
	}
	result := db.Model(&entity.Attempt{}).
		Where("id = ? AND status = ?", attemptID, entity.AttemptStatusInProgress).
		Updates(map[string]interface{}{
			"status":         entity.AttemptStatusSubmitted,
			"time_taken_sec": timeTakenSec,
		})
	return result.RowsAffected, result.Error
}
