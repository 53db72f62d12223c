package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/exam-api/internal/domain/entity"
	apperrors "github.com/yourusername/exam-api/internal/pkg/errors"
)

// ResultRepo implements repository.ResultRepository.
type ResultRepo struct {
	db *gorm.DB
}

// NewResultRepo creates a new result repository.
func NewResultRepo(db *gorm.DB) *ResultRepo {
	return &ResultRepo{db: db}
}

// Create inserts a result, inside tx when one is given.
func (r *ResultRepo) Create(tx *gorm.DB, result *entity.Result) error {
	db := r.db
	if tx != nil {
		db = tx
	}
	return db.Create(result).Error
}

// GetByExamAndStudent returns the student's result for an exam.
func (r *ResultRepo) GetByExamAndStudent(examID, studentID uint) (*entity.Result, error) {
	var result entity.Result
	err := r.db.Where("exam_id = ? AND student_id = ?", examID, studentID).
		First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &result, nil
}

// ListByStudent returns all results of a student, newest evaluation first.
func (r *ResultRepo) ListByStudent(studentID uint) ([]entity.Result, error) {
	var results []entity.Result
	err := r.db.Where("student_id = ?", studentID).
		Order("evaluated_at DESC").
		Find(&results).Error
	return results, err
}

// ListByExam returns all results of an exam joined with the student's
// identity, newest evaluation first.
func (r *ResultRepo) ListByExam(examID uint) ([]entity.ResultWithStudent, error) {
	var results []entity.ResultWithStudent
	err := r.db.Model(&entity.Result{}).
		Select("results.*, users.name AS student_name, users.email AS student_email").
		Joins("JOIN users ON users.id = results.student_id").
		Where("results.exam_id = ?", examID).
		Order("results.evaluated_at DESC").
		Scan(&results).Error
	return results, err
}

// Leaderboard returns the top results for an exam. The ordering is a total
// order: percentage DESC, then time_taken ASC as the tie-break.
func (r *ResultRepo) Leaderboard(examID uint, limit int) ([]entity.ResultWithStudent, error) {
	var results []entity.ResultWithStudent
	err := r.db.Model(&entity.Result{}).
		Select("results.*, users.name AS student_name, users.email AS student_email").
		Joins("JOIN users ON users.id = results.student_id").
		Where("results.exam_id = ?", examID).
		Order("results.percentage DESC, results.time_taken_sec ASC").
		Limit(limit).
		Scan(&results).Error
	return results, err
}
