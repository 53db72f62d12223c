package repository

import (
	"github.com/yourusername/exam-api/internal/domain/entity"
	"gorm.io/gorm"
)

// ResultRepository defines persistence operations for derived results.
type ResultRepository interface {
	Create(tx *gorm.DB, result *entity.Result) error
	GetByExamAndStudent(examID, studentID uint) (*entity.Result, error)
	ListByStudent(studentID uint) ([]entity.Result, error)
	// ListByExam returns all results joined with student identity, newest
	// evaluation first.
	ListByExam(examID uint) ([]entity.ResultWithStudent, error)
	// Leaderboard returns the top results ordered by percentage DESC,
	// time_taken ASC.
	Leaderboard(examID uint, limit int) ([]entity.ResultWithStudent, error)
}
