package repository

import (
	"time"

	"github.com/yourusername/exam-api/internal/domain/entity"
	"gorm.io/gorm"
)

// ExamRepository defines persistence operations for exams.
type ExamRepository interface {
	Create(tx *gorm.DB, exam *entity.Exam) error
	GetByID(id uint) (*entity.Exam, error)
	// GetByIDForExaminer returns the exam only when it is owned by the given
	// examiner; missing and not-owned both map to ErrNotFound.
	GetByIDForExaminer(id, examinerID uint) (*entity.Exam, error)
	GetWithQuestions(id uint) (*entity.Exam, error)
	ListByExaminer(examinerID uint) ([]entity.Exam, error)
	ListPublished() ([]entity.Exam, error)
	UpdateTitle(examID, examinerID uint, title string) (int64, error)
	Publish(examID, examinerID uint, publishedAt time.Time) (int64, error)
	// DeleteCascade removes the exam and everything hanging off it (answers,
	// results, attempts, questions) in one transaction.
	DeleteCascade(examID uint) error
}
