package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/yourusername/exam-api/internal/domain/entity"
	apperrors "github.com/yourusername/exam-api/internal/pkg/errors"
)

// ExamRepo implements repository.ExamRepository.
type ExamRepo struct {
	db *gorm.DB
}

// NewExamRepo creates a new exam repository.
func NewExamRepo(db *gorm.DB) *ExamRepo {
	return &ExamRepo{db: db}
}

// Create inserts a new exam, inside tx when one is given.
func (r *ExamRepo) Create(tx *gorm.DB, exam *entity.Exam) error {
	db := r.db
	if tx != nil {
		db = tx
	}
	return db.Create(exam).Error
}

// GetByID returns an exam by ID.
func (r *ExamRepo) GetByID(id uint) (*entity.Exam, error) {
	var exam entity.Exam
	err := r.db.First(&exam, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &exam, nil
}

// GetByIDForExaminer returns the exam only when the given examiner owns it.
// Missing and not-owned are both ErrNotFound so existence is not leaked.
func (r *ExamRepo) GetByIDForExaminer(id, examinerID uint) (*entity.Exam, error) {
	var exam entity.Exam
	err := r.db.Where("id = ? AND examiner_id = ?", id, examinerID).First(&exam).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &exam, nil
}

// GetWithQuestions returns an exam with its questions ordered by position.
func (r *ExamRepo) GetWithQuestions(id uint) (*entity.Exam, error) {
	var exam entity.Exam
	err := r.db.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).First(&exam, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &exam, nil
}

// ListByExaminer returns all exams of an examiner, newest first.
func (r *ExamRepo) ListByExaminer(examinerID uint) ([]entity.Exam, error) {
	var exams []entity.Exam
	err := r.db.Where("examiner_id = ?", examinerID).
		Order("created_at DESC").
		Find(&exams).Error
	return exams, err
}

// ListPublished returns all published exams, newest publication first.
func (r *ExamRepo) ListPublished() ([]entity.Exam, error) {
	var exams []entity.Exam
	err := r.db.Where("is_published = true").
		Order("published_at DESC").
		Find(&exams).Error
	return exams, err
}

// UpdateTitle updates the title of an examiner-owned exam and reports the
// rows affected (0 when the exam is missing or owned by someone else).
func (r *ExamRepo) UpdateTitle(examID, examinerID uint, title string) (int64, error) {
	result := r.db.Model(&entity.Exam{}).
		Where("id = ? AND examiner_id = ?", examID, examinerID).
		Update("title", title)
	return result.RowsAffected, result.Error
}

// Publish flags an examiner-owned exam as published and stamps the time.
func (r *ExamRepo) Publish(examID, examinerID uint, publishedAt time.Time) (int64, error) {
	result := r.db.Model(&entity.Exam{}).
		Where("id = ? AND examiner_id = ?", examID, examinerID).
		Updates(map[string]interface{}{
			"is_published": true,
			"published_at": publishedAt,
		})
	return result.RowsAffected, result.Error
}

// DeleteCascade removes the exam together with its answers, results,
// attempts and questions in one transaction.
func (r *ExamRepo) DeleteCascade(examID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("attempt_id IN (?)",
			tx.Model(&entity.Attempt{}).Select("id").Where("exam_id = ?", examID),
		).Delete(&entity.Answer{}).Error; err != nil {
			return err
		}
		if err := tx.Where("exam_id = ?", examID).Delete(&entity.Result{}).Error; err != nil {
			return err
		}
		if err := tx.Where("exam_id = ?", examID).Delete(&entity.Attempt{}).Error; err != nil {
			return err
		}
		if err := tx.Where("exam_id = ?", examID).Delete(&entity.Question{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.Exam{}, examID).Error
	})
}
