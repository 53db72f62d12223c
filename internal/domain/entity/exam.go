package entity

import (
	"time"
)

// Exam difficulty levels
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Exam represents an AI-generated multiple-choice exam owned by one examiner.
type Exam struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	ExaminerID      uint       `gorm:"not null;index" json:"examiner_id"`
	Title           string     `gorm:"size:200;not null" json:"title"`
	Topic           string     `gorm:"size:200;not null" json:"topic"`
	DifficultyLevel string     `gorm:"size:20;not null;default:'medium'" json:"difficulty_level"`
	DurationMin     int        `gorm:"not null" json:"duration"`
	TotalQuestions  int        `gorm:"not null;default:0" json:"total_questions"`
	IsPublished     bool       `gorm:"not null;default:false;index" json:"is_published"`
	PublishedAt     *time.Time `gorm:"type:timestamp" json:"published_at,omitempty"`
	Questions       []Question `gorm:"foreignKey:ExamID" json:"questions,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// TableName sets the GORM table name.
func (Exam) TableName() string {
	return "exams"
}

// IsOwnedBy reports whether the exam belongs to the given examiner.
func (e *Exam) IsOwnedBy(examinerID uint) bool {
	return e.ExaminerID == examinerID
}

// CanBeTaken reports whether students may start attempts on this exam.
func (e *Exam) CanBeTaken() bool {
	return e.IsPublished
}

// TimeBudget returns the attempt duration as a time.Duration.
func (e *Exam) TimeBudget() time.Duration {
	return time.Duration(e.DurationMin) * time.Minute
}

// IsValidDifficulty reports whether the given level is one of the known
// difficulty levels.
func IsValidDifficulty(level string) bool {
	switch level {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}
