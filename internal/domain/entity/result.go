package entity

import (
	"time"
)

// Result is the derived record written exactly once when an attempt is
// submitted. Leaderboards order by percentage DESC, time_taken ASC.
type Result struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ExamID       uint      `gorm:"not null;index;uniqueIndex:idx_result_exam_student" json:"exam_id"`
	StudentID    uint      `gorm:"not null;index;uniqueIndex:idx_result_exam_student" json:"student_id"`
	Score        int       `gorm:"not null;default:0" json:"score"`
	Percentage   float64   `gorm:"type:numeric(5,2);not null;default:0" json:"percentage"`
	TimeTakenSec int       `gorm:"not null;default:0" json:"time_taken"`
	EvaluatedAt  time.Time `gorm:"not null" json:"evaluated_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName sets the GORM table name.
func (Result) TableName() string {
	return "results"
}

// ResultWithStudent joins a result with the student's identity for examiner
// analytics and leaderboards.
type ResultWithStudent struct {
	Result
	StudentName  string `json:"student_name"`
	StudentEmail string `json:"student_email"`
}
