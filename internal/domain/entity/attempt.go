package entity

import (
	"time"
)

// Attempt statuses. An attempt moves in_progress → submitted and never back.
const (
	AttemptStatusInProgress = "in_progress"
	AttemptStatusSubmitted  = "submitted"
)

// Attempt represents a student's timed run of an exam. At most one attempt
// exists per (exam, student) pair; the unique index backs idempotent starts.
type Attempt struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ExamID       uint      `gorm:"not null;index;uniqueIndex:idx_exam_student" json:"exam_id"`
	StudentID    uint      `gorm:"not null;index;uniqueIndex:idx_exam_student" json:"student_id"`
	StartedAt    time.Time `gorm:"not null" json:"started_at"`
	Status       string    `gorm:"size:20;not null;default:'in_progress';index" json:"status"`
	TimeTakenSec int       `gorm:"not null;default:0" json:"time_taken"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName sets the GORM table name.
func (Attempt) TableName() string {
	return "attempts"
}

// IsInProgress reports whether answers may still be recorded.
func (a *Attempt) IsInProgress() bool {
	return a.Status == AttemptStatusInProgress
}

// IsSubmitted reports whether the attempt reached its terminal state.
func (a *Attempt) IsSubmitted() bool {
	return a.Status == AttemptStatusSubmitted
}

// Deadline returns the instant at which the attempt's time budget runs out.
func (a *Attempt) Deadline(durationMin int) time.Time {
	return a.StartedAt.Add(time.Duration(durationMin) * time.Minute)
}

// RemainingSeconds returns the seconds left of the time budget at the given
// instant, clamped at zero.
func (a *Attempt) RemainingSeconds(durationMin int, now time.Time) int {
	remaining := a.Deadline(durationMin).Sub(now)
	if remaining < 0 {
		return 0
	}
	return int(remaining.Seconds())
}
