package entity

import (
	"time"
)

// Answer records a student's selected option for one question of an attempt.
// The (attempt, question) composite key makes re-answering an upsert: the
// last write wins. Answers become immutable once the attempt is submitted
// (enforced by the attempt service, not by the store).
type Answer struct {
	AttemptID      uint      `gorm:"primaryKey;autoIncrement:false" json:"attempt_id"`
	QuestionID     uint      `gorm:"primaryKey;autoIncrement:false" json:"question_id"`
	SelectedOption int       `gorm:"not null" json:"selected_option"`
	AnsweredAt     time.Time `gorm:"not null" json:"answered_at"`
}

// TableName sets the GORM table name.
func (Answer) TableName() string {
	return "answers"
}
