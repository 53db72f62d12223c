package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// OptionCount is the fixed number of options per question. Correct option
// indices are 1-based, so valid values are 1..OptionCount.
const OptionCount = 4

// StringArray is a custom type stored as JSONB.
type StringArray []string

// Scan implements sql.Scanner so GORM can read JSONB columns.
func (o *StringArray) Scan(value interface{}) error {
	if value == nil {
		*o = StringArray{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	if len(bytes) == 0 {
		*o = StringArray{}
		return nil
	}

	return json.Unmarshal(bytes, o)
}

// Value implements driver.Valuer so GORM can write JSONB columns.
func (o StringArray) Value() (driver.Value, error) {
	if len(o) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(o)
}

// Question represents one multiple-choice question of an exam. Position is
// the question's ordinal within the exam, unique per exam, starting at 1.
type Question struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	ExamID        uint        `gorm:"not null;index;uniqueIndex:idx_exam_position" json:"exam_id"`
	Text          string      `gorm:"size:1000;not null" json:"text"`
	Options       StringArray `gorm:"type:jsonb;not null" json:"options"`
	CorrectOption int         `gorm:"not null" json:"-"` // hidden from students in transit
	Position      int         `gorm:"not null;uniqueIndex:idx_exam_position" json:"position"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// TableName sets the GORM table name.
func (Question) TableName() string {
	return "questions"
}

// IsCorrect reports whether the selected option (1-based) is the right one.
func (q *Question) IsCorrect(selectedOption int) bool {
	return selectedOption == q.CorrectOption
}

// IsValidOption reports whether the selected option is within 1..OptionCount.
func (q *Question) IsValidOption(selectedOption int) bool {
	return selectedOption >= 1 && selectedOption <= OptionCount
}
