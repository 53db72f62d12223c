package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAttempt_StatusHelpers(t *testing.T) {
	inProgress := Attempt{Status: AttemptStatusInProgress}
	submitted := Attempt{Status: AttemptStatusSubmitted}

	assert.True(t, inProgress.IsInProgress())
	assert.False(t, inProgress.IsSubmitted())
	assert.True(t, submitted.IsSubmitted())
	assert.False(t, submitted.IsInProgress())
}

func TestAttempt_Deadline(t *testing.T) {
	started := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	a := Attempt{StartedAt: started}

	assert.Equal(t, started.Add(30*time.Minute), a.Deadline(30))
}

func TestAttempt_RemainingSeconds(t *testing.T) {
	started := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	a := Attempt{StartedAt: started}

	t.Run("mid attempt", func(t *testing.T) {
		now := started.Add(10 * time.Minute)
		assert.Equal(t, 20*60, a.RemainingSeconds(30, now))
	})

	t.Run("at the deadline", func(t *testing.T) {
		now := started.Add(30 * time.Minute)
		assert.Equal(t, 0, a.RemainingSeconds(30, now))
	})

	t.Run("past the deadline clamps to zero", func(t *testing.T) {
		now := started.Add(2 * time.Hour)
		assert.Equal(t, 0, a.RemainingSeconds(30, now))
	})
}

func TestExam_CanBeTaken(t *testing.T) {
	assert.False(t, (&Exam{}).CanBeTaken())
	assert.True(t, (&Exam{IsPublished: true}).CanBeTaken())
}

func TestIsValidDifficulty(t *testing.T) {
	assert.True(t, IsValidDifficulty(DifficultyEasy))
	assert.True(t, IsValidDifficulty(DifficultyMedium))
	assert.True(t, IsValidDifficulty(DifficultyHard))
	assert.False(t, IsValidDifficulty("extreme"))
	assert.False(t, IsValidDifficulty(""))
}
