package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestion_IsCorrect(t *testing.T) {
	q := Question{CorrectOption: 3}

	assert.True(t, q.IsCorrect(3))
	assert.False(t, q.IsCorrect(1))
	assert.False(t, q.IsCorrect(0))
}

func TestQuestion_IsValidOption(t *testing.T) {
	q := Question{}

	assert.False(t, q.IsValidOption(0))
	assert.True(t, q.IsValidOption(1))
	assert.True(t, q.IsValidOption(4))
	assert.False(t, q.IsValidOption(5))
	assert.False(t, q.IsValidOption(-1))
}

func TestStringArray_ScanValue(t *testing.T) {
	t.Run("value marshals to JSON", func(t *testing.T) {
		arr := StringArray{"Paris", "London", "Berlin", "Madrid"}

		val, err := arr.Value()

		require.NoError(t, err)
		assert.JSONEq(t, `["Paris","London","Berlin","Madrid"]`, string(val.([]byte)))
	})

	t.Run("empty array yields empty JSON array", func(t *testing.T) {
		val, err := StringArray{}.Value()

		require.NoError(t, err)
		assert.Equal(t, "[]", string(val.([]byte)))
	})

	t.Run("scan restores the slice", func(t *testing.T) {
		var arr StringArray
		err := arr.Scan([]byte(`["A","B","C","D"]`))

		require.NoError(t, err)
		assert.Equal(t, StringArray{"A", "B", "C", "D"}, arr)
	})

	t.Run("scan of nil yields empty slice", func(t *testing.T) {
		var arr StringArray
		err := arr.Scan(nil)

		require.NoError(t, err)
		assert.Empty(t, arr)
	})

	t.Run("scan rejects non-bytes", func(t *testing.T) {
		var arr StringArray
		err := arr.Scan("not bytes")

		assert.Error(t, err)
	})
}
