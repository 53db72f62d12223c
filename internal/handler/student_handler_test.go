package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStudentHandler_SubmitAnswer_ValidationErrors(t *testing.T) {
	handler := &StudentHandler{}

	tests := []struct {
		name string
		body interface{}
	}{
		{"empty body", nil},
		{"missing attempt", map[string]int{"question_id": 1, "selected_option": 2}},
		{"option too small", map[string]int{"attempt_id": 1, "question_id": 1, "selected_option": 0}},
		{"option too large", map[string]int{"attempt_id": 1, "question_id": 1, "selected_option": 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestGinContext(http.MethodPost, "/api/student/answers", tt.body)

			handler.SubmitAnswer(c)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}
