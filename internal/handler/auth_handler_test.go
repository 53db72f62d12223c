package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Validation failures are rejected by the binding layer before any service
// call, so a zero-value handler is enough for these tests.

func TestAuthHandler_Register_ValidationErrors(t *testing.T) {
	handler := &AuthHandler{}

	tests := []struct {
		name string
		body interface{}
	}{
		{"empty body", nil},
		{"missing email", map[string]string{"name": "Alice", "password": "secret123", "role": "student"}},
		{"invalid email", map[string]string{"name": "Alice", "email": "nope", "password": "secret123", "role": "student"}},
		{"short password", map[string]string{"name": "Alice", "email": "a@b.c", "password": "123", "role": "student"}},
		{"bad role", map[string]string{"name": "Alice", "email": "a@b.c", "password": "secret123", "role": "admin"}},
		{"short name", map[string]string{"name": "A", "email": "a@b.c", "password": "secret123", "role": "student"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestGinContext(http.MethodPost, "/api/auth/register", tt.body)

			handler.Register(c)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := parseJSONResponse(t, w)
			assert.Equal(t, false, resp["success"])
		})
	}
}

func TestAuthHandler_Login_ValidationErrors(t *testing.T) {
	handler := &AuthHandler{}

	tests := []struct {
		name string
		body interface{}
	}{
		{"empty body", nil},
		{"missing password", map[string]string{"email": "a@b.c"}},
		{"invalid email", map[string]string{"email": "nope", "password": "secret123"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestGinContext(http.MethodPost, "/api/auth/login", tt.body)

			handler.Login(c)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}
