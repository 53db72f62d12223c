package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yourusername/exam-api/internal/pkg/errors"
)

// Response is the envelope for every JSON reply.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func respondOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{Success: true, Data: data})
}

func respondMessage(c *gin.Context, status int, data interface{}, message string) {
	c.JSON(status, Response{Success: true, Data: data, Message: message})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, Response{Success: false, Message: message, Error: http.StatusText(status)})
}

// handleError maps service errors to HTTP status codes.
func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, apperrors.ErrUnauthorized):
		respondError(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, apperrors.ErrForbidden):
		respondError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, apperrors.ErrNotFound):
		respondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, apperrors.ErrConflict):
		respondError(c, http.StatusConflict, err.Error())
	case errors.Is(err, apperrors.ErrGenerationFailed):
		log.Printf("[Handler] generation failure: %v", err)
		respondError(c, http.StatusBadGateway, "question generation failed, please try again")
	default:
		log.Printf("[Handler] internal error: %v", err)
		respondError(c, http.StatusInternalServerError, "internal server error")
	}
}
