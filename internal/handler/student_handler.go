package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/exam-api/internal/handler/dto"
	"github.com/yourusername/exam-api/internal/service"
)

// StudentHandler serves the attempt lifecycle for students.
type StudentHandler struct {
	attemptService *service.AttemptService
}

// NewStudentHandler creates a new student handler.
func NewStudentHandler(attemptService *service.AttemptService) *StudentHandler {
	return &StudentHandler{attemptService: attemptService}
}

// GetAvailableExams handles GET /student/exams.
func (h *StudentHandler) GetAvailableExams(c *gin.Context) {
	exams, err := h.attemptService.GetAvailableExams()
	if err != nil {
		handleError(c, err)
		return
	}

	respondOK(c, http.StatusOK, dto.NewExamListResponse(exams))
}

// StartExam handles POST /student/exams/:examId/start. Starting twice
// returns the same in-progress attempt.
func (h *StudentHandler) StartExam(c *gin.Context) {
	examID := c.MustGet("examID").(uint)
	studentID := c.MustGet("user_id").(uint)

	active, err := h.attemptService.StartExam(examID, studentID)
	if err != nil {
		handleError(c, err)
		return
	}

	respondOK(c, http.StatusOK, active)
}

// GetActiveAttempt handles GET /student/exams/:examId/active.
func (h *StudentHandler) GetActiveAttempt(c *gin.Context) {
	examID := c.MustGet("examID").(uint)
	studentID := c.MustGet("user_id").(uint)

	active, err := h.attemptService.GetActiveAttempt(examID, studentID)
	if err != nil {
		handleError(c, err)
		return
	}

	respondOK(c, http.StatusOK, active)
}

// SubmitAnswerRequest is the body of POST /student/answers.
type SubmitAnswerRequest struct {
	AttemptID      uint `json:"attempt_id" binding:"required"`
	QuestionID     uint `json:"question_id" binding:"required"`
	SelectedOption int  `json:"selected_option" binding:"required,min=1,max=4"`
}

// SubmitAnswer handles POST /student/answers. Re-answering a question
// overwrites the earlier choice.
func (h *StudentHandler) SubmitAnswer(c *gin.Context) {
	var req SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	studentID := c.MustGet("user_id").(uint)

	if err := h.attemptService.SubmitAnswer(studentID, req.AttemptID, req.QuestionID, req.SelectedOption); err != nil {
		handleError(c, err)
		return
	}

	respondMessage(c, http.StatusOK, nil, "answer recorded")
}

// GetRemainingTime handles GET /student/attempts/:attemptId/time.
func (h *StudentHandler) GetRemainingTime(c *gin.Context) {
	attemptID := c.MustGet("attemptID").(uint)
	studentID := c.MustGet("user_id").(uint)

	remaining, err := h.attemptService.GetRemainingTime(studentID, attemptID)
	if err != nil {
		handleError(c, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{"remaining_seconds": remaining})
}

// SubmitExam handles POST /student/attempts/:attemptId/submit.
func (h *StudentHandler) SubmitExam(c *gin.Context) {
	attemptID := c.MustGet("attemptID").(uint)
	studentID := c.MustGet("user_id").(uint)

	result, err := h.attemptService.SubmitExam(studentID, attemptID)
	if err != nil {
		handleError(c, err)
		return
	}

	respondMessage(c, http.StatusOK, result, "exam submitted")
}

// GetReview handles GET /student/attempts/:attemptId/review.
func (h *StudentHandler) GetReview(c *gin.Context) {
	attemptID := c.MustGet("attemptID").(uint)
	studentID := c.MustGet("user_id").(uint)

	review, err := h.attemptService.GetReview(studentID, attemptID)
	if err != nil {
		handleError(c, err)
		return
	}

	respondOK(c, http.StatusOK, review)
}

// GetMyResults handles GET /student/results.
func (h *StudentHandler) GetMyResults(c *gin.Context) {
	studentID := c.MustGet("user_id").(uint)

	results, err := h.attemptService.GetMyResults(studentID)
	if err != nil {
		handleError(c, err)
		return
	}

	respondOK(c, http.StatusOK, results)
}

// GetExamResult handles GET /student/exams/:examId/result.
func (h *StudentHandler) GetExamResult(c *gin.Context) {
	examID := c.MustGet("examID").(uint)
	studentID := c.MustGet("user_id").(uint)

	result, err := h.attemptService.GetExamResult(examID, studentID)
	if err != nil {
		handleError(c, err)
		return
	}

	respondOK(c, http.StatusOK, result)
}
