package handler

import (
	"encoding/csv"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/yourusername/exam-api/internal/domain/entity"
	"github.com/yourusername/exam-api/internal/handler/dto"
	"github.com/yourusername/exam-api/internal/service"
)

// ExaminerHandler serves exam authoring and analytics for examiners.
type ExaminerHandler struct {
	examService *service.ExamService
}

// NewExaminerHandler creates a new examiner handler.
func NewExaminerHandler(examService *service.ExamService) *ExaminerHandler {
	return &ExaminerHandler{examService: examService}
}

// CreateExamRequest is the body of POST /examiner/exams.
type CreateExamRequest struct {
	Title          string `json:"title" binding:"required,min=3,max=200"`
	Topic          string `json:"topic" binding:"required,min=2,max=200"`
	Difficulty     string `json:"difficulty" binding:"required,oneof=easy medium hard"`
	TotalQuestions int    `json:"total_questions" binding:"required,min=1,max=50"`
	Duration       int    `json:"duration" binding:"required,min=1,max=480"`
}

// CreateExam handles POST /examiner/exams.
func (h *ExaminerHandler) CreateExam(c *gin.Context) {
	var req CreateExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	examinerID := c.MustGet("user_id").(uint)

	exam, err := h.examService.CreateExam(c.Request.Context(), examinerID, req.Title, req.Topic, req.Difficulty, req.TotalQuestions, req.Duration)
	if err != nil {
		handleError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, dto.NewExamResponse(exam, true))
}

// GetMyExams handles GET /examiner/exams.
func (h *ExaminerHandler) GetMyExams(c *gin.Context) {
	examinerID := c.MustGet("user_id").(uint)

	exams, err := h.examService.GetMyExams(examinerID)
	if err != nil {
		handleError(c, err)
		return
	}

	respondOK(c, http.StatusOK, dto.NewExamListResponse(exams))
}

// GetExamPreview handles GET /examiner/exams/:examId/preview.
func (h *ExaminerHandler) GetExamPreview(c *gin.Context) {
	examID := c.MustGet("examID").(uint)
	examinerID := c.MustGet("user_id").(uint)

	exam, err := h.examService.GetExamPreview(examID, examinerID)
	if err != nil {
		handleError(c, err)
		return
	}

	respondOK(c, http.StatusOK, dto.NewExamResponse(exam, true))
}

// UpdateTitleRequest is the body of PUT /examiner/exams/:examId/title.
type UpdateTitleRequest struct {
	Title string `json:"title" binding:"required"`
}

// UpdateExamTitle handles PUT /examiner/exams/:examId/title.
func (h *ExaminerHandler) UpdateExamTitle(c *gin.Context) {
	var req UpdateTitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	examID := c.MustGet("examID").(uint)
	examinerID := c.MustGet("user_id").(uint)

	if err := h.examService.UpdateExamTitle(examID, examinerID, req.Title); err != nil {
		handleError(c, err)
		return
	}

	respondMessage(c, http.StatusOK, nil, "title updated")
}

// PublishExam handles POST /examiner/exams/:examId/publish.
func (h *ExaminerHandler) PublishExam(c *gin.Context) {
	examID := c.MustGet("examID").(uint)
	examinerID := c.MustGet("user_id").(uint)

	if err := h.examService.PublishExam(examID, examinerID); err != nil {
		handleError(c, err)
		return
	}

	respondMessage(c, http.StatusOK, nil, "exam published")
}

// DeleteExam handles DELETE /examiner/exams/:examId.
func (h *ExaminerHandler) DeleteExam(c *gin.Context) {
	examID := c.MustGet("examID").(uint)
	examinerID := c.MustGet("user_id").(uint)

	if err := h.examService.DeleteExam(examID, examinerID); err != nil {
		handleError(c, err)
		return
	}

	respondMessage(c, http.StatusOK, nil, "exam deleted")
}

// UpdateQuestionRequest is the body of PUT /examiner/questions/:questionId.
type UpdateQuestionRequest struct {
	Text          string   `json:"text" binding:"required,min=3,max=1000"`
	Options       []string `json:"options" binding:"required,len=4"`
	CorrectOption int      `json:"correct_option" binding:"required,min=1,max=4"`
}

// UpdateQuestion handles PUT /examiner/questions/:questionId.
func (h *ExaminerHandler) UpdateQuestion(c *gin.Context) {
	var req UpdateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	questionID := c.MustGet("questionID").(uint)
	examinerID := c.MustGet("user_id").(uint)

	question, err := h.examService.UpdateQuestion(questionID, examinerID, req.Text, req.Options, req.CorrectOption)
	if err != nil {
		handleError(c, err)
		return
	}

	respondOK(c, http.StatusOK, dto.NewQuestionResponse(question))
}

// GetExamAnalytics handles GET /examiner/exams/:examId/analytics.
func (h *ExaminerHandler) GetExamAnalytics(c *gin.Context) {
	examID := c.MustGet("examID").(uint)
	examinerID := c.MustGet("user_id").(uint)

	analytics, err := h.examService.GetExamAnalytics(examID, examinerID)
	if err != nil {
		handleError(c, err)
		return
	}

	respondOK(c, http.StatusOK, analytics)
}

// GetExamLeaderboard handles GET /examiner/exams/:examId/leaderboard.
func (h *ExaminerHandler) GetExamLeaderboard(c *gin.Context) {
	examID := c.MustGet("examID").(uint)
	examinerID := c.MustGet("user_id").(uint)

	leaderboard, err := h.examService.GetExamLeaderboard(examID, examinerID)
	if err != nil {
		handleError(c, err)
		return
	}

	respondOK(c, http.StatusOK, leaderboard)
}

// ExportExamResults handles GET /examiner/exams/:examId/results/export?format=csv|xlsx.
func (h *ExaminerHandler) ExportExamResults(c *gin.Context) {
	examID := c.MustGet("examID").(uint)
	examinerID := c.MustGet("user_id").(uint)
	format := c.DefaultQuery("format", "csv")

	exam, results, err := h.examService.ExportExamResults(examID, examinerID)
	if err != nil {
		handleError(c, err)
		return
	}

	filename := fmt.Sprintf("exam_%d_results_%s", examID, time.Now().Format("2006-01-02"))

	switch format {
	case "xlsx":
		h.exportXLSX(c, exam, results, filename)
	default:
		h.exportCSV(c, exam, results, filename)
	}
}

var exportHeaders = []string{"Rank", "Student", "Email", "Score", "Total Questions", "Percentage", "Time Taken (s)", "Evaluated At"}

func (h *ExaminerHandler) exportCSV(c *gin.Context, exam *entity.Exam, results []entity.ResultWithStudent, filename string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", filename))

	// BOM so Excel detects UTF-8
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write(exportHeaders)

	for i, r := range results {
		writer.Write([]string{
			strconv.Itoa(i + 1),
			sanitizeForExcel(r.StudentName),
			sanitizeForExcel(r.StudentEmail),
			strconv.Itoa(r.Score),
			strconv.Itoa(exam.TotalQuestions),
			fmt.Sprintf("%.2f", r.Percentage),
			strconv.Itoa(r.TimeTakenSec),
			r.EvaluatedAt.Format(time.RFC3339),
		})
	}
}

func (h *ExaminerHandler) exportXLSX(c *gin.Context, exam *entity.Exam, results []entity.ResultWithStudent, filename string) {
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Results"
	f.SetSheetName("Sheet1", sheetName)

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		log.Printf("[ExaminerHandler] failed to create stream writer: %v", err)
		respondError(c, http.StatusInternalServerError, "failed to create Excel file")
		return
	}

	headers := make([]interface{}, len(exportHeaders))
	for i, hdr := range exportHeaders {
		headers[i] = hdr
	}
	if err := sw.SetRow("A1", headers); err != nil {
		log.Printf("[ExaminerHandler] failed to write headers: %v", err)
	}

	for i, r := range results {
		cell := fmt.Sprintf("A%d", i+2)
		row := []interface{}{
			i + 1,
			sanitizeForExcel(r.StudentName),
			sanitizeForExcel(r.StudentEmail),
			r.Score,
			exam.TotalQuestions,
			r.Percentage,
			r.TimeTakenSec,
			r.EvaluatedAt.Format(time.RFC3339),
		}
		if err := sw.SetRow(cell, row); err != nil {
			log.Printf("[ExaminerHandler] failed to write row %d: %v", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		log.Printf("[ExaminerHandler] stream writer flush failed: %v", err)
	}

	if err := f.Write(c.Writer); err != nil {
		log.Printf("[ExaminerHandler] failed to write Excel response: %v", err)
	}
}

// sanitizeForExcel guards exported cells against formula injection.
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	if s[0] == '=' || s[0] == '+' || s[0] == '-' || s[0] == '@' || s[0] == '\t' || s[0] == '\r' {
		return "'" + s
	}
	return s
}
