package dto

import (
	"time"

	"github.com/yourusername/exam-api/internal/domain/entity"
)

// ExamResponse is the examiner's view of an exam, including correct options
// when questions are attached.
type ExamResponse struct {
	ID              uint               `json:"id"`
	ExaminerID      uint               `json:"examiner_id"`
	Title           string             `json:"title"`
	Topic           string             `json:"topic"`
	DifficultyLevel string             `json:"difficulty_level"`
	Duration        int                `json:"duration"`
	TotalQuestions  int                `json:"total_questions"`
	IsPublished     bool               `json:"is_published"`
	PublishedAt     *time.Time         `json:"published_at,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	Questions       []QuestionResponse `json:"questions,omitempty"`
}

// QuestionResponse is the examiner's view of a question. The correct option
// is present here because this view never reaches students mid-attempt.
type QuestionResponse struct {
	ID            uint     `json:"id"`
	Position      int      `json:"position"`
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectOption int      `json:"correct_option"`
}

// NewExamResponse builds the examiner's view of an exam. Questions are
// included only when loaded and requested.
func NewExamResponse(exam *entity.Exam, includeQuestions bool) ExamResponse {
	resp := ExamResponse{
		ID:              exam.ID,
		ExaminerID:      exam.ExaminerID,
		Title:           exam.Title,
		Topic:           exam.Topic,
		DifficultyLevel: exam.DifficultyLevel,
		Duration:        exam.DurationMin,
		TotalQuestions:  exam.TotalQuestions,
		IsPublished:     exam.IsPublished,
		PublishedAt:     exam.PublishedAt,
		CreatedAt:       exam.CreatedAt,
	}

	if includeQuestions {
		resp.Questions = make([]QuestionResponse, 0, len(exam.Questions))
		for _, q := range exam.Questions {
			resp.Questions = append(resp.Questions, NewQuestionResponse(&q))
		}
	}

	return resp
}

// NewQuestionResponse builds the examiner's view of a question.
func NewQuestionResponse(q *entity.Question) QuestionResponse {
	return QuestionResponse{
		ID:            q.ID,
		Position:      q.Position,
		Text:          q.Text,
		Options:       q.Options,
		CorrectOption: q.CorrectOption,
	}
}

// NewExamListResponse builds the examiner's list view.
func NewExamListResponse(exams []entity.Exam) []ExamResponse {
	out := make([]ExamResponse, 0, len(exams))
	for i := range exams {
		out = append(out, NewExamResponse(&exams[i], false))
	}
	return out
}
