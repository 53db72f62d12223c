package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/yourusername/exam-api/internal/domain/entity"
	"github.com/yourusername/exam-api/internal/domain/repository"
	apperrors "github.com/yourusername/exam-api/internal/pkg/errors"
)

const (
	maxQuestionsPerExam = 50
	leaderboardSize     = 10
	leaderboardCacheTTL = 30 * time.Second
)

func leaderboardCacheKey(examID uint) string {
	return fmt.Sprintf("leaderboard:exam:%d", examID)
}

// ExamAnalytics aggregates results of one exam for its examiner.
type ExamAnalytics struct {
	Exam           *entity.Exam               `json:"exam"`
	TotalAttempts  int                        `json:"total_attempts"`
	MeanScore      float64                    `json:"mean_score"`
	MeanPercentage float64                    `json:"mean_percentage"`
	Results        []entity.ResultWithStudent `json:"results"`
}

// ExamService covers exam authoring: generation, preview, publishing,
// deletion and examiner analytics.
type ExamService struct {
	examRepo     repository.ExamRepository
	questionRepo repository.QuestionRepository
	resultRepo   repository.ResultRepository
	cacheRepo    repository.CacheRepository
	generator    QuestionGenerator
	db           *gorm.DB
}

// NewExamService creates a new exam service.
func NewExamService(
	examRepo repository.ExamRepository,
	questionRepo repository.QuestionRepository,
	resultRepo repository.ResultRepository,
	cacheRepo repository.CacheRepository,
	generator QuestionGenerator,
	db *gorm.DB,
) *ExamService {
	return &ExamService{
		examRepo:     examRepo,
		questionRepo: questionRepo,
		resultRepo:   resultRepo,
		cacheRepo:    cacheRepo,
		generator:    generator,
		db:           db,
	}
}

// CreateExam generates questions for the topic and persists the exam with
// its questions in one transaction. Nothing is written when generation or
// validation fails, so no exam ever exists without its questions.
func (s *ExamService) CreateExam(ctx context.Context, examinerID uint, title, topic, difficulty string, totalQuestions, durationMin int) (*entity.Exam, error) {
	title = strings.TrimSpace(title)
	topic = strings.TrimSpace(topic)

	if title == "" {
		return nil, fmt.Errorf("%w: title is required", apperrors.ErrValidation)
	}
	if topic == "" {
		return nil, fmt.Errorf("%w: topic is required", apperrors.ErrValidation)
	}
	if !entity.IsValidDifficulty(difficulty) {
		return nil, fmt.Errorf("%w: difficulty must be easy, medium or hard", apperrors.ErrValidation)
	}
	if totalQuestions < 1 || totalQuestions > maxQuestionsPerExam {
		return nil, fmt.Errorf("%w: total questions must be between 1 and %d", apperrors.ErrValidation, maxQuestionsPerExam)
	}
	if durationMin < 1 {
		return nil, fmt.Errorf("%w: duration must be at least 1 minute", apperrors.ErrValidation)
	}

	generated, err := s.generator.Generate(ctx, topic, difficulty, totalQuestions)
	if err != nil {
		return nil, err
	}

	exam := &entity.Exam{
		ExaminerID:      examinerID,
		Title:           title,
		Topic:           topic,
		DifficultyLevel: difficulty,
		DurationMin:     durationMin,
		TotalQuestions:  totalQuestions,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.examRepo.Create(tx, exam); err != nil {
			return err
		}
		return s.questionRepo.CreateBatch(tx, questionsFromGenerated(exam.ID, generated))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create exam: %w", err)
	}

	log.Printf("[ExamService] exam #%d created by examiner #%d (%d questions, topic=%q)", exam.ID, examinerID, totalQuestions, topic)
	return s.examRepo.GetWithQuestions(exam.ID)
}

// questionsFromGenerated turns generator output into question rows with
// positions 1..n.
func questionsFromGenerated(examID uint, generated []GeneratedQuestion) []entity.Question {
	questions := make([]entity.Question, 0, len(generated))
	for i, g := range generated {
		questions = append(questions, entity.Question{
			ExamID:        examID,
			Text:          g.Text,
			Options:       entity.StringArray(g.Options),
			CorrectOption: g.CorrectOption,
			Position:      i + 1,
		})
	}
	return questions
}

// GetExamPreview returns the exam with its questions, correct options
// included. Missing and not-owned exams are both reported as not found.
func (s *ExamService) GetExamPreview(examID, examinerID uint) (*entity.Exam, error) {
	if _, err := s.examRepo.GetByIDForExaminer(examID, examinerID); err != nil {
		return nil, err
	}
	return s.examRepo.GetWithQuestions(examID)
}

// GetMyExams lists the examiner's exams, newest first.
func (s *ExamService) GetMyExams(examinerID uint) ([]entity.Exam, error) {
	return s.examRepo.ListByExaminer(examinerID)
}

// UpdateExamTitle renames an exam. Blank titles are rejected.
func (s *ExamService) UpdateExamTitle(examID, examinerID uint, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("%w: title must not be blank", apperrors.ErrValidation)
	}

	rows, err := s.examRepo.UpdateTitle(examID, examinerID, title)
	if err != nil {
		return fmt.Errorf("failed to update title: %w", err)
	}
	if rows == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// PublishExam opens the exam to students. Publishing an already published
// exam just refreshes published_at.
func (s *ExamService) PublishExam(examID, examinerID uint) error {
	rows, err := s.examRepo.Publish(examID, examinerID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to publish exam: %w", err)
	}
	if rows == 0 {
		return apperrors.ErrNotFound
	}

	log.Printf("[ExamService] exam #%d published by examiner #%d", examID, examinerID)
	return nil
}

// DeleteExam removes the exam with all attempts, answers and results.
func (s *ExamService) DeleteExam(examID, examinerID uint) error {
	if _, err := s.examRepo.GetByIDForExaminer(examID, examinerID); err != nil {
		return err
	}

	if err := s.examRepo.DeleteCascade(examID); err != nil {
		return fmt.Errorf("failed to delete exam: %w", err)
	}

	if err := s.cacheRepo.Delete(leaderboardCacheKey(examID)); err != nil {
		log.Printf("[ExamService] failed to drop leaderboard cache for exam #%d: %v", examID, err)
	}

	log.Printf("[ExamService] exam #%d deleted by examiner #%d", examID, examinerID)
	return nil
}

// UpdateQuestion edits one question of an exam the examiner owns. A missing
// question is not found; a question of someone else's exam is forbidden.
func (s *ExamService) UpdateQuestion(questionID, examinerID uint, text string, options []string, correctOption int) (*entity.Question, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: question text is required", apperrors.ErrValidation)
	}
	if len(options) != entity.OptionCount {
		return nil, fmt.Errorf("%w: exactly %d options are required", apperrors.ErrValidation, entity.OptionCount)
	}
	for i, opt := range options {
		if strings.TrimSpace(opt) == "" {
			return nil, fmt.Errorf("%w: option %d must not be blank", apperrors.ErrValidation, i+1)
		}
	}
	if correctOption < 1 || correctOption > entity.OptionCount {
		return nil, fmt.Errorf("%w: correct option must be between 1 and %d", apperrors.ErrValidation, entity.OptionCount)
	}

	question, err := s.questionRepo.GetByID(questionID)
	if err != nil {
		return nil, err
	}

	exam, err := s.examRepo.GetByID(question.ExamID)
	if err != nil {
		return nil, err
	}
	if !exam.IsOwnedBy(examinerID) {
		return nil, fmt.Errorf("%w: exam belongs to another examiner", apperrors.ErrForbidden)
	}

	question.Text = text
	question.Options = entity.StringArray(options)
	question.CorrectOption = correctOption
	if err := s.questionRepo.Update(question); err != nil {
		return nil, fmt.Errorf("failed to update question: %w", err)
	}

	return question, nil
}

// GetExamAnalytics returns the exam's results with mean score and mean
// percentage. Means are zero when nobody has submitted yet.
func (s *ExamService) GetExamAnalytics(examID, examinerID uint) (*ExamAnalytics, error) {
	exam, err := s.examRepo.GetByIDForExaminer(examID, examinerID)
	if err != nil {
		return nil, err
	}

	results, err := s.resultRepo.ListByExam(examID)
	if err != nil {
		return nil, fmt.Errorf("failed to load results: %w", err)
	}

	analytics := &ExamAnalytics{
		Exam:          exam,
		TotalAttempts: len(results),
		Results:       results,
	}

	if len(results) > 0 {
		var scoreSum, pctSum float64
		for _, r := range results {
			scoreSum += float64(r.Score)
			pctSum += r.Percentage
		}
		analytics.MeanScore = scoreSum / float64(len(results))
		analytics.MeanPercentage = pctSum / float64(len(results))
	}

	return analytics, nil
}

// GetExamLeaderboard returns the exam's top results, served from cache when
// fresh.
func (s *ExamService) GetExamLeaderboard(examID, examinerID uint) ([]entity.ResultWithStudent, error) {
	if _, err := s.examRepo.GetByIDForExaminer(examID, examinerID); err != nil {
		return nil, err
	}

	key := leaderboardCacheKey(examID)
	var cached []entity.ResultWithStudent
	if err := s.cacheRepo.GetJSON(key, &cached); err == nil {
		return cached, nil
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		log.Printf("[ExamService] leaderboard cache read failed for exam #%d: %v", examID, err)
	}

	leaderboard, err := s.resultRepo.Leaderboard(examID, leaderboardSize)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}

	if err := s.cacheRepo.SetJSON(key, leaderboard, leaderboardCacheTTL); err != nil {
		log.Printf("[ExamService] leaderboard cache write failed for exam #%d: %v", examID, err)
	}

	return leaderboard, nil
}

// ExportExamResults returns the exam and its results for CSV/XLSX export.
func (s *ExamService) ExportExamResults(examID, examinerID uint) (*entity.Exam, []entity.ResultWithStudent, error) {
	exam, err := s.examRepo.GetByIDForExaminer(examID, examinerID)
	if err != nil {
		return nil, nil, err
	}

	results, err := s.resultRepo.ListByExam(examID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load results: %w", err)
	}

	return exam, results, nil
}
