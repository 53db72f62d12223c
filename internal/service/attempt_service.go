package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/yourusername/exam-api/internal/domain/entity"
	"github.com/yourusername/exam-api/internal/domain/repository"
	apperrors "github.com/yourusername/exam-api/internal/pkg/errors"
)

// ActiveAttempt bundles an in-progress attempt with everything a student
// needs to keep taking the exam.
type ActiveAttempt struct {
	Attempt          *entity.Attempt   `json:"attempt"`
	Exam             *entity.Exam      `json:"exam"`
	Questions        []entity.Question `json:"questions"`
	Answers          []entity.Answer   `json:"answers"`
	RemainingSeconds int               `json:"remaining_seconds"`
}

// ReviewItem is one question of a submitted attempt with the student's
// choice and the right answer side by side.
type ReviewItem struct {
	QuestionID     uint               `json:"question_id"`
	Position       int                `json:"position"`
	Text           string             `json:"text"`
	Options        entity.StringArray `json:"options"`
	SelectedOption int                `json:"selected_option"`
	CorrectOption  int                `json:"correct_option"`
	IsCorrect      bool               `json:"is_correct"`
}

// AttemptReview is the full post-submission review of an attempt.
type AttemptReview struct {
	Attempt *entity.Attempt `json:"attempt"`
	Exam    *entity.Exam    `json:"exam"`
	Result  *entity.Result  `json:"result"`
	Items   []ReviewItem    `json:"items"`
}

// AttemptService drives the attempt lifecycle: start, answer, submit,
// review. An attempt moves in_progress → submitted exactly once; the
// deadline watcher submits on the student's behalf when time runs out.
type AttemptService struct {
	attemptRepo  repository.AttemptRepository
	answerRepo   repository.AnswerRepository
	examRepo     repository.ExamRepository
	questionRepo repository.QuestionRepository
	resultRepo   repository.ResultRepository
	cacheRepo    repository.CacheRepository
	watcher      *DeadlineWatcher
	db           *gorm.DB
	rootCtx      context.Context
}

// NewAttemptService creates the attempt service and attaches itself as the
// watcher's expiry handler.
func NewAttemptService(
	attemptRepo repository.AttemptRepository,
	answerRepo repository.AnswerRepository,
	examRepo repository.ExamRepository,
	questionRepo repository.QuestionRepository,
	resultRepo repository.ResultRepository,
	cacheRepo repository.CacheRepository,
	watcher *DeadlineWatcher,
	db *gorm.DB,
	rootCtx context.Context,
) *AttemptService {
	s := &AttemptService{
		attemptRepo:  attemptRepo,
		answerRepo:   answerRepo,
		examRepo:     examRepo,
		questionRepo: questionRepo,
		resultRepo:   resultRepo,
		cacheRepo:    cacheRepo,
		watcher:      watcher,
		db:           db,
		rootCtx:      rootCtx,
	}
	watcher.SetExpireHandler(s.handleExpiry)
	return s
}

// GetAvailableExams lists the exams students may start.
func (s *AttemptService) GetAvailableExams() ([]entity.Exam, error) {
	return s.examRepo.ListPublished()
}

// StartExam starts (or resumes) the student's attempt on a published exam.
// Starting is idempotent per (exam, student): a second start returns the
// existing in-progress attempt, and a start after submission is a conflict.
// Questions are returned without their correct options.
func (s *AttemptService) StartExam(examID, studentID uint) (*ActiveAttempt, error) {
	exam, err := s.examRepo.GetWithQuestions(examID)
	if err != nil {
		return nil, err
	}
	if !exam.CanBeTaken() {
		return nil, fmt.Errorf("%w: exam is not published", apperrors.ErrForbidden)
	}

	attempt, err := s.attemptRepo.GetByExamAndStudent(examID, studentID)
	switch {
	case err == nil:
		if attempt.IsSubmitted() {
			return nil, fmt.Errorf("%w: exam already submitted", apperrors.ErrConflict)
		}
	case errors.Is(err, apperrors.ErrNotFound):
		attempt = &entity.Attempt{
			ExamID:    examID,
			StudentID: studentID,
			StartedAt: time.Now(),
			Status:    entity.AttemptStatusInProgress,
		}
		if createErr := s.attemptRepo.Create(attempt); createErr != nil {
			if !errors.Is(createErr, repository.ErrAttemptExists) {
				return nil, fmt.Errorf("failed to create attempt: %w", createErr)
			}
			// Lost the race against a concurrent start; reuse the winner.
			attempt, err = s.attemptRepo.GetByExamAndStudent(examID, studentID)
			if err != nil {
				return nil, err
			}
			if attempt.IsSubmitted() {
				return nil, fmt.Errorf("%w: exam already submitted", apperrors.ErrConflict)
			}
		} else {
			log.Printf("[AttemptService] attempt #%d started (exam #%d, student #%d)", attempt.ID, examID, studentID)
		}
	default:
		return nil, err
	}

	s.watcher.Watch(s.rootCtx, attempt.ID, attempt.Deadline(exam.DurationMin))

	return s.buildActiveAttempt(attempt, exam)
}

// GetActiveAttempt returns the student's in-progress attempt on the exam.
func (s *AttemptService) GetActiveAttempt(examID, studentID uint) (*ActiveAttempt, error) {
	attempt, err := s.attemptRepo.GetActive(examID, studentID)
	if err != nil {
		return nil, err
	}

	exam, err := s.examRepo.GetWithQuestions(examID)
	if err != nil {
		return nil, err
	}

	return s.buildActiveAttempt(attempt, exam)
}

func (s *AttemptService) buildActiveAttempt(attempt *entity.Attempt, exam *entity.Exam) (*ActiveAttempt, error) {
	answers, err := s.answerRepo.GetByAttempt(attempt.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load answers: %w", err)
	}

	questions := exam.Questions
	exam.Questions = nil

	return &ActiveAttempt{
		Attempt:          attempt,
		Exam:             exam,
		Questions:        questions,
		Answers:          answers,
		RemainingSeconds: attempt.RemainingSeconds(exam.DurationMin, time.Now()),
	}, nil
}

// SubmitAnswer records the student's choice for one question. Re-answering
// the same question overwrites the earlier choice.
func (s *AttemptService) SubmitAnswer(studentID, attemptID, questionID uint, selectedOption int) error {
	attempt, err := s.attemptRepo.GetByID(attemptID)
	if err != nil {
		return err
	}
	if attempt.StudentID != studentID {
		return fmt.Errorf("%w: attempt belongs to another student", apperrors.ErrForbidden)
	}
	if !attempt.IsInProgress() {
		return fmt.Errorf("%w: attempt already submitted", apperrors.ErrConflict)
	}

	if selectedOption < 1 || selectedOption > entity.OptionCount {
		return fmt.Errorf("%w: selected option must be between 1 and %d", apperrors.ErrValidation, entity.OptionCount)
	}

	question, err := s.questionRepo.GetByID(questionID)
	if err != nil {
		return err
	}
	if question.ExamID != attempt.ExamID {
		return fmt.Errorf("%w: question does not belong to this exam", apperrors.ErrValidation)
	}

	exam, err := s.examRepo.GetByID(attempt.ExamID)
	if err != nil {
		return err
	}
	if time.Now().After(attempt.Deadline(exam.DurationMin).Add(expiryGrace)) {
		return fmt.Errorf("%w: time is up", apperrors.ErrConflict)
	}

	answer := &entity.Answer{
		AttemptID:      attemptID,
		QuestionID:     questionID,
		SelectedOption: selectedOption,
		AnsweredAt:     time.Now(),
	}
	if err := s.answerRepo.Upsert(answer); err != nil {
		return fmt.Errorf("failed to record answer: %w", err)
	}
	return nil
}

// GetRemainingTime returns the seconds left on the attempt's time budget,
// clamped at zero.
func (s *AttemptService) GetRemainingTime(studentID, attemptID uint) (int, error) {
	attempt, err := s.attemptRepo.GetByID(attemptID)
	if err != nil {
		return 0, err
	}
	if attempt.StudentID != studentID {
		return 0, fmt.Errorf("%w: attempt belongs to another student", apperrors.ErrForbidden)
	}
	if attempt.IsSubmitted() {
		return 0, nil
	}

	exam, err := s.examRepo.GetByID(attempt.ExamID)
	if err != nil {
		return 0, err
	}
	return attempt.RemainingSeconds(exam.DurationMin, time.Now()), nil
}

// SubmitExam finalizes the attempt: scores the recorded answers, writes the
// result and marks the attempt submitted, all in one transaction. Submission
// is terminal; a second submit is rejected and never recomputes the result.
func (s *AttemptService) SubmitExam(studentID, attemptID uint) (*entity.Result, error) {
	attempt, err := s.attemptRepo.GetByID(attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.StudentID != studentID {
		return nil, fmt.Errorf("%w: attempt belongs to another student", apperrors.ErrForbidden)
	}

	return s.finalize(attempt)
}

func (s *AttemptService) finalize(attempt *entity.Attempt) (*entity.Result, error) {
	if attempt.IsSubmitted() {
		return nil, fmt.Errorf("%w: attempt already submitted", apperrors.ErrConflict)
	}

	exam, err := s.examRepo.GetByID(attempt.ExamID)
	if err != nil {
		return nil, err
	}

	questions, err := s.questionRepo.GetByExamID(attempt.ExamID)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}

	answers, err := s.answerRepo.GetByAttempt(attempt.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load answers: %w", err)
	}

	score := scoreAnswers(questions, answers)
	percentage := percentageOf(score, exam.TotalQuestions)

	timeTaken := int(time.Since(attempt.StartedAt).Seconds())
	if budget := exam.DurationMin * 60; timeTaken > budget {
		timeTaken = budget
	}

	result := &entity.Result{
		ExamID:       attempt.ExamID,
		StudentID:    attempt.StudentID,
		Score:        score,
		Percentage:   percentage,
		TimeTakenSec: timeTaken,
		EvaluatedAt:  time.Now(),
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		rows, err := s.attemptRepo.MarkSubmitted(tx, attempt.ID, timeTaken)
		if err != nil {
			return err
		}
		if rows == 0 {
			// Another submit (or the deadline watcher) got here first.
			return fmt.Errorf("%w: attempt already submitted", apperrors.ErrConflict)
		}
		return s.resultRepo.Create(tx, result)
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to finalize attempt: %w", err)
	}

	s.watcher.Cancel(attempt.ID)
	if err := s.cacheRepo.Delete(leaderboardCacheKey(attempt.ExamID)); err != nil {
		log.Printf("[AttemptService] failed to drop leaderboard cache for exam #%d: %v", attempt.ExamID, err)
	}

	log.Printf("[AttemptService] attempt #%d submitted: score=%d/%d (%.2f%%) time=%ds",
		attempt.ID, score, exam.TotalQuestions, percentage, timeTaken)
	return result, nil
}

// scoreAnswers counts recorded answers that match the correct option of
// their question. Unanswered questions score nothing.
func scoreAnswers(questions []entity.Question, answers []entity.Answer) int {
	correctByID := make(map[uint]int, len(questions))
	for _, q := range questions {
		correctByID[q.ID] = q.CorrectOption
	}

	score := 0
	for _, a := range answers {
		if correct, ok := correctByID[a.QuestionID]; ok && a.SelectedOption == correct {
			score++
		}
	}
	return score
}

// percentageOf returns 100*score/total rounded to two decimals.
func percentageOf(score, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(score)/float64(total)*100*100) / 100
}

// handleExpiry is invoked by the deadline watcher when an attempt's time
// budget runs out.
func (s *AttemptService) handleExpiry(ctx context.Context, attemptID uint) {
	attempt, err := s.attemptRepo.GetByID(attemptID)
	if err != nil {
		log.Printf("[AttemptService] expiry of attempt #%d: load failed: %v", attemptID, err)
		return
	}
	if attempt.IsSubmitted() {
		return
	}

	if _, err := s.finalize(attempt); err != nil && !errors.Is(err, apperrors.ErrConflict) {
		log.Printf("[AttemptService] auto-submit of attempt #%d failed: %v", attemptID, err)
	}
}

// RearmWatchers re-registers deadline timers for every in-progress attempt.
// Called once at startup so attempts survive a restart; already expired
// attempts are submitted immediately.
func (s *AttemptService) RearmWatchers(ctx context.Context) error {
	attempts, err := s.attemptRepo.ListInProgress()
	if err != nil {
		return fmt.Errorf("failed to list in-progress attempts: %w", err)
	}

	for _, attempt := range attempts {
		exam, err := s.examRepo.GetByID(attempt.ExamID)
		if err != nil {
			log.Printf("[AttemptService] rearm: exam #%d for attempt #%d: %v", attempt.ExamID, attempt.ID, err)
			continue
		}
		s.watcher.Watch(ctx, attempt.ID, attempt.Deadline(exam.DurationMin))
	}

	if len(attempts) > 0 {
		log.Printf("[AttemptService] rearmed %d attempt deadline watcher(s)", len(attempts))
	}
	return nil
}

// GetReview returns the per-question breakdown of a submitted attempt.
func (s *AttemptService) GetReview(studentID, attemptID uint) (*AttemptReview, error) {
	attempt, err := s.attemptRepo.GetByID(attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.StudentID != studentID {
		return nil, fmt.Errorf("%w: attempt belongs to another student", apperrors.ErrForbidden)
	}
	if !attempt.IsSubmitted() {
		return nil, fmt.Errorf("%w: attempt is still in progress", apperrors.ErrConflict)
	}

	exam, err := s.examRepo.GetByID(attempt.ExamID)
	if err != nil {
		return nil, err
	}

	result, err := s.resultRepo.GetByExamAndStudent(attempt.ExamID, studentID)
	if err != nil {
		return nil, err
	}

	questions, err := s.questionRepo.GetByExamID(attempt.ExamID)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}

	answers, err := s.answerRepo.GetByAttempt(attemptID)
	if err != nil {
		return nil, fmt.Errorf("failed to load answers: %w", err)
	}

	selectedByQuestion := make(map[uint]int, len(answers))
	for _, a := range answers {
		selectedByQuestion[a.QuestionID] = a.SelectedOption
	}

	items := make([]ReviewItem, 0, len(questions))
	for _, q := range questions {
		selected := selectedByQuestion[q.ID] // zero means unanswered
		items = append(items, ReviewItem{
			QuestionID:     q.ID,
			Position:       q.Position,
			Text:           q.Text,
			Options:        q.Options,
			SelectedOption: selected,
			CorrectOption:  q.CorrectOption,
			IsCorrect:      selected != 0 && q.IsCorrect(selected),
		})
	}

	return &AttemptReview{
		Attempt: attempt,
		Exam:    exam,
		Result:  result,
		Items:   items,
	}, nil
}

// GetMyResults lists the student's results across all exams.
func (s *AttemptService) GetMyResults(studentID uint) ([]entity.Result, error) {
	return s.resultRepo.ListByStudent(studentID)
}

// GetExamResult returns the student's result on one exam.
func (s *AttemptService) GetExamResult(examID, studentID uint) (*entity.Result, error) {
	return s.resultRepo.GetByExamAndStudent(examID, studentID)
}
