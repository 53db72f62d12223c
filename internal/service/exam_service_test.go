package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/exam-api/internal/domain/entity"
	apperrors "github.com/yourusername/exam-api/internal/pkg/errors"
)

func newTestExamService(
	examRepo *MockExamRepository,
	questionRepo *MockQuestionRepository,
	resultRepo *MockResultRepository,
	cacheRepo *MockCacheRepository,
	generator *MockQuestionGenerator,
) *ExamService {
	return &ExamService{
		examRepo:     examRepo,
		questionRepo: questionRepo,
		resultRepo:   resultRepo,
		cacheRepo:    cacheRepo,
		generator:    generator,
		db:           nil, // transaction paths are not exercised in these tests
	}
}

func TestQuestionsFromGenerated(t *testing.T) {
	generated := []GeneratedQuestion{
		{Text: "Q1", Options: []string{"A", "B", "C", "D"}, CorrectOption: 3},
		{Text: "Q2", Options: []string{"E", "F", "G", "H"}, CorrectOption: 1},
		{Text: "Q3", Options: []string{"I", "J", "K", "L"}, CorrectOption: 4},
	}

	questions := questionsFromGenerated(42, generated)

	require.Len(t, questions, 3)
	for i, q := range questions {
		assert.Equal(t, uint(42), q.ExamID)
		assert.Equal(t, i+1, q.Position, "positions must be 1..n in generation order")
		assert.Len(t, q.Options, entity.OptionCount)
		assert.GreaterOrEqual(t, q.CorrectOption, 1)
		assert.LessOrEqual(t, q.CorrectOption, entity.OptionCount)
	}
	assert.Equal(t, "Q2", questions[1].Text)
}

func TestExamService_CreateExam_ValidationErrors(t *testing.T) {
	tests := []struct {
		name           string
		title          string
		topic          string
		difficulty     string
		totalQuestions int
		duration       int
	}{
		{"blank title", "   ", "Go", "easy", 5, 30},
		{"blank topic", "Quiz", " ", "easy", 5, 30},
		{"unknown difficulty", "Quiz", "Go", "extreme", 5, 30},
		{"zero questions", "Quiz", "Go", "easy", 0, 30},
		{"too many questions", "Quiz", "Go", "easy", 51, 30},
		{"zero duration", "Quiz", "Go", "easy", 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			generator := new(MockQuestionGenerator)
			examRepo := new(MockExamRepository)
			svc := newTestExamService(examRepo, new(MockQuestionRepository), new(MockResultRepository), new(MockCacheRepository), generator)

			exam, err := svc.CreateExam(context.Background(), 1, tt.title, tt.topic, tt.difficulty, tt.totalQuestions, tt.duration)

			require.Error(t, err)
			assert.Nil(t, exam)
			assert.True(t, errors.Is(err, apperrors.ErrValidation))
			generator.AssertNotCalled(t, "Generate")
			examRepo.AssertNotCalled(t, "Create")
		})
	}
}

func TestExamService_CreateExam_GenerationFailure(t *testing.T) {
	// Arrange
	generator := new(MockQuestionGenerator)
	examRepo := new(MockExamRepository)
	generator.On("Generate", mock.Anything, "Go", "medium", 5).
		Return(nil, apperrors.ErrGenerationFailed)

	svc := newTestExamService(examRepo, new(MockQuestionRepository), new(MockResultRepository), new(MockCacheRepository), generator)

	// Act
	exam, err := svc.CreateExam(context.Background(), 1, "Go Basics", "Go", "medium", 5, 30)

	// Assert: nothing is persisted when generation fails
	require.Error(t, err)
	assert.Nil(t, exam)
	assert.True(t, errors.Is(err, apperrors.ErrGenerationFailed))
	examRepo.AssertNotCalled(t, "Create")
	generator.AssertExpectations(t)
}

func TestExamService_UpdateExamTitle(t *testing.T) {
	t.Run("whitespace title rejected", func(t *testing.T) {
		examRepo := new(MockExamRepository)
		svc := newTestExamService(examRepo, new(MockQuestionRepository), new(MockResultRepository), new(MockCacheRepository), new(MockQuestionGenerator))

		err := svc.UpdateExamTitle(1, 2, "   \t ")

		assert.True(t, errors.Is(err, apperrors.ErrValidation))
		examRepo.AssertNotCalled(t, "UpdateTitle")
	})

	t.Run("missing or foreign exam", func(t *testing.T) {
		examRepo := new(MockExamRepository)
		examRepo.On("UpdateTitle", uint(1), uint(2), "New Title").Return(int64(0), nil)
		svc := newTestExamService(examRepo, new(MockQuestionRepository), new(MockResultRepository), new(MockCacheRepository), new(MockQuestionGenerator))

		err := svc.UpdateExamTitle(1, 2, "New Title")

		assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	})

	t.Run("trims and updates", func(t *testing.T) {
		examRepo := new(MockExamRepository)
		examRepo.On("UpdateTitle", uint(1), uint(2), "New Title").Return(int64(1), nil)
		svc := newTestExamService(examRepo, new(MockQuestionRepository), new(MockResultRepository), new(MockCacheRepository), new(MockQuestionGenerator))

		err := svc.UpdateExamTitle(1, 2, "  New Title  ")

		assert.NoError(t, err)
		examRepo.AssertExpectations(t)
	})
}

func TestExamService_PublishExam_NotFound(t *testing.T) {
	examRepo := new(MockExamRepository)
	examRepo.On("Publish", uint(9), uint(2), mock.AnythingOfType("time.Time")).Return(int64(0), nil)
	svc := newTestExamService(examRepo, new(MockQuestionRepository), new(MockResultRepository), new(MockCacheRepository), new(MockQuestionGenerator))

	err := svc.PublishExam(9, 2)

	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestExamService_DeleteExam_NotFound(t *testing.T) {
	examRepo := new(MockExamRepository)
	examRepo.On("GetByIDForExaminer", uint(9), uint(2)).Return(nil, apperrors.ErrNotFound)
	svc := newTestExamService(examRepo, new(MockQuestionRepository), new(MockResultRepository), new(MockCacheRepository), new(MockQuestionGenerator))

	err := svc.DeleteExam(9, 2)

	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	examRepo.AssertNotCalled(t, "DeleteCascade")
}

func TestExamService_UpdateQuestion_Forbidden(t *testing.T) {
	// Arrange: the question exists but its exam belongs to someone else
	examRepo := new(MockExamRepository)
	questionRepo := new(MockQuestionRepository)

	questionRepo.On("GetByID", uint(3)).Return(&entity.Question{ID: 3, ExamID: 5}, nil)
	examRepo.On("GetByID", uint(5)).Return(&entity.Exam{ID: 5, ExaminerID: 99}, nil)

	svc := newTestExamService(examRepo, questionRepo, new(MockResultRepository), new(MockCacheRepository), new(MockQuestionGenerator))

	// Act
	question, err := svc.UpdateQuestion(3, 2, "New text?", []string{"A", "B", "C", "D"}, 2)

	// Assert
	require.Error(t, err)
	assert.Nil(t, question)
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))
	questionRepo.AssertNotCalled(t, "Update")
}

func TestExamService_GetExamAnalytics_Means(t *testing.T) {
	examRepo := new(MockExamRepository)
	resultRepo := new(MockResultRepository)

	exam := &entity.Exam{ID: 1, ExaminerID: 2, TotalQuestions: 4}
	examRepo.On("GetByIDForExaminer", uint(1), uint(2)).Return(exam, nil)
	resultRepo.On("ListByExam", uint(1)).Return([]entity.ResultWithStudent{
		{Result: entity.Result{Score: 2, Percentage: 50.0}},
		{Result: entity.Result{Score: 4, Percentage: 100.0}},
	}, nil)

	svc := newTestExamService(examRepo, new(MockQuestionRepository), resultRepo, new(MockCacheRepository), new(MockQuestionGenerator))

	analytics, err := svc.GetExamAnalytics(1, 2)

	require.NoError(t, err)
	assert.Equal(t, 2, analytics.TotalAttempts)
	assert.InDelta(t, 3.0, analytics.MeanScore, 0.001)
	assert.InDelta(t, 75.0, analytics.MeanPercentage, 0.001)
}

func TestExamService_GetExamAnalytics_NoResults(t *testing.T) {
	examRepo := new(MockExamRepository)
	resultRepo := new(MockResultRepository)

	examRepo.On("GetByIDForExaminer", uint(1), uint(2)).Return(&entity.Exam{ID: 1, ExaminerID: 2}, nil)
	resultRepo.On("ListByExam", uint(1)).Return([]entity.ResultWithStudent{}, nil)

	svc := newTestExamService(examRepo, new(MockQuestionRepository), resultRepo, new(MockCacheRepository), new(MockQuestionGenerator))

	analytics, err := svc.GetExamAnalytics(1, 2)

	require.NoError(t, err)
	assert.Equal(t, 0, analytics.TotalAttempts)
	assert.Zero(t, analytics.MeanScore)
	assert.Zero(t, analytics.MeanPercentage)
}

func TestExamService_GetExamLeaderboard_CacheHit(t *testing.T) {
	// Arrange
	examRepo := new(MockExamRepository)
	resultRepo := new(MockResultRepository)
	cacheRepo := new(MockCacheRepository)

	cached := []entity.ResultWithStudent{
		{Result: entity.Result{StudentID: 7, Percentage: 90.0}, StudentName: "Alice"},
	}

	examRepo.On("GetByIDForExaminer", uint(1), uint(2)).Return(&entity.Exam{ID: 1, ExaminerID: 2}, nil)
	cacheRepo.On("GetJSON", "leaderboard:exam:1", mock.Anything).
		Run(func(args mock.Arguments) {
			*(args.Get(1).(*[]entity.ResultWithStudent)) = cached
		}).
		Return(nil)

	svc := newTestExamService(examRepo, new(MockQuestionRepository), resultRepo, cacheRepo, new(MockQuestionGenerator))

	// Act
	leaderboard, err := svc.GetExamLeaderboard(1, 2)

	// Assert: DB is not touched on a cache hit
	require.NoError(t, err)
	assert.Equal(t, cached, leaderboard)
	resultRepo.AssertNotCalled(t, "Leaderboard")
}

func TestExamService_GetExamLeaderboard_CacheMiss(t *testing.T) {
	// Arrange
	examRepo := new(MockExamRepository)
	resultRepo := new(MockResultRepository)
	cacheRepo := new(MockCacheRepository)

	fresh := []entity.ResultWithStudent{
		{Result: entity.Result{StudentID: 7, Percentage: 90.0}, StudentName: "Alice"},
		{Result: entity.Result{StudentID: 8, Percentage: 80.0}, StudentName: "Bob"},
	}

	examRepo.On("GetByIDForExaminer", uint(1), uint(2)).Return(&entity.Exam{ID: 1, ExaminerID: 2}, nil)
	cacheRepo.On("GetJSON", "leaderboard:exam:1", mock.Anything).Return(apperrors.ErrNotFound)
	resultRepo.On("Leaderboard", uint(1), leaderboardSize).Return(fresh, nil)
	cacheRepo.On("SetJSON", "leaderboard:exam:1", fresh, leaderboardCacheTTL).Return(nil)

	svc := newTestExamService(examRepo, new(MockQuestionRepository), resultRepo, cacheRepo, new(MockQuestionGenerator))

	// Act
	leaderboard, err := svc.GetExamLeaderboard(1, 2)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, fresh, leaderboard)
	cacheRepo.AssertExpectations(t)
	resultRepo.AssertExpectations(t)
}
