package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"github.com/yourusername/exam-api/internal/domain/entity"
)

// ============================================================================
// Shared repository mocks for the service tests
// ============================================================================

// MockUserRepository implements repository.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *entity.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(id uint) (*entity.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(email string) (*entity.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) GetByVerificationToken(token string) (*entity.User, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) Update(user *entity.User) error {
	args := m.Called(user)
	return args.Error(0)
}

// MockExamRepository implements repository.ExamRepository
type MockExamRepository struct {
	mock.Mock
}

func (m *MockExamRepository) Create(tx *gorm.DB, exam *entity.Exam) error {
	args := m.Called(tx, exam)
	return args.Error(0)
}

func (m *MockExamRepository) GetByID(id uint) (*entity.Exam, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Exam), args.Error(1)
}

func (m *MockExamRepository) GetByIDForExaminer(id, examinerID uint) (*entity.Exam, error) {
	args := m.Called(id, examinerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Exam), args.Error(1)
}

func (m *MockExamRepository) GetWithQuestions(id uint) (*entity.Exam, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Exam), args.Error(1)
}

func (m *MockExamRepository) ListByExaminer(examinerID uint) ([]entity.Exam, error) {
	args := m.Called(examinerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Exam), args.Error(1)
}

func (m *MockExamRepository) ListPublished() ([]entity.Exam, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Exam), args.Error(1)
}

func (m *MockExamRepository) UpdateTitle(examID, examinerID uint, title string) (int64, error) {
	args := m.Called(examID, examinerID, title)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockExamRepository) Publish(examID, examinerID uint, publishedAt time.Time) (int64, error) {
	args := m.Called(examID, examinerID, publishedAt)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockExamRepository) DeleteCascade(examID uint) error {
	args := m.Called(examID)
	return args.Error(0)
}

// MockQuestionRepository implements repository.QuestionRepository
type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) CreateBatch(tx *gorm.DB, questions []entity.Question) error {
	args := m.Called(tx, questions)
	return args.Error(0)
}

func (m *MockQuestionRepository) GetByID(id uint) (*entity.Question, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Question), args.Error(1)
}

func (m *MockQuestionRepository) GetByExamID(examID uint) ([]entity.Question, error) {
	args := m.Called(examID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Question), args.Error(1)
}

func (m *MockQuestionRepository) Update(question *entity.Question) error {
	args := m.Called(question)
	return args.Error(0)
}

// MockAttemptRepository implements repository.AttemptRepository
type MockAttemptRepository struct {
	mock.Mock
}

func (m *MockAttemptRepository) Create(attempt *entity.Attempt) error {
	args := m.Called(attempt)
	return args.Error(0)
}

func (m *MockAttemptRepository) GetByID(id uint) (*entity.Attempt, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Attempt), args.Error(1)
}

func (m *MockAttemptRepository) GetActive(examID, studentID uint) (*entity.Attempt, error) {
	args := m.Called(examID, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Attempt), args.Error(1)
}

func (m *MockAttemptRepository) GetByExamAndStudent(examID, studentID uint) (*entity.Attempt, error) {
	args := m.Called(examID, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Attempt), args.Error(1)
}

func (m *MockAttemptRepository) ListInProgress() ([]entity.Attempt, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Attempt), args.Error(1)
}

func (m *MockAttemptRepository) MarkSubmitted(tx *gorm.DB, attemptID uint, timeTakenSec int) (int64, error) {
	args := m.Called(tx, attemptID, timeTakenSec)
	return args.Get(0).(int64), args.Error(1)
}

// MockAnswerRepository implements repository.AnswerRepository
type MockAnswerRepository struct {
	mock.Mock
}

func (m *MockAnswerRepository) Upsert(answer *entity.Answer) error {
	args := m.Called(answer)
	return args.Error(0)
}

func (m *MockAnswerRepository) GetByAttempt(attemptID uint) ([]entity.Answer, error) {
	args := m.Called(attemptID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Answer), args.Error(1)
}

// MockResultRepository implements repository.ResultRepository
type MockResultRepository struct {
	mock.Mock
}

func (m *MockResultRepository) Create(tx *gorm.DB, result *entity.Result) error {
	args := m.Called(tx, result)
	return args.Error(0)
}

func (m *MockResultRepository) GetByExamAndStudent(examID, studentID uint) (*entity.Result, error) {
	args := m.Called(examID, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Result), args.Error(1)
}

func (m *MockResultRepository) ListByStudent(studentID uint) ([]entity.Result, error) {
	args := m.Called(studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Result), args.Error(1)
}

func (m *MockResultRepository) ListByExam(examID uint) ([]entity.ResultWithStudent, error) {
	args := m.Called(examID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.ResultWithStudent), args.Error(1)
}

func (m *MockResultRepository) Leaderboard(examID uint, limit int) ([]entity.ResultWithStudent, error) {
	args := m.Called(examID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.ResultWithStudent), args.Error(1)
}

// MockCacheRepository implements repository.CacheRepository
type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) Set(key string, value interface{}, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheRepository) Get(key string) (string, error) {
	args := m.Called(key)
	return args.String(0), args.Error(1)
}

func (m *MockCacheRepository) Delete(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func (m *MockCacheRepository) SetJSON(key string, value interface{}, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheRepository) GetJSON(key string, dest interface{}) error {
	args := m.Called(key, dest)
	return args.Error(0)
}

// MockQuestionGenerator implements QuestionGenerator
type MockQuestionGenerator struct {
	mock.Mock
}

func (m *MockQuestionGenerator) Generate(ctx context.Context, topic, difficulty string, count int) ([]GeneratedQuestion, error) {
	args := m.Called(ctx, topic, difficulty, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]GeneratedQuestion), args.Error(1)
}

// MockEmailService implements EmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendVerificationLink(ctx context.Context, toEmail, name, verifyURL string) error {
	args := m.Called(ctx, toEmail, name, verifyURL)
	return args.Error(0)
}
