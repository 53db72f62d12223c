package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/exam-api/internal/domain/entity"
	apperrors "github.com/yourusername/exam-api/internal/pkg/errors"
	"github.com/yourusername/exam-api/pkg/auth"
)

func newTestAuthService(userRepo *MockUserRepository, emailService *MockEmailService) *AuthService {
	jwtService, _ := auth.NewJWTService("test-secret", 1)
	return NewAuthService(userRepo, jwtService, emailService, "http://localhost/verify")
}

func TestAuthService_Register_Success(t *testing.T) {
	// Arrange
	userRepo := new(MockUserRepository)
	emailService := new(MockEmailService)

	userRepo.On("GetByEmail", "alice@example.com").Return(nil, apperrors.ErrNotFound)
	userRepo.On("Create", mock.AnythingOfType("*entity.User")).
		Run(func(args mock.Arguments) {
			args.Get(0).(*entity.User).ID = 1
		}).
		Return(nil)
	emailService.On("SendVerificationLink", mock.Anything, "alice@example.com", "Alice", mock.AnythingOfType("string")).Return(nil)

	svc := newTestAuthService(userRepo, emailService)

	// Act
	user, err := svc.Register(context.Background(), "Alice", "Alice@Example.com", "secret123", entity.RoleStudent)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email, "email is normalized to lower case")
	assert.Equal(t, entity.RoleStudent, user.Role)
	assert.NotEmpty(t, user.VerificationToken)
	emailService.AssertExpectations(t)
}

func TestAuthService_Register_EmailSendFailureIsNotFatal(t *testing.T) {
	userRepo := new(MockUserRepository)
	emailService := new(MockEmailService)

	userRepo.On("GetByEmail", "bob@example.com").Return(nil, apperrors.ErrNotFound)
	userRepo.On("Create", mock.AnythingOfType("*entity.User")).Return(nil)
	emailService.On("SendVerificationLink", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("smtp down"))

	svc := newTestAuthService(userRepo, emailService)

	user, err := svc.Register(context.Background(), "Bob", "bob@example.com", "secret123", entity.RoleExaminer)

	require.NoError(t, err)
	assert.NotNil(t, user)
}

func TestAuthService_Register_Validation(t *testing.T) {
	tests := []struct {
		name     string
		userName string
		email    string
		password string
		role     string
	}{
		{"blank name", " ", "a@b.c", "secret123", entity.RoleStudent},
		{"blank email", "Alice", "", "secret123", entity.RoleStudent},
		{"short password", "Alice", "a@b.c", "12345", entity.RoleStudent},
		{"unknown role", "Alice", "a@b.c", "secret123", "admin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userRepo := new(MockUserRepository)
			svc := newTestAuthService(userRepo, new(MockEmailService))

			user, err := svc.Register(context.Background(), tt.userName, tt.email, tt.password, tt.role)

			require.Error(t, err)
			assert.Nil(t, user)
			assert.True(t, errors.Is(err, apperrors.ErrValidation))
			userRepo.AssertNotCalled(t, "Create")
		})
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	userRepo := new(MockUserRepository)
	userRepo.On("GetByEmail", "alice@example.com").Return(&entity.User{ID: 1, Email: "alice@example.com"}, nil)

	svc := newTestAuthService(userRepo, new(MockEmailService))

	user, err := svc.Register(context.Background(), "Alice", "alice@example.com", "secret123", entity.RoleStudent)

	require.Error(t, err)
	assert.Nil(t, user)
	assert.True(t, errors.Is(err, apperrors.ErrConflict))
	userRepo.AssertNotCalled(t, "Create")
}

func TestAuthService_VerifyEmail(t *testing.T) {
	t.Run("stamps verification time", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		userRepo.On("GetByVerificationToken", "tok-123").Return(&entity.User{ID: 1, VerificationToken: "tok-123"}, nil)
		userRepo.On("Update", mock.MatchedBy(func(u *entity.User) bool {
			return u.EmailVerifiedAt != nil && u.VerificationToken == ""
		})).Return(nil)

		svc := newTestAuthService(userRepo, new(MockEmailService))

		user, err := svc.VerifyEmail("tok-123")

		require.NoError(t, err)
		assert.True(t, user.IsVerified())
		userRepo.AssertExpectations(t)
	})

	t.Run("already verified is a no-op", func(t *testing.T) {
		verifiedAt := time.Now().Add(-time.Hour)
		userRepo := new(MockUserRepository)
		userRepo.On("GetByVerificationToken", "tok-123").Return(&entity.User{ID: 1, EmailVerifiedAt: &verifiedAt}, nil)

		svc := newTestAuthService(userRepo, new(MockEmailService))

		user, err := svc.VerifyEmail("tok-123")

		require.NoError(t, err)
		assert.True(t, user.IsVerified())
		userRepo.AssertNotCalled(t, "Update")
	})

	t.Run("unknown token", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		userRepo.On("GetByVerificationToken", "nope").Return(nil, apperrors.ErrNotFound)

		svc := newTestAuthService(userRepo, new(MockEmailService))

		user, err := svc.VerifyEmail("nope")

		require.Error(t, err)
		assert.Nil(t, user)
		assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	})
}

func TestAuthService_Login(t *testing.T) {
	storedUser := func() *entity.User {
		u := &entity.User{ID: 1, Email: "alice@example.com", Password: "secret123", Role: entity.RoleStudent}
		_ = u.BeforeSave(nil) // hash as the gorm hook would
		return u
	}

	t.Run("valid credentials", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		userRepo.On("GetByEmail", "alice@example.com").Return(storedUser(), nil)

		svc := newTestAuthService(userRepo, new(MockEmailService))

		token, user, err := svc.Login("alice@example.com", "secret123")

		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, uint(1), user.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		userRepo.On("GetByEmail", "alice@example.com").Return(storedUser(), nil)

		svc := newTestAuthService(userRepo, new(MockEmailService))

		token, user, err := svc.Login("alice@example.com", "wrong")

		require.Error(t, err)
		assert.Empty(t, token)
		assert.Nil(t, user)
		assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
	})

	t.Run("unknown email", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		userRepo.On("GetByEmail", "nobody@example.com").Return(nil, apperrors.ErrNotFound)

		svc := newTestAuthService(userRepo, new(MockEmailService))

		_, _, err := svc.Login("nobody@example.com", "secret123")

		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrUnauthorized), "unknown email must look like bad credentials")
	})
}
