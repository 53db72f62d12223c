package service

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/exam-api/internal/domain/entity"
	"github.com/yourusername/exam-api/internal/domain/repository"
	apperrors "github.com/yourusername/exam-api/internal/pkg/errors"
	"github.com/yourusername/exam-api/pkg/auth"
)

// AuthService handles registration, email verification and login.
type AuthService struct {
	userRepo      repository.UserRepository
	jwtService    *auth.JWTService
	emailService  EmailService
	verifyBaseURL string
}

// NewAuthService creates a new auth service.
func NewAuthService(
	userRepo repository.UserRepository,
	jwtService *auth.JWTService,
	emailService EmailService,
	verifyBaseURL string,
) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		jwtService:    jwtService,
		emailService:  emailService,
		verifyBaseURL: verifyBaseURL,
	}
}

// Register creates a user and sends a verification email. The email is best
// effort: a send failure is logged but does not fail registration.
func (s *AuthService) Register(ctx context.Context, name, email, password, role string) (*entity.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if name == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", apperrors.ErrValidation)
	}
	if len(password) < 6 {
		return nil, fmt.Errorf("%w: password must be at least 6 characters", apperrors.ErrValidation)
	}
	if role != entity.RoleExaminer && role != entity.RoleStudent {
		return nil, fmt.Errorf("%w: role must be '%s' or '%s'", apperrors.ErrValidation, entity.RoleExaminer, entity.RoleStudent)
	}

	if existing, err := s.userRepo.GetByEmail(email); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: email already registered", apperrors.ErrConflict)
	}

	user := &entity.User{
		Name:              name,
		Email:             email,
		Password:          password,
		Role:              role,
		VerificationToken: uuid.New().String(),
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	verifyURL := fmt.Sprintf("%s?token=%s", s.verifyBaseURL, url.QueryEscape(user.VerificationToken))
	if err := s.emailService.SendVerificationLink(ctx, user.Email, user.Name, verifyURL); err != nil {
		log.Printf("[AuthService] failed to send verification email to %s: %v", user.Email, err)
	}

	return user, nil
}

// VerifyEmail confirms the email address behind a verification token.
func (s *AuthService) VerifyEmail(token string) (*entity.User, error) {
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("%w: token is required", apperrors.ErrValidation)
	}

	user, err := s.userRepo.GetByVerificationToken(token)
	if err != nil {
		return nil, err
	}

	if user.IsVerified() {
		return user, nil
	}

	now := time.Now()
	user.EmailVerifiedAt = &now
	user.VerificationToken = ""
	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to mark email verified: %w", err)
	}

	log.Printf("[AuthService] email verified for user id=%d", user.ID)
	return user, nil
}

// Login checks credentials and issues an access token.
func (s *AuthService) Login(email, password string) (string, *entity.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", nil, fmt.Errorf("%w: email and password are required", apperrors.ErrValidation)
	}

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		// Same answer for unknown email and wrong password.
		return "", nil, fmt.Errorf("%w: invalid email or password", apperrors.ErrUnauthorized)
	}

	if !user.CheckPassword(password) {
		return "", nil, fmt.Errorf("%w: invalid email or password", apperrors.ErrUnauthorized)
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return token, user, nil
}

// GetProfile returns the user behind an authenticated request.
func (s *AuthService) GetProfile(userID uint) (*entity.User, error) {
	return s.userRepo.GetByID(userID)
}
