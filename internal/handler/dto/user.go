package dto

import (
	"github.com/yourusername/exam-api/internal/domain/entity"
)

// UserResponse is the public view of a user.
type UserResponse struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Verified bool   `json:"verified"`
}

// NewUserResponse builds the public view of a user.
func NewUserResponse(user *entity.User) UserResponse {
	return UserResponse{
		ID:       user.ID,
		Name:     user.Name,
		Email:    user.Email,
		Role:     user.Role,
		Verified: user.IsVerified(),
	}
}

// AuthResponse is returned on successful login.
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// NewAuthResponse builds the login response.
func NewAuthResponse(token string, user *entity.User) AuthResponse {
	return AuthResponse{
		Token: token,
		User:  NewUserResponse(user),
	}
}
