package entity

import (
	"log"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// User roles
const (
	RoleExaminer = "examiner"
	RoleStudent  = "student"
)

// User represents a platform user (examiner or student).
type User struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	Name              string     `gorm:"size:100;not null" json:"name"`
	Email             string     `gorm:"size:100;not null;uniqueIndex" json:"email"`
	Password          string     `gorm:"size:100;not null" json:"-"`
	Role              string     `gorm:"size:20;not null;default:'student';index" json:"role"`
	EmailVerifiedAt   *time.Time `gorm:"type:timestamp" json:"email_verified_at,omitempty"`
	VerificationToken string     `gorm:"size:64;default:'';index" json:"-"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// TableName sets the GORM table name.
func (User) TableName() string {
	return "users"
}

// IsExaminer reports whether the user has the examiner role.
func (u *User) IsExaminer() bool {
	return u.Role == RoleExaminer
}

// IsStudent reports whether the user has the student role.
func (u *User) IsStudent() bool {
	return u.Role == RoleStudent
}

// IsVerified reports whether the user's email has been confirmed.
func (u *User) IsVerified() bool {
	return u.EmailVerifiedAt != nil
}

// BeforeSave hashes the password unless it is already a bcrypt hash.
func (u *User) BeforeSave(tx *gorm.DB) error {
	if len(u.Password) > 0 && !strings.HasPrefix(u.Password, "$2a$") &&
		!strings.HasPrefix(u.Password, "$2b$") && !strings.HasPrefix(u.Password, "$2y$") {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("[User.BeforeSave] password hash failed for email=%s: %v", u.Email, err)
			return err
		}
		u.Password = string(hashedPassword)
	}
	return nil
}

// CheckPassword compares a plaintext password against the stored hash.
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}
