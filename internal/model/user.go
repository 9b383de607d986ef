package model

import (
	"errors"
	"time"
)

// User is an authenticated identity.
type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	DisplayName   string    `json:"displayName,omitempty"`
	Provider      string    `json:"provider"`
	EmailVerified bool      `json:"emailVerified"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Identity providers.
const (
	ProviderPassword = "password"
	ProviderGoogle   = "google"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// ErrPasswordTooShort is returned by ValidatePassword.
var ErrPasswordTooShort = errors.New("password must be at least 8 characters")

// ValidatePassword checks password strength rules.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

// ErrInvalidEmail is returned by ValidateEmail.
var ErrInvalidEmail = errors.New("a valid email address is required")

// ValidateEmail checks that email is a syntactically valid address.
func ValidateEmail(email string) error {
	if validate.Var(email, "required,email") != nil {
		return ErrInvalidEmail
	}
	return nil
}
