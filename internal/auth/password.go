package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/transferlog/internal/model"
)

// HashPassword checks password strength and returns its bcrypt hash.
func HashPassword(password string) (string, error) {
	if err := model.ValidatePassword(password); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash. Accounts without a
// password never match.
func CheckPassword(hash, password string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
