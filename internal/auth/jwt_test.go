package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/erazemk/transferlog/internal/model"
)

var testUser = &model.User{ID: "01USER", Email: "driver@example.com", DisplayName: "Driver"}

func TestGenerateAndValidateToken(t *testing.T) {
	secret := "test-secret-key"

	token, issued, err := GenerateToken(secret, testUser, PurposeSession, SessionExpiry)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}
	if issued.ID == "" {
		t.Fatal("expected a JTI")
	}

	claims, err := ValidateToken(secret, token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}

	if claims.UserID != "01USER" {
		t.Errorf("expected user_id 01USER, got %q", claims.UserID)
	}
	if claims.Email != "driver@example.com" {
		t.Errorf("expected email driver@example.com, got %q", claims.Email)
	}
	if claims.Purpose != PurposeSession {
		t.Errorf("expected purpose session, got %q", claims.Purpose)
	}
	if claims.ID != issued.ID {
		t.Errorf("expected JTI %q, got %q", issued.ID, claims.ID)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, _, _ := GenerateToken("secret1", testUser, PurposeSession, SessionExpiry)

	_, err := ValidateToken("secret2", token)
	if err == nil {
		t.Error("expected error for wrong secret")
	}
}

func TestValidateTokenInvalid(t *testing.T) {
	_, err := ValidateToken("secret", "not-a-token")
	if err == nil {
		t.Error("expected error for invalid token")
	}
}

func TestValidateTokenExpired(t *testing.T) {
	token, _, _ := GenerateToken("secret", testUser, PurposeSession, -time.Minute)

	_, err := ValidateToken("secret", token)
	if err == nil {
		t.Error("expected error for expired token")
	}
}

func TestValidateTokenForPurpose(t *testing.T) {
	token, _, _ := GenerateToken("secret", testUser, PurposeReset, ResetExpiry)

	if _, err := ValidateTokenFor("secret", token, PurposeReset); err != nil {
		t.Errorf("expected reset token to validate: %v", err)
	}
	if _, err := ValidateTokenFor("secret", token, PurposeSession); !errors.Is(err, ErrWrongPurpose) {
		t.Errorf("expected ErrWrongPurpose, got %v", err)
	}
}

func TestUniqueJTI(t *testing.T) {
	_, a, _ := GenerateToken("secret", testUser, PurposeSession, SessionExpiry)
	_, b, _ := GenerateToken("secret", testUser, PurposeSession, SessionExpiry)
	if a.ID == b.ID {
		t.Error("expected distinct JTIs")
	}
}

func TestDisplayName(t *testing.T) {
	if got := (&Claims{Email: "a@b.c", Name: "Ann"}).DisplayName(); got != "Ann" {
		t.Errorf("expected Ann, got %q", got)
	}
	if got := (&Claims{Email: "a@b.c"}).DisplayName(); got != "a@b.c" {
		t.Errorf("expected email fallback, got %q", got)
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !CheckPassword(hash, "correct horse") {
		t.Error("expected password to match")
	}
	if CheckPassword(hash, "wrong horse") {
		t.Error("expected wrong password to fail")
	}
	if CheckPassword("", "anything") {
		t.Error("expected empty hash to never match")
	}
	if _, err := HashPassword("short"); !errors.Is(err, model.ErrPasswordTooShort) {
		t.Errorf("expected ErrPasswordTooShort, got %v", err)
	}
}
