package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/erazemk/transferlog/internal/model"
)

// Token purposes.
const (
	PurposeSession = "session"
	PurposeReset   = "reset"
	PurposeVerify  = "verify"
)

// Token lifetimes.
const (
	SessionExpiry = 7 * 24 * time.Hour
	ResetExpiry   = time.Hour
	VerifyExpiry  = 24 * time.Hour
)

// ErrWrongPurpose is returned when a token is used for something it was not
// issued for.
var ErrWrongPurpose = errors.New("token issued for a different purpose")

// Claims represents the JWT claims.
type Claims struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	Purpose string `json:"purpose"`

	// Verified is refreshed from the user record on every request, so it is
	// never trusted from the token itself.
	Verified bool `json:"-"`
	jwt.RegisteredClaims
}

// DisplayName returns the name to greet the user with.
func (c *Claims) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Email
}

// AdminEmail returns the email admin rights are checked against. It is empty
// until the user has confirmed they own the address.
func (c *Claims) AdminEmail() string {
	if c == nil || !c.Verified {
		return ""
	}
	return c.Email
}

// GenerateToken creates a signed JWT for user with a unique JTI.
func GenerateToken(secret string, user *model.User, purpose string, ttl time.Duration) (string, *Claims, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   user.ID,
		Email:    user.Email,
		Name:     user.DisplayName,
		Purpose:  purpose,
		Verified: user.EmailVerified,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", nil, fmt.Errorf("signing token: %w", err)
	}
	return signed, claims, nil
}

// ValidateToken parses and validates a JWT, returning the claims.
func ValidateToken(secret, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}

// ValidateTokenFor is ValidateToken that also requires the given purpose.
func ValidateTokenFor(secret, tokenStr, purpose string) (*Claims, error) {
	claims, err := ValidateToken(secret, tokenStr)
	if err != nil {
		return nil, err
	}
	if claims.Purpose != purpose {
		return nil, ErrWrongPurpose
	}
	return claims, nil
}

// expiry returns when the claims stop being valid.
func (c *Claims) expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Now().Add(SessionExpiry)
	}
	return c.ExpiresAt.Time
}
