package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/erazemk/transferlog/internal/model"
	"github.com/erazemk/transferlog/internal/notify"
	"github.com/erazemk/transferlog/internal/store"
)

// Sign-in failures.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// Paths emailed links point to.
const (
	ResetPath  = "/reset-password/confirm"
	VerifyPath = "/verify-email"
)

// Session is a signed-in user and their session token.
type Session struct {
	Token  string
	Claims *Claims
	User   *model.User
}

// Provider signs users in and out and manages their passwords.
type Provider struct {
	DB         *sql.DB
	Secret     string
	Mailer     notify.Sender
	PublicURL  string
	SystemName string
}

// SignIn checks an email and password pair and starts a session.
func (p *Provider) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = model.NormalizeEmail(email)
	user, err := store.GetUserByEmail(ctx, p.DB, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return p.startSession(user)
}

// SignUp creates a password account and starts a session.
func (p *Provider) SignUp(ctx context.Context, email, password, name string) (*Session, error) {
	email = model.NormalizeEmail(email)
	if err := model.ValidateEmail(email); err != nil {
		return nil, err
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	existing, err := store.GetUserByEmail(ctx, p.DB, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	user, err := store.CreateUser(ctx, p.DB, email, hash, name, model.ProviderPassword)
	if err != nil {
		return nil, err
	}
	slog.Info("user signed up", "user", user.Email)
	if err := p.SendVerification(ctx, user); err != nil {
		slog.Error("failed to send verification email", "user", user.Email, "error", err)
	}
	return p.startSession(user)
}

// SignInExternal starts a session for an identity verified by an external
// provider, creating the user on first sign-in.
func (p *Provider) SignInExternal(ctx context.Context, email, name, provider string) (*Session, error) {
	email = model.NormalizeEmail(email)
	if err := model.ValidateEmail(email); err != nil {
		return nil, err
	}

	user, err := store.GetUserByEmail(ctx, p.DB, email)
	if err != nil {
		return nil, err
	}
	switch {
	case user == nil:
		user, err = store.CreateUser(ctx, p.DB, email, "", name, provider)
		if err != nil {
			return nil, err
		}
		slog.Info("user signed up", "user", user.Email, "provider", provider)
	case user.DisplayName == "" && name != "":
		if err := store.UpdateUserDisplayName(ctx, p.DB, user.ID, name); err != nil {
			return nil, err
		}
		user.DisplayName = name
	}
	if !user.EmailVerified {
		if err := store.MarkUserVerified(ctx, p.DB, user.ID); err != nil {
			return nil, err
		}
		user.EmailVerified = true
	}
	return p.startSession(user)
}

func (p *Provider) startSession(user *model.User) (*Session, error) {
	token, claims, err := GenerateToken(p.Secret, user, PurposeSession, SessionExpiry)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, Claims: claims, User: user}, nil
}

// Verify validates a session token and checks that it has not been revoked.
func (p *Provider) Verify(ctx context.Context, token string) (*Claims, error) {
	claims, err := ValidateTokenFor(p.Secret, token, PurposeSession)
	if err != nil {
		return nil, ErrInvalidToken
	}
	revoked, err := store.IsTokenRevoked(ctx, p.DB, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrInvalidToken
	}

	user, err := store.GetUser(ctx, p.DB, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Email != claims.Email {
		return nil, ErrInvalidToken
	}
	claims.Verified = user.EmailVerified
	return claims, nil
}

// SignOut revokes the session described by claims.
func (p *Provider) SignOut(ctx context.Context, claims *Claims) error {
	if claims == nil || claims.ID == "" {
		return nil
	}
	if err := store.RevokeToken(ctx, p.DB, claims.ID, claims.expiry()); err != nil {
		return err
	}
	slog.Info("user signed out", "user", claims.Email)
	return nil
}

// RequestPasswordReset emails a reset link to email. Unknown addresses and
// accounts without a password are ignored so the caller cannot tell them
// apart from real ones.
func (p *Provider) RequestPasswordReset(ctx context.Context, email string) error {
	email = model.NormalizeEmail(email)
	if err := model.ValidateEmail(email); err != nil {
		return err
	}

	user, err := store.GetUserByEmail(ctx, p.DB, email)
	if err != nil {
		return err
	}
	if user == nil || user.PasswordHash == "" {
		slog.Info("password reset requested for unknown account", "email", email)
		return nil
	}

	token, _, err := GenerateToken(p.Secret, user, PurposeReset, ResetExpiry)
	if err != nil {
		return err
	}
	link := p.PublicURL + ResetPath + "?token=" + url.QueryEscape(token)

	msg, err := notify.ResetEmail(user.Email, link, ResetExpiry, p.SystemName)
	if err != nil {
		return err
	}
	if err := p.Mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("sending reset email: %w", err)
	}
	slog.Info("password reset email sent", "user", user.Email)
	return nil
}

// ResetPassword sets a new password using a reset token. Each token works
// once.
func (p *Provider) ResetPassword(ctx context.Context, token, password string) error {
	claims, err := ValidateTokenFor(p.Secret, token, PurposeReset)
	if err != nil {
		return ErrInvalidToken
	}
	revoked, err := store.IsTokenRevoked(ctx, p.DB, claims.ID)
	if err != nil {
		return err
	}
	if revoked {
		return ErrInvalidToken
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}

	user, err := store.GetUser(ctx, p.DB, claims.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrInvalidToken
	}

	if err := store.UpdateUserPassword(ctx, p.DB, user.ID, hash); err != nil {
		return err
	}
	if err := store.RevokeToken(ctx, p.DB, claims.ID, claims.expiry()); err != nil {
		return err
	}
	slog.Info("password reset", "user", user.Email)
	return nil
}

// ResetTokenValid reports whether token can still be used to reset a password.
func (p *Provider) ResetTokenValid(ctx context.Context, token string) bool {
	claims, err := ValidateTokenFor(p.Secret, token, PurposeReset)
	if err != nil {
		return false
	}
	revoked, err := store.IsTokenRevoked(ctx, p.DB, claims.ID)
	return err == nil && !revoked && claims.expiry().After(time.Now())
}

// SendVerification emails user a link that confirms they own their address.
// Verified users are skipped.
func (p *Provider) SendVerification(ctx context.Context, user *model.User) error {
	if user.EmailVerified {
		return nil
	}
	token, _, err := GenerateToken(p.Secret, user, PurposeVerify, VerifyExpiry)
	if err != nil {
		return err
	}
	link := p.PublicURL + VerifyPath + "?token=" + url.QueryEscape(token)

	msg, err := notify.VerifyEmail(user.Email, link, VerifyExpiry, p.SystemName)
	if err != nil {
		return err
	}
	if err := p.Mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("sending verification email: %w", err)
	}
	slog.Info("verification email sent", "user", user.Email)
	return nil
}

// ResendVerification sends a fresh verification link to the signed-in user.
func (p *Provider) ResendVerification(ctx context.Context, claims *Claims) error {
	user, err := store.GetUser(ctx, p.DB, claims.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrInvalidToken
	}
	return p.SendVerification(ctx, user)
}

// ConfirmEmail marks the owner of a verification token as verified. Each
// token works once.
func (p *Provider) ConfirmEmail(ctx context.Context, token string) (*model.User, error) {
	claims, err := ValidateTokenFor(p.Secret, token, PurposeVerify)
	if err != nil {
		return nil, ErrInvalidToken
	}
	revoked, err := store.IsTokenRevoked(ctx, p.DB, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrInvalidToken
	}

	user, err := store.GetUser(ctx, p.DB, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Email != claims.Email {
		return nil, ErrInvalidToken
	}

	if err := store.MarkUserVerified(ctx, p.DB, user.ID); err != nil {
		return nil, err
	}
	if err := store.RevokeToken(ctx, p.DB, claims.ID, claims.expiry()); err != nil {
		return nil, err
	}
	user.EmailVerified = true
	slog.Info("email verified", "user", user.Email)
	return user, nil
}
