package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/transferlog/internal/idx"
	"github.com/erazemk/transferlog/internal/model"
)

const userColumns = `id, email, password_hash, display_name, provider, email_verified, created_at`

// CreateUser creates a new user. The email must already be normalized.
// Accounts from an external provider arrive with a verified email; password
// accounts start unverified.
func CreateUser(ctx context.Context, db *sql.DB, email, passwordHash, displayName, provider string) (*model.User, error) {
	now := time.Now().UTC()
	u := &model.User{
		ID:            idx.NewAt(now),
		Email:         email,
		PasswordHash:  passwordHash,
		DisplayName:   displayName,
		Provider:      provider,
		EmailVerified: provider != model.ProviderPassword,
		CreatedAt:     now,
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, u.DisplayName, u.Provider, u.EmailVerified, u.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return u, nil
}

// GetUser returns a user by ID, or nil.
func GetUser(ctx context.Context, db *sql.DB, id string) (*model.User, error) {
	return getUserWhere(ctx, db, `id = ?`, id)
}

// GetUserByEmail returns a user by normalized email, or nil.
func GetUserByEmail(ctx context.Context, db *sql.DB, email string) (*model.User, error) {
	return getUserWhere(ctx, db, `email = ?`, email)
}

func getUserWhere(ctx context.Context, db *sql.DB, where string, arg any) (*model.User, error) {
	u := &model.User{}
	err := db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE `+where, arg,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &u.Provider, &u.EmailVerified, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}

// UpdateUserPassword updates a user's password hash.
func UpdateUserPassword(ctx context.Context, db *sql.DB, id, passwordHash string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE id = ?`, passwordHash, id,
	)
	if err != nil {
		return fmt.Errorf("updating user password: %w", err)
	}
	return nil
}

// UpdateUserDisplayName sets the display name of a user.
func UpdateUserDisplayName(ctx context.Context, db *sql.DB, id, name string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE users SET display_name = ? WHERE id = ?`, name, id,
	)
	if err != nil {
		return fmt.Errorf("updating user display name: %w", err)
	}
	return nil
}

// MarkUserVerified records that the user has proven they own their email.
func MarkUserVerified(ctx context.Context, db *sql.DB, id string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE users SET email_verified = 1 WHERE id = ?`, id,
	)
	if err != nil {
		return fmt.Errorf("marking user verified: %w", err)
	}
	return nil
}
