package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/erazemk/transferlog/internal/idx"
	"github.com/erazemk/transferlog/internal/model"
)

// Errors returned by MarkInitialAdmin.
var (
	ErrInitialAdminExists = errors.New("initial admin already set")
	ErrAdminNotFound      = errors.New("admin not found")
)

const adminColumns = `id, email, name, added_by, added_at, is_initial_admin`

// GetAdminByEmail returns the admin with the given normalized email, or nil.
func GetAdminByEmail(ctx context.Context, db *sql.DB, email string) (*model.Admin, error) {
	a := &model.Admin{}
	err := db.QueryRowContext(ctx,
		`SELECT `+adminColumns+` FROM admins WHERE email = ?`, email,
	).Scan(&a.ID, &a.Email, &a.Name, &a.AddedBy, &a.AddedAt, &a.IsInitialAdmin)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting admin by email: %w", err)
	}
	return a, nil
}

// GetInitialAdmin returns the initial admin, or nil if none has been promoted.
func GetInitialAdmin(ctx context.Context, db *sql.DB) (*model.Admin, error) {
	a := &model.Admin{}
	err := db.QueryRowContext(ctx,
		`SELECT `+adminColumns+` FROM admins WHERE is_initial_admin = 1`,
	).Scan(&a.ID, &a.Email, &a.Name, &a.AddedBy, &a.AddedAt, &a.IsInitialAdmin)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting initial admin: %w", err)
	}
	return a, nil
}

// InsertAdmin stores a new non-initial admin. The email must already be
// normalized; a duplicate email fails with a constraint error.
func InsertAdmin(ctx context.Context, db *sql.DB, email, name, addedBy string) (*model.Admin, error) {
	now := time.Now().UTC()
	a := &model.Admin{
		ID:      idx.NewAt(now),
		Email:   email,
		Name:    name,
		AddedBy: addedBy,
		AddedAt: now,
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO admins (`+adminColumns+`) VALUES (?, ?, ?, ?, ?, 0)`,
		a.ID, a.Email, a.Name, a.AddedBy, a.AddedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting admin: %w", err)
	}
	return a, nil
}

// DeleteAdmin removes an admin by ID and reports whether a row was deleted.
func DeleteAdmin(ctx context.Context, db *sql.DB, id string) (bool, error) {
	result, err := db.ExecContext(ctx, `DELETE FROM admins WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting admin: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking deleted admin: %w", err)
	}
	return n > 0, nil
}

// GetAdmin returns an admin by ID, or nil.
func GetAdmin(ctx context.Context, db *sql.DB, id string) (*model.Admin, error) {
	a := &model.Admin{}
	err := db.QueryRowContext(ctx,
		`SELECT `+adminColumns+` FROM admins WHERE id = ?`, id,
	).Scan(&a.ID, &a.Email, &a.Name, &a.AddedBy, &a.AddedAt, &a.IsInitialAdmin)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting admin: %w", err)
	}
	return a, nil
}

// ListAdmins returns every admin, oldest grant first.
func ListAdmins(ctx context.Context, db *sql.DB) ([]model.Admin, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+adminColumns+` FROM admins ORDER BY added_at, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing admins: %w", err)
	}
	defer rows.Close()

	var admins []model.Admin
	for rows.Next() {
		var a model.Admin
		if err := rows.Scan(&a.ID, &a.Email, &a.Name, &a.AddedBy, &a.AddedAt, &a.IsInitialAdmin); err != nil {
			return nil, fmt.Errorf("scanning admin: %w", err)
		}
		admins = append(admins, a)
	}
	return admins, rows.Err()
}

// MarkInitialAdmin flags the admin with the given email as the initial admin.
// It fails if another admin already holds the flag.
func MarkInitialAdmin(ctx context.Context, db *sql.DB, email string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var existing string
	err = tx.QueryRowContext(ctx,
		`SELECT email FROM admins WHERE is_initial_admin = 1`,
	).Scan(&existing)
	switch {
	case err == sql.ErrNoRows:
	case err != nil:
		return fmt.Errorf("checking initial admin: %w", err)
	case existing == email:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrInitialAdminExists, existing)
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE admins SET is_initial_admin = 1 WHERE email = ?`, email,
	)
	if err != nil {
		return fmt.Errorf("marking initial admin: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrAdminNotFound, email)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing initial admin: %w", err)
	}
	return nil
}
