// Package registry answers whether an identity is an admin and manages the
// set of admins.
package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/erazemk/transferlog/internal/model"
	"github.com/erazemk/transferlog/internal/store"
)

// Errors returned by registry writes.
var (
	ErrEmptyEmail         = errors.New("email is required")
	ErrInitialAdminExists = store.ErrInitialAdminExists
	ErrNotAdmin           = store.ErrAdminNotFound
	ErrSelfRemoval        = errors.New("admins cannot remove themselves")
)

// Registry is the admin registry backed by the admins table.
type Registry struct {
	DB *sql.DB
}

// New returns a registry over db.
func New(db *sql.DB) *Registry {
	return &Registry{DB: db}
}

// Lookup returns the admin record for email, or nil if email is not an admin.
func (r *Registry) Lookup(ctx context.Context, email string) (*model.Admin, error) {
	email = model.NormalizeEmail(email)
	if email == "" {
		return nil, nil
	}
	return store.GetAdminByEmail(ctx, r.DB, email)
}

// IsAdmin reports whether email belongs to an admin. Lookup failures are
// logged and treated as not an admin.
func (r *Registry) IsAdmin(ctx context.Context, email string) bool {
	a, err := r.Lookup(ctx, email)
	if err != nil {
		slog.Error("admin lookup failed", "email", email, "error", err)
		return false
	}
	return a != nil
}

// IsInitialAdmin reports whether email belongs to the initial admin. Lookup
// failures are logged and treated as false.
func (r *Registry) IsInitialAdmin(ctx context.Context, email string) bool {
	a, err := r.Lookup(ctx, email)
	if err != nil {
		slog.Error("initial admin lookup failed", "email", email, "error", err)
		return false
	}
	return a != nil && a.IsInitialAdmin
}

// AddAdmin grants admin access to email. If email is already an admin the
// existing record is returned unchanged.
func (r *Registry) AddAdmin(ctx context.Context, email, name, addedBy string) (*model.Admin, error) {
	email = model.NormalizeEmail(email)
	if email == "" {
		return nil, ErrEmptyEmail
	}

	existing, err := store.GetAdminByEmail(ctx, r.DB, email)
	if err != nil {
		return nil, fmt.Errorf("checking existing admin: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	a, err := store.InsertAdmin(ctx, r.DB, email, name, addedBy)
	if err != nil {
		// A concurrent add may have won the unique index.
		if raced, lookupErr := store.GetAdminByEmail(ctx, r.DB, email); lookupErr == nil && raced != nil {
			return raced, nil
		}
		return nil, err
	}

	slog.Info("admin added", "email", email, "added_by", addedBy)
	return a, nil
}

// RemoveAdmin revokes the admin with the given ID. It reports false if no
// such admin existed. Callers are responsible for authorization.
func (r *Registry) RemoveAdmin(ctx context.Context, id string) (bool, error) {
	removed, err := store.DeleteAdmin(ctx, r.DB, id)
	if err != nil {
		return false, err
	}
	if removed {
		slog.Info("admin removed", "id", id)
	}
	return removed, nil
}

// Revoke removes the admin with the given ID on behalf of actor. Admins
// cannot remove themselves.
func (r *Registry) Revoke(ctx context.Context, id, actor string) error {
	a, err := store.GetAdmin(ctx, r.DB, id)
	if err != nil {
		return err
	}
	if a == nil {
		return ErrNotAdmin
	}
	if a.Email == model.NormalizeEmail(actor) {
		return ErrSelfRemoval
	}
	removed, err := r.RemoveAdmin(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotAdmin
	}
	return nil
}

// ListAdmins returns every admin.
func (r *Registry) ListAdmins(ctx context.Context) ([]model.Admin, error) {
	return store.ListAdmins(ctx, r.DB)
}

// Promote makes an existing admin the initial admin. It fails with
// ErrInitialAdminExists if a different initial admin is already set.
func (r *Registry) Promote(ctx context.Context, email string) error {
	email = model.NormalizeEmail(email)
	if email == "" {
		return ErrEmptyEmail
	}
	if err := store.MarkInitialAdmin(ctx, r.DB, email); err != nil {
		return err
	}
	slog.Info("initial admin set", "email", email)
	return nil
}

// Bootstrap adds email as an admin granted by the system and promotes it to
// initial admin when no initial admin exists yet.
func (r *Registry) Bootstrap(ctx context.Context, email string) (*model.Admin, error) {
	a, err := r.AddAdmin(ctx, email, "", model.AddedBySystem)
	if err != nil {
		return nil, err
	}

	initial, err := store.GetInitialAdmin(ctx, r.DB)
	if err != nil {
		return nil, err
	}
	if initial != nil {
		return a, nil
	}

	if err := r.Promote(ctx, a.Email); err != nil {
		return nil, err
	}
	a.IsInitialAdmin = true
	return a, nil
}
