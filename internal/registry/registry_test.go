package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/transferlog/internal/db"
	"github.com/erazemk/transferlog/internal/model"
)

func newRegistry(t *testing.T) *Registry {
	t.Helper()
	return New(db.NewTestDB(t))
}

func TestAddAdminIdempotent(t *testing.T) {
	r := newRegistry(t)
	ctx := context.Background()

	first, err := r.AddAdmin(ctx, "  Manager@Example.com ", "Manager", "root@example.com")
	require.NoError(t, err)
	assert.Equal(t, "manager@example.com", first.Email)
	assert.False(t, first.IsInitialAdmin)

	second, err := r.AddAdmin(ctx, "manager@example.com", "Other Name", "someone@example.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Manager", second.Name, "existing record is returned unchanged")

	admins, err := r.ListAdmins(ctx)
	require.NoError(t, err)
	assert.Len(t, admins, 1)
}

func TestAddAdminRequiresEmail(t *testing.T) {
	r := newRegistry(t)
	_, err := r.AddAdmin(context.Background(), "   ", "", "x")
	assert.ErrorIs(t, err, ErrEmptyEmail)
}

func TestIsAdmin(t *testing.T) {
	r := newRegistry(t)
	ctx := context.Background()

	assert.False(t, r.IsAdmin(ctx, "unknown@example.com"))
	assert.False(t, r.IsAdmin(ctx, ""))
	assert.False(t, r.IsInitialAdmin(ctx, "unknown@example.com"))

	_, err := r.AddAdmin(ctx, "admin@example.com", "", "x")
	require.NoError(t, err)

	assert.True(t, r.IsAdmin(ctx, "ADMIN@example.com"))
	assert.False(t, r.IsInitialAdmin(ctx, "admin@example.com"))
}

func TestIsAdminFailsClosed(t *testing.T) {
	database := db.NewTestDB(t)
	r := New(database)
	ctx := context.Background()

	_, err := r.AddAdmin(ctx, "admin@example.com", "", "x")
	require.NoError(t, err)

	database.Close()
	assert.False(t, r.IsAdmin(ctx, "admin@example.com"))
	assert.False(t, r.IsInitialAdmin(ctx, "admin@example.com"))
}

func TestRemoveAdmin(t *testing.T) {
	r := newRegistry(t)
	ctx := context.Background()

	a, err := r.AddAdmin(ctx, "temp@example.com", "", "x")
	require.NoError(t, err)

	removed, err := r.RemoveAdmin(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.False(t, r.IsAdmin(ctx, "temp@example.com"))

	removed, err = r.RemoveAdmin(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestPromoteSingleInitialAdmin(t *testing.T) {
	r := newRegistry(t)
	ctx := context.Background()

	_, err := r.AddAdmin(ctx, "first@example.com", "", "x")
	require.NoError(t, err)
	_, err = r.AddAdmin(ctx, "second@example.com", "", "x")
	require.NoError(t, err)

	require.NoError(t, r.Promote(ctx, "First@example.com"))
	assert.True(t, r.IsInitialAdmin(ctx, "first@example.com"))

	err = r.Promote(ctx, "second@example.com")
	assert.True(t, errors.Is(err, ErrInitialAdminExists))
	assert.False(t, r.IsInitialAdmin(ctx, "second@example.com"))

	err = r.Promote(ctx, "nobody@example.com")
	assert.Error(t, err)
}

func TestBootstrap(t *testing.T) {
	r := newRegistry(t)
	ctx := context.Background()

	a, err := r.Bootstrap(ctx, "owner@example.com")
	require.NoError(t, err)
	assert.True(t, a.IsInitialAdmin)
	assert.Equal(t, model.AddedBySystem, a.AddedBy)

	// A second bootstrap adds the admin but keeps the original initial admin.
	b, err := r.Bootstrap(ctx, "other@example.com")
	require.NoError(t, err)
	assert.False(t, b.IsInitialAdmin)
	assert.True(t, r.IsInitialAdmin(ctx, "owner@example.com"))
}

func TestRevoke(t *testing.T) {
	r := newRegistry(t)
	ctx := context.Background()

	root, err := r.Bootstrap(ctx, "root@example.com")
	require.NoError(t, err)
	other, err := r.AddAdmin(ctx, "other@example.com", "", "root@example.com")
	require.NoError(t, err)

	assert.ErrorIs(t, r.Revoke(ctx, root.ID, "ROOT@example.com"), ErrSelfRemoval)
	assert.True(t, r.IsAdmin(ctx, "root@example.com"))

	require.NoError(t, r.Revoke(ctx, other.ID, "root@example.com"))
	assert.False(t, r.IsAdmin(ctx, "other@example.com"))

	assert.ErrorIs(t, r.Revoke(ctx, other.ID, "root@example.com"), ErrNotAdmin)
}
