package gate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeChecker struct {
	admins  map[string]bool
	initial string
	calls   int
}

func (f *fakeChecker) IsAdmin(_ context.Context, email string) bool {
	f.calls++
	return f.admins[email]
}

func (f *fakeChecker) IsInitialAdmin(_ context.Context, email string) bool {
	f.calls++
	return f.admins[email] && email == f.initial
}

func TestAdminGate(t *testing.T) {
	c := &fakeChecker{admins: map[string]bool{"admin@example.com": true}}
	g := New(c)
	ctx := context.Background()

	tests := []struct {
		name  string
		email string
		want  Decision
	}{
		{"anonymous", "", RedirectTo(InputRoute)},
		{"non-admin", "driver@example.com", RedirectTo(InputRoute)},
		{"admin", "admin@example.com", Admit()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, g.Admin(ctx, tt.email))
		})
	}
}

func TestAdminGateSkipsLookupForAnonymous(t *testing.T) {
	c := &fakeChecker{}
	New(c).Admin(context.Background(), "")
	assert.Zero(t, c.calls)
}

func TestInitialAdminGate(t *testing.T) {
	c := &fakeChecker{
		admins:  map[string]bool{"admin@example.com": true, "root@example.com": true},
		initial: "root@example.com",
	}
	g := New(c)
	ctx := context.Background()

	assert.Equal(t, RedirectTo(InputRoute), g.InitialAdmin(ctx, "driver@example.com"))
	assert.Equal(t, RedirectTo(AdminRoute), g.InitialAdmin(ctx, "admin@example.com"))
	assert.Equal(t, Admit(), g.InitialAdmin(ctx, "root@example.com"))
}
