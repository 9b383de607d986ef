// Package gate decides whether a request may enter an admin-only route.
package gate

import "context"

// Routes a denied request is sent to.
const (
	InputRoute = "/input"
	AdminRoute = "/admin"
)

// Checker answers admin membership questions. *registry.Registry satisfies it.
type Checker interface {
	IsAdmin(ctx context.Context, email string) bool
	IsInitialAdmin(ctx context.Context, email string) bool
}

// Decision is the outcome of a gate check: either the request is admitted or
// it must be redirected to Redirect.
type Decision struct {
	Admitted bool
	Redirect string
}

// Admit returns an admitting decision.
func Admit() Decision {
	return Decision{Admitted: true}
}

// RedirectTo returns a decision that sends the request to target.
func RedirectTo(target string) Decision {
	return Decision{Redirect: target}
}

// Gate evaluates admin access for the signed-in identity.
type Gate struct {
	Checker Checker
}

// New returns a gate backed by c.
func New(c Checker) *Gate {
	return &Gate{Checker: c}
}

// Admin admits admins and sends everyone else, including anonymous
// requests, to the input form.
func (g *Gate) Admin(ctx context.Context, email string) Decision {
	if email == "" || !g.Checker.IsAdmin(ctx, email) {
		return RedirectTo(InputRoute)
	}
	return Admit()
}

// InitialAdmin admits only the initial admin. Other admins are sent to the
// admin dashboard, non-admins to the input form.
func (g *Gate) InitialAdmin(ctx context.Context, email string) Decision {
	if d := g.Admin(ctx, email); !d.Admitted {
		return d
	}
	if !g.Checker.IsInitialAdmin(ctx, email) {
		return RedirectTo(AdminRoute)
	}
	return Admit()
}
