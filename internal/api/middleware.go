package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/erazemk/transferlog/internal/auth"
	"github.com/erazemk/transferlog/internal/gate"
	"github.com/erazemk/transferlog/internal/httpx"
)

// TokenCookie is the session cookie shared with the web UI.
const TokenCookie = "token"

// bearerOrCookie returns the session token from the Authorization header,
// falling back to the session cookie.
func bearerOrCookie(r *http.Request) string {
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if c, err := r.Cookie(TokenCookie); err == nil {
		return c.Value
	}
	return ""
}

// AuthMiddleware validates the session token, checks that it has not been
// revoked, and adds the claims to the context.
func AuthMiddleware(p *auth.Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerOrCookie(r)
			if token == "" {
				jsonError(w, http.StatusUnauthorized, "missing or invalid authorization header")
				return
			}

			claims, err := p.Verify(r.Context(), token)
			if err != nil {
				if !errors.Is(err, auth.ErrInvalidToken) {
					httpx.Logger(r.Context()).Error("failed to verify session", "error", err)
				}
				jsonError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.NewContext(r.Context(), claims)))
		})
	}
}

// RequireAdmin rejects signed-in users who are not admins.
func RequireAdmin(g *gate.Gate) func(http.Handler) http.Handler {
	return requireDecision(func(r *http.Request, email string) gate.Decision {
		return g.Admin(r.Context(), email)
	}, "admin access required")
}

// RequireInitialAdmin rejects everyone but the initial admin.
func RequireInitialAdmin(g *gate.Gate) func(http.Handler) http.Handler {
	return requireDecision(func(r *http.Request, email string) gate.Decision {
		return g.InitialAdmin(r.Context(), email)
	}, "initial admin access required")
}

func requireDecision(decide func(*http.Request, string) gate.Decision, denied string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := auth.FromContext(r.Context())
			if claims == nil {
				jsonError(w, http.StatusUnauthorized, "not authenticated")
				return
			}
			if !decide(r, claims.AdminEmail()).Admitted {
				httpx.Logger(r.Context()).Warn("access denied", "user", claims.Email, "path", r.URL.Path)
				jsonError(w, http.StatusForbidden, denied)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
