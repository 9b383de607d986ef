package web

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/erazemk/transferlog/internal/auth"
	"github.com/erazemk/transferlog/internal/gate"
	"github.com/erazemk/transferlog/internal/httpx"
)

// Cookie names.
const (
	tokenCookie = "token"
	stateCookie = "oauth_state"
)

// CookieAuthMiddleware validates the session cookie, checks token revocation,
// and adds claims to context.
func CookieAuthMiddleware(p *auth.Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(tokenCookie)
			if err != nil || cookie.Value == "" {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			claims, err := p.Verify(r.Context(), cookie.Value)
			if err != nil {
				if !errors.Is(err, auth.ErrInvalidToken) {
					httpx.Logger(r.Context()).Error("failed to check token revocation", "error", err)
				}
				clearAuthCookie(w)
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.NewContext(r.Context(), claims)))
		})
	}
}

// GateMiddleware redirects requests the gate does not admit. It must run
// after CookieAuthMiddleware.
func GateMiddleware(decide func(ctx context.Context, email string) gate.Decision) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var user string
			claims := auth.FromContext(r.Context())
			if claims != nil {
				user = claims.Email
			}
			d := decide(r.Context(), claims.AdminEmail())
			if !d.Admitted {
				httpx.Logger(r.Context()).Info("redirecting unauthorized user", "user", user, "path", r.URL.Path, "to", d.Redirect)
				http.Redirect(w, r, d.Redirect, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// setAuthCookie stores a session token. Lax lets the cookie survive the
// redirect back from Google sign-in.
func (s *Server) setAuthCookie(w http.ResponseWriter, sess *auth.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookie,
		Value:    sess.Token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secureCookies(),
		SameSite: http.SameSiteLaxMode,
		Expires:  sess.Claims.ExpiresAt.Time,
	})
}

func (s *Server) secureCookies() bool {
	return strings.HasPrefix(s.Config.PublicURL, "https://")
}

// clearAuthCookie clears the authentication cookie with consistent attributes.
func clearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
