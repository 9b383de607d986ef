package web

import (
	"errors"
	"net/http"

	"github.com/erazemk/transferlog/internal/auth"
	"github.com/erazemk/transferlog/internal/httpx"
)

// VerifyEmail handles GET /verify-email, the link sent after sign-up.
func (s *Server) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	_, err := s.Auth.ConfirmEmail(r.Context(), r.URL.Query().Get("token"))
	switch {
	case errors.Is(err, auth.ErrInvalidToken):
		http.Redirect(w, r, "/login?error="+
			"This+confirmation+link+is+invalid+or+has+expired.", http.StatusSeeOther)
	case err != nil:
		httpx.Logger(r.Context()).Error("failed to confirm email", "error", err)
		http.Redirect(w, r, "/login?error="+
			"Could+not+confirm+your+email.+Please+try+again.", http.StatusSeeOther)
	default:
		http.Redirect(w, r, "/login?success="+
			"Your+email+address+is+confirmed.", http.StatusSeeOther)
	}
}

// ResendVerification handles POST /verify-email/resend.
func (s *Server) ResendVerification(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())
	data := s.inputPage(r)

	if err := s.Auth.ResendVerification(r.Context(), claims); err != nil {
		httpx.Logger(r.Context()).Error("failed to resend verification email", "user", claims.Email, "error", err)
		data.Error = "Could not send the confirmation email. Please try again later."
		s.Templates.RenderStatus(w, http.StatusBadGateway, "input.html", data)
		return
	}
	data.Success = "A new confirmation link was sent to " + claims.Email + "."
	s.Templates.Render(w, "input.html", data)
}
