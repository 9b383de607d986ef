package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/erazemk/transferlog/internal/auth"
	"github.com/erazemk/transferlog/internal/gate"
	"github.com/erazemk/transferlog/internal/httpx"
	"github.com/erazemk/transferlog/internal/model"
)

type authPage struct {
	PageData
	Email          string
	Name           string
	Token          string
	GoogleEnabled  bool
	TokenValid     bool
	ResetRequested bool
}

func (s *Server) authPage(r *http.Request, title string) *authPage {
	return &authPage{
		PageData:      PageData{Title: title, SystemName: s.Config.SystemName},
		GoogleEnabled: s.Google != nil,
	}
}

// throttled renders page with a rate limit error if the client has made too
// many attempts.
func (s *Server) throttled(w http.ResponseWriter, r *http.Request, page string, data *authPage) bool {
	allowed, retryAfter := s.limiter.Allow(r)
	if allowed {
		return false
	}
	secs := int(retryAfter.Seconds()) + 1
	w.Header().Set("Retry-After", strconv.Itoa(secs))
	data.Error = "Too many attempts. Please wait a minute and try again."
	s.Templates.RenderStatus(w, http.StatusTooManyRequests, page, data)
	return true
}

// LoginPage handles GET /login.
func (s *Server) LoginPage(w http.ResponseWriter, r *http.Request) {
	data := s.authPage(r, "Sign In")
	data.Error = r.URL.Query().Get("error")
	data.Success = r.URL.Query().Get("success")
	s.Templates.Render(w, "login.html", data)
}

// LoginSubmit handles POST /login.
func (s *Server) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	data := s.authPage(r, "Sign In")
	data.Email = strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	if s.throttled(w, r, "login.html", data) {
		return
	}
	if data.Email == "" || password == "" {
		data.Error = "Please enter your email and password."
		s.Templates.Render(w, "login.html", data)
		return
	}

	sess, err := s.Auth.SignIn(r.Context(), data.Email, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			data.Error = "Invalid email or password."
		} else {
			httpx.Logger(r.Context()).Error("failed to sign in", "error", err)
			data.Error = "Sign in failed. Please try again."
		}
		s.Templates.Render(w, "login.html", data)
		return
	}

	s.setAuthCookie(w, sess)
	http.Redirect(w, r, gate.InputRoute, http.StatusSeeOther)
}

// SignupPage handles GET /signup.
func (s *Server) SignupPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "signup.html", s.authPage(r, "Create Account"))
}

// SignupSubmit handles POST /signup.
func (s *Server) SignupSubmit(w http.ResponseWriter, r *http.Request) {
	data := s.authPage(r, "Create Account")
	data.Email = strings.TrimSpace(r.FormValue("email"))
	data.Name = strings.TrimSpace(r.FormValue("name"))
	password := r.FormValue("password")

	if s.throttled(w, r, "signup.html", data) {
		return
	}
	if password != r.FormValue("confirm") {
		data.Error = "Passwords do not match."
		s.Templates.Render(w, "signup.html", data)
		return
	}

	sess, err := s.Auth.SignUp(r.Context(), data.Email, password, data.Name)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailTaken):
			data.Error = "An account with this email already exists."
		case errors.Is(err, model.ErrInvalidEmail):
			data.Error = "Please enter a valid email address."
		case errors.Is(err, model.ErrPasswordTooShort):
			data.Error = "Password must be at least 8 characters."
		default:
			httpx.Logger(r.Context()).Error("failed to sign up", "error", err)
			data.Error = "Could not create the account. Please try again."
		}
		s.Templates.Render(w, "signup.html", data)
		return
	}

	s.setAuthCookie(w, sess)
	http.Redirect(w, r, gate.InputRoute, http.StatusSeeOther)
}

// Logout handles POST /logout.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	if claims := auth.FromContext(r.Context()); claims != nil {
		if err := s.Auth.SignOut(r.Context(), claims); err != nil {
			httpx.Logger(r.Context()).Error("failed to revoke session", "error", err)
		}
	}
	clearAuthCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// ResetPage handles GET /reset-password.
func (s *Server) ResetPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "reset_password.html", s.authPage(r, "Reset Password"))
}

// ResetSubmit handles POST /reset-password. The response is the same whether
// or not the address has an account.
func (s *Server) ResetSubmit(w http.ResponseWriter, r *http.Request) {
	data := s.authPage(r, "Reset Password")
	data.Email = strings.TrimSpace(r.FormValue("email"))

	if s.throttled(w, r, "reset_password.html", data) {
		return
	}

	if err := s.Auth.RequestPasswordReset(r.Context(), data.Email); err != nil {
		if errors.Is(err, model.ErrInvalidEmail) {
			data.Error = "Please enter a valid email address."
		} else {
			httpx.Logger(r.Context()).Error("failed to request password reset", "error", err)
			data.Error = "Could not send the reset email. Please try again later."
		}
		s.Templates.Render(w, "reset_password.html", data)
		return
	}

	data.ResetRequested = true
	data.Success = "If an account exists for that address, a reset link has been sent."
	s.Templates.Render(w, "reset_password.html", data)
}

// ResetConfirmPage handles GET /reset-password/confirm?token=.
func (s *Server) ResetConfirmPage(w http.ResponseWriter, r *http.Request) {
	data := s.authPage(r, "Choose a New Password")
	data.Token = r.URL.Query().Get("token")
	data.TokenValid = s.Auth.ResetTokenValid(r.Context(), data.Token)
	if !data.TokenValid {
		data.Error = "This reset link is invalid or has expired."
	}
	s.Templates.Render(w, "reset_confirm.html", data)
}

// ResetConfirmSubmit handles POST /reset-password/confirm.
func (s *Server) ResetConfirmSubmit(w http.ResponseWriter, r *http.Request) {
	data := s.authPage(r, "Choose a New Password")
	data.Token = r.FormValue("token")
	data.TokenValid = true
	password := r.FormValue("password")

	if s.throttled(w, r, "reset_confirm.html", data) {
		return
	}
	if password != r.FormValue("confirm") {
		data.Error = "Passwords do not match."
		s.Templates.Render(w, "reset_confirm.html", data)
		return
	}

	if err := s.Auth.ResetPassword(r.Context(), data.Token, password); err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidToken):
			data.TokenValid = false
			data.Error = "This reset link is invalid or has expired."
		case errors.Is(err, model.ErrPasswordTooShort):
			data.Error = "Password must be at least 8 characters."
		default:
			httpx.Logger(r.Context()).Error("failed to reset password", "error", err)
			data.Error = "Could not reset the password. Please try again."
		}
		s.Templates.Render(w, "reset_confirm.html", data)
		return
	}

	http.Redirect(w, r, "/login?success="+
		"Your+password+has+been+reset.+Please+sign+in.", http.StatusSeeOther)
}

// GoogleStart handles GET /auth/google.
func (s *Server) GoogleStart(w http.ResponseWriter, r *http.Request) {
	if s.Google == nil {
		http.NotFound(w, r)
		return
	}

	state := auth.NewState()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/auth/google",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   s.secureCookies(),
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, s.Google.AuthCodeURL(state), http.StatusFound)
}

// GoogleCallback handles GET /auth/google/callback.
func (s *Server) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if s.Google == nil {
		http.NotFound(w, r)
		return
	}
	log := httpx.Logger(r.Context())

	cookie, err := r.Cookie(stateCookie)
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Path: "/auth/google", MaxAge: -1})
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		log.Warn("google sign-in state mismatch")
		http.Redirect(w, r, "/login?error=Google+sign-in+failed.+Please+try+again.", http.StatusSeeOther)
		return
	}
	if e := r.URL.Query().Get("error"); e != "" {
		log.Info("google sign-in cancelled", "reason", e)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	profile, err := s.Google.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		log.Error("google sign-in failed", "error", err)
		http.Redirect(w, r, "/login?error=Google+sign-in+failed.+Please+try+again.", http.StatusSeeOther)
		return
	}

	sess, err := s.Auth.SignInExternal(r.Context(), profile.Email, profile.Name, model.ProviderGoogle)
	if err != nil {
		log.Error("failed to start google session", "error", err)
		http.Redirect(w, r, "/login?error=Google+sign-in+failed.+Please+try+again.", http.StatusSeeOther)
		return
	}

	s.setAuthCookie(w, sess)
	http.Redirect(w, r, gate.InputRoute, http.StatusSeeOther)
}
