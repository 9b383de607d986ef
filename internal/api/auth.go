package api

import (
	"errors"
	"net/http"

	"github.com/erazemk/transferlog/internal/auth"
	"github.com/erazemk/transferlog/internal/httpx"
	"github.com/erazemk/transferlog/internal/model"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	Auth *auth.Provider
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

type resetRequest struct {
	Email string `json:"email"`
}

type verifyEmailRequest struct {
	Token string `json:"token"`
}

type confirmResetRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		jsonError(w, http.StatusBadRequest, "email and password required")
		return
	}

	log := httpx.Logger(r.Context())
	s, err := h.Auth.SignIn(r.Context(), req.Email, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		log.Warn("login failed", "email", req.Email, "remote", r.RemoteAddr)
		jsonError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err != nil {
		log.Error("login error", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	log.Info("user logged in", "user", s.User.Email)
	jsonResponse(w, http.StatusOK, loginResponse{Token: s.Token, User: s.User})
}

// Signup handles POST /api/auth/signup.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s, err := h.Auth.SignUp(r.Context(), req.Email, req.Password, req.DisplayName)
	switch {
	case errors.Is(err, model.ErrInvalidEmail), errors.Is(err, model.ErrPasswordTooShort):
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, auth.ErrEmailTaken):
		jsonError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		httpx.Logger(r.Context()).Error("signup error", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	jsonResponse(w, http.StatusCreated, loginResponse{Token: s.Token, User: s.User})
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())
	if err := h.Auth.SignOut(r.Context(), claims); err != nil {
		httpx.Logger(r.Context()).Error("failed to revoke token", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to log out")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// RequestReset handles POST /api/auth/password-reset. It answers the same way
// whether or not the account exists.
func (h *AuthHandler) RequestReset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.Auth.RequestPasswordReset(r.Context(), req.Email)
	if errors.Is(err, model.ErrInvalidEmail) {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		httpx.Logger(r.Context()).Error("password reset request failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to send password reset email")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "if the account exists, a reset link has been sent"})
}

// ConfirmReset handles POST /api/auth/password-reset/confirm.
func (h *AuthHandler) ConfirmReset(w http.ResponseWriter, r *http.Request) {
	var req confirmResetRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.Auth.ResetPassword(r.Context(), req.Token, req.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, model.ErrPasswordTooShort):
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		httpx.Logger(r.Context()).Error("password reset failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to reset password")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "password updated"})
}

// VerifyEmail handles POST /api/auth/verify-email with the token from the
// confirmation email.
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req verifyEmailRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.Auth.ConfirmEmail(r.Context(), req.Token)
	switch {
	case errors.Is(err, auth.ErrInvalidToken):
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		httpx.Logger(r.Context()).Error("email confirmation failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to confirm email")
		return
	}
	jsonResponse(w, http.StatusOK, user)
}

// ResendVerification handles POST /api/auth/verify-email/resend.
func (h *AuthHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())
	if err := h.Auth.ResendVerification(r.Context(), claims); err != nil {
		httpx.Logger(r.Context()).Error("failed to resend verification email", "user", claims.Email, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to send confirmation email")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "confirmation email sent"})
}
