package api

import (
	"errors"
	"net/http"

	"github.com/erazemk/transferlog/internal/auth"
	"github.com/erazemk/transferlog/internal/httpx"
	"github.com/erazemk/transferlog/internal/model"
	"github.com/erazemk/transferlog/internal/registry"
)

// AdminsHandler manages the admin registry (initial admin only).
type AdminsHandler struct {
	Registry *registry.Registry
}

type createAdminRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// List handles GET /api/admins.
func (h *AdminsHandler) List(w http.ResponseWriter, r *http.Request) {
	admins, err := h.Registry.ListAdmins(r.Context())
	if err != nil {
		httpx.Logger(r.Context()).Error("failed to list admins", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list admins")
		return
	}
	if admins == nil {
		admins = []model.Admin{}
	}
	jsonResponse(w, http.StatusOK, admins)
}

// Create handles POST /api/admins.
func (h *AdminsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAdminRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	email := model.NormalizeEmail(req.Email)
	if err := model.ValidateEmail(email); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	claims := auth.FromContext(r.Context())
	a, err := h.Registry.AddAdmin(r.Context(), email, req.Name, claims.Email)
	if err != nil {
		httpx.Logger(r.Context()).Error("failed to add admin", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to add admin")
		return
	}
	jsonResponse(w, http.StatusCreated, a)
}

// Delete handles DELETE /api/admins/{id}.
func (h *AdminsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())
	err := h.Registry.Revoke(r.Context(), r.PathValue("id"), claims.Email)
	switch {
	case errors.Is(err, registry.ErrSelfRemoval):
		jsonError(w, http.StatusBadRequest, "you cannot remove yourself as an admin")
		return
	case errors.Is(err, registry.ErrNotAdmin):
		jsonError(w, http.StatusNotFound, "admin not found")
		return
	case err != nil:
		httpx.Logger(r.Context()).Error("failed to remove admin", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to remove admin")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
