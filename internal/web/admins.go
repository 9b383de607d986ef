package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/erazemk/transferlog/internal/auth"
	"github.com/erazemk/transferlog/internal/httpx"
	"github.com/erazemk/transferlog/internal/model"
	"github.com/erazemk/transferlog/internal/registry"
)

type manageAdminsPage struct {
	PageData
	Admins []model.Admin
	Email  string
	Name   string
}

func (s *Server) renderManageAdmins(w http.ResponseWriter, r *http.Request, data *manageAdminsPage) {
	admins, err := s.Registry.ListAdmins(r.Context())
	if err != nil {
		httpx.Logger(r.Context()).Error("failed to list admins", "error", err)
		if data.Error == "" {
			data.Error = "Failed to load admins."
		}
	}
	data.Admins = admins
	s.Templates.Render(w, "manage_admins.html", data)
}

// ManageAdminsPage handles GET /admin/manage-admins.
func (s *Server) ManageAdminsPage(w http.ResponseWriter, r *http.Request) {
	s.renderManageAdmins(w, r, &manageAdminsPage{PageData: s.page(r, "Manage Admins")})
}

// AdminCreateSubmit handles POST /admin/manage-admins.
func (s *Server) AdminCreateSubmit(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())
	data := &manageAdminsPage{
		PageData: s.page(r, "Manage Admins"),
		Email:    strings.TrimSpace(r.FormValue("email")),
		Name:     strings.TrimSpace(r.FormValue("name")),
	}

	if err := model.ValidateEmail(model.NormalizeEmail(data.Email)); err != nil {
		data.Error = "Please enter a valid email address."
		s.renderManageAdmins(w, r, data)
		return
	}

	a, err := s.Registry.AddAdmin(r.Context(), data.Email, data.Name, claims.Email)
	if err != nil {
		httpx.Logger(r.Context()).Error("failed to add admin", "error", err)
		data.Error = "Failed to add admin."
		s.renderManageAdmins(w, r, data)
		return
	}

	data.Success = a.Email + " is now an admin."
	data.Email, data.Name = "", ""
	s.renderManageAdmins(w, r, data)
}

// AdminDeleteSubmit handles POST /admin/manage-admins/{id}/delete.
func (s *Server) AdminDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())
	data := &manageAdminsPage{PageData: s.page(r, "Manage Admins")}

	err := s.Registry.Revoke(r.Context(), r.PathValue("id"), claims.Email)
	switch {
	case err == nil:
		data.Success = "Admin removed."
	case errors.Is(err, registry.ErrSelfRemoval):
		data.Error = "You cannot remove yourself."
	case errors.Is(err, registry.ErrNotAdmin):
		data.Error = "Admin not found."
	default:
		httpx.Logger(r.Context()).Error("failed to remove admin", "error", err)
		data.Error = "Failed to remove admin."
	}
	s.renderManageAdmins(w, r, data)
}
