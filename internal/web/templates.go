package web

import (
	"database/sql"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/erazemk/transferlog/internal/auth"
	"github.com/erazemk/transferlog/internal/config"
	"github.com/erazemk/transferlog/internal/gate"
	"github.com/erazemk/transferlog/internal/httpx"
	"github.com/erazemk/transferlog/internal/metrics"
	"github.com/erazemk/transferlog/internal/notify"
	"github.com/erazemk/transferlog/internal/registry"
	webembed "github.com/erazemk/transferlog/web"
)

// Templates holds parsed HTML templates.
type Templates struct {
	templates map[string]*template.Template
}

// FuncMap returns the template function map.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"formatTime": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Local().Format("Jan 2, 2006 15:04")
		},
		"join": strings.Join,
	}
}

var pages = []string{
	"login.html",
	"signup.html",
	"reset_password.html",
	"reset_confirm.html",
	"input.html",
	"confirmation.html",
	"admin.html",
	"manage_admins.html",
}

// LoadTemplates parses all page templates with the layout.
func LoadTemplates() (*Templates, error) {
	tfs := webembed.TemplatesFS()

	layoutBytes, err := fs.ReadFile(tfs, "layout.html")
	if err != nil {
		return nil, fmt.Errorf("reading layout template: %w", err)
	}

	ts := &Templates{templates: make(map[string]*template.Template)}

	for _, page := range pages {
		pageBytes, err := fs.ReadFile(tfs, page)
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", page, err)
		}

		tmpl := template.New(page).Funcs(FuncMap())
		tmpl, err = tmpl.Parse(string(layoutBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing layout for %s: %w", page, err)
		}
		tmpl, err = tmpl.Parse(string(pageBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}

		ts.templates[page] = tmpl
	}

	return ts, nil
}

// Render renders a template with the given data.
func (ts *Templates) Render(w http.ResponseWriter, name string, data any) {
	ts.RenderStatus(w, http.StatusOK, name, data)
}

// RenderStatus is Render with an explicit status code.
func (ts *Templates) RenderStatus(w http.ResponseWriter, status int, name string, data any) {
	tmpl, ok := ts.templates[name]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		slog.Error("failed to render template", "template", name, "error", err)
	}
}

// PageData is the base data passed to all templates.
type PageData struct {
	Title      string
	SystemName string
	User       *auth.Claims
	IsAdmin    bool
	Error      string
	Success    string
}

// Server holds all dependencies for page handlers.
type Server struct {
	DB         *sql.DB
	Templates  *Templates
	Config     *config.Config
	Auth       *auth.Provider
	Google     *auth.Google
	Registry   *registry.Registry
	Gate       *gate.Gate
	Dispatcher *notify.Dispatcher
	Metrics    *metrics.Metrics

	limiter *httpx.Limiter
}

// page fills the common page fields for the current request.
func (s *Server) page(r *http.Request, title string) PageData {
	claims := auth.FromContext(r.Context())
	pd := PageData{Title: title, SystemName: s.Config.SystemName, User: claims}
	if email := claims.AdminEmail(); email != "" {
		pd.IsAdmin = s.Registry.IsAdmin(r.Context(), email)
	}
	return pd
}
