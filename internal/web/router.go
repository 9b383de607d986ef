package web

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/transferlog/internal/auth"
	"github.com/erazemk/transferlog/internal/config"
	"github.com/erazemk/transferlog/internal/gate"
	"github.com/erazemk/transferlog/internal/httpx"
	"github.com/erazemk/transferlog/internal/metrics"
	"github.com/erazemk/transferlog/internal/notify"
	"github.com/erazemk/transferlog/internal/registry"
	webembed "github.com/erazemk/transferlog/web"
)

// Deps are the services the page handlers use. Google is nil when Google
// sign-in is not configured.
type Deps struct {
	DB         *sql.DB
	Config     *config.Config
	Auth       *auth.Provider
	Google     *auth.Google
	Registry   *registry.Registry
	Dispatcher *notify.Dispatcher
	Metrics    *metrics.Metrics
}

// NewRouter creates the web page router with all page routes registered.
func NewRouter(d Deps) (http.Handler, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		DB:         d.DB,
		Templates:  templates,
		Config:     d.Config,
		Auth:       d.Auth,
		Google:     d.Google,
		Registry:   d.Registry,
		Gate:       gate.New(d.Registry),
		Dispatcher: d.Dispatcher,
		Metrics:    d.Metrics,
		limiter:    httpx.NewLimiter(httpx.StrictLimit, httpx.IPKeyExtractor),
	}

	mux := http.NewServeMux()
	cookieAuth := CookieAuthMiddleware(d.Auth)
	admin := func(h http.HandlerFunc) http.Handler {
		return cookieAuth(GateMiddleware(s.Gate.Admin)(h))
	}
	initialAdmin := func(h http.HandlerFunc) http.Handler {
		return cookieAuth(GateMiddleware(s.Gate.InitialAdmin)(h))
	}

	// Static assets.
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))

	// Public routes.
	mux.HandleFunc("GET /login", s.LoginPage)
	mux.HandleFunc("POST /login", s.LoginSubmit)
	mux.HandleFunc("GET /signup", s.SignupPage)
	mux.HandleFunc("POST /signup", s.SignupSubmit)
	mux.HandleFunc("GET /reset-password", s.ResetPage)
	mux.HandleFunc("POST /reset-password", s.ResetSubmit)
	mux.HandleFunc("GET "+auth.ResetPath, s.ResetConfirmPage)
	mux.HandleFunc("POST "+auth.ResetPath, s.ResetConfirmSubmit)
	mux.HandleFunc("GET "+auth.VerifyPath, s.VerifyEmail)
	mux.HandleFunc("GET /auth/google", s.GoogleStart)
	mux.HandleFunc("GET /auth/google/callback", s.GoogleCallback)
	mux.Handle("POST /logout", cookieAuth(http.HandlerFunc(s.Logout)))

	// Any signed-in user.
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, gate.InputRoute, http.StatusSeeOther)
	})
	mux.Handle("GET /input", cookieAuth(http.HandlerFunc(s.InputPage)))
	mux.Handle("POST /input", cookieAuth(http.HandlerFunc(s.InputSubmit)))
	mux.Handle("GET /confirmation", cookieAuth(http.HandlerFunc(s.ConfirmationPage)))
	mux.Handle("POST "+auth.VerifyPath+"/resend", cookieAuth(http.HandlerFunc(s.ResendVerification)))

	// Admins.
	mux.Handle("GET /admin", admin(s.Dashboard))
	mux.Handle("GET /admin/charts/{name}", admin(s.ChartImage))
	mux.Handle("GET /admin/export.pdf", admin(s.ExportPDF))
	mux.Handle("GET /admin/export.xlsx", admin(s.ExportXLSX))

	// Initial admin.
	mux.Handle("GET /admin/manage-admins", initialAdmin(s.ManageAdminsPage))
	mux.Handle("POST /admin/manage-admins", initialAdmin(s.AdminCreateSubmit))
	mux.Handle("POST /admin/manage-admins/{id}/delete", initialAdmin(s.AdminDeleteSubmit))

	return mux, nil
}
