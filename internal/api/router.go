package api

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
	"github.com/erazemk/transferlog/internal/transcribe"
)

// Deps are the services the API handlers use.
type Deps struct {
	DB          *sql.DB
	Config      *config.Config
	Auth        *auth.Provider
	Registry    *registry.Registry
	Dispatcher  *notify.Dispatcher
	Transcriber transcribe.Transcriber
	Metrics     *metrics.Metrics
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()

	envHandler := &EnvHandler{DB: d.DB, Config: d.Config}
	authHandler := &AuthHandler{Auth: d.Auth}
	transfersHandler := &TransfersHandler{DB: d.DB, Metrics: d.Metrics}
	notificationsHandler := &NotificationsHandler{Dispatcher: d.Dispatcher}
	transcribeHandler := &TranscribeHandler{Transcriber: d.Transcriber}
	reportsHandler := &ReportsHandler{DB: d.DB}
	adminsHandler := &AdminsHandler{Registry: d.Registry}

	g := gate.New(d.Registry)
	authMW := AuthMiddleware(d.Auth)
	requireAdmin := RequireAdmin(g)
	requireInitialAdmin := RequireInitialAdmin(g)
	strict := httpx.NewLimiter(httpx.StrictLimit, httpx.IPKeyExtractor).Middleware
	moderate := httpx.NewLimiter(httpx.ModerateLimit, httpx.IPKeyExtractor).Middleware

	// Public.
	mux.HandleFunc("GET /api/check-env", envHandler.Check)
	mux.Handle("POST /api/auth/login", strict(http.HandlerFunc(authHandler.Login)))
	mux.Handle("POST /api/auth/signup", strict(http.HandlerFunc(authHandler.Signup)))
	mux.Handle("POST /api/auth/password-reset", strict(http.HandlerFunc(authHandler.RequestReset)))
	mux.Handle("POST /api/auth/password-reset/confirm", strict(http.HandlerFunc(authHandler.ConfirmReset)))
	mux.Handle("POST /api/auth/verify-email", strict(http.HandlerFunc(authHandler.VerifyEmail)))

	// Any signed-in user.
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("POST /api/auth/verify-email/resend", authMW(strict(http.HandlerFunc(authHandler.ResendVerification))))
	mux.Handle("POST /api/transfers", authMW(moderate(http.HandlerFunc(transfersHandler.Create))))
	mux.Handle("POST /api/send-notification", authMW(moderate(http.HandlerFunc(notificationsHandler.Send))))
	mux.Handle("POST /api/openai/transcribe", authMW(moderate(http.HandlerFunc(transcribeHandler.Transcribe))))

	// Admins.
	mux.Handle("GET /api/transfers", authMW(requireAdmin(http.HandlerFunc(transfersHandler.List))))
	mux.Handle("GET /api/transfers/stats", authMW(requireAdmin(http.HandlerFunc(transfersHandler.Stats))))
	mux.Handle("GET /api/reports/transfers.pdf", authMW(requireAdmin(http.HandlerFunc(reportsHandler.PDF))))
	mux.Handle("GET /api/reports/transfers.xlsx", authMW(requireAdmin(http.HandlerFunc(reportsHandler.XLSX))))

	// Initial admin.
	mux.Handle("GET /api/admins", authMW(requireInitialAdmin(http.HandlerFunc(adminsHandler.List))))
	mux.Handle("POST /api/admins", authMW(requireInitialAdmin(http.HandlerFunc(adminsHandler.Create))))
	mux.Handle("DELETE /api/admins/{id}", authMW(requireInitialAdmin(http.HandlerFunc(adminsHandler.Delete))))

	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		jsonError(w, http.StatusNotFound, "not found")
	})

	return mux
}
