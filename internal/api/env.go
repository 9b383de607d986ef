package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/transferlog/internal/config"
	"github.com/erazemk/transferlog/internal/db"
	"github.com/erazemk/transferlog/internal/httpx"
)

// EnvHandler reports which subsystems are configured.
type EnvHandler struct {
	DB     *sql.DB
	Config *config.Config
}

type configuredStatus struct {
	Configured bool `json:"configured"`
}

type emailStatus struct {
	Configured      bool     `json:"configured"`
	MissingContacts []string `json:"missingContacts,omitempty"`
}

type storeStatus struct {
	Configured bool `json:"configured"`
	Valid      bool `json:"valid"`
}

// envResponse keeps the "firebase" key that existing clients read; it
// describes the identity and transfer store.
type envResponse struct {
	Firebase      storeStatus      `json:"firebase"`
	Email         emailStatus      `json:"email"`
	Google        configuredStatus `json:"google"`
	Transcription configuredStatus `json:"transcription"`
}

// Check handles GET /api/check-env.
func (h *EnvHandler) Check(w http.ResponseWriter, r *http.Request) {
	status := h.Config.Status()

	valid := true
	if err := db.Healthy(r.Context(), h.DB); err != nil {
		httpx.Logger(r.Context()).Error("database health check failed", "error", err)
		valid = false
	}

	jsonResponse(w, http.StatusOK, envResponse{
		Firebase:      storeStatus{Configured: h.DB != nil, Valid: valid},
		Email:         emailStatus{Configured: status.EmailReady(), MissingContacts: status.MissingContacts},
		Google:        configuredStatus{Configured: status.Google},
		Transcription: configuredStatus{Configured: status.Transcription},
	})
}
