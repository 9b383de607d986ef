package api

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/erazemk/transferlog/internal/auth"
	"github.com/erazemk/transferlog/internal/httpx"
	"github.com/erazemk/transferlog/internal/metrics"
	"github.com/erazemk/transferlog/internal/model"
	"github.com/erazemk/transferlog/internal/store"
)

// TransfersHandler handles transfer endpoints.
type TransfersHandler struct {
	DB      *sql.DB
	Metrics *metrics.Metrics
}

type createTransferResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

type validationResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Create handles POST /api/transfers.
func (h *TransfersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.NewTransfer
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claims := auth.FromContext(r.Context())
	req.Normalize()
	if req.UserID != "" && req.UserID != claims.UserID {
		jsonError(w, http.StatusForbidden, "userId does not match the signed-in user")
		return
	}

	transfer, err := store.CreateTransfer(r.Context(), h.DB, req)
	var ve *model.ValidationError
	if errors.As(err, &ve) {
		jsonResponse(w, http.StatusBadRequest, validationResponse{Error: validationSummary(ve), Fields: ve.Fields})
		return
	}
	if err != nil {
		httpx.Logger(r.Context()).Error("failed to save transfer", "error", err)
		jsonError(w, http.StatusInternalServerError, "Failed to save transfer data to database")
		return
	}

	h.Metrics.TransferCreated()
	httpx.Logger(r.Context()).Info("transfer created", "user", claims.Email,
		"stock_number", transfer.StockNumber,
		"from", transfer.FromLocation, "to", transfer.ToLocation)
	jsonResponse(w, http.StatusOK, createTransferResponse{Success: true, ID: transfer.ID})
}

// validationSummary keeps the short message clients expect when fields are
// simply missing.
func validationSummary(ve *model.ValidationError) string {
	for _, msg := range ve.Fields {
		if msg == "is required" {
			return "All fields are required"
		}
	}
	return ve.Error()
}

// List handles GET /api/transfers.
func (h *TransfersHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := model.ParseTransferFilter(r.URL.Query(), time.Now())
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	transfers, err := store.ListTransfersFiltered(r.Context(), h.DB, filter)
	if err != nil {
		httpx.Logger(r.Context()).Error("failed to list transfers", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list transfers")
		return
	}
	if transfers == nil {
		transfers = []model.Transfer{}
	}
	jsonResponse(w, http.StatusOK, transfers)
}

// Stats handles GET /api/transfers/stats.
func (h *TransfersHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := store.ComputeStats(r.Context(), h.DB)
	if err != nil {
		httpx.Logger(r.Context()).Error("failed to compute stats", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}
	jsonResponse(w, http.StatusOK, stats)
}
