package api

import (
	"bytes"
	"database/sql"
	"net/http"
	"time"

	"github.com/erazemk/transferlog/internal/httpx"
	"github.com/erazemk/transferlog/internal/model"
	"github.com/erazemk/transferlog/internal/report"
	"github.com/erazemk/transferlog/internal/store"
)

// Content types of the report downloads.
const (
	ContentTypePDF  = "application/pdf"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ReportsHandler exports filtered transfer lists.
type ReportsHandler struct {
	DB *sql.DB
}

func (h *ReportsHandler) load(w http.ResponseWriter, r *http.Request) ([]model.Transfer, model.TransferFilter, bool) {
	filter, err := model.ParseTransferFilter(r.URL.Query(), time.Now())
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return nil, filter, false
	}
	transfers, err := store.ListTransfersFiltered(r.Context(), h.DB, filter)
	if err != nil {
		httpx.Logger(r.Context()).Error("failed to list transfers", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list transfers")
		return nil, filter, false
	}
	return transfers, filter, true
}

// PDF handles GET /api/reports/transfers.pdf.
func (h *ReportsHandler) PDF(w http.ResponseWriter, r *http.Request) {
	transfers, filter, ok := h.load(w, r)
	if !ok {
		return
	}
	log := httpx.Logger(r.Context())

	charts, err := report.Charts(transfers)
	if err != nil {
		log.Error("failed to render charts", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to render charts")
		return
	}

	now := time.Now()
	title := report.Title(report.PDFTitle, filter)
	var buf bytes.Buffer
	if err := report.WritePDF(&buf, transfers, title, charts, now); err != nil {
		log.Error("failed to build PDF", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to build PDF")
		return
	}
	attachment(w, r, ContentTypePDF, report.Filename(title, ".pdf", now), buf.Bytes())
}

// XLSX handles GET /api/reports/transfers.xlsx.
func (h *ReportsHandler) XLSX(w http.ResponseWriter, r *http.Request) {
	transfers, filter, ok := h.load(w, r)
	if !ok {
		return
	}

	now := time.Now()
	title := report.Title(report.XLSXTitle, filter)
	var buf bytes.Buffer
	if err := report.WriteXLSX(&buf, transfers); err != nil {
		httpx.Logger(r.Context()).Error("failed to build spreadsheet", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to build spreadsheet")
		return
	}
	attachment(w, r, ContentTypeXLSX, report.Filename(title, ".xlsx", now), buf.Bytes())
}
