package web

import (
	"bytes"
	"html/template"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/erazemk/transferlog/internal/auth"
	"github.com/erazemk/transferlog/internal/chart"
	"github.com/erazemk/transferlog/internal/httpx"
	"github.com/erazemk/transferlog/internal/model"
	"github.com/erazemk/transferlog/internal/report"
	"github.com/erazemk/transferlog/internal/store"
)

// Content types of the report downloads.
const (
	contentTypePDF  = "application/pdf"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type dashboardPage struct {
	PageData
	Filter         model.TransferFilter
	Query          template.URL
	Transfers      []model.Transfer
	Stats          model.Stats
	ActiveDrivers  int
	Drivers        []string
	Locations      []string
	IsInitialAdmin bool
}

// loadFiltered parses the filter from the query string and lists matching
// transfers. An invalid filter falls back to all transfers and is returned as
// the error message.
func (s *Server) loadFiltered(r *http.Request) ([]model.Transfer, model.TransferFilter, string, error) {
	var msg string
	filter, err := model.ParseTransferFilter(r.URL.Query(), time.Now())
	if err != nil {
		msg = "Invalid filter: " + err.Error()
		filter.Kind = model.FilterAll
	}
	transfers, err := store.ListTransfersFiltered(r.Context(), s.DB, filter)
	return transfers, filter, msg, err
}

// Dashboard handles GET /admin.
func (s *Server) Dashboard(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())
	log := httpx.Logger(r.Context())

	transfers, filter, msg, err := s.loadFiltered(r)
	if err != nil {
		log.Error("failed to list transfers", "error", err)
		msg = "Failed to load transfers."
	}
	stats := model.ComputeStats(transfers)

	drivers, err := store.ListDrivers(r.Context(), s.DB)
	if err != nil {
		log.Error("failed to list drivers", "error", err)
	}

	data := &dashboardPage{
		PageData:       s.page(r, "Admin Dashboard"),
		Filter:         filter,
		Query:          template.URL(filter.Query().Encode()),
		Transfers:      transfers,
		Stats:          stats,
		ActiveDrivers:  len(stats.DriverCounts),
		Drivers:        mergeDrivers(s.Config.Drivers, drivers),
		Locations:      model.Locations,
		IsInitialAdmin: s.Registry.IsInitialAdmin(r.Context(), claims.Email),
	}
	data.Error = msg
	s.Templates.Render(w, "admin.html", data)
}

// mergeDrivers returns the configured roster followed by any other driver
// names found in stored transfers.
func mergeDrivers(roster, stored []string) []string {
	seen := make(map[string]bool, len(roster))
	out := append([]string(nil), roster...)
	for _, d := range roster {
		seen[d] = true
	}
	var extra []string
	for _, d := range stored {
		if !seen[d] {
			seen[d] = true
			extra = append(extra, d)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}

// ChartImage handles GET /admin/charts/{name}.png for the filtered transfers.
func (s *Server) ChartImage(w http.ResponseWriter, r *http.Request) {
	log := httpx.Logger(r.Context())

	var build func(model.Stats) chart.Chart
	switch strings.TrimSuffix(r.PathValue("name"), ".png") {
	case "drivers":
		build = chart.DriverChart
	case "locations":
		build = chart.LocationChart
	default:
		http.NotFound(w, r)
		return
	}

	transfers, _, _, err := s.loadFiltered(r)
	if err != nil {
		log.Error("failed to list transfers", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	png, err := chart.Render(build(model.ComputeStats(transfers)))
	if err != nil {
		log.Error("failed to render chart", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "no-store")
	if _, err := w.Write(png); err != nil {
		log.Error("failed to write chart response", "error", err)
	}
}

// ExportPDF handles GET /admin/export.pdf.
func (s *Server) ExportPDF(w http.ResponseWriter, r *http.Request) {
	log := httpx.Logger(r.Context())

	transfers, filter, msg, err := s.loadFiltered(r)
	if msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}
	if err != nil {
		log.Error("failed to list transfers", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	charts, err := report.Charts(transfers)
	if err != nil {
		log.Error("failed to render charts", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	now := time.Now()
	title := report.Title(report.PDFTitle, filter)
	var buf bytes.Buffer
	if err := report.WritePDF(&buf, transfers, title, charts, now); err != nil {
		log.Error("failed to build PDF", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	download(w, r, contentTypePDF, report.Filename(title, ".pdf", now), buf.Bytes())
}

// ExportXLSX handles GET /admin/export.xlsx.
func (s *Server) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	log := httpx.Logger(r.Context())

	transfers, filter, msg, err := s.loadFiltered(r)
	if msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}
	if err != nil {
		log.Error("failed to list transfers", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	now := time.Now()
	title := report.Title(report.XLSXTitle, filter)
	var buf bytes.Buffer
	if err := report.WriteXLSX(&buf, transfers); err != nil {
		log.Error("failed to build spreadsheet", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	download(w, r, contentTypeXLSX, report.Filename(title, ".xlsx", now), buf.Bytes())
}

func download(w http.ResponseWriter, r *http.Request, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if _, err := w.Write(data); err != nil {
		httpx.Logger(r.Context()).Error("failed to write download", "file", filename, "error", err)
	}
}
