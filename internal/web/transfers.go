package web

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/erazemk/transferlog/internal/auth"
	"github.com/erazemk/transferlog/internal/config"
	"github.com/erazemk/transferlog/internal/httpx"
	"github.com/erazemk/transferlog/internal/model"
	"github.com/erazemk/transferlog/internal/notify"
	"github.com/erazemk/transferlog/internal/store"
)

// customDriver is the driver select value that enables the free-text field.
const customDriver = "__custom__"

type inputPage struct {
	PageData
	Locations    []string
	Destinations []string
	Drivers      []string
	Form         model.NewTransfer
	Custom       string
	Fields       map[string]string
	Status       config.Status
}

func (s *Server) inputPage(r *http.Request) *inputPage {
	return &inputPage{
		PageData:     s.page(r, "Where to today?"),
		Locations:    model.Locations,
		Destinations: model.Locations,
		Drivers:      s.Config.Drivers,
		Form:         model.NewTransfer{TransferDate: time.Now().Format(model.DateLayout)},
		Status:       s.Config.Status(),
	}
}

// InputPage handles GET /input.
func (s *Server) InputPage(w http.ResponseWriter, r *http.Request) {
	data := s.inputPage(r)
	if from := r.URL.Query().Get("from"); model.IsLocation(from) {
		data.Form.FromLocation = from
		data.Destinations = model.Destinations(from)
	}
	s.Templates.Render(w, "input.html", data)
}

// InputSubmit handles POST /input: it stores the transfer and then emails the
// location contacts.
func (s *Server) InputSubmit(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())
	log := httpx.Logger(r.Context())
	data := s.inputPage(r)

	data.Form = model.NewTransfer{
		FromLocation: r.FormValue("fromLocation"),
		ToLocation:   r.FormValue("toLocation"),
		StockNumber:  r.FormValue("stockNumber"),
		Brand:        r.FormValue("brand"),
		Model:        r.FormValue("model"),
		DriverName:   r.FormValue("driverName"),
		TransferDate: r.FormValue("transferDate"),
		UserID:       claims.UserID,
	}
	if data.Form.DriverName == customDriver {
		data.Custom = strings.TrimSpace(r.FormValue("customDriver"))
		data.Form.DriverName = data.Custom
	}
	if model.IsLocation(data.Form.FromLocation) {
		data.Destinations = model.Destinations(data.Form.FromLocation)
	}

	transfer, err := store.CreateTransfer(r.Context(), s.DB, data.Form)
	var ve *model.ValidationError
	if errors.As(err, &ve) {
		data.Fields = ve.Fields
		data.Error = "Please fill in all required fields."
		s.Templates.RenderStatus(w, http.StatusBadRequest, "input.html", data)
		return
	}
	if err != nil {
		log.Error("failed to save transfer", "error", err)
		data.Error = "Failed to save transfer data to database."
		s.Templates.RenderStatus(w, http.StatusInternalServerError, "input.html", data)
		return
	}
	s.Metrics.TransferCreated()
	log.Info("transfer created", "user", claims.Email, "stock_number", transfer.StockNumber,
		"from", transfer.FromLocation, "to", transfer.ToLocation)

	if err := s.Dispatcher.Dispatch(r.Context(), notify.NoticeFor(transfer, claims.Email)); err != nil {
		log.Error("failed to send notification", "transfer", transfer.ID, "error", err)
		status := http.StatusBadGateway
		data.Error = "The transfer was saved, but the notification email could not be sent."
		if errors.Is(err, notify.ErrNoContact) {
			status = http.StatusServiceUnavailable
			data.Error = "The transfer was saved, but no notification contact is configured for this location."
		}
		s.Templates.RenderStatus(w, status, "input.html", data)
		return
	}

	q := url.Values{}
	q.Set("stockNumber", transfer.StockNumber)
	q.Set("from", transfer.FromLocation)
	q.Set("to", transfer.ToLocation)
	http.Redirect(w, r, "/confirmation?"+q.Encode(), http.StatusSeeOther)
}

// ConfirmationPage handles GET /confirmation.
func (s *Server) ConfirmationPage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.Templates.Render(w, "confirmation.html", &struct {
		PageData
		StockNumber string
		From        string
		To          string
	}{
		PageData:    s.page(r, "Submission Complete!"),
		StockNumber: q.Get("stockNumber"),
		From:        q.Get("from"),
		To:          q.Get("to"),
	})
}
