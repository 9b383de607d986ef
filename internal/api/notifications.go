package api

import (
	"errors"
	"net/http"

	"github.com/erazemk/transferlog/internal/httpx"
	"github.com/erazemk/transferlog/internal/notify"
)

// NotificationsHandler emails location contacts about a transfer.
type NotificationsHandler struct {
	Dispatcher *notify.Dispatcher
}

// Send handles POST /api/send-notification.
func (h *NotificationsHandler) Send(w http.ResponseWriter, r *http.Request) {
	var n notify.Notice
	if err := decodeJSON(r, &n); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.Dispatcher.Dispatch(r.Context(), n)
	switch {
	case errors.Is(err, notify.ErrMissingLocation):
		jsonError(w, http.StatusBadRequest, "From location and To location are required")
		return
	case errors.Is(err, notify.ErrUnknownLocation):
		jsonError(w, http.StatusBadRequest, "Invalid location specified")
		return
	case errors.Is(err, notify.ErrNoContact):
		httpx.Logger(r.Context()).Error("notification contact missing", "error", err)
		jsonError(w, http.StatusServiceUnavailable, "Notification contact not configured")
		return
	case err != nil:
		httpx.Logger(r.Context()).Error("error sending notification", "error", err)
		jsonError(w, http.StatusInternalServerError, "Failed to send notification")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]bool{"success": true})
}
