// Package notify emails location contacts about unit transfers.
package notify

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/erazemk/transferlog/internal/model"
)

// Kind selects the email template for one notification.
type Kind string

// Notification kinds.
const (
	KindFromLocation Kind = "fromLocation"
	KindToLocation   Kind = "toLocation"
	KindToStorage    Kind = "toStorage"
	KindFromStorage  Kind = "fromStorage"
)

// Errors returned while planning or sending notifications.
var (
	ErrMissingLocation  = errors.New("from location and to location are required")
	ErrUnknownLocation  = errors.New("invalid location specified")
	ErrNoContact        = errors.New("no notification contact configured")
	ErrRelayUnavailable = errors.New("mail relay unavailable")
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// Notice carries the transfer details an email is built from.
type Notice struct {
	FromLocation string `json:"fromLocation"`
	ToLocation   string `json:"toLocation"`
	StockNumber  string `json:"stockNumber"`
	Brand        string `json:"brand"`
	Model        string `json:"model"`
	DriverName   string `json:"driverName"`
	TransferDate string `json:"transferDate"`
	UserEmail    string `json:"userEmail"`
}

// NoticeFor builds a notice from a stored transfer.
func NoticeFor(t *model.Transfer, userEmail string) Notice {
	return Notice{
		FromLocation: t.FromLocation,
		ToLocation:   t.ToLocation,
		StockNumber:  t.StockNumber,
		Brand:        t.Brand,
		Model:        t.Model,
		DriverName:   t.DriverName,
		TransferDate: t.TransferDate,
		UserEmail:    userEmail,
	}
}

// Plan returns the emails a transfer produces: one joint email when either
// side is Storage (to-storage wins), otherwise one for each side.
func Plan(from, to string) []Kind {
	switch {
	case to == model.LocationStorage:
		return []Kind{KindToStorage}
	case from == model.LocationStorage:
		return []Kind{KindFromStorage}
	default:
		return []Kind{KindFromLocation, KindToLocation}
	}
}

// Subject returns the email subject for kind.
func Subject(n Notice, kind Kind) string {
	switch kind {
	case KindFromLocation:
		return "Inventory Transfer Notification - " + n.StockNumber
	case KindToLocation:
		return "Incoming Inventory Transfer - " + n.StockNumber
	case KindToStorage:
		return "Unit Moving to Storage - " + n.StockNumber
	case KindFromStorage:
		return "Unit Transfer from Storage - " + n.StockNumber
	}
	return ""
}

// FormatBody renders the plain-text body for kind. An empty transfer date is
// replaced by today's date.
func FormatBody(n Notice, kind Kind, systemName string) (string, error) {
	if n.TransferDate == "" {
		n.TransferDate = time.Now().Format(model.DateLayout)
	}
	data := struct {
		Notice
		SystemName string
	}{n, systemName}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, string(kind)+".tmpl", data); err != nil {
		return "", fmt.Errorf("rendering %s email: %w", kind, err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// ResetEmail builds the password reset message sent to email.
func ResetEmail(email, link string, validFor time.Duration, systemName string) (Message, error) {
	return accountEmail("passwordReset.tmpl", "Password Reset - ", email, link, validFor, systemName)
}

// VerifyEmail builds the message that asks a new user to confirm they own
// email.
func VerifyEmail(email, link string, validFor time.Duration, systemName string) (Message, error) {
	return accountEmail("verifyEmail.tmpl", "Confirm your email - ", email, link, validFor, systemName)
}

func accountEmail(name, subject, email, link string, validFor time.Duration, systemName string) (Message, error) {
	data := struct {
		Email, Link, ValidFor, SystemName string
	}{email, link, humanDuration(validFor), systemName}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return Message{}, fmt.Errorf("rendering %s: %w", name, err)
	}
	return Message{
		To:      []string{email},
		Subject: subject + systemName,
		Body:    strings.TrimRight(buf.String(), "\n"),
	}, nil
}

func humanDuration(d time.Duration) string {
	unit, n := "minute", int(d/time.Minute)
	if d >= time.Hour && d%time.Hour == 0 {
		unit, n = "hour", int(d/time.Hour)
	}
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
