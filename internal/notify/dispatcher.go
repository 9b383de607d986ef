package notify

import (
	"context"
	"log/slog"

	"github.com/erazemk/transferlog/internal/metrics"
	"github.com/erazemk/transferlog/internal/model"
)

// Dispatcher turns a transfer notice into emails and sends them.
type Dispatcher struct {
	Directory  Directory
	Sender     Sender
	SystemName string
	Metrics    *metrics.Metrics
}

// Messages resolves both contacts and builds the emails for n without
// sending anything.
func (d *Dispatcher) Messages(n Notice) ([]Message, error) {
	if err := checkLocations(n.FromLocation, n.ToLocation); err != nil {
		return nil, err
	}
	fromAddr, err := d.Directory.Resolve(n.FromLocation)
	if err != nil {
		return nil, err
	}
	toAddr, err := d.Directory.Resolve(n.ToLocation)
	if err != nil {
		return nil, err
	}

	var msgs []Message
	for _, kind := range Plan(n.FromLocation, n.ToLocation) {
		body, err := FormatBody(n, kind, d.SystemName)
		if err != nil {
			return nil, err
		}

		var to []string
		switch kind {
		case KindFromLocation:
			to = []string{fromAddr}
		case KindToLocation:
			to = []string{toAddr}
		default:
			to = uniqueAddrs(fromAddr, toAddr)
		}

		msgs = append(msgs, Message{
			To:      to,
			ReplyTo: n.UserEmail,
			Subject: Subject(n, kind),
			Body:    body,
		})
	}
	return msgs, nil
}

// Dispatch sends every email for n in order and stops at the first failure.
func (d *Dispatcher) Dispatch(ctx context.Context, n Notice) error {
	msgs, err := d.Messages(n)
	if err != nil {
		return err
	}

	kinds := Plan(n.FromLocation, n.ToLocation)
	for i, msg := range msgs {
		err := d.Sender.Send(ctx, msg)
		d.Metrics.NotificationSent(string(kinds[i]), err)
		if err != nil {
			slog.Error("failed to send notification",
				"kind", kinds[i], "stock_number", n.StockNumber, "error", err)
			return err
		}
	}

	slog.Info("notification sent", "stock_number", n.StockNumber,
		"from", n.FromLocation, "to", n.ToLocation, "emails", len(msgs))
	return nil
}

// checkLocations rejects bad input before any contact lookup, so a missing
// contact never masks an invalid location.
func checkLocations(locations ...string) error {
	for _, l := range locations {
		if l == "" {
			return ErrMissingLocation
		}
	}
	for _, l := range locations {
		if !model.IsLocation(l) {
			return ErrUnknownLocation
		}
	}
	return nil
}

func uniqueAddrs(addrs ...string) []string {
	seen := make(map[string]bool, len(addrs))
	var out []string
	for _, a := range addrs {
		if !seen[a] {
			seen[a] = true
			out = append(out, a)
		}
	}
	return out
}
