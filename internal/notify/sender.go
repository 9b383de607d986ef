package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/wneessen/go-mail"
)

// Message is one plain-text email.
type Message struct {
	To      []string
	ReplyTo string
	Subject string
	Body    string
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSender delivers mail through an authenticated SMTP relay.
type SMTPSender struct {
	client *mail.Client
	from   string
}

// NewSMTPSender configures a relay client. No connection is made until the
// first Send.
func NewSMTPSender(host string, port int, username, password, from string) (*SMTPSender, error) {
	opts := []mail.Option{
		mail.WithPort(port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(username),
		mail.WithPassword(password),
	}
	if port == 465 {
		opts = append(opts, mail.WithSSLPort(false))
	} else {
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSMandatory))
	}

	client, err := mail.NewClient(host, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating mail client: %w", err)
	}
	return &SMTPSender{client: client, from: from}, nil
}

// Send builds and delivers msg.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	m := mail.NewMsg()
	if err := m.From(s.from); err != nil {
		return fmt.Errorf("setting sender %q: %w", s.from, err)
	}
	if err := m.To(msg.To...); err != nil {
		return fmt.Errorf("setting recipients: %w", err)
	}
	if msg.ReplyTo != "" {
		if err := m.ReplyTo(msg.ReplyTo); err != nil {
			slog.Warn("ignoring invalid reply-to address", "reply_to", msg.ReplyTo, "error", err)
		}
	}
	m.Subject(msg.Subject)
	m.SetDate()
	m.SetMessageID()
	m.SetBodyString(mail.TypeTextPlain, msg.Body)

	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("%w: %v", ErrRelayUnavailable, err)
	}
	return nil
}

// LogSender is used when no relay is configured. It logs each message and
// reports it as undeliverable.
type LogSender struct{}

// Send logs msg and returns ErrRelayUnavailable.
func (LogSender) Send(_ context.Context, msg Message) error {
	slog.Warn("mail relay not configured, dropping message",
		"to", strings.Join(msg.To, ", "), "subject", msg.Subject)
	return ErrRelayUnavailable
}
