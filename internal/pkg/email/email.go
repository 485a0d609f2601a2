package email

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/rs/zerolog"
)

// Message is a rendered email ready for delivery
type Message struct {
	To       []string
	Bcc      []string
	Subject  string
	HTMLBody string
	TextBody string
}

// Recipients returns every envelope recipient, To first
func (m *Message) Recipients() []string {
	all := make([]string, 0, len(m.To)+len(m.Bcc))
	all = append(all, m.To...)
	return append(all, m.Bcc...)
}

// Validate checks the message can be handed to a provider
func (m *Message) Validate() error {
	if len(m.Recipients()) == 0 {
		return fmt.Errorf("email has no recipients")
	}
	for _, addr := range m.Recipients() {
		if _, err := mail.ParseAddress(addr); err != nil {
			return fmt.Errorf("invalid recipient %q: %w", addr, err)
		}
	}
	if strings.TrimSpace(m.Subject) == "" {
		return fmt.Errorf("email has no subject")
	}
	if m.HTMLBody == "" && m.TextBody == "" {
		return fmt.Errorf("email has no content")
	}
	return nil
}

// EmailService delivers messages through a concrete provider
type EmailService interface {
	Send(ctx context.Context, msg *Message) error
}

// Config holds provider settings
type Config struct {
	Provider       string
	Host           string
	Port           int
	Username       string
	Password       string
	UseTLS         bool
	SendGridAPIKey string
	FromName       string
	FromEmail      string
}

// NewEmailService returns the service for cfg.Provider. SMTP without credentials falls back
// to the log provider, the same way a development checkout runs without a mail server.
func NewEmailService(cfg Config, logger zerolog.Logger) (EmailService, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "log":
		return NewLogService(logger), nil
	case "smtp":
		if cfg.Username == "" || cfg.Password == "" {
			logger.Warn().Str("host", cfg.Host).Msg("SMTP credentials not configured, emails will only be logged")
			return NewLogService(logger), nil
		}
		return NewSMTPService(cfg, logger), nil
	case "sendgrid":
		return NewSendGridService(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Provider)
	}
}

func formatAddress(name, address string) string {
	return (&mail.Address{Name: name, Address: address}).String()
}
