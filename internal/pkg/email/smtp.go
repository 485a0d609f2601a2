package email

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// smtpService sends mail through an SMTP relay
type smtpService struct {
	config Config
	logger zerolog.Logger
	now    func() time.Time
}

// NewSMTPService creates an SMTP-backed EmailService
func NewSMTPService(config Config, logger zerolog.Logger) EmailService {
	return &smtpService{
		config: config,
		logger: logger.With().Str("provider", "smtp").Logger(),
		now:    time.Now,
	}
}

// Send delivers msg. UseTLS dials implicit TLS (port 465); otherwise STARTTLS is used
// when the server offers it.
func (s *smtpService) Send(ctx context.Context, msg *Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	serverAddress := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
	dialer := &net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", serverAddress)
	if err != nil {
		s.logger.Error().Err(err).Str("server", serverAddress).Msg("Failed to connect to SMTP server")
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	tlsConfig := &tls.Config{ServerName: s.config.Host, MinVersion: tls.VersionTLS12}
	if s.config.UseTLS {
		conn = tls.Client(conn, tlsConfig)
	}

	client, err := smtp.NewClient(conn, s.config.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Close()

	if !s.config.UseTLS {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(tlsConfig); err != nil {
				return fmt.Errorf("failed to start TLS: %w", err)
			}
		}
	}

	if s.config.Username != "" {
		auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
		if err := client.Auth(auth); err != nil {
			s.logger.Error().Err(err).Msg("SMTP authentication failed")
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err := client.Mail(s.config.FromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	for _, rcpt := range msg.Recipients() {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("failed to set recipient %s: %w", rcpt, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err := w.Write(buildMIMEMessage(formatAddress(s.config.FromName, s.config.FromEmail), msg, s.now())); err != nil {
		return fmt.Errorf("failed to write email message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := client.Quit(); err != nil {
		s.logger.Debug().Err(err).Msg("SMTP QUIT returned an error after delivery")
	}

	s.logger.Debug().Int("recipients", len(msg.Recipients())).Str("subject", msg.Subject).Msg("Email sent")
	return nil
}

// buildMIMEMessage renders the RFC 5322 message. Bcc recipients never appear in headers.
func buildMIMEMessage(from string, msg *Message, date time.Time) []byte {
	var buf bytes.Buffer

	to := "undisclosed-recipients:;"
	if len(msg.To) > 0 {
		to = strings.Join(msg.To, ", ")
	}

	writeHeader := func(key, value string) {
		buf.WriteString(key)
		buf.WriteString(": ")
		buf.WriteString(value)
		buf.WriteString("\r\n")
	}
	writeHeader("From", from)
	writeHeader("To", to)
	writeHeader("Subject", mime.QEncoding.Encode("utf-8", msg.Subject))
	writeHeader("Date", date.Format(time.RFC1123Z))
	writeHeader("MIME-Version", "1.0")

	body, contentType := msg.HTMLBody, "text/html; charset=UTF-8"
	if body == "" {
		body, contentType = msg.TextBody, "text/plain; charset=UTF-8"
	}
	writeHeader("Content-Type", contentType)
	buf.WriteString("\r\n")
	buf.WriteString(body)

	return buf.Bytes()
}
