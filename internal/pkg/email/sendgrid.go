package email

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	sendGridHost     = "https://api.sendgrid.com"
	sendGridEndpoint = "/v3/mail/send"
)

type sendGridService struct {
	key    string
	from   *sgmail.Email
	logger zerolog.Logger
}

// NewSendGridService creates an EmailService backed by the SendGrid v3 API
func NewSendGridService(config Config, logger zerolog.Logger) EmailService {
	return &sendGridService{
		key:    config.SendGridAPIKey,
		from:   sgmail.NewEmail(config.FromName, config.FromEmail),
		logger: logger.With().Str("provider", "sendgrid").Logger(),
	}
}

func (svc *sendGridService) prepare(msg *Message) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	for _, to := range msg.To {
		p.AddTos(sgmail.NewEmail("", to))
	}
	for _, bcc := range msg.Bcc {
		p.AddBCCs(sgmail.NewEmail("", bcc))
	}
	// SendGrid rejects personalizations without a To address
	if len(msg.To) == 0 {
		p.AddTos(svc.from)
	}

	m := sgmail.NewV3Mail()
	m.SetFrom(svc.from)
	m.Subject = msg.Subject
	m.AddPersonalizations(p)

	if msg.TextBody != "" {
		m.AddContent(sgmail.NewContent("text/plain", msg.TextBody))
	}
	if msg.HTMLBody != "" {
		m.AddContent(sgmail.NewContent("text/html", msg.HTMLBody))
	}
	return m
}

// Send posts msg to the SendGrid API. The SDK call does not take a context, so ctx is
// only checked before the request is made.
func (svc *sendGridService) Send(ctx context.Context, msg *Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	req := sendgrid.GetRequest(svc.key, sendGridEndpoint, sendGridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(svc.prepare(msg))

	res, err := sendgrid.API(req)
	if err != nil {
		svc.logger.Error().Err(err).Msg("SendGrid request failed")
		return fmt.Errorf("sendgrid request failed: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		svc.logger.Error().Int("status", res.StatusCode).Str("body", res.Body).Msg("SendGrid rejected message")
		return fmt.Errorf("sendgrid returned status %d", res.StatusCode)
	}

	svc.logger.Debug().Int("status", res.StatusCode).Str("subject", msg.Subject).Msg("Email accepted by SendGrid")
	return nil
}
