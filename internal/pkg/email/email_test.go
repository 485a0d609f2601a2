package email

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eston/admissions/internal/app/models"
)

func testBranding() Branding {
	return Branding{
		CollegeName:     "Eston IT College",
		Website:         "http://www.eston.edu.gh",
		AdmissionsDesk:  "Admissions Desk\nMain Campus",
		RegistrationFee: "GHS150.00",
	}
}

func testApplication() *models.Application {
	return &models.Application{
		ID:         9,
		FirstName:  "Ama",
		LastName:   "Mensah",
		Email:      "ama@example.com",
		CourseName: "Diploma in <Data> Science",
	}
}

func TestMessage_Validate(t *testing.T) {
	tests := []struct {
		name    string
		msg     Message
		wantErr string
	}{
		{name: "valid", msg: Message{To: []string{"a@example.com"}, Subject: "Hi", TextBody: "x"}},
		{name: "bcc only", msg: Message{Bcc: []string{"a@example.com"}, Subject: "Hi", HTMLBody: "<p>x</p>"}},
		{name: "no recipients", msg: Message{Subject: "Hi", TextBody: "x"}, wantErr: "no recipients"},
		{name: "bad address", msg: Message{To: []string{"nope"}, Subject: "Hi", TextBody: "x"}, wantErr: "invalid recipient"},
		{name: "no subject", msg: Message{To: []string{"a@example.com"}, Subject: " ", TextBody: "x"}, wantErr: "no subject"},
		{name: "no body", msg: Message{To: []string{"a@example.com"}, Subject: "Hi"}, wantErr: "no content"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.msg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestApplicationConfirmation(t *testing.T) {
	msg := ApplicationConfirmation(testApplication(), testBranding())

	assert.Equal(t, []string{"ama@example.com"}, msg.To)
	assert.Empty(t, msg.Bcc)
	assert.Equal(t, "Received Eston IT College Admission Form", msg.Subject)
	assert.Contains(t, msg.HTMLBody, "Dear Ama,")
	assert.Contains(t, msg.HTMLBody, "Diploma in &lt;Data&gt; Science", "course names are escaped")
	assert.Contains(t, msg.HTMLBody, "GHS150.00")
	assert.Contains(t, msg.HTMLBody, "Admissions Desk<br>Main Campus")
	assert.Contains(t, msg.HTMLBody, `<a href="http://www.eston.edu.gh">www.eston.edu.gh</a>`)
	assert.Contains(t, msg.TextBody, "Diploma in <Data> Science")
	assert.NoError(t, msg.Validate())
}

func TestNewApplicationBroadcast(t *testing.T) {
	recipients := []string{"admin@eston.edu.gh", "student@example.com"}
	msg := NewApplicationBroadcast(testApplication(), recipients, testBranding())

	assert.Empty(t, msg.To)
	assert.Equal(t, recipients, msg.Bcc)
	assert.Equal(t, "New Application Submitted", msg.Subject)
	assert.Contains(t, msg.HTMLBody, "Ama Mensah")
	assert.Contains(t, msg.HTMLBody, "#9")
	assert.NoError(t, msg.Validate())
}

func TestSignature_WithoutWebsite(t *testing.T) {
	b := testBranding()
	b.Website = ""
	assert.Equal(t, "<p>Eston IT College</p>\n", signature(b))
}

func TestBuildMIMEMessage(t *testing.T) {
	date := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	msg := &Message{
		Bcc:      []string{"hidden@example.com"},
		Subject:  "Offre d'admission é",
		HTMLBody: "<p>Hello</p>",
	}

	raw := string(buildMIMEMessage(`"Eston Admissions" <admissions@eston.edu.gh>`, msg, date))
	headers, body, found := strings.Cut(raw, "\r\n\r\n")
	require.True(t, found)

	assert.Equal(t, "<p>Hello</p>", body)
	assert.Contains(t, headers, "From: \"Eston Admissions\" <admissions@eston.edu.gh>\r\n")
	assert.Contains(t, headers, "To: undisclosed-recipients:;\r\n")
	assert.Contains(t, headers, "Subject: =?utf-8?q?")
	assert.Contains(t, headers, "Date: Thu, 01 May 2025 10:00:00 +0000\r\n")
	assert.Contains(t, headers, "Content-Type: text/html; charset=UTF-8")
	assert.NotContains(t, raw, "hidden@example.com")
}

func TestBuildMIMEMessage_PlainText(t *testing.T) {
	msg := &Message{To: []string{"a@example.com", "b@example.com"}, Subject: "Hi", TextBody: "plain"}
	raw := string(buildMIMEMessage("admissions@eston.edu.gh", msg, time.Now()))

	assert.Contains(t, raw, "To: a@example.com, b@example.com\r\n")
	assert.Contains(t, raw, "Subject: Hi\r\n")
	assert.Contains(t, raw, "Content-Type: text/plain; charset=UTF-8")
	assert.True(t, strings.HasSuffix(raw, "\r\n\r\nplain"))
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	msg := &Message{To: []string{"a@example.com"}, Subject: "Hi", TextBody: "x"}

	require.NoError(t, r.Send(context.Background(), msg))
	r.Err = errors.New("smtp down")
	assert.EqualError(t, r.Send(context.Background(), msg), "smtp down")

	assert.Len(t, r.Messages(), 2)
}

func TestNewEmailService(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		wantType interface{}
		wantErr  bool
	}{
		{name: "default", cfg: Config{}, wantType: &logService{}},
		{name: "log", cfg: Config{Provider: "LOG"}, wantType: &logService{}},
		{name: "smtp without credentials", cfg: Config{Provider: "smtp", Host: "smtp.example.com"}, wantType: &logService{}},
		{name: "smtp", cfg: Config{Provider: "smtp", Host: "smtp.example.com", Username: "u", Password: "p"}, wantType: &smtpService{}},
		{name: "sendgrid", cfg: Config{Provider: "sendgrid", SendGridAPIKey: "key"}, wantType: &sendGridService{}},
		{name: "unknown", cfg: Config{Provider: "carrier-pigeon"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := NewEmailService(tt.cfg, zerolog.Nop())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, svc)
		})
	}
}

func TestLogService_ValidatesMessage(t *testing.T) {
	svc := NewLogService(zerolog.Nop())
	assert.Error(t, svc.Send(context.Background(), &Message{Subject: "x", TextBody: "x"}))
	assert.NoError(t, svc.Send(context.Background(), &Message{To: []string{"a@example.com"}, Subject: "x", TextBody: "x"}))
}

func TestSendGridPrepare(t *testing.T) {
	svc := NewSendGridService(Config{SendGridAPIKey: "key", FromName: "Eston", FromEmail: "admissions@eston.edu.gh"}, zerolog.Nop()).(*sendGridService)

	m := svc.prepare(&Message{Bcc: []string{"a@example.com", "b@example.com"}, Subject: "New", TextBody: "t", HTMLBody: "<p>h</p>"})
	require.Len(t, m.Personalizations, 1)
	p := m.Personalizations[0]
	require.Len(t, p.To, 1)
	assert.Equal(t, "admissions@eston.edu.gh", p.To[0].Address, "sender is used as To when only Bcc is set")
	assert.Len(t, p.BCC, 2)
	require.Len(t, m.Content, 2)
	assert.Equal(t, "text/plain", m.Content[0].Type)
	assert.Equal(t, "text/html", m.Content[1].Type)
}

func TestSMTPService_SendFailsOnCancelledContext(t *testing.T) {
	svc := NewSMTPService(Config{Host: "127.0.0.1", Port: 1}, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := svc.Send(ctx, &Message{To: []string{"a@example.com"}, Subject: "x", TextBody: "x"})
	assert.Error(t, err)
}
