package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eston/admissions/internal/app/models"
	"github.com/eston/admissions/internal/pkg/email"
	"github.com/eston/admissions/internal/pkg/websocket"
)

type fakeAlerter struct {
	calls int
	err   error
}

func (a *fakeAlerter) ApplicationSubmitted(context.Context, *models.Application) error {
	a.calls++
	return a.err
}

func (a *fakeAlerter) Close() error { return nil }

type fakePublisher struct {
	events []*websocket.Event
}

func (p *fakePublisher) Publish(event *websocket.Event) {
	p.events = append(p.events, event)
}

type deadlineMailer struct {
	deadlines []time.Duration
}

func (m *deadlineMailer) Send(ctx context.Context, _ *email.Message) error {
	deadline, ok := ctx.Deadline()
	if !ok {
		return errors.New("no deadline")
	}
	m.deadlines = append(m.deadlines, time.Until(deadline))
	return nil
}

var testBranding = email.Branding{CollegeName: "Eston IT College", RegistrationFee: "GHS150.00"}

func TestNotifier_ApplicationSubmitted(t *testing.T) {
	users := newFakeUserRepo(
		&models.User{ID: 1, Email: "admin@eston.edu.gh"},
		&models.User{ID: 2, Email: "ama@example.com"},
	)
	mailer := &email.Recorder{}
	alerter := &fakeAlerter{}
	publisher := &fakePublisher{}
	n := NewNotifier(mailer, users, alerter, publisher, testBranding, time.Second, zerolog.Nop())

	n.ApplicationSubmitted(context.Background(), pendingApplication(5))

	messages := mailer.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, []string{"ama@example.com"}, messages[0].To)
	assert.Empty(t, messages[1].To)
	assert.Equal(t, []string{"admin@eston.edu.gh", "ama@example.com"}, messages[1].Bcc)

	assert.Equal(t, 1, alerter.calls)
	require.Len(t, publisher.events, 1)
	assert.Equal(t, websocket.EventApplicationSubmitted, publisher.events[0].Type)
	assert.Equal(t, int64(5), publisher.events[0].ApplicationID)
}

func TestNotifier_FailuresAreSwallowed(t *testing.T) {
	users := newFakeUserRepo()
	users.err = errors.New("db down")
	mailer := &email.Recorder{Err: errors.New("smtp down")}
	alerter := &fakeAlerter{err: errors.New("discord down")}
	publisher := &fakePublisher{}
	n := NewNotifier(mailer, users, alerter, publisher, testBranding, time.Second, zerolog.Nop())

	n.ApplicationSubmitted(context.Background(), pendingApplication(5))

	assert.Len(t, mailer.Messages(), 1, "broadcast is skipped when recipients cannot be loaded")
	assert.Equal(t, 1, alerter.calls)
	assert.Len(t, publisher.events, 1)
}

func TestNotifier_SendTimeoutOutlivesRequest(t *testing.T) {
	mailer := &deadlineMailer{}
	n := NewNotifier(mailer, newFakeUserRepo(), nil, nil, testBranding, 10*time.Second, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	n.ApplicationSubmitted(ctx, pendingApplication(5))

	require.Len(t, mailer.deadlines, 1)
	assert.InDelta(t, (10 * time.Second).Seconds(), mailer.deadlines[0].Seconds(), 1)
}

func TestNotifier_ChangedAndDeleted(t *testing.T) {
	publisher := &fakePublisher{}
	n := NewNotifier(&email.Recorder{}, newFakeUserRepo(), nil, publisher, testBranding, time.Second, zerolog.Nop())

	app := decidedApplication(3, models.StatusApproved)
	n.ApplicationChanged(websocket.EventApplicationStatusChanged, app)
	n.ApplicationDeleted(app)

	require.Len(t, publisher.events, 2)
	assert.Equal(t, websocket.EventApplicationStatusChanged, publisher.events[0].Type)
	assert.Equal(t, models.StatusApproved, publisher.events[0].Status)
	assert.Equal(t, websocket.EventApplicationDeleted, publisher.events[1].Type)
}
