package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/eston/admissions/internal/app/models"
	"github.com/eston/admissions/internal/app/repositories"
	"github.com/eston/admissions/internal/pkg/discord"
	"github.com/eston/admissions/internal/pkg/email"
	"github.com/eston/admissions/internal/pkg/websocket"
)

// Notifier fans application changes out to email, Discord and the live admin feed.
// Every channel is best-effort: failures are logged and never returned.
type Notifier interface {
	ApplicationSubmitted(ctx context.Context, app *models.Application)
	ApplicationChanged(eventType string, app *models.Application)
	ApplicationDeleted(app *models.Application)
}

type notifierImpl struct {
	mailer      email.EmailService
	userRepo    repositories.IUserRepository
	alerter     discord.Alerter
	publisher   websocket.Publisher
	branding    email.Branding
	sendTimeout time.Duration
	logger      zerolog.Logger
}

// NewNotifier creates a Notifier. A nil alerter or publisher disables that channel.
func NewNotifier(
	mailer email.EmailService,
	userRepo repositories.IUserRepository,
	alerter discord.Alerter,
	publisher websocket.Publisher,
	branding email.Branding,
	sendTimeout time.Duration,
	logger zerolog.Logger,
) Notifier {
	if alerter == nil {
		alerter = discord.NopAlerter{}
	}
	if publisher == nil {
		publisher = websocket.NopPublisher{}
	}
	return &notifierImpl{
		mailer:      mailer,
		userRepo:    userRepo,
		alerter:     alerter,
		publisher:   publisher,
		branding:    branding,
		sendTimeout: sendTimeout,
		logger:      logger,
	}
}

// ApplicationSubmitted sends the applicant confirmation and the staff broadcast, then
// posts the Discord alert and the live event.
func (n *notifierImpl) ApplicationSubmitted(ctx context.Context, app *models.Application) {
	n.send(ctx, app, email.ApplicationConfirmation(app, n.branding), "confirmation")

	recipients, err := n.userRepo.ListEmails(ctx)
	if err != nil {
		n.logger.Error().Err(err).Int64("applicationID", app.ID).Msg("Failed to load broadcast recipients")
	} else if len(recipients) > 0 {
		n.send(ctx, app, email.NewApplicationBroadcast(app, recipients, n.branding), "broadcast")
	}

	if err := n.alerter.ApplicationSubmitted(ctx, app); err != nil {
		n.logger.Warn().Err(err).Int64("applicationID", app.ID).Msg("Discord alert failed")
	}

	n.publisher.Publish(websocket.NewApplicationEvent(websocket.EventApplicationSubmitted, app))
}

func (n *notifierImpl) send(ctx context.Context, app *models.Application, msg *email.Message, kind string) {
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.sendTimeout)
	defer cancel()

	if err := n.mailer.Send(sendCtx, msg); err != nil {
		n.logger.Error().Err(err).
			Int64("applicationID", app.ID).
			Str("kind", kind).
			Msg("Failed to send application email")
		return
	}
	n.logger.Debug().Int64("applicationID", app.ID).Str("kind", kind).Msg("Application email sent")
}

func (n *notifierImpl) ApplicationChanged(eventType string, app *models.Application) {
	n.publisher.Publish(websocket.NewApplicationEvent(eventType, app))
}

func (n *notifierImpl) ApplicationDeleted(app *models.Application) {
	n.publisher.Publish(websocket.NewApplicationEvent(websocket.EventApplicationDeleted, app))
}
