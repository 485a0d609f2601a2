package discord

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/eston/admissions/internal/app/models"
)

// discordgo caps plain message content at 2000 characters
const maxMessageLength = 2000

// Alerter posts short admin notifications to a channel
type Alerter interface {
	ApplicationSubmitted(ctx context.Context, app *models.Application) error
	Close() error
}

type discordAlerter struct {
	session   *discordgo.Session
	send      func(channelID, content string) error
	channelID string
	logger    zerolog.Logger
}

// NewAlerter creates a bot session. No gateway connection is opened; messages go
// through the REST API only.
func NewAlerter(botToken, channelID string, logger zerolog.Logger) (Alerter, error) {
	session, err := discordgo.New("Bot " + botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	a := &discordAlerter{
		session:   session,
		channelID: channelID,
		logger:    logger.With().Str("component", "discord").Logger(),
	}
	a.send = func(channelID, content string) error {
		_, err := session.ChannelMessageSend(channelID, content)
		return err
	}
	return a, nil
}

func (a *discordAlerter) ApplicationSubmitted(ctx context.Context, app *models.Application) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := a.send(a.channelID, FormatApplicationAlert(app)); err != nil {
		a.logger.Error().Err(err).Int64("applicationID", app.ID).Msg("Failed to post application alert")
		return fmt.Errorf("discord alert failed: %w", err)
	}
	return nil
}

func (a *discordAlerter) Close() error {
	if a.session == nil {
		return nil
	}
	return a.session.Close()
}

// FormatApplicationAlert renders the channel message for a new submission
func FormatApplicationAlert(app *models.Application) string {
	var sb strings.Builder
	sb.WriteString("**New application received**\n")
	fmt.Fprintf(&sb, "Applicant: %s\n", app.FullName())
	fmt.Fprintf(&sb, "Course: %s\n", app.CourseName)
	fmt.Fprintf(&sb, "Reference: #%d\n", app.ID)
	fmt.Fprintf(&sb, "Submitted: %s", app.ApplicationDate.UTC().Format("2006-01-02 15:04 MST"))

	msg := sb.String()
	if len(msg) > maxMessageLength {
		msg = msg[:maxMessageLength]
	}
	return msg
}

// NopAlerter discards alerts; used when Discord is not configured
type NopAlerter struct{}

func (NopAlerter) ApplicationSubmitted(context.Context, *models.Application) error { return nil }
func (NopAlerter) Close() error                                                    { return nil }
