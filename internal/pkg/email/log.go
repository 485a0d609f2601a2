package email

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

type logService struct {
	logger zerolog.Logger
}

// NewLogService returns an EmailService that only logs what it would send
func NewLogService(logger zerolog.Logger) EmailService {
	return &logService{logger: logger.With().Str("provider", "log").Logger()}
}

func (s *logService) Send(_ context.Context, msg *Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	s.logger.Info().
		Strs("to", msg.To).
		Int("bcc", len(msg.Bcc)).
		Str("subject", msg.Subject).
		Msg("Email delivery disabled, message logged instead")
	return nil
}

// Recorder is an in-memory EmailService that keeps every message it is given.
// Err, when set, is returned from Send after recording.
type Recorder struct {
	mu           sync.Mutex
	SentMessages []*Message
	Err          error
}

func (r *Recorder) Send(_ context.Context, msg *Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.SentMessages = append(r.SentMessages, msg)
	return r.Err
}

// Messages returns a snapshot of the recorded messages
func (r *Recorder) Messages() []*Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Message(nil), r.SentMessages...)
}
