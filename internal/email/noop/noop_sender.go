package noop

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"invoicer/internal/port"
)

type noopSender struct{}

// NewNoopSender creates a Mailer that only logs outgoing messages.
func NewNoopSender() port.Mailer {
	return &noopSender{}
}

func (s *noopSender) Send(_ context.Context, msg port.MailMessage) (string, error) {
	id := "noop-" + uuid.NewString()
	log.Info().
		Str("component", "mailer").
		Str("message_id", id).
		Str("from", msg.From).
		Strs("to", msg.To).
		Strs("cc", msg.CC).
		Str("subject", msg.Subject).
		Int("attachments", len(msg.Attachments)).
		Msg("[NOOP EMAIL] message not delivered")
	return id, nil
}
