package notify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/kompu/storefront/internal/core/ports"
)

// Log writes notifications to the logger instead of sending them. It is the
// fallback when no mail provider is configured.
type Log struct {
	log zerolog.Logger
}

func NewLog(log zerolog.Logger) *Log {
	return &Log{log: log}
}

func (l *Log) Send(_ context.Context, n ports.Notification) error {
	l.log.Info().
		Str("template", n.TemplateID).
		Str("to", n.Recipient()).
		Interface("params", n.Params).
		Msg("notification not sent, no provider configured")
	return nil
}
