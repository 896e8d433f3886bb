// Package mail delivers outgoing messages.
package mail

import (
	"context"

	"github.com/rs/zerolog"
)

// LogMailer writes each message to the log instead of sending it. It stands
// in for SMTP delivery, so anyone who can read the logs can read the mail.
type LogMailer struct {
	logger zerolog.Logger
}

func NewLogMailer(logger zerolog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(_ context.Context, to, subject, body string) error {
	m.logger.Info().
		Str("to", to).
		Str("subject", subject).
		Str("body", body).
		Msg("mail")
	return nil
}
