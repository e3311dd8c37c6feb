package mailer

import (
	"context"

	"go.uber.org/zap"
)

// ConsoleMailer logs messages instead of sending them. Used in dev when no
// Sendgrid key is configured.
type ConsoleMailer struct {
	log *zap.SugaredLogger
}

var _ Mailer = (*ConsoleMailer)(nil)

// NewConsole creates a log-only mailer.
func NewConsole(log *zap.SugaredLogger) *ConsoleMailer {
	return &ConsoleMailer{log: log}
}

// Send logs the message and reports success.
func (m *ConsoleMailer) Send(_ context.Context, msg Message) error {
	m.log.Infow("email (console)",
		"to", msg.ToEmail,
		"subject", msg.Subject,
		"text", msg.TextBody,
	)
	return nil
}
