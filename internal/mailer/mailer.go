package mailer

import "context"

// Message is a single outbound email.
type Message struct {
	ToEmail  string
	ToName   string
	Subject  string
	HTMLBody string
	TextBody string
}

// Mailer is any service that can deliver a message. Send must block until the
// provider accepts or rejects the message; the scheduler relies on that to
// order sends before deletes.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
