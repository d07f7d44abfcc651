package ports

import "context"

// Mail is a single outbound message.
type Mail struct {
	To       string
	Subject  string
	HTMLBody string
}

// Mailer delivers a message through the mail collaborator.
type Mailer interface {
	Send(ctx context.Context, mail Mail) error
}

// MailDispatcher hands a message to the background delivery workers. Enqueue
// does not wait for delivery; failures are logged and counted, never surfaced
// to the request that triggered the mail.
type MailDispatcher interface {
	Enqueue(mail Mail)
}
