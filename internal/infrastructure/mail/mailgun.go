package mail

import (
	"context"
	"fmt"
	"time"

	"github.com/mailgun/mailgun-go/v4"

	"github.com/breathscope/identity-api/internal/core/domain"
	"github.com/breathscope/identity-api/internal/core/ports"
)

const sendTimeout = 10 * time.Second

// MailgunMailer delivers messages through the Mailgun HTTP API.
type MailgunMailer struct {
	client *mailgun.MailgunImpl
	from   string
}

func NewMailgunMailer(mailgunDomain, apiKey, from string) *MailgunMailer {
	return &MailgunMailer{
		client: mailgun.NewMailgun(mailgunDomain, apiKey),
		from:   from,
	}
}

var _ ports.Mailer = (*MailgunMailer)(nil)

func (m *MailgunMailer) Send(ctx context.Context, mail ports.Mail) error {
	msg := m.client.NewMessage(m.from, mail.Subject, "", mail.To)
	msg.SetHtml(mail.HTMLBody)

	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	if _, _, err := m.client.Send(sendCtx, msg); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMailDelivery, err)
	}
	return nil
}
