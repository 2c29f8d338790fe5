package mail

import (
	"context"

	"github.com/xenking/order-intake/internal/domain/order"
)

var _ order.ConfirmationSender = (*Confirmer)(nil)

// Confirmer adapts a Sender to the order service's ConfirmationSender
// interface, owning the subject and body layout.
type Confirmer struct {
	sender Sender
}

// NewConfirmer wraps the given sender.
func NewConfirmer(sender Sender) *Confirmer {
	return &Confirmer{sender: sender}
}

// SendConfirmation renders and sends the confirmation for o to the
// order's user email.
func (c *Confirmer) SendConfirmation(ctx context.Context, o *order.Order) error {
	return c.sender.Send(ctx, Message{
		To:      o.UserEmail,
		Subject: ConfirmationSubject,
		Body:    ConfirmationBody(o),
	})
}
