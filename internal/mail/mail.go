// Package mail provides the outbound confirmation-mail collaborator: a
// narrow Sender interface consumed by the order service and an SMTP
// implementation configured from the environment.
package mail

import (
	"context"
	"strconv"
	"strings"

	"github.com/xenking/order-intake/internal/domain/order"
)

// Message is a single plain-text outbound email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers a single message through the configured relay.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Currency is the symbol used in confirmation bodies.
const Currency = "₹"

// ConfirmationSubject is the subject line for order confirmations.
const ConfirmationSubject = "Order Confirmed"

// ConfirmationBody renders the plain-text confirmation for an order:
// one "name x quantity = ₹amount" line per item, the order ID and the
// total.
func ConfirmationBody(o *order.Order) string {
	var b strings.Builder
	b.WriteString("Your order was placed successfully!\n\n")
	b.WriteString("Order ID: ")
	b.WriteString(o.ID)
	b.WriteString("\n\nItems:\n")
	for _, item := range o.Items {
		b.WriteString(item.Name)
		b.WriteString(" x ")
		b.WriteString(strconv.Itoa(item.Quantity))
		b.WriteString(" = ")
		b.WriteString(Currency)
		b.WriteString(item.Subtotal().String())
		b.WriteString("\n")
	}
	b.WriteString("\nTotal Amount: ")
	b.WriteString(Currency)
	b.WriteString(o.TotalAmount.String())
	b.WriteString("\n\nThank you for shopping with us!\n")
	return b.String()
}
