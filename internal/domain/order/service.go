package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ConfirmationSender delivers the confirmation email for a placed order.
// Implemented by the mail package; kept narrow so the service stays
// testable without a live relay.
type ConfirmationSender interface {
	SendConfirmation(ctx context.Context, o *Order) error
}

// PlaceOrderRequest holds the input for placing an order. UserEmail is
// the identity extracted from the verified bearer token.
type PlaceOrderRequest struct {
	UserEmail string
	Items     []Item
}

// PlaceOrderResult holds the records written for a successful order.
type PlaceOrderResult struct {
	Order        *Order
	Notification *Notification
}

// Service encapsulates the order intake sequence: validate the cart,
// compute the total, persist the order, persist the notification, send
// the confirmation email. The steps run strictly in that order and the
// first failure aborts the rest.
//
// There is deliberately no compensation: a notification or mail failure
// after the order write leaves the order persisted. That inconsistency
// window is part of the documented contract.
type Service struct {
	orders        Repository
	notifications NotificationRepository
	confirmations ConfirmationSender

	// now is the clock used for IDs and createdAt stamps. Injected so
	// the timestamp-derived ID formula is testable deterministically.
	now func() time.Time
}

// NewService creates an order intake Service with the required
// collaborators.
func NewService(
	orders Repository,
	notifications NotificationRepository,
	confirmations ConfirmationSender,
) *Service {
	return &Service{
		orders:        orders,
		notifications: notifications,
		confirmations: confirmations,
		now:           time.Now,
	}
}

// PlaceOrder runs the intake sequence for one authenticated cart.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*PlaceOrderResult, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}
	if err := validateItems(req.Items); err != nil {
		return nil, err
	}

	// Total is recomputed here; the client-supplied value is never
	// trusted.
	total := sumItems(req.Items)

	now := s.now().UTC()
	o := &Order{
		ID:          NewOrderID(now),
		UserEmail:   req.UserEmail,
		Items:       req.Items,
		TotalAmount: total,
		Status:      StatusConfirmed,
		CreatedAt:   now,
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, &UpstreamError{Subsystem: "orders-store", Err: err}
	}

	notifiedAt := s.now().UTC()
	n := &Notification{
		ID:        NewNotificationID(notifiedAt),
		UserEmail: req.UserEmail,
		Message:   fmt.Sprintf("Order placed successfully (%s)", o.ID),
		IsRead:    false,
		CreatedAt: notifiedAt,
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		return nil, &UpstreamError{Subsystem: "notifications-store", Err: err}
	}

	if err := s.confirmations.SendConfirmation(ctx, o); err != nil {
		return nil, &UpstreamError{Subsystem: "mail", Err: err}
	}

	return &PlaceOrderResult{Order: o, Notification: n}, nil
}

// validateItems rejects lines the original system would have let through
// as NaN/undefined: missing names, negative prices, non-positive
// quantities.
func validateItems(items []Item) error {
	for i, item := range items {
		switch {
		case strings.TrimSpace(item.Name) == "":
			return &InvalidItemError{Index: i, Reason: "name is required"}
		case item.Price.IsNegative():
			return &InvalidItemError{Index: i, Reason: "price must not be negative"}
		case item.Quantity < 1:
			return &InvalidItemError{Index: i, Reason: "quantity must be greater than 0"}
		}
	}
	return nil
}

// sumItems accumulates price*quantity in the given item order, visiting
// every item exactly once.
func sumItems(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}
