package order

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// StatusConfirmed is the only status this service ever writes. Lifecycle
// transitions belong to other services.
const StatusConfirmed = "CONFIRMED"

// Order represents a persisted record of a confirmed purchase.
type Order struct {
	ID          string
	UserEmail   string
	Items       []Item
	TotalAmount decimal.Decimal
	Status      string
	CreatedAt   time.Time
}

// Item is a single cart line, preserved verbatim from the request.
// There is no server-side catalog; clients name their own items.
type Item struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// Subtotal returns price * quantity for this line.
func (i Item) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Notification is a persisted entry for the user's notification feed.
type Notification struct {
	ID        string
	UserEmail string
	Message   string
	IsRead    bool
	CreatedAt time.Time
}

// Repository defines persistence operations for orders. The intake path
// only inserts; reads belong to other collaborators.
type Repository interface {
	Create(ctx context.Context, order *Order) error
}

// NotificationRepository defines persistence operations for notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
}

// NewOrderID builds an order identifier from the wall clock. Two orders
// within the same millisecond collide; accepted limitation of the current
// scheme.
func NewOrderID(now time.Time) string {
	return "ORD-" + strconv.FormatInt(now.UnixMilli(), 10)
}

// NewNotificationID builds a notification identifier from the wall clock,
// independent of the order ID.
func NewNotificationID(now time.Time) string {
	return strconv.FormatInt(now.UnixMilli(), 10)
}

// ErrEmptyCart indicates a request with no items.
var ErrEmptyCart = fmt.Errorf("cart is empty")

// InvalidItemError indicates a cart line that fails schema validation.
type InvalidItemError struct {
	Index  int
	Reason string
}

func (e *InvalidItemError) Error() string {
	return fmt.Sprintf("invalid item at index %d: %s", e.Index, e.Reason)
}

// UpstreamError tags a failure with the collaborator that produced it, so
// the transport boundary can tell store failures from mail failures
// without parsing message text. All of them still map to a 500.
type UpstreamError struct {
	Subsystem string // "orders-store", "notifications-store" or "mail"
	Err       error
}

func (e *UpstreamError) Error() string {
	return e.Subsystem + ": " + e.Err.Error()
}

func (e *UpstreamError) Unwrap() error { return e.Err }
