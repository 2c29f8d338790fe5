package handler

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xenking/order-intake/internal/auth"
	"github.com/xenking/order-intake/internal/domain/order"
)

// PlaceOrder handles POST /api/order: authenticate, decode the cart,
// delegate to the order service, map the result onto the response
// contract. Responses are exactly one of 401, 400, 500 or 200.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// net/http canonicalizes incoming header names, so this lookup
	// covers every casing of "authorization" on the wire.
	email, err := h.verifier.VerifyBearer(r.Header.Get("Authorization"))
	if err != nil {
		if errors.Is(err, auth.ErrNoCredential) {
			h.countOutcome(ctx, "unauthorized")
			writeMessage(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		// Token-invalid is not distinguished from other internal errors.
		h.internalError(ctx, w, err)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.internalError(ctx, w, errors.Wrap(err, "read body"))
		return
	}

	items, err := decodeCart(body)
	if err != nil {
		h.internalError(ctx, w, errors.Wrap(err, "parse body"))
		return
	}

	result, err := h.orders.PlaceOrder(ctx, order.PlaceOrderRequest{
		UserEmail: email,
		Items:     items,
	})
	if err != nil {
		h.mapOrderError(ctx, w, err)
		return
	}

	h.countOutcome(ctx, "placed")
	zctx.From(ctx).Info("Order placed",
		zap.String("order_id", result.Order.ID),
		zap.String("user_email", result.Order.UserEmail),
		zap.String("total", result.Order.TotalAmount.String()),
	)

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("message", func(e *jx.Encoder) { e.Str("Order placed successfully") })
			e.Field("orderID", func(e *jx.Encoder) { e.Str(result.Order.ID) })
		})
	})
}

// mapOrderError converts domain errors to responses: cart validation
// failures are 400, everything else collapses to 500.
func (h *Handler) mapOrderError(ctx context.Context, w http.ResponseWriter, err error) {
	if errors.Is(err, order.ErrEmptyCart) {
		h.countOutcome(ctx, "rejected")
		writeMessage(w, http.StatusBadRequest, "Cart is empty")
		return
	}

	var iiErr *order.InvalidItemError
	if errors.As(err, &iiErr) {
		h.countOutcome(ctx, "rejected")
		writeMessage(w, http.StatusBadRequest, iiErr.Error())
		return
	}

	h.internalError(ctx, w, err)
}

// internalError logs the failure and writes the uniform 500 response.
// The raw error text goes into the body; clients depend on it for
// debugging and the deployment sits behind a trusted gateway.
func (h *Handler) internalError(ctx context.Context, w http.ResponseWriter, err error) {
	h.countOutcome(ctx, "failed")
	lg := zctx.From(ctx)

	var upErr *order.UpstreamError
	if errors.As(err, &upErr) {
		lg.Error("Order intake failed",
			zap.String("subsystem", upErr.Subsystem),
			zap.Error(upErr.Err),
		)
	} else {
		lg.Error("Order intake failed", zap.Error(err))
	}

	writeError(w, err.Error())
}

// decodeCart parses the request body into cart items. An empty body is
// treated as an empty object, which surfaces as an empty cart. Unknown
// top-level fields are skipped.
func decodeCart(body []byte) ([]order.Item, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}

	var items []order.Item
	d := jx.DecodeBytes(body)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "items" {
			return d.Skip()
		}
		if d.Next() == jx.Null {
			return d.Null()
		}
		return d.Arr(func(d *jx.Decoder) error {
			item, err := decodeItem(d)
			if err != nil {
				return err
			}
			items = append(items, item)
			return nil
		})
	}); err != nil {
		return nil, err
	}

	return items, nil
}

// decodeItem reads one cart line. Price is taken as the exact decimal
// literal from the wire, not a float round-trip.
func decodeItem(d *jx.Decoder) (order.Item, error) {
	var item order.Item
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "name":
			s, err := d.Str()
			if err != nil {
				return err
			}
			item.Name = s
			return nil
		case "price":
			n, err := d.Num()
			if err != nil {
				return err
			}
			price, err := decimal.NewFromString(strings.Trim(string(n), `"`))
			if err != nil {
				return errors.Wrap(err, "price")
			}
			item.Price = price
			return nil
		case "quantity":
			q, err := d.Int()
			if err != nil {
				return err
			}
			item.Quantity = q
			return nil
		default:
			return d.Skip()
		}
	})
	return item, err
}
