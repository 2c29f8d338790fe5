// Package handler implements the HTTP transport for order intake:
// request decoding, bearer-credential checks and the mapping of domain
// errors onto the fixed four-outcome response contract.
package handler

import (
	"context"
	"net/http"

	"github.com/go-faster/jx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/xenking/order-intake/internal/auth"
	"github.com/xenking/order-intake/internal/domain/order"
)

// Handler exposes the order intake route, delegating business logic to
// the order service.
type Handler struct {
	verifier *auth.Verifier
	orders   *order.Service
	requests metric.Int64Counter
}

// New constructs a Handler with the required dependencies. The meter
// records one data point per request, labeled by outcome.
func New(verifier *auth.Verifier, orders *order.Service, meter metric.Meter) (*Handler, error) {
	if meter == nil {
		meter = noop.Meter{}
	}
	requests, err := meter.Int64Counter("orders.requests",
		metric.WithDescription("Order intake requests by outcome."),
	)
	if err != nil {
		return nil, err
	}
	return &Handler{
		verifier: verifier,
		orders:   orders,
		requests: requests,
	}, nil
}

// countOutcome records one request with its terminal outcome:
// "placed", "unauthorized", "rejected" or "failed".
func (h *Handler) countOutcome(ctx context.Context, outcome string) {
	h.requests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
}

// Register mounts the API routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/order", h.PlaceOrder)
}

// writeJSON writes a JSON response built by fn with the given status.
func writeJSON(w http.ResponseWriter, status int, fn func(e *jx.Encoder)) {
	e := &jx.Encoder{}
	fn(e)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// writeMessage writes {"message": msg} with the given status. Used for
// the two explicit outcomes (401, 400) and shared with the middleware
// layer's error shape.
func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("message", func(e *jx.Encoder) { e.Str(msg) })
		})
	})
}

// writeError writes {"error": msg} with status 500.
func writeError(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusInternalServerError, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("error", func(e *jx.Encoder) { e.Str(msg) })
		})
	})
}
