package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/order-intake/internal/domain/order"
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL. The
// table name is configurable, so identifiers are sanitized at
// construction instead of interpolated per call.
type OrderRepository struct {
	pool *pgxpool.Pool
	sql  string
}

// NewOrderRepository returns an OrderRepository writing to the given
// table.
func NewOrderRepository(pool *pgxpool.Pool, table string) *OrderRepository {
	return &OrderRepository{
		pool: pool,
		sql: fmt.Sprintf(
			`INSERT INTO %s (id, user_email, items, total_amount, status, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			pgx.Identifier{table}.Sanitize(),
		),
	}
}

// Create persists a new order. The line items are serialized to JSON
// for storage in the JSONB column.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshaling order items: %w", err)
	}

	_, err = r.pool.Exec(ctx, r.sql,
		o.ID, o.UserEmail, itemsJSON, o.TotalAmount, o.Status, o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}

	return nil
}
