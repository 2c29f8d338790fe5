package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/order-intake/internal/domain/order"
)

var _ order.NotificationRepository = (*NotificationRepository)(nil)

// NotificationRepository implements order.NotificationRepository backed
// by PostgreSQL.
type NotificationRepository struct {
	pool *pgxpool.Pool
	sql  string
}

// NewNotificationRepository returns a NotificationRepository writing to
// the given table.
func NewNotificationRepository(pool *pgxpool.Pool, table string) *NotificationRepository {
	return &NotificationRepository{
		pool: pool,
		sql: fmt.Sprintf(
			`INSERT INTO %s (id, user_email, message, is_read, created_at)
			VALUES ($1, $2, $3, $4, $5)`,
			pgx.Identifier{table}.Sanitize(),
		),
	}
}

// Create persists a new notification.
func (r *NotificationRepository) Create(ctx context.Context, n *order.Notification) error {
	_, err := r.pool.Exec(ctx, r.sql,
		n.ID, n.UserEmail, n.Message, n.IsRead, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating notification %q: %w", n.ID, err)
	}

	return nil
}
