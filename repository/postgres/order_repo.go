package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/storefront/domain"
	"github.com/fastygo/storefront/repository"
)

type orderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns a Postgres-backed implementation of OrderRepository.
func NewOrderRepository(pool *pgxpool.Pool) repository.OrderRepository {
	return &orderRepository{pool: pool}
}

func (r *orderRepository) List(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, error) {
	const query = `
	SELECT id, user_id, status, total, shipping_address, tracking_number, items, created_at, updated_at
	FROM orders
	WHERE ($1 = '' OR user_id = $1)
	  AND ($2 = '' OR status = $2)
	ORDER BY created_at DESC
	LIMIT $3 OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query, filter.UserID, filter.Status, clampLimit(filter.Limit), filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var (
			order domain.Order
			items []byte
		)
		if err := rows.Scan(
			&order.ID,
			&order.UserID,
			&order.Status,
			&order.Total,
			&order.ShippingAddress,
			&order.TrackingNumber,
			&items,
			&order.CreatedAt,
			&order.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if len(items) > 0 {
			_ = json.Unmarshal(items, &order.Items)
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}
