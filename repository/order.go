package repository

import (
	"context"

	"github.com/fastygo/storefront/domain"
)

type OrderFilter struct {
	UserID string
	Status string
	Limit  int
	Offset int
}

type OrderRepository interface {
	List(ctx context.Context, filter OrderFilter) ([]domain.Order, error)
}
