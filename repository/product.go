package repository

import (
	"context"

	"github.com/fastygo/storefront/domain"
)

type ProductFilter struct {
	OnSaleOnly bool
	Limit      int
	Offset     int
}

type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, error)
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
}
