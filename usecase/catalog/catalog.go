package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/storefront/domain"
	"github.com/fastygo/storefront/pkg/pricing"
	"github.com/fastygo/storefront/repository"
	"github.com/fastygo/storefront/usecase"
)

// Listing is a product decorated with its display price fields.
type Listing struct {
	domain.Product
	FormattedPrice     string `json:"formatted_price"`
	FormattedSalePrice string `json:"formatted_sale_price,omitempty"`
	DiscountRate       *int   `json:"discount_rate,omitempty"`
}

// NewListing derives the display fields of a product.
func NewListing(p domain.Product) Listing {
	l := Listing{
		Product:        p,
		FormattedPrice: pricing.FormatPrice(p.RegularPrice()),
	}
	if rate, ok := pricing.DiscountRate(p); ok {
		l.DiscountRate = &rate
		l.FormattedSalePrice = pricing.FormatPrice(float64(*p.SalePrice))
	}
	return l
}

type UseCase struct {
	products repository.ProductRepository
	buffer   usecase.OperationBuffer
	logger   *zap.Logger
}

func New(products repository.ProductRepository, buffer usecase.OperationBuffer, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		products: products,
		buffer:   buffer,
		logger:   logger,
	}
}

func (uc *UseCase) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]Listing, error) {
	products, err := uc.products.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	listings := make([]Listing, 0, len(products))
	for _, p := range products {
		listings = append(listings, NewListing(p))
	}
	return listings, nil
}

// Pending reports whether p was accepted by the operation buffer rather than
// stored; the store stamps CreatedAt, the buffer path does not.
func Pending(p *domain.Product) bool {
	return p != nil && p.CreatedAt.IsZero()
}

// CreateProduct validates and stores a product on behalf of an admin. When the
// store is unavailable the product is handed to the operation buffer and the
// call still succeeds.
func (uc *UseCase) CreateProduct(ctx context.Context, admin *domain.User, product *domain.Product) (*domain.Product, error) {
	if !admin.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	if product == nil {
		return nil, domain.ErrInvalidPayload
	}
	product.Name = strings.TrimSpace(product.Name)
	product.Description = strings.TrimSpace(product.Description)
	if err := product.Validate(); err != nil {
		return nil, err
	}
	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	product.CreatedBy = admin.ID

	created, err := uc.products.Create(ctx, product)
	if err != nil {
		var dErr *domain.Error
		if errors.As(err, &dErr) {
			return nil, err
		}
		if uc.buffer != nil {
			if bufErr := uc.buffer.BufferProduct(ctx, usecase.OperationCreate, product); bufErr != nil {
				if errors.As(bufErr, &dErr) {
					return nil, bufErr
				}
				uc.logger.Error("failed to buffer product creation", zap.Error(bufErr))
				return nil, err
			}
			uc.logger.Warn("product creation buffered due to repository error", zap.String("product_id", product.ID), zap.Error(err))
			return product, nil
		}
		return nil, err
	}
	uc.logger.Info("product created", zap.String("product_id", created.ID), zap.String("admin_id", admin.ID))
	return created, nil
}
