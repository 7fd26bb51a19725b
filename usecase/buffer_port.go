package usecase

import (
	"context"

	"github.com/fastygo/storefront/domain"
)

const (
	OperationCreate = "create"
)

// OperationBuffer abstracts the buffer processor so use cases stay storage-agnostic.
type OperationBuffer interface {
	BufferProduct(ctx context.Context, operation string, product *domain.Product) error
}
