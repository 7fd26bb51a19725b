package services

import (
	"context"

	"github.com/fastygo/storefront/domain"
	"github.com/fastygo/storefront/internal/infrastructure/buffer"
	"github.com/fastygo/storefront/usecase"
)

// BufferBridge hands catalog writes to the processor as pending products.
type BufferBridge struct {
	processor *BufferProcessor
}

func NewBufferBridge(processor *BufferProcessor) *BufferBridge {
	return &BufferBridge{processor: processor}
}

func (b *BufferBridge) BufferProduct(ctx context.Context, operation string, product *domain.Product) error {
	if b.processor == nil || product == nil {
		return domain.ErrInvalidPayload
	}
	return b.processor.BufferOperation(ctx, buffer.Pending{
		Product:   *product,
		Operation: operation,
	})
}

var _ usecase.OperationBuffer = (*BufferBridge)(nil)
