package orders

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/storefront/domain"
	"github.com/fastygo/storefront/pkg/pricing"
	"github.com/fastygo/storefront/repository"
)

// Shipment is an order prepared for the shipping page.
type Shipment struct {
	domain.Order
	FormattedTotal string `json:"formatted_total"`
}

type UseCase struct {
	orders repository.OrderRepository
	logger *zap.Logger
}

func New(orders repository.OrderRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{orders: orders, logger: logger}
}

// Shipments lists the orders owned by user, newest first.
func (uc *UseCase) Shipments(ctx context.Context, user *domain.User, limit int) ([]Shipment, error) {
	if user == nil || user.ID == "" {
		return nil, domain.ErrUnauthorized
	}
	list, err := uc.orders.List(ctx, repository.OrderFilter{UserID: user.ID, Limit: limit})
	if err != nil {
		uc.logger.Error("order list failed", zap.String("user_id", user.ID), zap.Error(err))
		return nil, err
	}
	shipments := make([]Shipment, 0, len(list))
	for _, o := range list {
		shipments = append(shipments, Shipment{Order: o, FormattedTotal: pricing.FormatPrice(float64(o.Total))})
	}
	return shipments, nil
}
