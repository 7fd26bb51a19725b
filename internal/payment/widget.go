// Package payment declares the storefront's view of the third-party payment
// widget SDK, including the confirm hook newer SDK builds expose.
package payment

import (
	"context"
	"encoding/json"

	"github.com/fastygo/storefront/domain"
)

// Request is what the storefront hands to the widget to start a payment.
type Request struct {
	OrderID       string `json:"orderId"`
	OrderName     string `json:"orderName"`
	Amount        int64  `json:"amount"`
	CustomerEmail string `json:"customerEmail,omitempty"`
	SuccessURL    string `json:"successUrl"`
	FailURL       string `json:"failUrl"`
}

// Widget is the base client shipped by the payment SDK.
type Widget interface {
	RequestPayment(ctx context.Context, req Request) error
}

// ConfirmFunc receives the SDK's opaque confirmation payload and reports
// whether the payment may proceed.
type ConfirmFunc func(ctx context.Context, data json.RawMessage) (bool, error)

// ConfirmMethodSetter is the extension some SDK builds add to Widget.
type ConfirmMethodSetter interface {
	SetConfirmMethod(fn ConfirmFunc)
}

// ExtendedWidget is a Widget that also accepts a confirm hook.
type ExtendedWidget interface {
	Widget
	ConfirmMethodSetter
}

var ErrConfirmUnsupported = domain.NewError(domain.ErrCodeInternal, "payment widget does not support confirm hooks")

// Extend asserts that w carries the confirm extension.
func Extend(w Widget) (ExtendedWidget, error) {
	ext, ok := w.(ExtendedWidget)
	if !ok {
		return nil, ErrConfirmUnsupported
	}
	return ext, nil
}
