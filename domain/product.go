package domain

import "time"

// Product is a catalog item. Prices are whole Korean Won.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       int64     `json:"price"`
	SalePrice   *int64    `json:"sale_price,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	CreatedBy   string    `json:"created_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (p Product) RegularPrice() float64 {
	return float64(p.Price)
}

func (p Product) SaleAmount() (float64, bool) {
	if p.SalePrice == nil {
		return 0, false
	}
	return float64(*p.SalePrice), true
}

// EffectivePrice is the amount a customer pays today.
func (p Product) EffectivePrice() int64 {
	if p.SalePrice != nil && *p.SalePrice < p.Price {
		return *p.SalePrice
	}
	return p.Price
}

// Validate enforces the catalog price invariants.
func (p *Product) Validate() error {
	if p == nil {
		return ErrInvalidPayload
	}
	if p.Name == "" {
		return NewError(ErrCodeInvalid, "product name is required")
	}
	if p.Price < 0 {
		return NewError(ErrCodeInvalid, "price must not be negative")
	}
	if p.SalePrice != nil {
		if *p.SalePrice < 0 {
			return NewError(ErrCodeInvalid, "sale price must not be negative")
		}
		if *p.SalePrice >= p.Price {
			return NewError(ErrCodeInvalid, "sale price must be lower than price")
		}
	}
	return nil
}
