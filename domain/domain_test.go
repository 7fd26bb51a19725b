package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func amount(v int64) *int64 { return &v }

func TestProduct_Validate(t *testing.T) {
	tests := []struct {
		name    string
		product *Product
		wantErr bool
	}{
		{name: "nil", product: nil, wantErr: true},
		{name: "missing name", product: &Product{Price: 1000}, wantErr: true},
		{name: "negative price", product: &Product{Name: "x", Price: -1}, wantErr: true},
		{name: "negative sale", product: &Product{Name: "x", Price: 1000, SalePrice: amount(-5)}, wantErr: true},
		{name: "sale equals price", product: &Product{Name: "x", Price: 1000, SalePrice: amount(1000)}, wantErr: true},
		{name: "sale above price", product: &Product{Name: "x", Price: 1000, SalePrice: amount(1200)}, wantErr: true},
		{name: "free product", product: &Product{Name: "x", Price: 0}},
		{name: "discounted", product: &Product{Name: "x", Price: 1000, SalePrice: amount(750)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.product.Validate()
			if tt.wantErr {
				assert.True(t, IsDomainError(err, ErrCodeInvalid), "got %v", err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestProduct_Prices(t *testing.T) {
	p := Product{Price: 1000, SalePrice: amount(750)}
	assert.Equal(t, int64(750), p.EffectivePrice())
	sale, ok := p.SaleAmount()
	assert.True(t, ok)
	assert.Equal(t, 750.0, sale)

	plain := Product{Price: 1000}
	assert.Equal(t, int64(1000), plain.EffectivePrice())
	_, ok = plain.SaleAmount()
	assert.False(t, ok)

	inverted := Product{Price: 1000, SalePrice: amount(1500)}
	assert.Equal(t, int64(1000), inverted.EffectivePrice())
}

func TestUser_Roles(t *testing.T) {
	var nobody *User
	assert.False(t, nobody.IsActive())
	assert.False(t, nobody.IsAdmin())
	assert.Empty(t, nobody.DisplayName())

	disabledAdmin := &User{Role: RoleAdmin, Status: StatusDisabled}
	assert.False(t, disabledAdmin.IsAdmin())

	admin := &User{Email: "ops@example.com", Role: RoleAdmin, Status: StatusActive}
	assert.True(t, admin.IsAdmin())
	assert.Equal(t, "ops@example.com", admin.DisplayName())

	admin.Name = "운영자"
	assert.Equal(t, "운영자", admin.DisplayName())
}

func TestSession_IsExpired(t *testing.T) {
	now := time.Now()
	var missing *Session
	assert.True(t, missing.IsExpired(now))
	assert.True(t, (&Session{ExpiresAt: now}).IsExpired(now))
	assert.False(t, (&Session{ExpiresAt: now.Add(time.Minute)}).IsExpired(now))
	assert.False(t, (&Session{ExpiresAt: time.Now().Add(time.Hour)}).IsExpired(time.Time{}))
}

func TestIsDomainError(t *testing.T) {
	wrapped := fmt.Errorf("loading: %w", ErrProductNotFound)
	assert.True(t, IsDomainError(wrapped, ErrCodeNotFound))
	assert.False(t, IsDomainError(wrapped, ErrCodeInvalid))
	assert.False(t, IsDomainError(errors.New("plain"), ErrCodeNotFound))

	cause := errors.New("pq: duplicate key")
	err := WrapError(ErrCodeConflict, "product already exists", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "product already exists: pq: duplicate key", err.Error())
}

func TestOrder_InTransit(t *testing.T) {
	var none *Order
	assert.False(t, none.InTransit())
	assert.True(t, (&Order{Status: OrderShipped}).InTransit())
	assert.False(t, (&Order{Status: OrderDelivered}).InTransit())
}
