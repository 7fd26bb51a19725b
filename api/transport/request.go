package transport

import (
	"strconv"
	"strings"

	"github.com/fastygo/storefront/domain"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	TTL      int    `json:"ttl_seconds"`
}

type RefreshRequest struct {
	SessionID string `json:"session_id"`
	TTL       int    `json:"ttl_seconds"`
}

type LogoutRequest struct {
	SessionID string `json:"session_id"`
	All       bool   `json:"all"`
}

// LoginResponse carries the opened session plus a bearer token for the JSON API.
type LoginResponse struct {
	Session     *domain.Session `json:"session"`
	User        *domain.User    `json:"user"`
	AccessToken string          `json:"access_token,omitempty"`
	TokenType   string          `json:"token_type,omitempty"`
}

// ProductFormInput is the admin product form as submitted.
type ProductFormInput struct {
	Name        string
	Description string
	ImageURL    string
	Price       string
	SalePrice   string
}

// Product converts the form into a domain product. Prices must be whole Won
// amounts; an empty sale price means no sale.
func (in ProductFormInput) Product() (*domain.Product, error) {
	price, err := parseAmount(in.Price)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "price must be a whole number", err)
	}
	product := &domain.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		ImageURL:    strings.TrimSpace(in.ImageURL),
		Price:       price,
	}
	if strings.TrimSpace(in.SalePrice) != "" {
		sale, err := parseAmount(in.SalePrice)
		if err != nil {
			return nil, domain.WrapError(domain.ErrCodeInvalid, "sale price must be a whole number", err)
		}
		product.SalePrice = &sale
	}
	return product, nil
}

func parseAmount(raw string) (int64, error) {
	return strconv.ParseInt(strings.ReplaceAll(strings.TrimSpace(raw), ",", ""), 10, 64)
}
