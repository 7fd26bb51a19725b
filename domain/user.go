package domain

import "time"

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"

	StatusActive   = "active"
	StatusDisabled = "disabled"
)

// User represents an authenticated identity in the storefront.
type User struct {
	ID           string            `json:"id"`
	Email        string            `json:"email,omitempty"`
	Name         string            `json:"name,omitempty"`
	Role         string            `json:"role"`
	Status       string            `json:"status"`
	PasswordHash string            `json:"-"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

func (u *User) IsActive() bool {
	return u != nil && u.Status == StatusActive
}

func (u *User) IsAdmin() bool {
	return u.IsActive() && u.Role == RoleAdmin
}

// DisplayName falls back to the email when no name was provided.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
