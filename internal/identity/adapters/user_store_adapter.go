package adapters

import (
	"context"

	"github.com/fastygo/storefront/domain"
)

// UserStore is the part of the user repository the admin listing needs.
type UserStore interface {
	List(ctx context.Context) ([]domain.User, error)
}

// UserStoreAdapter exposes the local user table as an admin user lister when
// no external identity admin API is configured.
type UserStoreAdapter struct {
	store UserStore
}

func NewUserStoreAdapter(store UserStore) *UserStoreAdapter {
	return &UserStoreAdapter{store: store}
}

// ListUsers returns the stored users without password hashes.
func (a *UserStoreAdapter) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := a.store.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}
