package admin

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/storefront/domain"
)

type listerFunc func(ctx context.Context) ([]domain.User, error)

func (f listerFunc) ListUsers(ctx context.Context) ([]domain.User, error) { return f(ctx) }

func TestGetAllUsers_PassesProviderUsersThrough(t *testing.T) {
	provided := []domain.User{
		{ID: "u-3", Email: "c@example.com"},
		{ID: "u-1", Email: "a@example.com"},
		{ID: "u-2", Email: "b@example.com"},
	}
	uc := New(nil)

	result := uc.GetAllUsers(context.Background(), listerFunc(func(context.Context) ([]domain.User, error) {
		return provided, nil
	}))

	list, ok := result.(UserList)
	require.True(t, ok, "expected UserList, got %T", result)
	assert.Equal(t, provided, []domain.User(list))
}

func TestGetAllUsers_EmptyProviderResultIsNotAFailure(t *testing.T) {
	result := New(nil).GetAllUsers(context.Background(), listerFunc(func(context.Context) ([]domain.User, error) {
		return nil, nil
	}))
	_, ok := result.(UserList)
	assert.True(t, ok)
}

func TestGetAllUsers_ProviderFailureBecomesEnvelope(t *testing.T) {
	failures := 0
	uc := New(nil)
	uc.OnFailure(func() { failures++ })

	var result UserListResult
	assert.NotPanics(t, func() {
		result = uc.GetAllUsers(context.Background(), listerFunc(func(context.Context) ([]domain.User, error) {
			return nil, errors.New("401 invalid service key")
		}))
	})

	failure, ok := result.(ListFailure)
	require.True(t, ok, "expected ListFailure, got %T", result)
	assert.Equal(t, ListUsersFailedMessage, failure.Message)
	assert.NotNil(t, failure.Data)
	assert.Empty(t, failure.Data)
	assert.Equal(t, 1, failures)

	body, err := json.Marshal(failure)
	require.NoError(t, err)
	assert.JSONEq(t, `{"message":"`+ListUsersFailedMessage+`","data":[]}`, string(body))
}

func TestGetAllUsers_MissingClient(t *testing.T) {
	result := New(nil).GetAllUsers(context.Background(), nil)
	_, ok := result.(ListFailure)
	assert.True(t, ok)
}
