package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/storefront/domain"
)

func TestTokenIssuer_Issue(t *testing.T) {
	issuer := NewTokenIssuer("top-secret", "storefront", time.Minute)
	user := &domain.User{ID: "u-1", Role: domain.RoleAdmin}

	signed, err := issuer.Issue(user, "s-1")
	require.NoError(t, err)

	token, err := jwt.Parse(signed, func(token *jwt.Token) (interface{}, error) {
		return []byte("top-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, "u-1", claims["user_id"])
	assert.Equal(t, "admin", claims["role"])
	assert.Equal(t, "s-1", claims["sid"])
	assert.Equal(t, "storefront", claims["iss"])
}

func TestTokenIssuer_Errors(t *testing.T) {
	_, err := NewTokenIssuer("", "storefront", 0).Issue(&domain.User{ID: "u-1"}, "")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInternal))

	_, err = NewTokenIssuer("k", "storefront", 0).Issue(nil, "")
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)
}
