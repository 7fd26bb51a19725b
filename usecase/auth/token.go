package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/fastygo/storefront/domain"
)

// TokenIssuer signs short-lived API tokens carrying the user id claim read by
// the JWT middleware.
type TokenIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret, issuer string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &TokenIssuer{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

func (t *TokenIssuer) Issue(user *domain.User, sessionID string) (string, error) {
	if user == nil || user.ID == "" {
		return "", domain.ErrInvalidPayload
	}
	if len(t.secret) == 0 {
		return "", domain.NewError(domain.ErrCodeInternal, "jwt secret is not configured")
	}
	now := t.now()
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"role":    user.Role,
		"sid":     sessionID,
		"iss":     t.issuer,
		"iat":     now.Unix(),
		"exp":     now.Add(t.ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}
