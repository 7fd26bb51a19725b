// Package session resolves the visitor's identity for server-rendered pages
// and guards protected pages behind it.
package session

import (
	"context"

	"github.com/valyala/fasthttp"

	"github.com/fastygo/storefront/domain"
)

// CookieName carries the session id between the browser and the storefront.
const CookieName = "sid"

// Client answers who the current visitor is. A nil user with a nil error
// means the visitor is anonymous.
type Client interface {
	GetUser(ctx context.Context) (*domain.User, error)
}

// Resolver maps a session id to its identity, see auth.UseCase.CurrentUser.
type Resolver interface {
	CurrentUser(ctx context.Context, sessionID string) (*domain.User, error)
}

// ClientFactory builds a Client scoped to one request.
type ClientFactory func(ctx *fasthttp.RequestCtx) Client

// Provider hands out request-scoped clients bound to the request's cookie.
type Provider struct {
	resolver Resolver
}

func NewProvider(resolver Resolver) *Provider {
	return &Provider{resolver: resolver}
}

// ForRequest returns a client that only knows about the given request.
func (p *Provider) ForRequest(ctx *fasthttp.RequestCtx) Client {
	return &requestClient{
		sessionID: SessionID(ctx),
		resolver:  p.resolver,
	}
}

// SessionID reads the session cookie of the request.
func SessionID(ctx *fasthttp.RequestCtx) string {
	if ctx == nil {
		return ""
	}
	return string(ctx.Request.Header.Cookie(CookieName))
}

type requestClient struct {
	sessionID string
	resolver  Resolver
}

func (c *requestClient) GetUser(ctx context.Context) (*domain.User, error) {
	if c.sessionID == "" || c.resolver == nil {
		return nil, nil
	}
	return c.resolver.CurrentUser(ctx, c.sessionID)
}
