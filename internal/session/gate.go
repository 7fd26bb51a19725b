package session

import (
	"context"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/storefront/domain"
	"github.com/fastygo/storefront/pkg/httpcontext"
	appLogger "github.com/fastygo/storefront/pkg/logger"
)

const DefaultLoginPath = "/login"

// Outcome is the gate's decision for one request.
type Outcome string

const (
	OutcomeAllowed   Outcome = "allowed"
	OutcomeAnonymous Outcome = "anonymous"
	OutcomeError     Outcome = "error"
)

// PageHandler renders content for an identity the gate has already checked.
type PageHandler func(ctx *fasthttp.RequestCtx, user *domain.User)

// Observer receives one call per gate decision.
type Observer interface {
	ObserveGate(outcome string)
}

// Gate redirects anonymous visitors to the login page before any protected
// content is produced.
type Gate struct {
	clients   ClientFactory
	adapter   *httpcontext.Adapter
	loginPath string
	observer  Observer
	logger    *zap.Logger
}

type GateOption func(*Gate)

func WithLoginPath(path string) GateOption {
	return func(g *Gate) {
		if path != "" {
			g.loginPath = path
		}
	}
}

func WithObserver(o Observer) GateOption {
	return func(g *Gate) { g.observer = o }
}

func NewGate(clients ClientFactory, adapter *httpcontext.Adapter, logger *zap.Logger, opts ...GateOption) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &Gate{
		clients:   clients,
		adapter:   adapter,
		loginPath: DefaultLoginPath,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Resolve fetches the identity through client. A failing lookup is reported
// as OutcomeError and, like an absent identity, yields no user.
func Resolve(ctx context.Context, client Client) (*domain.User, Outcome, error) {
	if client == nil {
		return nil, OutcomeAnonymous, nil
	}
	user, err := client.GetUser(ctx)
	if err != nil {
		return nil, OutcomeError, err
	}
	if user == nil {
		return nil, OutcomeAnonymous, nil
	}
	return user, OutcomeAllowed, nil
}

// Protect wraps next so it only runs for a present identity. Anonymous
// visitors and failed lookups get a 302 to the login path and nothing else.
func (g *Gate) Protect(next PageHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		user := g.lookup(ctx)
		if user == nil {
			g.redirect(ctx)
			return
		}
		next(ctx, user)
	}
}

// Optional resolves the identity without enforcing it; next receives nil for
// anonymous visitors.
func (g *Gate) Optional(next PageHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		next(ctx, g.lookup(ctx))
	}
}

func (g *Gate) lookup(ctx *fasthttp.RequestCtx) *domain.User {
	stdCtx, cancel := g.requestContext(ctx)
	defer cancel()

	var client Client
	if g.clients != nil {
		client = g.clients(ctx)
	}
	user, outcome, err := Resolve(stdCtx, client)
	if err != nil {
		appLogger.WithRequestID(stdCtx, g.logger).Warn("session lookup failed",
			zap.ByteString("path", ctx.Path()),
			zap.Error(err))
	}
	if g.observer != nil {
		g.observer.ObserveGate(string(outcome))
	}
	return user
}

func (g *Gate) redirect(ctx *fasthttp.RequestCtx) {
	ctx.Response.ResetBody()
	ctx.Response.Header.Set(fasthttp.HeaderLocation, g.loginLocation(ctx))
	ctx.Response.Header.Set(fasthttp.HeaderCacheControl, "no-store")
	ctx.SetStatusCode(fasthttp.StatusFound)
}

// loginLocation points at the login page and, for GET and HEAD requests,
// carries the gated URI in next so the visitor lands back on it.
func (g *Gate) loginLocation(ctx *fasthttp.RequestCtx) string {
	if !ctx.IsGet() && !ctx.IsHead() {
		return g.loginPath
	}
	args := fasthttp.AcquireArgs()
	defer fasthttp.ReleaseArgs(args)
	args.SetBytesV("next", ctx.RequestURI())
	return g.loginPath + "?" + args.String()
}

func (g *Gate) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	if g.adapter != nil {
		return g.adapter.Attach(ctx)
	}
	return context.WithCancel(context.Background())
}
