package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/pprofhandler"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/storefront/api/handler"
	"github.com/fastygo/storefront/internal/session"
)

type Handlers struct {
	Auth     *apiHandler.AuthHandler
	Pages    *apiHandler.PageHandler
	Products *apiHandler.ProductHandler
	Health   *apiHandler.HealthHandler
}

// Options toggles the operational endpoints.
type Options struct {
	Metrics     fasthttp.RequestHandler
	EnablePprof bool
	Logger      *zap.Logger
}

func New(handlers Handlers, gate *session.Gate, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler, opts Options) *router.Router {
	r := router.New()
	r.RedirectTrailingSlash = true

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	r.PanicHandler = func(ctx *fasthttp.RequestCtx, v interface{}) {
		logger.Error("handler panic", zap.ByteString("path", ctx.Path()), zap.Any("panic", v))
		ctx.ResetBody()
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
	}

	r.GET("/health", handlers.Health.Check)
	if opts.Metrics != nil {
		r.GET("/metrics", opts.Metrics)
	}
	if opts.EnablePprof {
		r.ANY("/debug/pprof/{profile:*}", pprofhandler.PprofHandler)
	}

	// JSON API
	r.POST("/api/v1/auth/login", handlers.Auth.Login)
	r.POST("/api/v1/auth/refresh", handlers.Auth.Refresh)
	r.POST("/api/v1/auth/logout", handlers.Auth.Logout)
	r.GET("/api/v1/profile", authMiddleware(handlers.Auth.Profile))
	r.GET("/api/v1/products", handlers.Products.List)

	// Pages
	r.GET("/", func(ctx *fasthttp.RequestCtx) {
		ctx.Response.Header.Set(fasthttp.HeaderLocation, "/main")
		ctx.SetStatusCode(fasthttp.StatusFound)
	})
	r.GET("/main", gate.Optional(handlers.Pages.Main))
	r.GET("/login", gate.Optional(handlers.Auth.LoginPage))
	r.POST("/login", handlers.Auth.LoginSubmit)
	r.POST("/logout", handlers.Auth.LogoutSubmit)

	r.GET("/profile", gate.Protect(handlers.Pages.Profile))
	r.GET("/shipping", gate.Protect(handlers.Pages.Shipping))

	admin := r.Group("/admin")
	admin.GET("/products/new", gate.Protect(handlers.Pages.RequireAdmin(handlers.Pages.NewProduct)))
	admin.POST("/products", gate.Protect(handlers.Pages.RequireAdmin(handlers.Pages.CreateProduct)))
	admin.GET("/users", gate.Protect(handlers.Pages.RequireAdmin(handlers.Pages.Users)))

	return r
}
