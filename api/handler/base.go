package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/storefront/api/transport"
	"github.com/fastygo/storefront/api/view"
	"github.com/fastygo/storefront/domain"
	"github.com/fastygo/storefront/pkg/httpcontext"
	appLogger "github.com/fastygo/storefront/pkg/logger"
)

// PageObserver is told about every rendered page.
type PageObserver interface {
	ObservePage(page string, status int)
}

type baseHandler struct {
	adapter *httpcontext.Adapter
	logger  *zap.Logger
}

func newBaseHandler(adapter *httpcontext.Adapter, logger *zap.Logger) baseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return baseHandler{adapter: adapter, logger: logger}
}

func (h baseHandler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	if h.adapter != nil {
		return h.adapter.Attach(ctx)
	}
	return context.WithCancel(context.Background())
}

func (h baseHandler) log(ctx context.Context) *zap.Logger {
	return appLogger.WithRequestID(ctx, h.logger)
}

func (h baseHandler) respondJSON(ctx *fasthttp.RequestCtx, status int, payload transport.Envelope) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	body, _ := json.Marshal(payload)
	ctx.SetBody(body)
}

func (h baseHandler) respondSuccess(ctx *fasthttp.RequestCtx, status int, data interface{}) {
	h.respondJSON(ctx, status, transport.NewSuccess(data, nil))
}

func (h baseHandler) respondError(ctx *fasthttp.RequestCtx, err error) {
	status, code := mapError(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal error"
	}
	h.respondJSON(ctx, status, transport.NewError(code, message, nil))
}

func mapError(err error) (int, string) {
	switch {
	case domain.IsDomainError(err, domain.ErrCodeUnauthorized):
		return http.StatusUnauthorized, string(domain.ErrCodeUnauthorized)
	case domain.IsDomainError(err, domain.ErrCodeForbidden):
		return http.StatusForbidden, string(domain.ErrCodeForbidden)
	case domain.IsDomainError(err, domain.ErrCodeInvalid):
		return http.StatusBadRequest, string(domain.ErrCodeInvalid)
	case domain.IsDomainError(err, domain.ErrCodeNotFound):
		return http.StatusNotFound, string(domain.ErrCodeNotFound)
	case domain.IsDomainError(err, domain.ErrCodeConflict):
		return http.StatusConflict, string(domain.ErrCodeConflict)
	default:
		return http.StatusInternalServerError, string(domain.ErrCodeInternal)
	}
}

// domainMessage returns the user-facing part of a domain error.
func domainMessage(err error) string {
	var dErr *domain.Error
	if errors.As(err, &dErr) {
		return dErr.Message
	}
	return err.Error()
}

// pageRenderer writes HTML pages and reports each render.
type pageRenderer struct {
	views    *view.Renderer
	observer PageObserver
	logger   *zap.Logger
}

func (r pageRenderer) render(ctx *fasthttp.RequestCtx, status int, name string, page view.Page) {
	ctx.Response.Header.SetContentType("text/html; charset=utf-8")
	ctx.Response.Header.Set(fasthttp.HeaderCacheControl, "no-store")
	if err := r.views.Render(ctx, name, page); err != nil {
		r.logger.Error("page render failed", zap.String("page", name), zap.Error(err))
		ctx.ResetBody()
		status = http.StatusInternalServerError
		ctx.SetBodyString("internal error")
	}
	ctx.SetStatusCode(status)
	if r.observer != nil {
		r.observer.ObservePage(name, status)
	}
}

func (r pageRenderer) renderError(ctx *fasthttp.RequestCtx, user *domain.User, status int, message string) {
	r.render(ctx, status, view.PageError, view.Page{Title: "오류", User: user, Data: message})
}

func (r pageRenderer) redirect(ctx *fasthttp.RequestCtx, location string) {
	ctx.Response.Header.Set(fasthttp.HeaderLocation, location)
	ctx.SetStatusCode(http.StatusSeeOther)
}
