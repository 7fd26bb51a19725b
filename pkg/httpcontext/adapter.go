package httpcontext

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	appLogger "github.com/fastygo/storefront/pkg/logger"
)

// Key represents a context value key exported for reuse.
type Key string

const (
	KeyRemoteAddr Key = "remote_addr"
	KeyUserAgent  Key = "user_agent"
	KeyPath       Key = "path"

	HeaderRequestID = "X-Request-ID"

	requestIDUserValue = "storefront.request_id"
	userIDUserValue    = "storefront.user_id"
)

// Adapter converts fasthttp.RequestCtx into a stdlib context with deadlines and metadata.
type Adapter struct {
	timeout time.Duration
}

// NewAdapter constructs a new Adapter using the provided timeout.
func NewAdapter(timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Adapter{
		timeout: timeout,
	}
}

// Timeout reports the deadline applied to every attached context.
func (a *Adapter) Timeout() time.Duration {
	return a.timeout
}

// Attach creates a context with timeout derived from the adapter and enriches it with request metadata.
// The request ID is stable for the lifetime of ctx, so the session gate and the page handler log under the same ID.
func (a *Adapter) Attach(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	stdCtx, cancel := context.WithTimeout(context.Background(), a.timeout)
	if ctx == nil {
		return appLogger.ContextWithRequestID(stdCtx, uuid.NewString()), cancel
	}

	reqID := requestID(ctx)
	stdCtx = appLogger.ContextWithRequestID(stdCtx, reqID)
	ctx.Response.Header.Set(HeaderRequestID, reqID)
	stdCtx = context.WithValue(stdCtx, KeyPath, string(ctx.Path()))
	if userID := UserID(ctx); userID != "" {
		stdCtx = appLogger.ContextWithUserID(stdCtx, userID)
	}

	if remoteAddr := ctx.RemoteAddr(); remoteAddr != nil {
		stdCtx = context.WithValue(stdCtx, KeyRemoteAddr, remoteAddr.String())
	}
	if ua := string(ctx.Request.Header.UserAgent()); ua != "" {
		stdCtx = context.WithValue(stdCtx, KeyUserAgent, ua)
	}

	return stdCtx, cancel
}

func requestID(ctx *fasthttp.RequestCtx) string {
	if id, ok := ctx.UserValue(requestIDUserValue).(string); ok && id != "" {
		return id
	}
	id := string(ctx.Request.Header.Peek(HeaderRequestID))
	if strings.TrimSpace(id) == "" {
		id = uuid.NewString()
	}
	ctx.SetUserValue(requestIDUserValue, id)
	return id
}

// SetUserID records the authenticated user on ctx so later Attach calls carry it.
func SetUserID(ctx *fasthttp.RequestCtx, userID string) {
	ctx.SetUserValue(userIDUserValue, userID)
}

// UserID returns the id recorded by SetUserID.
func UserID(ctx *fasthttp.RequestCtx) string {
	if id, ok := ctx.UserValue(userIDUserValue).(string); ok {
		return id
	}
	return ""
}
