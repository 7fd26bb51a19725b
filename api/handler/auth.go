package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/storefront/api/transport"
	"github.com/fastygo/storefront/api/view"
	"github.com/fastygo/storefront/domain"
	"github.com/fastygo/storefront/internal/session"
	"github.com/fastygo/storefront/pkg/httpcontext"
	authUC "github.com/fastygo/storefront/usecase/auth"
)

const defaultLandingPath = "/main"

// AuthOptions configures session lifetime and cookie attributes.
type AuthOptions struct {
	SessionTTL   time.Duration
	SecureCookie bool
	Views        *view.Renderer
	Observer     PageObserver
}

type AuthHandler struct {
	baseHandler
	uc         *authUC.UseCase
	tokens     *authUC.TokenIssuer
	pages      pageRenderer
	defaultTTL time.Duration
	secure     bool
}

func NewAuthHandler(uc *authUC.UseCase, tokens *authUC.TokenIssuer, adapter *httpcontext.Adapter, logger *zap.Logger, opts AuthOptions) *AuthHandler {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 24 * time.Hour
	}
	base := newBaseHandler(adapter, logger)
	return &AuthHandler{
		baseHandler: base,
		uc:          uc,
		tokens:      tokens,
		pages:       pageRenderer{views: opts.Views, observer: opts.Observer, logger: base.logger},
		defaultTTL:  opts.SessionTTL,
		secure:      opts.SecureCookie,
	}
}

// @Summary Log in with email and password
// @Tags auth
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(ctx *fasthttp.RequestCtx) {
	var req transport.LoginRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.Email == "" || req.Password == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	sess, user, err := h.uc.Login(stdCtx, req.Email, req.Password, h.ttlFromRequest(req.TTL))
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	resp := transport.LoginResponse{Session: sess, User: user}
	if h.tokens != nil {
		token, err := h.tokens.Issue(user, sess.ID)
		if err != nil {
			h.log(stdCtx).Error("token issue failed", zap.Error(err))
			h.respondError(ctx, err)
			return
		}
		resp.AccessToken = token
		resp.TokenType = "Bearer"
	}
	h.respondSuccess(ctx, http.StatusCreated, resp)
}

// @Summary Refresh an existing session
// @Tags auth
// @Router /api/v1/auth/refresh [post]
func (h *AuthHandler) Refresh(ctx *fasthttp.RequestCtx) {
	var req transport.RefreshRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.SessionID == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	sess, err := h.uc.RefreshSession(stdCtx, req.SessionID, h.ttlFromRequest(req.TTL))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, sess)
}

// @Summary Revoke a session, or every session of its user
// @Tags auth
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(ctx *fasthttp.RequestCtx) {
	var req transport.LogoutRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.SessionID == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if req.All {
		sess, err := h.uc.GetSession(stdCtx, req.SessionID)
		if err != nil {
			h.respondError(ctx, err)
			return
		}
		if err := h.uc.RevokeAll(stdCtx, sess.UserID); err != nil {
			h.respondError(ctx, err)
			return
		}
	} else if err := h.uc.RevokeSession(stdCtx, req.SessionID); err != nil {
		h.respondError(ctx, err)
		return
	}
	ctx.SetStatusCode(http.StatusNoContent)
}

// @Summary Current user for a bearer token
// @Tags profile
// @Router /api/v1/profile [get]
func (h *AuthHandler) Profile(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	user, err := h.uc.Profile(stdCtx, httpcontext.UserID(ctx))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, user)
}

// LoginPage renders the login form. Visitors who already hold a session are
// sent on to the landing page.
func (h *AuthHandler) LoginPage(ctx *fasthttp.RequestCtx, user *domain.User) {
	next := safeNext(string(ctx.QueryArgs().Peek("next")))
	if user != nil {
		h.pages.redirect(ctx, next)
		return
	}
	h.pages.render(ctx, http.StatusOK, view.PageLogin, view.Page{Title: "로그인", Data: view.LoginForm{Next: next}})
}

func (h *AuthHandler) LoginSubmit(ctx *fasthttp.RequestCtx) {
	email := strings.TrimSpace(string(ctx.FormValue("email")))
	next := safeNext(string(ctx.FormValue("next")))

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	sess, _, err := h.uc.Login(stdCtx, email, string(ctx.FormValue("password")), h.defaultTTL)
	if err != nil {
		status, _ := mapError(err)
		message := domainMessage(err)
		if status == http.StatusInternalServerError {
			h.log(stdCtx).Error("login failed", zap.Error(err))
			message = "로그인 처리 중 오류가 발생했습니다."
		}
		h.pages.render(ctx, status, view.PageLogin, view.Page{
			Title: "로그인",
			Data:  view.LoginForm{Email: email, Next: next, Error: message},
		})
		return
	}

	h.setSessionCookie(ctx, sess.ID, sess.ExpiresAt)
	h.pages.redirect(ctx, next)
}

func (h *AuthHandler) LogoutSubmit(ctx *fasthttp.RequestCtx) {
	if sid := session.SessionID(ctx); sid != "" {
		stdCtx, cancel := h.requestContext(ctx)
		if err := h.uc.RevokeSession(stdCtx, sid); err != nil {
			h.log(stdCtx).Warn("session revoke failed", zap.Error(err))
		}
		cancel()
	}
	h.clearSessionCookie(ctx)
	h.pages.redirect(ctx, "/login")
}

func (h *AuthHandler) setSessionCookie(ctx *fasthttp.RequestCtx, sid string, expires time.Time) {
	c := fasthttp.AcquireCookie()
	defer fasthttp.ReleaseCookie(c)
	c.SetKey(session.CookieName)
	c.SetValue(sid)
	c.SetPath("/")
	c.SetHTTPOnly(true)
	c.SetSecure(h.secure)
	c.SetSameSite(fasthttp.CookieSameSiteLaxMode)
	c.SetExpire(expires)
	ctx.Response.Header.SetCookie(c)
}

func (h *AuthHandler) clearSessionCookie(ctx *fasthttp.RequestCtx) {
	c := fasthttp.AcquireCookie()
	defer fasthttp.ReleaseCookie(c)
	c.SetKey(session.CookieName)
	c.SetPath("/")
	c.SetHTTPOnly(true)
	c.SetSecure(h.secure)
	c.SetExpire(fasthttp.CookieExpireDelete)
	ctx.Response.Header.SetCookie(c)
}

// ttlFromRequest honors a client-requested lifetime up to the configured one.
func (h *AuthHandler) ttlFromRequest(ttlSeconds int) time.Duration {
	ttl := time.Duration(ttlSeconds) * time.Second
	if ttlSeconds <= 0 || ttl > h.defaultTTL {
		return h.defaultTTL
	}
	return ttl
}

// safeNext keeps post-login redirects on this site.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return defaultLandingPath
	}
	return next
}
