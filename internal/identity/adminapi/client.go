// Package adminapi talks to the identity provider's administration API with
// service-role credentials.
package adminapi

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/fastygo/storefront/domain"
)

const usersPath = "/admin/users"

// Config describes how to reach the admin API.
type Config struct {
	BaseURL    string
	ServiceKey string
	Timeout    time.Duration
	PerPage    int
}

// Client lists users through the provider's admin endpoint. It satisfies
// admin.UserLister.
type Client struct {
	http *fasthttp.Client
	cfg  Config
}

type userPayload struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	BannedUntil  *time.Time     `json:"banned_until,omitempty"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
	AppMetadata  map[string]any `json:"app_metadata,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

type listResponse struct {
	Users []userPayload `json:"users"`
}

// New builds a client. httpClient may be nil.
func New(cfg Config, httpClient *fasthttp.Client) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.PerPage <= 0 {
		cfg.PerPage = 1000
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if httpClient == nil {
		httpClient = &fasthttp.Client{
			Name:                "storefront-admin",
			ReadTimeout:         cfg.Timeout,
			WriteTimeout:        cfg.Timeout,
			MaxIdleConnDuration: time.Minute,
		}
	}
	return &Client{http: httpClient, cfg: cfg}
}

// ListUsers returns every user the provider knows, in provider order.
func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	if c.cfg.BaseURL == "" || c.cfg.ServiceKey == "" {
		return nil, domain.NewError(domain.ErrCodeInternal, "identity admin api is not configured")
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fmt.Sprintf("%s%s?per_page=%d", c.cfg.BaseURL, usersPath, c.cfg.PerPage))
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set(fasthttp.HeaderAuthorization, "Bearer "+c.cfg.ServiceKey)
	req.Header.Set("apikey", c.cfg.ServiceKey)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")

	timeout := c.cfg.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := c.http.DoTimeout(req, resp, timeout); err != nil {
		return nil, fmt.Errorf("admin list users: %w", err)
	}

	if status := resp.StatusCode(); status != fasthttp.StatusOK {
		code := domain.ErrCodeInternal
		switch status {
		case fasthttp.StatusUnauthorized:
			code = domain.ErrCodeUnauthorized
		case fasthttp.StatusForbidden:
			code = domain.ErrCodeForbidden
		}
		return nil, domain.NewError(code, fmt.Sprintf("admin list users: unexpected status %d", status))
	}

	var payload listResponse
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, fmt.Errorf("admin list users: decode: %w", err)
	}

	users := make([]domain.User, 0, len(payload.Users))
	for _, p := range payload.Users {
		users = append(users, p.toDomain())
	}
	return users, nil
}

func (p userPayload) toDomain() domain.User {
	user := domain.User{
		ID:        p.ID,
		Email:     p.Email,
		Role:      domain.RoleCustomer,
		Status:    domain.StatusActive,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if role, ok := p.AppMetadata["role"].(string); ok && role != "" {
		user.Role = role
	}
	if name, ok := p.UserMetadata["name"].(string); ok {
		user.Name = name
	}
	if p.BannedUntil != nil && p.BannedUntil.After(time.Now()) {
		user.Status = domain.StatusDisabled
	}
	return user
}
