package handler

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"golang.org/x/crypto/bcrypt"

	"github.com/fastygo/storefront/domain"
	"github.com/fastygo/storefront/repository"
)

var errStoreDown = errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")

type memUsers struct {
	users map[string]*domain.User
}

func (m *memUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *memUsers) List(context.Context) ([]domain.User, error) {
	out := make([]domain.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, nil
}

func (m *memUsers) Upsert(_ context.Context, u *domain.User) error {
	m.users[u.ID] = u
	return nil
}

type memSessions struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
}

func (m *memSessions) Get(_ context.Context, id string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, domain.ErrSessionNotFound
}

func (m *memSessions) Save(_ context.Context, s *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

func (m *memSessions) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *memSessions) DeleteByUser(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		if s.UserID == userID {
			delete(m.sessions, id)
		}
	}
	return nil
}

func (m *memSessions) Extend(_ context.Context, id string, _ int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return domain.ErrSessionNotFound
	}
	return nil
}

type memProducts struct {
	items     []domain.Product
	createErr error
	listErr   error
	lastQuery repository.ProductFilter
}

func (m *memProducts) GetByID(_ context.Context, id string) (*domain.Product, error) {
	for i := range m.items {
		if m.items[i].ID == id {
			return &m.items[i], nil
		}
	}
	return nil, domain.ErrProductNotFound
}

func (m *memProducts) List(_ context.Context, filter repository.ProductFilter) ([]domain.Product, error) {
	m.lastQuery = filter
	return m.items, m.listErr
}

func (m *memProducts) Create(_ context.Context, p *domain.Product) (*domain.Product, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	stored := *p
	stored.CreatedAt = time.Now()
	m.items = append(m.items, stored)
	return &stored, nil
}

type memOrders struct {
	orders []domain.Order
	err    error
}

func (m *memOrders) List(_ context.Context, filter repository.OrderFilter) ([]domain.Order, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.Order
	for _, o := range m.orders {
		if o.UserID == filter.UserID {
			out = append(out, o)
		}
	}
	return out, nil
}

type stubLister struct {
	users []domain.User
	err   error
}

func (s stubLister) ListUsers(context.Context) ([]domain.User, error) {
	return s.users, s.err
}

type recordedPage struct {
	page   string
	status int
}

type pageRecorder struct {
	pages []recordedPage
}

func (r *pageRecorder) ObservePage(page string, status int) {
	r.pages = append(r.pages, recordedPage{page: page, status: status})
}

var (
	customer = &domain.User{ID: "u-1", Email: "minji@example.com", Name: "민지", Role: domain.RoleCustomer, Status: domain.StatusActive}
	admin    = &domain.User{ID: "a-1", Email: "ops@example.com", Name: "운영자", Role: domain.RoleAdmin, Status: domain.StatusActive}
)

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func newRequest(method, uri string) *fasthttp.RequestCtx {
	var ctx fasthttp.RequestCtx
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(uri)
	return &ctx
}

func postForm(uri, body string) *fasthttp.RequestCtx {
	ctx := newRequest(fasthttp.MethodPost, uri)
	ctx.Request.Header.SetContentType("application/x-www-form-urlencoded")
	ctx.Request.SetBodyString(body)
	return ctx
}

func postJSON(uri, body string) *fasthttp.RequestCtx {
	ctx := newRequest(fasthttp.MethodPost, uri)
	ctx.Request.Header.SetContentType("application/json")
	ctx.Request.SetBodyString(body)
	return ctx
}
