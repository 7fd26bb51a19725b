package view

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/storefront/domain"
)

func render(t *testing.T, name string, page Page) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, MustNew().Render(&buf, name, page))
	return buf.String()
}

func TestNew_ParsesEveryPage(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	for _, name := range pageNames {
		assert.Contains(t, r.pages, name)
	}
}

func TestRender_UnknownPage(t *testing.T) {
	var buf bytes.Buffer
	err := MustNew().Render(&buf, "nope", Page{})
	assert.Error(t, err)
	assert.Zero(t, buf.Len())
}

func TestRender_LayoutReflectsIdentity(t *testing.T) {
	anon := render(t, PageForbidden, Page{Title: "403"})
	assert.Contains(t, anon, `href="/login"`)
	assert.NotContains(t, anon, "/logout")

	admin := &domain.User{ID: "a", Name: "관리자", Role: domain.RoleAdmin, Status: domain.StatusActive}
	out := render(t, PageForbidden, Page{Title: "403", User: admin})
	assert.Contains(t, out, "/logout")
	assert.Contains(t, out, "/admin/users")
	assert.Contains(t, out, "관리자")
}

func TestRender_UsersFailure(t *testing.T) {
	out := render(t, PageUsers, Page{Title: "users", Data: UsersTable{Failure: "boom"}})
	assert.Contains(t, out, "boom")
	assert.NotContains(t, out, "<table")
}

func TestRender_UsersTable(t *testing.T) {
	users := []domain.User{{ID: "1", Email: "a@example.com", Name: "Ann"}}
	out := render(t, PageUsers, Page{Title: "users", Data: UsersTable{Users: users}})
	assert.Contains(t, out, "a@example.com")
	assert.Contains(t, out, "Ann")
}

func TestRender_EscapesInput(t *testing.T) {
	out := render(t, PageProductForm, Page{Title: "new", Data: ProductForm{Name: `<script>x</script>`}})
	assert.NotContains(t, out, "<script>x</script>")
	assert.Contains(t, out, "&lt;script&gt;")
}
