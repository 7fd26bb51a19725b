// Package view renders the server-side HTML pages.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/fastygo/storefront/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	PageMain        = "main"
	PageProfile     = "profile"
	PageShipping    = "shipping"
	PageProductForm = "product_form"
	PageUsers       = "users"
	PageLogin       = "login"
	PageForbidden   = "forbidden"
	PageError       = "error"
)

var pageNames = []string{
	PageMain,
	PageProfile,
	PageShipping,
	PageProductForm,
	PageUsers,
	PageLogin,
	PageForbidden,
	PageError,
}

// Page is the data every template receives.
type Page struct {
	Title string
	User  *domain.User
	Flash string
	Data  any
}

// ProductForm holds the raw admin form values so they survive a failed submit.
type ProductForm struct {
	Name        string
	Description string
	ImageURL    string
	Price       string
	SalePrice   string
	Error       string
}

// UsersTable is the admin user list as the template sees it.
type UsersTable struct {
	Users   []domain.User
	Failure string
}

type LoginForm struct {
	Email string
	Next  string
	Error string
}

type Renderer struct {
	pages map[string]*template.Template
}

func New() (*Renderer, error) {
	funcs := template.FuncMap{
		"date": func(t time.Time) string {
			if t.IsZero() {
				return "-"
			}
			return t.Format("2006-01-02")
		},
	}

	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		pages[name] = tmpl
	}
	return &Renderer{pages: pages}, nil
}

func MustNew() *Renderer {
	r, err := New()
	if err != nil {
		panic(err)
	}
	return r
}

// Render executes the named page into w. Output is buffered so a template
// error never leaves a half-written page behind.
func (r *Renderer) Render(w io.Writer, name string, page Page) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", page); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}
