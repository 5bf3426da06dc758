// Package views holds the HTML templates of the admin pages and the echo
// renderer that executes them.
package views

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"slices"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/user-admin/internal/core/domain"
	"github.com/99minutos/user-admin/internal/core/ports"
)

//go:embed templates/*.html
var templateFS embed.FS

// Template names.
const (
	Admin    = "admin.html"
	UserForm = "user_form.html"
	User     = "user.html"
	Login    = "login.html"
	Error    = "error.html"
)

// AdminPage is the data for the user list.
type AdminPage struct {
	Users       []*domain.User
	Roles       []domain.Role
	Error       string
	CurrentUser string
	CSRF        string
}

// UserFormPage is the data for both the add and the edit form. UserID is zero
// when adding.
type UserFormPage struct {
	UserID int64
	Form   ports.UserForm
	Roles  []domain.Role
	CSRF   string
}

// Editing reports whether the form edits an existing user.
func (p UserFormPage) Editing() bool { return p.UserID != 0 }

type UserPage struct {
	User *domain.User
	CSRF string
}

type LoginPage struct {
	Username string
	Error    string
	CSRF     string
}

type ErrorPage struct {
	Status  int
	Message string
}

// Renderer implements echo.Renderer over the embedded templates.
type Renderer struct {
	templates *template.Template
}

var _ echo.Renderer = (*Renderer)(nil)

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	t, err := template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{templates: t}, nil
}

func (r *Renderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}

var funcs = template.FuncMap{
	"hasRoleID": func(ids []int64, id int64) bool {
		return slices.Contains(ids, id)
	},
	"roleLabels": func(roles []domain.Role) string {
		labels := make([]string, 0, len(roles))
		for _, r := range roles {
			labels = append(labels, r.Label())
		}
		return strings.Join(labels, ", ")
	},
}
