package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/user-admin/internal/api/views"
	"github.com/99minutos/user-admin/internal/core/domain"
	"github.com/99minutos/user-admin/internal/core/ports"
)

type stubUserService struct {
	users     []*domain.User
	listErr   error
	form      *ports.UserForm
	formErr   error
	createFn  func(form ports.UserForm) (*domain.User, error)
	updateFn  func(form ports.UserForm, id int64) (*domain.User, error)
	deleteErr error
	deleted   []int64
}

func (s *stubUserService) Authenticate(_ context.Context, username string) (*domain.User, error) {
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, domain.ErrUsernameNotFound
}

func (s *stubUserService) ListUsers(context.Context) ([]*domain.User, error) {
	return s.users, s.listErr
}

func (s *stubUserService) GetUser(_ context.Context, id int64) (*domain.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, &domain.UserNotFoundError{ID: id}
}

func (s *stubUserService) GetUserForm(context.Context, int64) (*ports.UserForm, error) {
	return s.form, s.formErr
}

func (s *stubUserService) CreateUser(_ context.Context, form ports.UserForm) (*domain.User, error) {
	return s.createFn(form)
}

func (s *stubUserService) UpdateUser(_ context.Context, form ports.UserForm, id int64) (*domain.User, error) {
	return s.updateFn(form, id)
}

func (s *stubUserService) DeleteUser(_ context.Context, id int64) error {
	s.deleted = append(s.deleted, id)
	return s.deleteErr
}

type stubRoleService struct {
	roles []domain.Role
}

func (s *stubRoleService) EnsureDefaultRoles(context.Context) error { return nil }

func (s *stubRoleService) ResolveRoles(context.Context, []int64) ([]domain.Role, error) {
	return s.roles, nil
}

func (s *stubRoleService) ListRoles(context.Context) ([]domain.Role, error) {
	return s.roles, nil
}

type stubAuthService struct {
	loginFn  func(ctx context.Context, username, password string) (string, *domain.User, error)
	logoutFn func(ctx context.Context, tokenID string, expiresAt time.Time) error
}

func (s *stubAuthService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	return s.loginFn(ctx, username, password)
}

func (s *stubAuthService) Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if s.logoutFn == nil {
		return nil
	}
	return s.logoutFn(ctx, tokenID, expiresAt)
}

var defaultRoles = []domain.Role{{ID: 1, Name: domain.RoleAdmin}, {ID: 2, Name: domain.RoleUser}}

func newEcho(t *testing.T) *echo.Echo {
	t.Helper()
	e := echo.New()
	renderer, err := views.NewRenderer()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	e.Renderer = renderer
	e.Validator = NewValidator()
	return e
}

func formRequest(method, target string, values url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(values.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return req
}
