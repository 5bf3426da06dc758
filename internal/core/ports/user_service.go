package ports

import (
	"context"

	"github.com/99minutos/user-admin/internal/core/domain"
)

// UserForm is the DTO carried between the admin forms and UserService.
// Password is plaintext on the way in and always empty on the way out.
type UserForm struct {
	Username  string
	FirstName string
	LastName  string
	Email     string
	Age       int
	Password  string
	RoleIDs   []int64
}

// UserService defines the account administration use cases.
type UserService interface {
	// Authenticate loads the full credential-bearing record for username.
	// Returns domain.ErrUsernameNotFound when there is no such user.
	Authenticate(ctx context.Context, username string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	GetUserForm(ctx context.Context, id int64) (*UserForm, error)
	CreateUser(ctx context.Context, form UserForm) (*domain.User, error)
	UpdateUser(ctx context.Context, form UserForm, id int64) (*domain.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

// RoleService resolves role ids and seeds the well-known roles.
type RoleService interface {
	EnsureDefaultRoles(ctx context.Context) error
	ResolveRoles(ctx context.Context, ids []int64) ([]domain.Role, error)
	ListRoles(ctx context.Context) ([]domain.Role, error)
}
