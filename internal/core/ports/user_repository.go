package ports

import (
	"context"

	"github.com/99minutos/user-admin/internal/core/domain"
)

// UserRepository defines persistence operations for user accounts.
//
// Lookups return domain.ErrUserNotFound when nothing matches. Returned users
// always carry their resolved roles.
type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	// Save inserts the user when ID is zero (assigning ID) and otherwise
	// replaces the stored row, including the full role set.
	// A unique-index violation on username is reported as domain.ErrDuplicateUsername.
	Save(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, user *domain.User) error
	// FindAll returns every user ordered by id.
	FindAll(ctx context.Context) ([]*domain.User, error)
}

// RoleRepository defines persistence operations for roles.
type RoleRepository interface {
	// FindByName returns domain.ErrRoleNotFound when no role has that name.
	FindByName(ctx context.Context, name string) (*domain.Role, error)
	// FindByIDs returns the roles matching ids ordered by id. Unknown ids are skipped.
	FindByIDs(ctx context.Context, ids []int64) ([]domain.Role, error)
	FindAll(ctx context.Context) ([]domain.Role, error)
	Save(ctx context.Context, role *domain.Role) error
}
