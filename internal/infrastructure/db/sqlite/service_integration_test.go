package sqlite_test

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/user-admin/internal/core/domain"
	"github.com/99minutos/user-admin/internal/core/ports"
	"github.com/99minutos/user-admin/internal/core/service"
	"github.com/99minutos/user-admin/internal/infrastructure/db/sqlite"
)

func TestUserService_OnSQLite(t *testing.T) {
	ctx := context.Background()
	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "svc.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	logger := zerolog.New(io.Discard)
	roles := service.NewRoleService(sqlite.NewRoleRepository(db), logger)
	users := service.NewUserService(sqlite.NewUserRepository(db), roles, service.NewBcryptHasher(bcrypt.MinCost), nil, logger)

	require.NoError(t, service.Bootstrap(ctx, roles, users, "admin", "admin", logger))

	all, err := roles.ListRoles(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	userRole := all[1]
	assert.Equal(t, domain.RoleUser, userRole.Name)

	bob, err := users.CreateUser(ctx, ports.UserForm{
		Username: "bob",
		Password: "pw1",
		Age:      30,
		RoleIDs:  []int64{userRole.ID},
	})
	require.NoError(t, err)

	_, err = users.CreateUser(ctx, ports.UserForm{Username: "bob", Password: "x"})
	assert.ErrorIs(t, err, domain.ErrDuplicateUsername)

	loaded, err := users.Authenticate(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{domain.RoleUser}, loaded.RoleNames())
	assert.NotEqual(t, "pw1", loaded.PasswordHash)

	form, err := users.GetUserForm(ctx, bob.ID)
	require.NoError(t, err)
	form.FirstName = "Bob"
	form.Password = ""
	updated, err := users.UpdateUser(ctx, *form, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, loaded.PasswordHash, updated.PasswordHash)

	list, err := users.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "admin", list[0].Username)
	assert.Equal(t, "Bob", list[1].FirstName)

	require.NoError(t, users.DeleteUser(ctx, bob.ID))
	_, err = users.GetUser(ctx, bob.ID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
