package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/99minutos/user-admin/internal/core/domain"
	"github.com/99minutos/user-admin/internal/core/ports"
)

// Bootstrap seeds the default roles and, when username is non-empty, an
// administrator account holding every default role.
func Bootstrap(
	ctx context.Context,
	roles ports.RoleService,
	users ports.UserService,
	username, password string,
	logger zerolog.Logger,
) error {
	if err := roles.EnsureDefaultRoles(ctx); err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	if username == "" {
		return nil
	}

	_, err := users.Authenticate(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrUsernameNotFound) {
		return fmt.Errorf("bootstrap: %w", err)
	}
	if password == "" {
		return fmt.Errorf("bootstrap: admin %q has no password configured", username)
	}

	all, err := roles.ListRoles(ctx)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	ids := make([]int64, 0, len(all))
	for _, r := range all {
		ids = append(ids, r.ID)
	}

	admin, err := users.CreateUser(ctx, ports.UserForm{
		Username: username,
		Password: password,
		RoleIDs:  ids,
	})
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	logger.Info().Str("username", admin.Username).Int64("user_id", admin.ID).Msg("bootstrap admin created")
	return nil
}
