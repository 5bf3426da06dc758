package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/99minutos/user-admin/internal/core/domain"
	"github.com/99minutos/user-admin/internal/core/ports"
)

type RoleService struct {
	repo   ports.RoleRepository
	logger zerolog.Logger
}

func NewRoleService(repo ports.RoleRepository, logger zerolog.Logger) *RoleService {
	return &RoleService{repo: repo, logger: logger}
}

// EnsureDefaultRoles creates any of domain.DefaultRoles that does not exist yet.
func (s *RoleService) EnsureDefaultRoles(ctx context.Context) error {
	for _, name := range domain.DefaultRoles {
		_, err := s.repo.FindByName(ctx, name)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrRoleNotFound) {
			return fmt.Errorf("ensure role %s: %w", name, err)
		}

		role := &domain.Role{Name: name}
		if err := s.repo.Save(ctx, role); err != nil {
			return fmt.Errorf("ensure role %s: %w", name, err)
		}
		s.logger.Info().Str("role", name).Int64("role_id", role.ID).Msg("role created")
	}
	return nil
}

// ResolveRoles maps ids to roles. Ids with no matching role are dropped
// without error; duplicate ids yield a single role.
func (s *RoleService) ResolveRoles(ctx context.Context, ids []int64) ([]domain.Role, error) {
	if len(ids) == 0 {
		return []domain.Role{}, nil
	}

	seen := make(map[int64]struct{}, len(ids))
	unique := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	roles, err := s.repo.FindByIDs(ctx, unique)
	if err != nil {
		return nil, fmt.Errorf("resolve roles: %w", err)
	}
	if len(roles) < len(unique) {
		s.logger.Debug().Ints64("requested", unique).Int("resolved", len(roles)).Msg("unknown role ids ignored")
	}
	return roles, nil
}

func (s *RoleService) ListRoles(ctx context.Context) ([]domain.Role, error) {
	roles, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return roles, nil
}
