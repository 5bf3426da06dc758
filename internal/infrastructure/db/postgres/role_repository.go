package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/99minutos/user-admin/internal/core/domain"
	"github.com/99minutos/user-admin/internal/core/ports"
)

var _ ports.RoleRepository = (*RoleRepository)(nil)

// RoleRepository provides Postgres-backed persistence for roles.
type RoleRepository struct {
	pool *pgxpool.Pool
}

func NewRoleRepository(pool *pgxpool.Pool) *RoleRepository {
	return &RoleRepository{pool: pool}
}

func (r *RoleRepository) FindByName(ctx context.Context, name string) (*domain.Role, error) {
	var role domain.Role
	err := r.pool.QueryRow(ctx, `SELECT id, name FROM roles WHERE name = $1`, name).Scan(&role.ID, &role.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRoleNotFound
		}
		return nil, fmt.Errorf("query role: %w", err)
	}
	return &role, nil
}

func (r *RoleRepository) FindByIDs(ctx context.Context, ids []int64) ([]domain.Role, error) {
	if len(ids) == 0 {
		return []domain.Role{}, nil
	}
	return r.query(ctx, `SELECT id, name FROM roles WHERE id = ANY($1) ORDER BY id`, ids)
}

func (r *RoleRepository) FindAll(ctx context.Context) ([]domain.Role, error) {
	return r.query(ctx, `SELECT id, name FROM roles ORDER BY id`)
}

func (r *RoleRepository) Save(ctx context.Context, role *domain.Role) error {
	if role.ID == 0 {
		err := r.pool.QueryRow(ctx, `INSERT INTO roles (name) VALUES ($1) RETURNING id`, role.Name).Scan(&role.ID)
		if err != nil {
			return fmt.Errorf("insert role: %w", err)
		}
		return nil
	}

	if _, err := r.pool.Exec(ctx, `UPDATE roles SET name = $2 WHERE id = $1`, role.ID, role.Name); err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	return nil
}

func (r *RoleRepository) query(ctx context.Context, sql string, args ...any) ([]domain.Role, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query roles: %w", err)
	}
	roles, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Role, error) {
		var role domain.Role
		err := row.Scan(&role.ID, &role.Name)
		return role, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan roles: %w", err)
	}
	return roles, nil
}
