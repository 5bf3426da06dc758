package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/99minutos/user-admin/internal/core/domain"
	"github.com/99minutos/user-admin/internal/core/ports"
)

var _ ports.RoleRepository = (*RoleRepository)(nil)

// RoleRepository implements ports.RoleRepository using SQLite.
type RoleRepository struct {
	*DB
}

func NewRoleRepository(db *DB) *RoleRepository {
	return &RoleRepository{DB: db}
}

func (r *RoleRepository) FindByName(ctx context.Context, name string) (*domain.Role, error) {
	var role domain.Role
	err := r.db.QueryRowContext(ctx, "SELECT id, name FROM roles WHERE name = ?", name).Scan(&role.ID, &role.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
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
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	return r.query(ctx, "SELECT id, name FROM roles WHERE id IN ("+placeholders+") ORDER BY id", args...)
}

func (r *RoleRepository) FindAll(ctx context.Context) ([]domain.Role, error) {
	return r.query(ctx, "SELECT id, name FROM roles ORDER BY id")
}

func (r *RoleRepository) Save(ctx context.Context, role *domain.Role) error {
	r.writeLock.Lock()
	defer r.writeLock.Unlock()

	if role.ID == 0 {
		res, err := r.db.ExecContext(ctx, "INSERT INTO roles (name) VALUES (?)", role.Name)
		if err != nil {
			return fmt.Errorf("insert role: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("insert role: %w", err)
		}
		role.ID = id
		return nil
	}

	if _, err := r.db.ExecContext(ctx, "UPDATE roles SET name = ? WHERE id = ?", role.Name, role.ID); err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	return nil
}

func (r *RoleRepository) query(ctx context.Context, query string, args ...any) ([]domain.Role, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query roles: %w", err)
	}
	defer rows.Close()

	roles := []domain.Role{}
	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}
