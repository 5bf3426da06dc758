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

var _ ports.UserRepository = (*UserRepository)(nil)

// UserRepository provides Postgres-backed persistence for users and their
// role assignments in users_roles.
type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const selectUsers = `
	SELECT u.id, u.username, u.first_name, u.last_name, u.email, u.age, u.password_hash,
		u.created_at, u.updated_at,
		COALESCE(array_agg(r.id ORDER BY r.id) FILTER (WHERE r.id IS NOT NULL), '{}'),
		COALESCE(array_agg(r.name ORDER BY r.id) FILTER (WHERE r.id IS NOT NULL), '{}')
	FROM users u
	LEFT JOIN users_roles ur ON ur.user_id = u.id
	LEFT JOIN roles r ON r.id = ur.role_id`

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.findOne(ctx, selectUsers+` WHERE u.id = $1 GROUP BY u.id`, id)
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, selectUsers+` WHERE u.username = $1 GROUP BY u.id`, username)
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query user exists: %w", err)
	}
	return exists, nil
}

func (r *UserRepository) Save(ctx context.Context, user *domain.User) error {
	id := user.ID
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if id == 0 {
			err := tx.QueryRow(ctx, `
				INSERT INTO users (username, first_name, last_name, email, age, password_hash, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
				RETURNING id`,
				user.Username, user.FirstName, user.LastName, user.Email, user.Age, user.PasswordHash,
				user.CreatedAt.UTC(), user.UpdatedAt.UTC(),
			).Scan(&id)
			if err != nil {
				return err
			}
		} else {
			tag, err := tx.Exec(ctx, `
				UPDATE users SET username = $2, first_name = $3, last_name = $4, email = $5, age = $6,
					password_hash = $7, updated_at = $8
				WHERE id = $1`,
				id, user.Username, user.FirstName, user.LastName, user.Email, user.Age, user.PasswordHash,
				user.UpdatedAt.UTC(),
			)
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				return &domain.UserNotFoundError{ID: id}
			}
			if _, err := tx.Exec(ctx, `DELETE FROM users_roles WHERE user_id = $1`, id); err != nil {
				return err
			}
		}

		if len(user.Roles) == 0 {
			return nil
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO users_roles (user_id, role_id) SELECT $1, id FROM roles WHERE id = ANY($2)`,
			id, user.RoleIDs(),
		)
		return err
	})
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.DuplicateUsernameError{Username: user.Username}
		}
		var notFound *domain.UserNotFoundError
		if errors.As(err, &notFound) {
			return err
		}
		return fmt.Errorf("save user: %w", err)
	}

	user.ID = id
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, user *domain.User) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, user.ID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func (r *UserRepository) FindAll(ctx context.Context) ([]*domain.User, error) {
	rows, err := r.pool.Query(ctx, selectUsers+` GROUP BY u.id ORDER BY u.id`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	users, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.User, error) {
		return scanUser(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan users: %w", err)
	}
	return users, nil
}

func (r *UserRepository) findOne(ctx context.Context, sql string, arg any) (*domain.User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, sql, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return user, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		user      domain.User
		roleIDs   []int64
		roleNames []string
	)
	err := row.Scan(&user.ID, &user.Username, &user.FirstName, &user.LastName, &user.Email, &user.Age,
		&user.PasswordHash, &user.CreatedAt, &user.UpdatedAt, &roleIDs, &roleNames)
	if err != nil {
		return nil, err
	}

	user.Roles = make([]domain.Role, 0, len(roleIDs))
	for i, id := range roleIDs {
		user.Roles = append(user.Roles, domain.Role{ID: id, Name: roleNames[i]})
	}
	user.CreatedAt = user.CreatedAt.UTC()
	user.UpdatedAt = user.UpdatedAt.UTC()
	return &user, nil
}
