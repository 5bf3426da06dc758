package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/99minutos/user-admin/internal/core/domain"
	"github.com/99minutos/user-admin/internal/core/ports"
)

var _ ports.UserRepository = (*UserRepository)(nil)

// UserRepository implements ports.UserRepository using SQLite. Role
// assignments live in the users_roles join table.
type UserRepository struct {
	*DB
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{DB: db}
}

const selectUsers = `SELECT id, username, first_name, last_name, email, age, password_hash, created_at, updated_at FROM users`

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.findOne(ctx, selectUsers+" WHERE id = ?", id)
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, selectUsers+" WHERE username = ?", username)
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM users WHERE username = ?)", username).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query user exists: %w", err)
	}
	return exists, nil
}

func (r *UserRepository) Save(ctx context.Context, user *domain.User) (err error) {
	r.writeLock.Lock()
	defer r.writeLock.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	id, err := r.saveRow(ctx, tx, user)
	if err != nil {
		return err
	}

	for _, role := range user.Roles {
		_, err = tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO users_roles (user_id, role_id) SELECT ?, id FROM roles WHERE id = ?",
			id, role.ID,
		)
		if err != nil {
			return fmt.Errorf("insert user roles: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	user.ID = id
	return nil
}

func (r *UserRepository) saveRow(ctx context.Context, tx *sql.Tx, user *domain.User) (int64, error) {
	if user.ID == 0 {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO users (username, first_name, last_name, email, age, password_hash, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			user.Username, user.FirstName, user.LastName, user.Email, user.Age, user.PasswordHash,
			toUnix(user.CreatedAt), toUnix(user.UpdatedAt),
		)
		if err != nil {
			return 0, saveError(user, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("insert user: %w", err)
		}
		return id, nil
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE users SET username = ?, first_name = ?, last_name = ?, email = ?, age = ?,
			password_hash = ?, updated_at = ?
		WHERE id = ?`,
		user.Username, user.FirstName, user.LastName, user.Email, user.Age, user.PasswordHash,
		toUnix(user.UpdatedAt), user.ID,
	)
	if err != nil {
		return 0, saveError(user, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return 0, &domain.UserNotFoundError{ID: user.ID}
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM users_roles WHERE user_id = ?", user.ID); err != nil {
		return 0, fmt.Errorf("clear user roles: %w", err)
	}
	return user.ID, nil
}

func saveError(user *domain.User, err error) error {
	if isUniqueViolation(err) {
		return &domain.DuplicateUsernameError{Username: user.Username}
	}
	return fmt.Errorf("save user: %w", err)
}

func (r *UserRepository) Delete(ctx context.Context, user *domain.User) error {
	r.writeLock.Lock()
	defer r.writeLock.Unlock()

	if _, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", user.ID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func (r *UserRepository) FindAll(ctx context.Context) ([]*domain.User, error) {
	rows, err := r.db.QueryContext(ctx, selectUsers+" ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := []*domain.User{}
	byID := make(map[int64]*domain.User)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
		byID[user.ID] = user
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	roleRows, err := r.db.QueryContext(ctx, `
		SELECT ur.user_id, r.id, r.name
		FROM users_roles ur JOIN roles r ON r.id = ur.role_id
		ORDER BY ur.user_id, r.id`)
	if err != nil {
		return nil, fmt.Errorf("query user roles: %w", err)
	}
	defer roleRows.Close()

	for roleRows.Next() {
		var (
			userID int64
			role   domain.Role
		)
		if err := roleRows.Scan(&userID, &role.ID, &role.Name); err != nil {
			return nil, fmt.Errorf("scan user role: %w", err)
		}
		if user, ok := byID[userID]; ok {
			user.Roles = append(user.Roles, role)
		}
	}
	return users, roleRows.Err()
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT r.id, r.name
		FROM users_roles ur JOIN roles r ON r.id = ur.role_id
		WHERE ur.user_id = ?
		ORDER BY r.id`, user.ID)
	if err != nil {
		return nil, fmt.Errorf("query user roles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, fmt.Errorf("scan user role: %w", err)
		}
		user.Roles = append(user.Roles, role)
	}
	return user, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*domain.User, error) {
	var (
		user               domain.User
		createdAt, updated int64
	)
	err := row.Scan(&user.ID, &user.Username, &user.FirstName, &user.LastName, &user.Email, &user.Age,
		&user.PasswordHash, &createdAt, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	user.Roles = []domain.Role{}
	user.CreatedAt = fromUnix(createdAt)
	user.UpdatedAt = fromUnix(updated)
	return &user, nil
}
