package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/user-admin/internal/core/domain"
	"github.com/99minutos/user-admin/internal/core/ports"
	"github.com/99minutos/user-admin/internal/pkg/actor"
)

// UserService implements ports.UserService.
type UserService struct {
	repo   ports.UserRepository
	roles  ports.RoleService
	hasher ports.PasswordHasher
	audit  ports.AuditRecorder
	logger zerolog.Logger
	now    func() time.Time
}

// NewUserService wires the service. audit may be nil, in which case no audit
// events are emitted.
func NewUserService(
	repo ports.UserRepository,
	roles ports.RoleService,
	hasher ports.PasswordHasher,
	audit ports.AuditRecorder,
	logger zerolog.Logger,
) *UserService {
	return &UserService{
		repo:   repo,
		roles:  roles,
		hasher: hasher,
		audit:  audit,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *UserService) Authenticate(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrUsernameNotFound, username)
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	s.logger.Debug().Str("username", username).Strs("roles", user.RoleNames()).Msg("credentials loaded")
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *UserService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, &domain.UserNotFoundError{ID: id}
		}
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return user, nil
}

func (s *UserService) GetUserForm(ctx context.Context, id int64) (*ports.UserForm, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	form := toForm(user)
	return &form, nil
}

// CreateUser validates the username, hashes the password, resolves roles and
// persists a new account.
func (s *UserService) CreateUser(ctx context.Context, form ports.UserForm) (*domain.User, error) {
	if err := s.checkUsername(ctx, form.Username, nil); err != nil {
		return nil, err
	}

	user := &domain.User{}
	applyForm(user, form)

	hash, err := s.hasher.Hash(form.Password)
	if err != nil {
		return nil, fmt.Errorf("create user: hash password: %w", err)
	}
	user.PasswordHash = hash

	roles, err := s.roles.ResolveRoles(ctx, form.RoleIDs)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	user.Roles = roles

	now := s.now()
	user.CreatedAt = now
	user.UpdatedAt = now

	if err := s.repo.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info().Int64("user_id", user.ID).Str("username", user.Username).Strs("roles", user.RoleNames()).Msg("user created")
	s.record(ctx, domain.AuditUserCreated, user)
	return user, nil
}

// UpdateUser replaces the profile fields and the role set of user id. A blank
// password keeps the stored hash.
func (s *UserService) UpdateUser(ctx context.Context, form ports.UserForm, id int64) (*domain.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.checkUsername(ctx, form.Username, user); err != nil {
		return nil, err
	}

	applyForm(user, form)

	if strings.TrimSpace(form.Password) != "" {
		hash, err := s.hasher.Hash(form.Password)
		if err != nil {
			return nil, fmt.Errorf("update user %d: hash password: %w", id, err)
		}
		user.PasswordHash = hash
	}

	roles, err := s.roles.ResolveRoles(ctx, form.RoleIDs)
	if err != nil {
		return nil, fmt.Errorf("update user %d: %w", id, err)
	}
	user.Roles = roles
	user.UpdatedAt = s.now()

	if err := s.repo.Save(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, &domain.UserNotFoundError{ID: id}
		}
		return nil, fmt.Errorf("update user %d: %w", id, err)
	}

	s.logger.Info().Int64("user_id", user.ID).Str("username", user.Username).Strs("roles", user.RoleNames()).Msg("user updated")
	s.record(ctx, domain.AuditUserUpdated, user)
	return user, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return &domain.UserNotFoundError{ID: id}
		}
		return fmt.Errorf("delete user %d: %w", id, err)
	}

	s.logger.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("user deleted")
	s.record(ctx, domain.AuditUserDeleted, user)
	return nil
}

// checkUsername fails with a DuplicateUsernameError when username belongs to
// someone else. current is nil on create; on update the user may keep its own name.
func (s *UserService) checkUsername(ctx context.Context, username string, current *domain.User) error {
	exists, err := s.repo.ExistsByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("check username: %w", err)
	}
	if !exists {
		return nil
	}
	if current != nil && current.Username == username {
		return nil
	}
	return &domain.DuplicateUsernameError{Username: username}
}

func (s *UserService) record(ctx context.Context, action domain.AuditAction, user *domain.User) {
	if s.audit == nil {
		return
	}
	who, _ := actor.Username(ctx)
	s.audit.Record(domain.AuditEvent{
		Action:   action,
		UserID:   user.ID,
		Username: user.Username,
		Actor:    who,
		At:       s.now(),
	})
}

// applyForm copies the profile fields of form onto user. Password and roles
// are handled by the caller.
func applyForm(user *domain.User, form ports.UserForm) {
	user.Username = form.Username
	user.FirstName = form.FirstName
	user.LastName = form.LastName
	user.Email = form.Email
	user.Age = form.Age
}

func toForm(user *domain.User) ports.UserForm {
	return ports.UserForm{
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Age:       user.Age,
		RoleIDs:   user.RoleIDs(),
	}
}
