package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/user-admin/internal/core/domain"
	"github.com/99minutos/user-admin/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	users   map[int64]*domain.User
	nextID  int64
	findErr error // if set, every lookup returns this error
	saveErr error // if set, Save returns this error
	saves   int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[int64]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.Roles = append([]domain.Role(nil), u.Roles...)
	return &clone
}

func (r *stubUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := r.FindByUsername(ctx, username)
	if errors.Is(err, domain.ErrUserNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *stubUserRepo) Save(_ context.Context, user *domain.User) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	// Mirrors the unique index the real stores put on username.
	for id, u := range r.users {
		if u.Username == user.Username && id != user.ID {
			return &domain.DuplicateUsernameError{Username: user.Username}
		}
	}
	if user.ID == 0 {
		r.nextID++
		user.ID = r.nextID
	} else if _, ok := r.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	r.users[user.ID] = cloneUser(user)
	r.saves++
	return nil
}

func (r *stubUserRepo) Delete(_ context.Context, user *domain.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, user.ID)
	return nil
}

func (r *stubUserRepo) FindAll(_ context.Context) ([]*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type stubRoleRepo struct {
	roles  []domain.Role
	saved  int
	err    error
	nextID int64
}

func (r *stubRoleRepo) FindByName(_ context.Context, name string) (*domain.Role, error) {
	if r.err != nil {
		return nil, r.err
	}
	for _, role := range r.roles {
		if role.Name == name {
			found := role
			return &found, nil
		}
	}
	return nil, domain.ErrRoleNotFound
}

func (r *stubRoleRepo) FindByIDs(_ context.Context, ids []int64) ([]domain.Role, error) {
	if r.err != nil {
		return nil, r.err
	}
	out := []domain.Role{}
	for _, role := range r.roles {
		for _, id := range ids {
			if role.ID == id {
				out = append(out, role)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubRoleRepo) FindAll(_ context.Context) ([]domain.Role, error) {
	if r.err != nil {
		return nil, r.err
	}
	return append([]domain.Role(nil), r.roles...), nil
}

func (r *stubRoleRepo) Save(_ context.Context, role *domain.Role) error {
	if r.err != nil {
		return r.err
	}
	r.nextID++
	role.ID = r.nextID
	r.roles = append(r.roles, *role)
	r.saved++
	return nil
}

type stubAuditRecorder struct {
	mu     sync.Mutex
	events []domain.AuditEvent
}

func (a *stubAuditRecorder) Record(ev domain.AuditEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, ev)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var discardLogger = zerolog.Nop()

// seededRoles returns a role repo holding ROLE_ADMIN (id 1) and ROLE_USER (id 2).
func seededRoles() *stubRoleRepo {
	repo := &stubRoleRepo{}
	_ = repo.Save(context.Background(), &domain.Role{Name: domain.RoleAdmin})
	_ = repo.Save(context.Background(), &domain.Role{Name: domain.RoleUser})
	repo.saved = 0
	return repo
}

func newUserSvc(users *stubUserRepo, roles *stubRoleRepo, audit *stubAuditRecorder) *UserService {
	var recorder ports.AuditRecorder
	if audit != nil {
		recorder = audit
	}
	return NewUserService(users, NewRoleService(roles, discardLogger), NewBcryptHasher(bcrypt.MinCost), recorder, discardLogger)
}
