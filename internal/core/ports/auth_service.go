package ports

import (
	"context"
	"time"

	"github.com/99minutos/user-admin/internal/core/domain"
)

// PasswordHasher is the one-way function used for stored credentials.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenRevoker tracks token ids that must no longer be accepted.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// AuthService verifies credentials and issues session tokens.
type AuthService interface {
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
	Logout(ctx context.Context, tokenID string, expiresAt time.Time) error
}
