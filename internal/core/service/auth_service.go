package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/99minutos/user-admin/internal/core/domain"
	"github.com/99minutos/user-admin/internal/core/ports"
)

// CredentialLoader is the slice of ports.UserService the login flow depends on.
type CredentialLoader interface {
	Authenticate(ctx context.Context, username string) (*domain.User, error)
}

// AuthService implements login and logout on top of the user credential lookup.
type AuthService struct {
	users     CredentialLoader
	hasher    ports.PasswordHasher
	revoker   ports.TokenRevoker
	jwtSecret string
	tokenTTL  time.Duration
	logger    zerolog.Logger
}

// NewAuthService returns an AuthService. revoker may be nil, in which case
// Logout is a no-op on the server side.
func NewAuthService(
	users CredentialLoader,
	hasher ports.PasswordHasher,
	revoker ports.TokenRevoker,
	jwtSecret string,
	tokenTTL time.Duration,
	logger zerolog.Logger,
) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		users:     users,
		hasher:    hasher,
		revoker:   revoker,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		logger:    logger,
	}
}

func (s *AuthService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.Authenticate(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUsernameNotFound) {
			s.logger.Info().Str("username", username).Msg("login rejected: unknown user")
		}
		return "", nil, err
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		s.logger.Info().Str("username", username).Msg("login rejected: bad password")
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, err
	}

	s.logger.Info().Str("username", username).Int64("user_id", user.ID).Msg("login succeeded")
	return token, user, nil
}

// Logout revokes tokenID until the token would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if s.revoker == nil || tokenID == "" {
		return nil
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return s.revoker.Revoke(ctx, tokenID, ttl)
}

func (s *AuthService) generateToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      strconv.FormatInt(user.ID, 10),
		"username": user.Username,
		"roles":    user.RoleNames(),
		"jti":      uuid.NewString(),
		"iat":      now.Unix(),
		"exp":      now.Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}
