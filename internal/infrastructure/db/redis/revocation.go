package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenRevocationList records logged-out token ids in Redis.
// Key format: revoked:<token_id>, expiring when the token itself would.
type TokenRevocationList struct {
	client *redis.Client
}

// NewTokenRevocationList creates a TokenRevocationList wrapping the given Redis client.
func NewTokenRevocationList(client *redis.Client) *TokenRevocationList {
	return &TokenRevocationList{client: client}
}

// Revoke marks tokenID as revoked for ttl.
func (l *TokenRevocationList) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if err := l.client.Set(ctx, l.key(tokenID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether tokenID has been revoked and has not yet expired.
func (l *TokenRevocationList) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := l.client.Exists(ctx, l.key(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("revocation check: %w", err)
	}
	return n > 0, nil
}

func (l *TokenRevocationList) key(tokenID string) string {
	return "revoked:" + tokenID
}
