package redis

import (
	"context"
	"os"
	"testing"
	"time"
)

// TestTokenRevocationList runs against a live Redis when REDIS_TEST_ADDR is set.
func TestTokenRevocationList(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("set REDIS_TEST_ADDR to run this integration test")
	}

	ctx := context.Background()
	client, err := Connect(ctx, Config{Addr: addr})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer client.Close()

	list := NewTokenRevocationList(client)
	id := "test-" + time.Now().Format("150405.000000000")

	revoked, err := list.IsRevoked(ctx, id)
	if err != nil || revoked {
		t.Fatalf("fresh id should not be revoked: revoked=%v err=%v", revoked, err)
	}

	if err := list.Revoke(ctx, id, time.Minute); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	revoked, err = list.IsRevoked(ctx, id)
	if err != nil || !revoked {
		t.Fatalf("expected revoked id: revoked=%v err=%v", revoked, err)
	}

	ttl, err := client.TTL(ctx, list.key(id)).Result()
	if err != nil || ttl <= 0 || ttl > time.Minute {
		t.Fatalf("unexpected ttl %s (err=%v)", ttl, err)
	}
}
