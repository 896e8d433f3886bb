package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Blocklist remembers revoked access tokens in Redis so that logouts hold
// across API replicas. Key format: revoked:<token_id>, expiring with the token.
type Blocklist struct {
	client *redis.Client
	now    func() time.Time
}

// NewBlocklist creates a Blocklist wrapping the given Redis client.
func NewBlocklist(client *redis.Client) *Blocklist {
	return &Blocklist{client: client, now: time.Now}
}

// Revoke marks tokenID as revoked until expiresAt. Tokens that have already
// expired need no entry.
func (b *Blocklist) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(b.now())
	if ttl <= 0 {
		return nil
	}
	if err := b.client.Set(ctx, b.key(tokenID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether tokenID has been revoked and not yet expired.
func (b *Blocklist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := b.client.Exists(ctx, b.key(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return n > 0, nil
}

func (b *Blocklist) key(tokenID string) string {
	return "revoked:" + tokenID
}
