package memory

import (
	"context"
	"sync"
	"time"
)

// Blocklist is an in-process ports.TokenBlocklist. Entries are dropped
// lazily once their token has expired.
type Blocklist struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

// NewBlocklist returns an empty blocklist.
func NewBlocklist() *Blocklist {
	return &Blocklist{revoked: make(map[string]time.Time), now: time.Now}
}

func (b *Blocklist) Revoke(_ context.Context, tokenID string, expiresAt time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.revoked[tokenID] = expiresAt
	return nil
}

func (b *Blocklist) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	exp, ok := b.revoked[tokenID]
	if !ok {
		return false, nil
	}
	if b.now().After(exp) {
		delete(b.revoked, tokenID)
		return false, nil
	}
	return true, nil
}
