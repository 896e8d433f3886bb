package memory

import (
	"context"
	"crypto/subtle"
	"sync"
	"time"

	"github.com/campusshelf/library-system/internal/core/ports"
)

type resetCode struct {
	code      string
	expiresAt time.Time
	failures  int
}

// ResetCodes is an in-process ports.ResetCodeStore.
type ResetCodes struct {
	mu      sync.Mutex
	pending map[string]resetCode
	now     func() time.Time
}

// NewResetCodes returns an empty code store.
func NewResetCodes() *ResetCodes {
	return &ResetCodes{pending: make(map[string]resetCode), now: time.Now}
}

// WithClock makes expiry follow now instead of the wall clock.
func (r *ResetCodes) WithClock(now func() time.Time) *ResetCodes {
	r.now = now
	return r
}

func (r *ResetCodes) Save(_ context.Context, email, code string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.pending[email] = resetCode{code: code, expiresAt: r.now().Add(ttl)}
	return nil
}

func (r *ResetCodes) Consume(_ context.Context, email, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rc, ok := r.pending[email]
	if !ok {
		return false, nil
	}
	if !r.now().Before(rc.expiresAt) {
		delete(r.pending, email)
		return false, nil
	}
	if subtle.ConstantTimeCompare([]byte(rc.code), []byte(code)) != 1 {
		rc.failures++
		if rc.failures >= ports.MaxResetAttempts {
			delete(r.pending, email)
		} else {
			r.pending[email] = rc
		}
		return false, nil
	}
	delete(r.pending, email)
	return true, nil
}
