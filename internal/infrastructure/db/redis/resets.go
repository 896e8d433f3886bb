package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/campusshelf/library-system/internal/core/ports"
)

// consumeScript checks a reset code and spends it atomically. A wrong guess
// bumps the failure counter, which shares the code's remaining TTL; the
// code is dropped once the counter reaches ARGV[2].
var consumeScript = redis.NewScript(`
local stored = redis.call('GET', KEYS[1])
if not stored then
  return 0
end
if stored == ARGV[1] then
  redis.call('DEL', KEYS[1], KEYS[2])
  return 1
end
local n = redis.call('INCR', KEYS[2])
if n == 1 then
  redis.call('PEXPIRE', KEYS[2], redis.call('PTTL', KEYS[1]))
end
if n >= tonumber(ARGV[2]) then
  redis.call('DEL', KEYS[1], KEYS[2])
end
return 0
`)

// ResetCodes stores pending password-reset codes in Redis so any API
// replica can verify them. Key format: reset:{<email>} holding the code and
// reset:{<email>}:failures counting wrong guesses, both expiring with the code.
type ResetCodes struct {
	client *redis.Client
}

// NewResetCodes creates a ResetCodes wrapping the given Redis client.
func NewResetCodes(client *redis.Client) *ResetCodes {
	return &ResetCodes{client: client}
}

// Save stores code for email, replacing any pending one.
func (r *ResetCodes) Save(ctx context.Context, email, code string, ttl time.Duration) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.key(email), code, ttl)
		pipe.Del(ctx, r.failuresKey(email))
		return nil
	})
	if err != nil {
		return fmt.Errorf("save reset code: %w", err)
	}
	return nil
}

// Consume reports whether code matches the pending one for email and, if
// so, deletes it.
func (r *ResetCodes) Consume(ctx context.Context, email, code string) (bool, error) {
	keys := []string{r.key(email), r.failuresKey(email)}
	n, err := consumeScript.Run(ctx, r.client, keys, code, ports.MaxResetAttempts).Int()
	if err != nil {
		return false, fmt.Errorf("consume reset code: %w", err)
	}
	return n == 1, nil
}

func (r *ResetCodes) key(email string) string {
	return "reset:{" + email + "}"
}

func (r *ResetCodes) failuresKey(email string) string {
	return r.key(email) + ":failures"
}
