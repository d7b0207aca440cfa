// Package coordination provides the advisory lock that keeps batch
// issuance single-writer when multiple issuer processes share one
// batch index: the core itself holds no lock, assuming one execution
// owns the node table for a batch (spec §5); this package is the glue
// that makes that assumption hold across processes.
package coordination

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// releaseScript deletes key only if its value still matches token,
// so a lock holder never releases a lock another holder has since
// acquired after this one's lease expired.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
else
    return 0
end
`)

// IssuanceLock is a Redis-backed mutual-exclusion lock keyed by issuer,
// so at most one process builds a batch for a given issuer at a time.
type IssuanceLock struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIssuanceLock creates a lock client against addr with the given
// lease TTL; callers should pick a TTL comfortably longer than one
// batch build.
func NewIssuanceLock(addr, password string, db int, ttl time.Duration) *IssuanceLock {
	return &IssuanceLock{
		client: redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db}),
		ttl:    ttl,
	}
}

// Held represents an acquired lock; Release must be called to give it
// back before its TTL, or it self-expires.
type Held struct {
	lock  *IssuanceLock
	key   string
	token string
}

// Acquire attempts to take the issuance lock for issuerID, returning
// ok=false without error if another process currently holds it.
func (l *IssuanceLock) Acquire(ctx context.Context, issuerID string) (held *Held, ok bool, err error) {
	token, err := randomToken()
	if err != nil {
		return nil, false, fmt.Errorf("coordination: generate lock token: %w", err)
	}
	key := lockKey(issuerID)

	acquired, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("coordination: acquire lock for %s: %w", issuerID, err)
	}
	if !acquired {
		return nil, false, nil
	}
	return &Held{lock: l, key: key, token: token}, true, nil
}

// Release gives back h's lock, a no-op if it was already released or
// had expired and been taken by another holder.
func (h *Held) Release(ctx context.Context) error {
	_, err := releaseScript.Run(ctx, h.lock.client, []string{h.key}, h.token).Result()
	if err != nil {
		return fmt.Errorf("coordination: release lock %s: %w", h.key, err)
	}
	return nil
}

func lockKey(issuerID string) string {
	return fmt.Sprintf("mtc:issue:%s", issuerID)
}

func randomToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
