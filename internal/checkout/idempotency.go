package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/zaastore/storefront/pkg/errors"
)

const (
	idemKeyPrefix = "zaastore-checkout:idem:"

	// pendingMarker occupies the key while the gateway call is in flight so
	// a concurrent duplicate cannot start a second order.
	pendingMarker = "__pending__"
)

// IdempotencyGuard deduplicates checkout submissions on an idempotency key.
// The first submission with a key runs the gateway call and stores its
// token; later submissions with the same key replay that token instead of
// opening another gateway order.
type IdempotencyGuard struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIdempotencyGuard creates a redis-backed guard. Keys expire after ttl.
func NewIdempotencyGuard(client *redis.Client, ttl time.Duration) *IdempotencyGuard {
	return &IdempotencyGuard{
		client: client,
		ttl:    ttl,
	}
}

// Execute runs fn exactly once per key. The returned bool reports whether
// the token was replayed from a previous submission. A submission arriving
// while the first is still in flight is rejected rather than queued.
func (g *IdempotencyGuard) Execute(ctx context.Context, key string, fn func() (string, error)) (string, bool, error) {
	redisKey := idemKeyPrefix + key

	acquired, err := g.client.SetNX(ctx, redisKey, pendingMarker, g.ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("idempotency reserve: %w", err)
	}

	if !acquired {
		val, err := g.client.Get(ctx, redisKey).Result()
		if err != nil {
			if err == redis.Nil {
				// The first attempt failed and released the key between
				// our SetNX and Get. Treat as in flight; the caller can
				// resubmit.
				return "", false, apperrors.Unavailable("checkout with this key is already in progress")
			}
			return "", false, fmt.Errorf("idempotency lookup: %w", err)
		}
		if val == pendingMarker {
			return "", false, apperrors.Unavailable("checkout with this key is already in progress")
		}
		return val, true, nil
	}

	token, err := fn()
	if err != nil {
		// Release the key so a corrected resubmission with the same key
		// is not locked out.
		if delErr := g.client.Del(ctx, redisKey).Err(); delErr != nil {
			return "", false, fmt.Errorf("idempotency release after failure: %w (original: %w)", delErr, err)
		}
		return "", false, err
	}

	if err := g.client.Set(ctx, redisKey, token, g.ttl).Err(); err != nil {
		return "", false, fmt.Errorf("idempotency store token: %w", err)
	}

	return token, false, nil
}
