package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultMaxAttempts = 10
	defaultWindow      = 15 * time.Minute
)

// LoginThrottle limits login attempts per key (email+IP) using a
// fixed-window counter in Redis. Key format: login_attempts:<key>
type LoginThrottle struct {
	client      *redis.Client
	maxAttempts int
	window      time.Duration
}

// NewLoginThrottle creates a LoginThrottle wrapping the given Redis client.
// Non-positive limits fall back to the defaults.
func NewLoginThrottle(client *redis.Client, maxAttempts int, window time.Duration) *LoginThrottle {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	if window <= 0 {
		window = defaultWindow
	}
	return &LoginThrottle{client: client, maxAttempts: maxAttempts, window: window}
}

// Allow records one attempt and reports whether the caller is still under
// the limit. On a Redis error it reports true: the throttle is an abuse
// brake, not an authentication dependency.
func (t *LoginThrottle) Allow(ctx context.Context, key string) (bool, error) {
	n, err := t.client.Incr(ctx, t.key(key)).Result()
	if err != nil {
		return true, fmt.Errorf("throttle incr: %w", err)
	}
	if n == 1 {
		// First attempt in this window starts the clock.
		if err := t.client.Expire(ctx, t.key(key), t.window).Err(); err != nil {
			return true, fmt.Errorf("throttle expire: %w", err)
		}
	}
	return n <= int64(t.maxAttempts), nil
}

// Reset clears the attempt counter, called after a successful login.
func (t *LoginThrottle) Reset(ctx context.Context, key string) error {
	return t.client.Del(ctx, t.key(key)).Err()
}

func (t *LoginThrottle) key(key string) string {
	return "login_attempts:" + key
}
