package auth

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/praetor-auth/praetor/internal/sessions"
)

// LoginThrottle counts consecutive failed logins per account in Redis and
// blocks further attempts once the limit is hit inside the window. Keys hold
// a digest of the email, not the address itself.
type LoginThrottle struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

// NewLoginThrottle constructs a throttle. A nil client disables throttling.
func NewLoginThrottle(client *redis.Client, limit int64, window time.Duration) *LoginThrottle {
	return &LoginThrottle{client: client, limit: limit, window: window}
}

func (t *LoginThrottle) key(email string) string {
	return "login:fail:" + sessions.Digest(strings.ToLower(strings.TrimSpace(email)))
}

// Blocked reports whether the account has exhausted its attempts. Redis
// being down never blocks a login.
func (t *LoginThrottle) Blocked(ctx context.Context, email string) bool {
	if t == nil || t.client == nil || t.limit <= 0 {
		return false
	}
	count, err := t.client.Get(ctx, t.key(email)).Int64()
	if err != nil {
		return false
	}
	return count >= t.limit
}

// RecordFailure bumps the failure counter, starting the window on the first
// failure.
func (t *LoginThrottle) RecordFailure(ctx context.Context, email string) {
	if t == nil || t.client == nil {
		return
	}
	key := t.key(email)
	pipe := t.client.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, t.window)
	_, _ = pipe.Exec(ctx)
}

// Reset clears the counter after a successful login.
func (t *LoginThrottle) Reset(ctx context.Context, email string) {
	if t == nil || t.client == nil {
		return
	}
	_ = t.client.Del(ctx, t.key(email)).Err()
}
