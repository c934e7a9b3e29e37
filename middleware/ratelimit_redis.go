package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisLimiter is a fixed window limiter whose counters live in Redis, so
// several processes can share one budget per client. The window boundary is
// the key's expiry.
type RedisLimiter struct {
	client *redis.Client
	prefix string
	window time.Duration
	max    int
}

var _ Limiter = (*RedisLimiter)(nil)

func NewRedisLimiter(client *redis.Client, window time.Duration, maxRequests int) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		prefix: "ratelimit:",
		window: window,
		max:    maxRequests,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	k := l.prefix + key

	count, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("incr %s: %w", k, err)
	}
	if count == 1 {
		if err := l.client.PExpire(ctx, k, l.window).Err(); err != nil {
			return Decision{}, fmt.Errorf("pexpire %s: %w", k, err)
		}
	}

	ttl, err := l.client.PTTL(ctx, k).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("pttl %s: %w", k, err)
	}
	if ttl < 0 {
		// counter survived without an expiry; start a fresh window
		if err := l.client.PExpire(ctx, k, l.window).Err(); err != nil {
			return Decision{}, fmt.Errorf("pexpire %s: %w", k, err)
		}
		ttl = l.window
	}

	d := Decision{
		Allowed:   count <= int64(l.max),
		Limit:     l.max,
		Remaining: max(l.max-int(count), 0),
		ResetAt:   time.Now().Add(ttl),
	}
	if !d.Allowed {
		d.RetryAfter = ttl
	}
	return d, nil
}
