package middleware

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"items-api/controllers"
)

const rateLimitMessage = "Too many requests from this IP, please try again later."

// Decision is the outcome of a rate limit check.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
	ResetAt    time.Time
}

// Limiter decides whether the client identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

type clientWindow struct {
	count   int
	resetAt time.Time
}

// FixedWindowLimiter counts requests per key in fixed windows that start at
// a key's first request. A request arriving exactly at the reset instant is
// still counted against the old window.
type FixedWindowLimiter struct {
	mu      sync.Mutex
	window  time.Duration
	max     int
	clients map[string]*clientWindow
	now     func() time.Time
}

var _ Limiter = (*FixedWindowLimiter)(nil)

func NewFixedWindowLimiter(window time.Duration, maxRequests int) *FixedWindowLimiter {
	return &FixedWindowLimiter{
		window:  window,
		max:     maxRequests,
		clients: make(map[string]*clientWindow),
		now:     time.Now,
	}
}

// WithClock replaces the time source. Tests only.
func (l *FixedWindowLimiter) WithClock(now func() time.Time) *FixedWindowLimiter {
	l.now = now
	return l
}

func (l *FixedWindowLimiter) Allow(_ context.Context, key string) (Decision, error) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.clients[key]
	if !ok || now.After(c.resetAt) {
		c = &clientWindow{count: 1, resetAt: now.Add(l.window)}
		l.clients[key] = c
		return l.decision(true, c, now), nil
	}
	if c.count < l.max {
		c.count++
		return l.decision(true, c, now), nil
	}
	return l.decision(false, c, now), nil
}

func (l *FixedWindowLimiter) decision(allowed bool, c *clientWindow, now time.Time) Decision {
	d := Decision{
		Allowed:   allowed,
		Limit:     l.max,
		Remaining: max(l.max-c.count, 0),
		ResetAt:   c.resetAt,
	}
	if !allowed {
		d.RetryAfter = c.resetAt.Sub(now)
	}
	return d
}

// Sweep drops every client whose window ended before now and returns how
// many were removed.
func (l *FixedWindowLimiter) Sweep(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, c := range l.clients {
		if now.After(c.resetAt) {
			delete(l.clients, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked clients.
func (l *FixedWindowLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// Run sweeps expired clients every interval until ctx is done.
func (l *FixedWindowLimiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep(l.now())
		}
	}
}

// RetryAfterSeconds rounds a wait up to whole seconds, never below one.
func RetryAfterSeconds(d time.Duration) int {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}

// RateLimit rejects clients over their limit with 429. Limiter errors are
// logged and the request is let through.
func RateLimit(l Limiter, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := ClientIP(r)
			d, err := l.Allow(r.Context(), key)
			if err != nil {
				logger.Warn("rate limiter unavailable, admitting request", "client_ip", key, "error", err)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			if d.Allowed {
				next.ServeHTTP(w, r)
				return
			}

			retryAfter := RetryAfterSeconds(d.RetryAfter)
			logger.Warn("rate limit exceeded", "client_ip", key, "retry_after", retryAfter)
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			env := controllers.Fail(rateLimitMessage)
			env.RetryAfter = retryAfter
			writeJSON(w, http.StatusTooManyRequests, env)
		})
	}
}
