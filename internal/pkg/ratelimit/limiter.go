package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedLimiter keeps one token bucket per key (client IP). Each bucket holds
// Requests tokens and refills at Requests per Window.
type KeyedLimiter struct {
	requests int
	window   time.Duration
	limit    rate.Limit

	mu       sync.Mutex
	visitors map[string]*visitor
	now      func() time.Time
}

// NewKeyedLimiter allows roughly requests per window for each key
func NewKeyedLimiter(requests int, window time.Duration) *KeyedLimiter {
	return &KeyedLimiter{
		requests: requests,
		window:   window,
		limit:    rate.Every(window / time.Duration(requests)),
		visitors: make(map[string]*visitor),
		now:      time.Now,
	}
}

// Allow consumes a token for key and reports whether the request may proceed.
// When it may not, the returned duration is how long until a token is available.
func (l *KeyedLimiter) Allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.requests)}
		l.visitors[key] = v
	}
	v.lastSeen = now

	r := v.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, l.window
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// Requests is the bucket size
func (l *KeyedLimiter) Requests() int { return l.requests }

// Window is the refill window
func (l *KeyedLimiter) Window() time.Duration { return l.window }

// Len returns the number of tracked keys
func (l *KeyedLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}

// Cleanup forgets keys idle for longer than one window
func (l *KeyedLimiter) Cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.window)
	for key, v := range l.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(l.visitors, key)
		}
	}
}

// RunCleanup calls Cleanup every interval until ctx is done
func (l *KeyedLimiter) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Cleanup()
		}
	}
}
