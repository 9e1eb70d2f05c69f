package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter paces actions per key, such as navigations per target host.
type Limiter interface {
	Wait(ctx context.Context, key string) error
}

// InMemoryLimiter is an implementation of Limiter stored in memory
type InMemoryLimiter struct {
	keys map[string]*rate.Limiter
	mu   sync.Mutex
	r    rate.Limit // Rate of adding tokens
	b    int        // Bucket size
}

// NewInMemoryLimiter creates a new rate limiter
// Example: NewInMemoryLimiter(30, time.Minute, 3) -> 30 actions a minute per key, bursts of 3.
// A non-positive request count disables limiting.
func NewInMemoryLimiter(requests int, per time.Duration, burst int) *InMemoryLimiter {
	r := rate.Inf
	if requests > 0 && per > 0 {
		r = rate.Every(per / time.Duration(requests))
	}
	if burst < 1 {
		burst = 1
	}
	return &InMemoryLimiter{
		keys: make(map[string]*rate.Limiter),
		r:    r,
		b:    burst,
	}
}

func (l *InMemoryLimiter) limiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, exists := l.keys[key]
	if !exists {
		limiter = rate.NewLimiter(l.r, l.b)
		l.keys[key] = limiter
	}
	return limiter
}

// Wait blocks until an action for key may happen or ctx is done
func (l *InMemoryLimiter) Wait(ctx context.Context, key string) error {
	return l.limiter(key).Wait(ctx)
}

var _ Limiter = (*InMemoryLimiter)(nil)
