// Package ratelimit implements the two throttles protecting the chat
// server: a per-user token bucket for message flow and a per-IP sliding
// window for connection attempts.
package ratelimit

import (
	"sync"
	"time"
)

const bucketIdleTimeout = 5 * time.Minute

// Config sets the per-user bucket parameters.
type Config struct {
	// Burst is the bucket capacity: how many messages may be sent at once
	// after a quiet period.
	Burst int

	// RefillRate is the sustained allowance in tokens per second.
	RefillRate float64
}

func DefaultConfig() Config {
	return Config{Burst: 15, RefillRate: 10}
}

type bucket struct {
	tokens     float64
	lastRefill time.Time
}

// Limiter tracks one token bucket per user id. Buckets are created lazily
// at full capacity and discarded after five minutes without a check.
type Limiter struct {
	mu      sync.Mutex
	cfg     Config
	buckets map[string]*bucket

	// now is a test seam.
	now func() time.Time
}

func NewLimiter(cfg Config) *Limiter {
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.RefillRate <= 0 {
		cfg.RefillRate = float64(cfg.Burst)
	}
	return &Limiter{
		cfg:     cfg,
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

// CheckLimit refills the user's bucket for the elapsed time, then tries to
// consume one token. It reports whether the message is allowed. The refill
// clock advances on every check, allowed or not.
func (l *Limiter) CheckLimit(userID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	b, ok := l.buckets[userID]
	if !ok {
		b = &bucket{tokens: float64(l.cfg.Burst), lastRefill: now}
		l.buckets[userID] = b
	}

	elapsed := now.Sub(b.lastRefill).Seconds()
	b.lastRefill = now
	if elapsed > 0 {
		b.tokens += elapsed * l.cfg.RefillRate
		if b.tokens > float64(l.cfg.Burst) {
			b.tokens = float64(l.cfg.Burst)
		}
	}

	if b.tokens < 1.0 {
		return false
	}

	b.tokens -= 1.0
	return true
}

// Reset discards the user's bucket; the next check starts at full capacity.
func (l *Limiter) Reset(userID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.buckets, userID)
}

// Cleanup discards buckets idle for more than five minutes. It only bounds
// memory: an active user's limiting is unaffected.
func (l *Limiter) Cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-bucketIdleTimeout)
	for id, b := range l.buckets {
		if b.lastRefill.Before(cutoff) {
			delete(l.buckets, id)
		}
	}
}
