package ratelimit

import (
	"sync"
	"time"
)

const (
	attemptWindow        = time.Minute
	maxAttemptsPerWindow = 5
)

// ConnLimiter bounds connection attempts per source address to five in any
// trailing sixty-second window.
type ConnLimiter struct {
	mu       sync.Mutex
	attempts map[string][]time.Time

	now func() time.Time
}

func NewConnLimiter() *ConnLimiter {
	return &ConnLimiter{
		attempts: make(map[string][]time.Time),
		now:      time.Now,
	}
}

// CheckConnection prunes the address's attempt history to the trailing
// window, then admits and records the attempt if fewer than the maximum
// remain. Denied attempts are not recorded.
func (l *ConnLimiter) CheckConnection(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-attemptWindow)

	recent := l.attempts[ip][:0]
	for _, at := range l.attempts[ip] {
		if at.After(cutoff) {
			recent = append(recent, at)
		}
	}

	if len(recent) >= maxAttemptsPerWindow {
		l.attempts[ip] = recent
		return false
	}

	l.attempts[ip] = append(recent, now)
	return true
}

// Cleanup drops addresses whose every recorded attempt has aged out.
func (l *ConnLimiter) Cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-attemptWindow)
	for ip, attempts := range l.attempts {
		recent := attempts[:0]
		for _, at := range attempts {
			if at.After(cutoff) {
				recent = append(recent, at)
			}
		}
		if len(recent) == 0 {
			delete(l.attempts, ip)
		} else {
			l.attempts[ip] = recent
		}
	}
}
