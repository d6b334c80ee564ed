package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(cfg Config) (*Limiter, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	l := NewLimiter(cfg)
	l.now = clock.now
	return l, clock
}

func TestCheckLimit_BurstThenDenied(t *testing.T) {
	l, _ := newTestLimiter(DefaultConfig())

	for i := 0; i < 15; i++ {
		assert.True(t, l.CheckLimit("u1"), "check %d should be allowed", i+1)
	}
	assert.False(t, l.CheckLimit("u1"), "16th immediate check must be denied")
}

func TestCheckLimit_RefillAfterWait(t *testing.T) {
	l, clock := newTestLimiter(DefaultConfig())

	for i := 0; i < 15; i++ {
		l.CheckLimit("u1")
	}
	assert.False(t, l.CheckLimit("u1"))

	// 200ms at 10 tokens/s buys exactly two more messages.
	clock.advance(200 * time.Millisecond)
	assert.True(t, l.CheckLimit("u1"))
	assert.True(t, l.CheckLimit("u1"))
	assert.False(t, l.CheckLimit("u1"))
}

func TestCheckLimit_CapAtBurst(t *testing.T) {
	l, clock := newTestLimiter(DefaultConfig())

	l.CheckLimit("u1")
	clock.advance(time.Hour)

	allowed := 0
	for i := 0; i < 20; i++ {
		if l.CheckLimit("u1") {
			allowed++
		}
	}
	assert.Equal(t, 15, allowed, "refill never exceeds burst capacity")
}

func TestCheckLimit_UsersAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(DefaultConfig())

	for i := 0; i < 15; i++ {
		l.CheckLimit("u1")
	}
	assert.False(t, l.CheckLimit("u1"))

	for i := 0; i < 15; i++ {
		assert.True(t, l.CheckLimit("u2"), "second user's bucket must be untouched")
	}
}

func TestReset(t *testing.T) {
	l, _ := newTestLimiter(DefaultConfig())

	for i := 0; i < 16; i++ {
		l.CheckLimit("u1")
	}
	assert.False(t, l.CheckLimit("u1"))

	l.Reset("u1")
	assert.True(t, l.CheckLimit("u1"), "after reset the bucket starts full")
}

func TestCleanup_DiscardsIdleBuckets(t *testing.T) {
	l, clock := newTestLimiter(DefaultConfig())

	l.CheckLimit("idle")
	clock.advance(6 * time.Minute)
	l.CheckLimit("busy")

	l.Cleanup()

	l.mu.Lock()
	_, idleKept := l.buckets["idle"]
	_, busyKept := l.buckets["busy"]
	l.mu.Unlock()

	assert.False(t, idleKept)
	assert.True(t, busyKept)
}

func newTestConnLimiter() (*ConnLimiter, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	l := NewConnLimiter()
	l.now = clock.now
	return l, clock
}

func TestCheckConnection_WindowLimit(t *testing.T) {
	l, clock := newTestConnLimiter()

	for i := 0; i < 5; i++ {
		assert.True(t, l.CheckConnection("10.0.0.1"), "attempt %d should be allowed", i+1)
	}
	assert.False(t, l.CheckConnection("10.0.0.1"))

	// Other addresses are unaffected.
	assert.True(t, l.CheckConnection("10.0.0.2"))

	// Once the window slides past the old attempts, new ones are admitted.
	clock.advance(61 * time.Second)
	assert.True(t, l.CheckConnection("10.0.0.1"))
}

func TestConnCleanup(t *testing.T) {
	l, clock := newTestConnLimiter()

	l.CheckConnection("10.0.0.1")
	clock.advance(2 * time.Minute)
	l.CheckConnection("10.0.0.2")

	l.Cleanup()

	l.mu.Lock()
	_, oldKept := l.attempts["10.0.0.1"]
	_, newKept := l.attempts["10.0.0.2"]
	l.mu.Unlock()

	assert.False(t, oldKept)
	assert.True(t, newKept)
}
