package response

import (
	"sync"
	"time"
)

// DefaultCooldown is negative so that handlers without a rate limit always
// pass, even when two requests land in the same instant.
const DefaultCooldown = -20 * 24 * time.Hour

// Timer gates a handler behind a cooldown. The zero lastUse is the earliest
// representable instant, so a fresh timer always passes its first check.
type Timer struct {
	mu       sync.Mutex
	cooldown time.Duration
	lastUse  time.Time
}

// NewTimer returns a timer with the given cooldown.
func NewTimer(cooldown time.Duration) *Timer {
	return &Timer{cooldown: cooldown}
}

// Check passes once the cooldown has elapsed since the last successful check,
// and records now as the new last use when it does.
func (t *Timer) Check(now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if now.Add(-t.cooldown).Before(t.lastUse) {
		return false
	}
	t.lastUse = now
	return true
}

// Remaining is the whole number of seconds left before Check will pass.
func (t *Timer) Remaining(now time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return int(t.lastUse.Add(t.cooldown).Sub(now) / time.Second)
}

// Cooldown returns the configured cooldown.
func (t *Timer) Cooldown() time.Duration {
	return t.cooldown
}

// LastUse returns the instant of the last successful check.
func (t *Timer) LastUse() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastUse
}
