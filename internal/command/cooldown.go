package command

import (
	"sync"
	"time"
)

type cooldownKey struct {
	command string
	user    string
}

// Verdict is the outcome of a cooldown check.
type Verdict struct {
	Allowed bool
	// Wait is the whole seconds remaining until the command unlocks,
	// rounded up. Zero when Allowed.
	Wait int
}

// Cooldowns throttles command invocations per (command, user) pair. The
// namespace is shared across every session: a user on cooldown for a
// command is on cooldown for it on all accounts.
type Cooldowns struct {
	mu   sync.Mutex
	last map[cooldownKey]time.Time
	now  func() time.Time
}

// NewCooldowns returns an empty throttle table.
func NewCooldowns() *Cooldowns {
	return &Cooldowns{
		last: make(map[cooldownKey]time.Time),
		now:  time.Now,
	}
}

// Check either records an invocation at now and allows it, or reports how
// long the caller must wait. A zero duration always allows and leaves no
// record behind.
func (c *Cooldowns) Check(command, user string, d time.Duration) Verdict {
	if d <= 0 {
		return Verdict{Allowed: true}
	}

	key := cooldownKey{command: command, user: user}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if last, ok := c.last[key]; ok {
		expiry := last.Add(d)
		if now.Before(expiry) {
			remaining := expiry.Sub(now)
			return Verdict{Wait: int((remaining + time.Second - 1) / time.Second)}
		}
	}

	c.last[key] = now
	time.AfterFunc(d, func() { c.expire(key, now) })
	return Verdict{Allowed: true}
}

// expire drops the record only if it still belongs to the invocation that
// scheduled it; a newer record stays untouched.
func (c *Cooldowns) expire(key cooldownKey, recorded time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if last, ok := c.last[key]; ok && last.Equal(recorded) {
		delete(c.last, key)
	}
}

func (c *Cooldowns) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.last)
}
