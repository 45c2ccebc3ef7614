package command

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCooldowns(start time.Time) (*Cooldowns, *time.Time) {
	now := start
	c := NewCooldowns()
	c.now = func() time.Time { return now }
	return c, &now
}

func TestCooldownPingScenario(t *testing.T) {
	t.Parallel()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c, now := newTestCooldowns(base)
	d := 5000 * time.Millisecond

	// t=0: first use allowed.
	v := c.Check("ping", "user-u", d)
	require.True(t, v.Allowed)

	// t=2000: same user throttled, 3s remaining (ceil of 3000ms).
	*now = base.Add(2000 * time.Millisecond)
	v = c.Check("ping", "user-u", d)
	require.False(t, v.Allowed)
	assert.Equal(t, 3, v.Wait)

	// t=2000: a different user is unaffected.
	v = c.Check("ping", "user-v", d)
	assert.True(t, v.Allowed)

	// t=5000: cooldown elapsed, allowed again.
	*now = base.Add(5000 * time.Millisecond)
	v = c.Check("ping", "user-u", d)
	assert.True(t, v.Allowed)
}

func TestCooldownWaitRoundsUp(t *testing.T) {
	t.Parallel()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c, now := newTestCooldowns(base)

	require.True(t, c.Check("roll", "u", 10*time.Second).Allowed)

	// 1ms remaining still reports a full second.
	*now = base.Add(10*time.Second - time.Millisecond)
	v := c.Check("roll", "u", 10*time.Second)
	require.False(t, v.Allowed)
	assert.Equal(t, 1, v.Wait)
	assert.GreaterOrEqual(t, v.Wait, 1, "a throttled verdict never reports zero seconds")
}

func TestZeroCooldownLeavesNoRecord(t *testing.T) {
	t.Parallel()
	c := NewCooldowns()

	for range 3 {
		v := c.Check("help", "u", 0)
		require.True(t, v.Allowed)
	}
	assert.Equal(t, 0, c.size())
}

// The cooldown namespace is shared across all account sessions: a user on
// cooldown through one bot is on cooldown through every bot. Observed
// behaviour of the system, preserved deliberately.
func TestCooldownNamespaceIsGlobalAcrossSessions(t *testing.T) {
	t.Parallel()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c, now := newTestCooldowns(base)

	// "Session A" records the use; "session B" shares the same table.
	require.True(t, c.Check("ping", "user-u", 5*time.Second).Allowed)
	*now = base.Add(time.Second)
	v := c.Check("ping", "user-u", 5*time.Second)
	require.False(t, v.Allowed, "second account must see the first account's cooldown")
	assert.Equal(t, 4, v.Wait)
}

func TestExpiryDropsOnlyOwnRecord(t *testing.T) {
	t.Parallel()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c, now := newTestCooldowns(base)
	key := cooldownKey{command: "ping", user: "u"}

	require.True(t, c.Check("ping", "u", 5*time.Second).Allowed)
	first := base

	// A later re-record must survive the first invocation's expiry.
	*now = base.Add(6 * time.Second)
	require.True(t, c.Check("ping", "u", 5*time.Second).Allowed)

	c.expire(key, first)
	assert.Equal(t, 1, c.size(), "stale expiry must not drop the newer record")

	c.expire(key, base.Add(6*time.Second))
	assert.Equal(t, 0, c.size())
}
