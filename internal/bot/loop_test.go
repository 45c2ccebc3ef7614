package bot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abudabih/FbAutomationv1/internal/messenger"
)

const eventually = 2 * time.Second

func bootstrapOne(t *testing.T, env *testEnv, client *messenger.InMemory) *Session {
	t.Helper()
	res, err := env.mgr.Bootstrap(context.Background(), messenger.Credential(`[{"k":"v"}]`), "", nil, "")
	require.NoError(t, err)
	s, ok := env.mgr.Registry().Get(res.AccountID)
	require.True(t, ok)
	return s
}

func TestCriticalStreamErrorEvictsAndQuarantines(t *testing.T) {
	t.Parallel()
	client := messenger.NewInMemory("acct-1")
	env := newTestEnv(t, staticLogin(client))
	bootstrapOne(t, env, client)

	client.Fail(errors.New("Session expired"))

	require.Eventually(t, func() bool {
		_, ok := env.mgr.Registry().Get("acct-1")
		return !ok
	}, eventually, 10*time.Millisecond, "session must leave the registry")

	require.Eventually(t, func() bool {
		return !env.store.Exists("acct-1")
	}, eventually, 10*time.Millisecond, "credential must move to quarantine")

	names := env.quarantined(t)
	require.Len(t, names, 2)

	// Reason record carries the error text.
	found := false
	for _, n := range names {
		if len(n) > 4 && n[len(n)-4:] == ".log" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestThreeTransientErrorsEvict(t *testing.T) {
	t.Parallel()
	client := messenger.NewInMemory("acct-2")
	env := newTestEnv(t, staticLogin(client))
	s := bootstrapOne(t, env, client)

	client.Fail(errors.New("read timeout"))
	client.Fail(errors.New("read timeout"))

	require.Eventually(t, func() bool {
		return s.ErrorCount() == 2
	}, eventually, 10*time.Millisecond)
	_, ok := env.mgr.Registry().Get("acct-2")
	assert.True(t, ok, "two transient errors keep the session alive")

	client.Fail(errors.New("read timeout"))

	require.Eventually(t, func() bool {
		_, ok := env.mgr.Registry().Get("acct-2")
		return !ok
	}, eventually, 10*time.Millisecond, "third transient error evicts")
	assert.Equal(t, StateEvicted, s.State())
}

func TestSuccessfulEventResetsErrorCounter(t *testing.T) {
	t.Parallel()
	client := messenger.NewInMemory("acct-3")
	env := newTestEnv(t, staticLogin(client))
	s := bootstrapOne(t, env, client)

	client.Fail(errors.New("hiccup"))
	client.Fail(errors.New("hiccup"))
	require.Eventually(t, func() bool {
		return s.ErrorCount() == 2
	}, eventually, 10*time.Millisecond)

	client.Deliver(messenger.Event{Type: messenger.EventOther})
	require.Eventually(t, func() bool {
		return s.ErrorCount() == 0
	}, eventually, 10*time.Millisecond)
	assert.Equal(t, StateActive, s.State())

	// Two more transients still do not reach the threshold.
	client.Fail(errors.New("hiccup"))
	client.Fail(errors.New("hiccup"))
	require.Eventually(t, func() bool {
		return s.ErrorCount() == 2
	}, eventually, 10*time.Millisecond)
	_, ok := env.mgr.Registry().Get("acct-3")
	assert.True(t, ok)
}

func TestMessageEventReachesDispatcher(t *testing.T) {
	t.Parallel()
	client := messenger.NewInMemory("acct-4")
	env := newTestEnv(t, staticLogin(client))
	bootstrapOne(t, env, client)

	client.Deliver(messenger.Event{
		Type:      messenger.EventMessage,
		SenderID:  "user-1",
		ThreadID:  "thread-1",
		Body:      "!ping",
		MessageID: "mid-1",
	})

	require.Eventually(t, func() bool {
		return len(client.SentMessages()) == 1
	}, eventually, 10*time.Millisecond)
	assert.Contains(t, client.SentMessages()[0].Body, "Pong")
}

func TestCommandFaultNeverEvictsSession(t *testing.T) {
	t.Parallel()
	client := messenger.NewInMemory("acct-5")
	env := newTestEnv(t, staticLogin(client))
	s := bootstrapOne(t, env, client)

	// Unknown command exercises the reply path; a handler fault is
	// covered by the dispatcher tests. Neither may touch session state.
	client.Deliver(messenger.Event{
		Type:     messenger.EventMessage,
		SenderID: "user-1",
		ThreadID: "thread-1",
		Body:     "!doesnotexist",
	})

	require.Eventually(t, func() bool {
		return len(client.SentMessages()) == 1
	}, eventually, 10*time.Millisecond)
	assert.Equal(t, 0, s.ErrorCount())
	_, ok := env.mgr.Registry().Get("acct-5")
	assert.True(t, ok)
}

func TestStopPreventsFurtherDispatch(t *testing.T) {
	t.Parallel()
	client := messenger.NewInMemory("acct-6")
	env := newTestEnv(t, staticLogin(client))
	bootstrapOne(t, env, client)

	require.NoError(t, env.mgr.Stop(context.Background(), "acct-6"))

	// The subscription is torn down; a late event cannot produce a reply.
	client.Deliver(messenger.Event{
		Type:     messenger.EventMessage,
		SenderID: "user-1",
		ThreadID: "thread-1",
		Body:     "!ping",
	})

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, client.SentMessages())
}
