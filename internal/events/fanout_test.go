package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abudabih/FbAutomationv1/internal/config"
	"github.com/Abudabih/FbAutomationv1/internal/messenger"
)

type recordingModule struct {
	calls int
	err   error
}

func (m *recordingModule) OnEvent(ctx context.Context, ec Ctx) error {
	m.calls++
	return m.err
}

func TestDeliverSupportsBothModuleShapes(t *testing.T) {
	t.Parallel()
	f := NewFanout()

	funcCalls := 0
	require.NoError(t, f.Register("fn", Func(func(ctx context.Context, ec Ctx) error {
		funcCalls++
		return nil
	})))

	obj := &recordingModule{}
	require.NoError(t, f.Register("obj", obj))

	f.Deliver(context.Background(), Ctx{Event: messenger.Event{Type: messenger.EventOther}})

	assert.Equal(t, 1, funcCalls)
	assert.Equal(t, 1, obj.calls)
	assert.Equal(t, 2, f.Len())
}

func TestRegisterRejectsUnknownShapes(t *testing.T) {
	t.Parallel()
	f := NewFanout()
	err := f.Register("bogus", 42)
	require.Error(t, err)
}

func TestFaultyModuleDoesNotBlockSiblings(t *testing.T) {
	t.Parallel()
	f := NewFanout()

	require.NoError(t, f.Register("panicky", Func(func(ctx context.Context, ec Ctx) error {
		panic("module blew up")
	})))
	require.NoError(t, f.Register("failing", &recordingModule{err: errors.New("nope")}))

	last := &recordingModule{}
	require.NoError(t, f.Register("healthy", last))

	f.Deliver(context.Background(), Ctx{Event: messenger.Event{Type: messenger.EventMessage}})

	assert.Equal(t, 1, last.calls, "modules after a fault still run")
}

func TestIntroductionGreetsWhenBotIsAdded(t *testing.T) {
	t.Parallel()
	client := messenger.NewInMemory("bot-9")
	client.SetName("adder-1", "Alice")

	ec := Ctx{
		Client: client,
		Event: messenger.Event{
			Type:     messenger.EventParticipantChange,
			ThreadID: "thread-7",
			ActorID:  "adder-1",
			Added:    []messenger.Participant{{ID: "someone"}, {ID: "bot-9"}},
		},
		Config: config.Config{Prefix: "!"},
		Style:  config.Style{Top: "=== top ===", Bottom: "=== bottom ==="},
	}

	require.NoError(t, Introduction{}.OnEvent(context.Background(), ec))

	sent := client.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, "thread-7", sent[0].ThreadID)
	assert.Contains(t, sent[0].Body, "Alice")
	assert.Contains(t, sent[0].Body, "!help")
	assert.Contains(t, sent[0].Body, "=== top ===")
}

func TestIntroductionIgnoresOtherAdds(t *testing.T) {
	t.Parallel()
	client := messenger.NewInMemory("bot-9")

	ec := Ctx{
		Client: client,
		Event: messenger.Event{
			Type:     messenger.EventParticipantChange,
			ThreadID: "thread-7",
			Added:    []messenger.Participant{{ID: "someone-else"}},
		},
	}
	require.NoError(t, Introduction{}.OnEvent(context.Background(), ec))
	assert.Empty(t, client.SentMessages())
}

func TestIntroductionFallsBackWhenLookupFails(t *testing.T) {
	t.Parallel()
	client := messenger.NewInMemory("bot-9")
	client.UserInfoErr = errors.New("profile unavailable")

	ec := Ctx{
		Client: client,
		Event: messenger.Event{
			Type:     messenger.EventParticipantChange,
			ThreadID: "thread-7",
			ActorID:  "adder-1",
			Added:    []messenger.Participant{{ID: "bot-9"}},
		},
	}
	require.NoError(t, Introduction{}.OnEvent(context.Background(), ec))

	sent := client.SentMessages()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].Body, "Unknown User")
}
