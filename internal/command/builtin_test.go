package command

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abudabih/FbAutomationv1/internal/config"
	"github.com/Abudabih/FbAutomationv1/internal/messenger"
)

func TestHelpListsCommandsWithFraming(t *testing.T) {
	t.Parallel()
	reg := NewRegistry()
	RegisterBuiltins(reg)
	d := NewDispatcher(reg, NewCooldowns(), "", config.Style{Top: "===", Bottom: "---"})
	client := messenger.NewInMemory("bot-1")

	d.Dispatch(context.Background(), client, msg("u1", "!help"), SessionInfo{Prefix: "!"})

	sent := client.SentMessages()
	require.Len(t, sent, 1)
	body := sent[0].Body

	assert.True(t, strings.HasPrefix(body, "===\n"))
	assert.True(t, strings.HasSuffix(body, "---"))
	for _, name := range reg.Names() {
		assert.Contains(t, body, "!"+name+" - ")
	}
	// Listing stays plain ASCII.
	for _, r := range body {
		if r > 127 {
			t.Fatalf("help body contains non-ASCII rune %q", r)
		}
	}
}
