package bot

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Abudabih/FbAutomationv1/internal/messenger"
)

func TestClassifyFragments(t *testing.T) {
	t.Parallel()
	cases := []struct {
		msg  string
		want Severity
	}{
		{"Not logged in.", Critical},
		{"Connection refused", Critical},
		{"Please try again later", Critical},
		{"checkpoint required", Critical},
		{"Checkpoint required", Critical},
		{"Session expired", Critical},
		{"error retrieving userID", Transient},
		{"read tcp: connection reset by peer", Transient},
		{"", Transient},
	}
	for _, tc := range cases {
		t.Run(tc.msg, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(errors.New(tc.msg)))
		})
	}
}

func TestClassifyPrefersStructuredCodes(t *testing.T) {
	t.Parallel()

	crit := &messenger.Error{Code: messenger.CodeSessionExpired, Message: "harmless looking text"}
	assert.Equal(t, Critical, Classify(crit))

	soft := &messenger.Error{Code: messenger.CodeUnknown, Message: "Session expired"}
	assert.Equal(t, Critical, Classify(soft), "unknown code falls back to fragment matching")

	wrapped := fmt.Errorf("stream: %w", &messenger.Error{Code: messenger.CodeCheckpoint})
	assert.Equal(t, Critical, Classify(wrapped))

	assert.Equal(t, Transient, Classify(nil))
}
