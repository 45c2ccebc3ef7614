package bot

import (
	"errors"
	"strings"

	"github.com/Abudabih/FbAutomationv1/internal/messenger"
)

// Severity classifies a session stream error.
type Severity int

const (
	// Transient errors are counted; the session survives until the
	// threshold is reached.
	Transient Severity = iota
	// Critical errors evict the session immediately.
	Critical
)

func (s Severity) String() string {
	if s == Critical {
		return "critical"
	}
	return "transient"
}

// criticalCodes maps structured transport codes to immediate eviction.
var criticalCodes = map[messenger.ErrorCode]bool{
	messenger.CodeNotLoggedIn:       true,
	messenger.CodeSessionExpired:    true,
	messenger.CodeConnectionRefused: true,
	messenger.CodeCheckpoint:        true,
	messenger.CodeRateLimited:       true,
}

// criticalFragments is the compatibility fallback for transports that only
// surface free-text errors. The policy lives here as data.
var criticalFragments = []string{
	"Not logged in.",
	"Connection refused",
	"Please try again later",
	"checkpoint",
	"Checkpoint",
	"Session expired",
}

// Classify prefers the transport's structured code and falls back to
// fragment matching on the error text.
func Classify(err error) Severity {
	if err == nil {
		return Transient
	}

	var merr *messenger.Error
	if errors.As(err, &merr) && merr.Code != messenger.CodeUnknown {
		if criticalCodes[merr.Code] {
			return Critical
		}
		return Transient
	}

	msg := err.Error()
	for _, fragment := range criticalFragments {
		if strings.Contains(msg, fragment) {
			return Critical
		}
	}
	return Transient
}
