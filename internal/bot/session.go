package bot

import (
	"context"
	"sync"
	"time"

	"github.com/Abudabih/FbAutomationv1/internal/command"
	"github.com/Abudabih/FbAutomationv1/internal/messenger"
)

// State tracks a session through its lifecycle:
// Created -> Active <-> ErrorCounting -> Evicted | Stopped.
type State int

const (
	StateCreated State = iota
	StateActive
	StateErrorCounting
	StateEvicted
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateErrorCounting:
		return "error_counting"
	case StateEvicted:
		return "evicted"
	case StateStopped:
		return "stopped"
	default:
		return "created"
	}
}

// Session is one live account: its client handle, dispatch settings and
// fault-tracking state. The registry owns it; only the event loop mutates
// the counters.
type Session struct {
	AccountID      string
	Client         messenger.Client
	Prefix         string
	Admins         []string
	StartedAt      time.Time
	CredentialFile string
	DisplayName    string

	cancel context.CancelFunc

	mu         sync.Mutex
	errorCount int
	state      State
}

// Info snapshots the per-session dispatch context.
func (s *Session) Info() command.SessionInfo {
	return command.SessionInfo{
		Prefix:    s.Prefix,
		Admins:    s.Admins,
		StartedAt: s.StartedAt,
	}
}

// ErrorCount returns the consecutive transient fault count.
func (s *Session) ErrorCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errorCount
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// terminal reports whether the session may no longer process events.
func (s *Session) terminal() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateEvicted || s.state == StateStopped
}

// recordFault increments the transient counter and returns the new value.
func (s *Session) recordFault() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateEvicted || s.state == StateStopped {
		return s.errorCount
	}
	s.errorCount++
	s.state = StateErrorCounting
	return s.errorCount
}

// markDelivered resets the counter after any successfully processed event.
func (s *Session) markDelivered() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateEvicted || s.state == StateStopped {
		return
	}
	s.errorCount = 0
	s.state = StateActive
}

// markEvicted transitions into the terminal eviction state. Returns false
// if the session already reached a terminal state.
func (s *Session) markEvicted() bool {
	return s.markTerminal(StateEvicted)
}

// markStopped transitions into the terminal explicit-logout state.
func (s *Session) markStopped() bool {
	return s.markTerminal(StateStopped)
}

func (s *Session) markTerminal(to State) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateEvicted || s.state == StateStopped {
		return false
	}
	s.state = to
	return true
}
