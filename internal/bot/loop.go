package bot

import (
	"context"
	"fmt"

	"github.com/Abudabih/FbAutomationv1/internal/events"
	"github.com/Abudabih/FbAutomationv1/internal/messenger"
	"github.com/Abudabih/FbAutomationv1/internal/obs"
)

// runLoop processes one session's stream strictly in receipt order. It
// returns when the subscription closes or the session reaches a terminal
// state.
func (m *Manager) runLoop(ctx context.Context, s *Session, deliveries <-chan messenger.Delivery) {
	obs.Info("listener started", "account_id", s.AccountID)

	for d := range deliveries {
		if s.terminal() {
			return
		}
		if d.Err != nil {
			if m.handleStreamError(s, d.Err) {
				return
			}
			continue
		}
		m.handleEvent(ctx, s, d.Event)
	}
	obs.Info("listener closed", "account_id", s.AccountID)
}

// handleStreamError classifies a delivered error and reports whether the
// session terminated.
func (m *Manager) handleStreamError(s *Session, err error) bool {
	severity := Classify(err)
	obs.SessionErrorsTotal.WithLabelValues(severity.String()).Inc()

	if severity == Critical {
		obs.Error("critical stream error", "account_id", s.AccountID, "error", err.Error())
		m.evict(s, fmt.Sprintf("Critical error: %v", err))
		return true
	}

	count := s.recordFault()
	if count >= m.threshold {
		obs.Error("error threshold reached", "account_id", s.AccountID, "count", count)
		m.evict(s, fmt.Sprintf("Too many errors: %v", err))
		return true
	}
	obs.Warn("stream error", "account_id", s.AccountID, "count", count, "error", err.Error())
	return false
}

// evict quarantines the session's credential, removes it from the
// registry and stops its subscription. Terminal.
func (m *Manager) evict(s *Session, reason string) {
	if !s.markEvicted() {
		return
	}
	if err := m.quarantine(s.CredentialFile, reason); err != nil {
		obs.Error("quarantine failed", "name", s.CredentialFile, "error", err.Error())
	}
	m.registry.Remove(s.AccountID)
	if s.cancel != nil {
		s.cancel()
	}
	obs.SessionsEvictedTotal.Inc()
	obs.Warn("session evicted", "account_id", s.AccountID, "reason", reason)
}

// handleEvent resets the fault counter, routes messages into the command
// pipeline and fans the raw event out to every registered module.
func (m *Manager) handleEvent(ctx context.Context, s *Session, ev messenger.Event) {
	s.markDelivered()
	obs.EventsTotal.WithLabelValues(string(ev.Type)).Inc()

	if ev.Type == messenger.EventMessage {
		m.dispatcher.Dispatch(ctx, s.Client, ev, s.Info())
	}

	m.fanout.Deliver(ctx, events.Ctx{
		Client: s.Client,
		Event:  ev,
		Config: m.cfg,
		Style:  m.style,
	})
}
