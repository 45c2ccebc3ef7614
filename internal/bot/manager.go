// Package bot owns the account-session lifecycle: bootstrap, the registry
// of live sessions, the per-session event loop and fault handling.
package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Abudabih/FbAutomationv1/internal/command"
	"github.com/Abudabih/FbAutomationv1/internal/config"
	"github.com/Abudabih/FbAutomationv1/internal/credstore"
	"github.com/Abudabih/FbAutomationv1/internal/events"
	"github.com/Abudabih/FbAutomationv1/internal/messenger"
	"github.com/Abudabih/FbAutomationv1/internal/obs"
)

const (
	defaultErrorThreshold = 3
	defaultLoginStagger   = 5 * time.Second
	fallbackDisplayName   = "Bot"
)

// ErrNotFound reports a stop request for an account with no live session.
var ErrNotFound = errors.New("bot: account not found")

// LoginError wraps a rejected or failed login. It is surfaced to the
// bootstrap caller and never fatal to the process.
type LoginError struct {
	Cause error
}

func (e *LoginError) Error() string { return fmt.Sprintf("login failed: %v", e.Cause) }
func (e *LoginError) Unwrap() error { return e.Cause }

// Options wires a Manager.
type Options struct {
	Store      *credstore.Store
	Login      messenger.LoginFunc
	Dispatcher *command.Dispatcher
	Commands   *command.Registry
	Fanout     *events.Fanout
	Config     config.Config
	Style      config.Style

	// ErrorThreshold is the consecutive transient fault count that evicts
	// a session. Defaults to 3.
	ErrorThreshold int
	// LoginStagger spaces out logins during startup auto-load.
	// Defaults to 5s.
	LoginStagger time.Duration
}

// Manager bootstraps accounts and runs their event loops.
type Manager struct {
	registry   *Registry
	store      *credstore.Store
	login      messenger.LoginFunc
	dispatcher *command.Dispatcher
	commands   *command.Registry
	fanout     *events.Fanout
	cfg        config.Config
	style      config.Style
	threshold  int
	stagger    time.Duration
}

// NewManager validates options and returns a ready manager.
func NewManager(opts Options) (*Manager, error) {
	if opts.Store == nil || opts.Login == nil || opts.Dispatcher == nil || opts.Commands == nil || opts.Fanout == nil {
		return nil, errors.New("bot: store, login, dispatcher, commands and fanout are required")
	}
	m := &Manager{
		registry:   NewRegistry(),
		store:      opts.Store,
		login:      opts.Login,
		dispatcher: opts.Dispatcher,
		commands:   opts.Commands,
		fanout:     opts.Fanout,
		cfg:        opts.Config,
		style:      opts.Style,
		threshold:  opts.ErrorThreshold,
		stagger:    opts.LoginStagger,
	}
	if m.threshold <= 0 {
		m.threshold = defaultErrorThreshold
	}
	if m.stagger <= 0 {
		m.stagger = defaultLoginStagger
	}
	return m, nil
}

// Registry exposes the live session registry.
func (m *Manager) Registry() *Registry { return m.registry }

// Result reports the outcome of a bootstrap.
type Result struct {
	AccountID     string
	DisplayName   string
	AlreadyActive bool
}

// Bootstrap logs a credential in and starts its event loop. sourceName is
// the stored file the credential came from, or empty for a fresh
// submission; fresh submissions are staged under a placeholder name so a
// rejected credential is retained in quarantine rather than lost.
//
// No timeout is imposed on the login round trip; bound it through ctx.
func (m *Manager) Bootstrap(ctx context.Context, cred messenger.Credential, prefix string, admins []string, sourceName string) (Result, error) {
	staged := sourceName
	if staged == "" {
		staged = m.store.Placeholder()
		if err := m.store.Save(staged, cred); err != nil {
			return Result{}, fmt.Errorf("stage credential: %w", err)
		}
	}

	obs.Info("login attempt", "source", staged)
	client, err := m.login(ctx, cred)
	if err != nil {
		obs.LoginsTotal.WithLabelValues("failure").Inc()
		obs.Error("login failed", "source", staged, "error", err.Error())
		if qErr := m.quarantine(staged, fmt.Sprintf("Login failed: %v", err)); qErr != nil {
			obs.Error("quarantine failed", "name", staged, "error", qErr.Error())
		}
		return Result{}, &LoginError{Cause: err}
	}

	accountID := client.AccountID()

	if prefix == "" {
		prefix = m.cfg.Prefix
	}
	if len(admins) == 0 {
		admins = m.cfg.AdminIDs
	}

	// Resolve the display name before the session is published: once Add
	// succeeds, concurrent bootstraps may read the live session.
	name, err := client.UserInfo(ctx, accountID)
	if err != nil || name == "" {
		name = fallbackDisplayName
	}

	session := &Session{
		AccountID:      accountID,
		Client:         client,
		Prefix:         prefix,
		Admins:         append([]string(nil), admins...),
		StartedAt:      time.Now(),
		CredentialFile: accountID,
		DisplayName:    name,
	}

	live, inserted := m.registry.Add(session)
	if !inserted {
		// Duplicate login for an already running account: release the new
		// connection and report the existing session. persistAs parks a
		// staged placeholder in quarantine instead of leaking it.
		obs.Warn("duplicate login skipped", "account_id", accountID)
		_ = client.Logout(ctx)
		if err := m.persistAs(staged, accountID, cred); err != nil {
			obs.Error("persist credential failed", "account_id", accountID, "error", err.Error())
		}
		return Result{AccountID: live.AccountID, DisplayName: live.DisplayName, AlreadyActive: true}, nil
	}

	if err := m.persistAs(staged, accountID, cred); err != nil {
		obs.Error("persist credential failed", "account_id", accountID, "error", err.Error())
	}

	// Subscribe before returning so no early event can slip past the loop.
	loopCtx, cancel := context.WithCancel(context.Background())
	session.cancel = cancel
	session.markDelivered()
	deliveries := client.Subscribe(loopCtx)
	go m.runLoop(loopCtx, session, deliveries)

	obs.LoginsTotal.WithLabelValues("success").Inc()
	obs.Info("account started", "account_id", accountID, "name", name, "prefix", prefix)
	return Result{AccountID: accountID, DisplayName: name}, nil
}

// persistAs files the credential under its post-login identity. A staged
// placeholder is promoted; an already known file stays as is.
func (m *Manager) persistAs(staged, accountID string, cred messenger.Credential) error {
	if staged == accountID {
		return nil
	}
	if m.store.Exists(staged) {
		return m.store.Promote(staged, accountID)
	}
	if !m.store.Exists(accountID) {
		return m.store.Save(accountID, cred)
	}
	return nil
}

func (m *Manager) quarantine(name, reason string) error {
	if name == "" || !m.store.Exists(name) {
		return nil
	}
	if err := m.store.Quarantine(name, reason); err != nil {
		return err
	}
	obs.CredentialsQuarantinedTotal.Inc()
	obs.Warn("credential quarantined", "name", name, "reason", reason)
	return nil
}

// AutoLoad bootstraps every stored credential, spacing logins out by the
// configured stagger. Unusable files are quarantined with the cause.
func (m *Manager) AutoLoad(ctx context.Context) {
	creds, err := m.store.List()
	if err != nil {
		obs.Error("credential enumeration failed", "error", err.Error())
		return
	}
	if len(creds) == 0 {
		obs.Warn("no stored credentials found")
		return
	}
	obs.Info("auto-loading accounts", "count", len(creds))

	for i, cred := range creds {
		if i > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(m.stagger):
			}
		}

		if !validCredential(cred.Payload) {
			if err := m.quarantine(cred.Name, "Parse error: credential file is not a non-empty JSON array"); err != nil {
				obs.Error("quarantine failed", "name", cred.Name, "error", err.Error())
			}
			continue
		}

		if _, err := m.Bootstrap(ctx, messenger.Credential(cred.Payload), "", nil, cred.Name); err != nil {
			obs.Error("auto-load failed", "name", cred.Name, "error", err.Error())
		}
	}
}

// validCredential reports whether payload is the non-empty JSON array the
// transports accept as a cookie bundle.
func validCredential(payload []byte) bool {
	var entries []json.RawMessage
	if err := json.Unmarshal(payload, &entries); err != nil {
		return false
	}
	return len(entries) > 0
}

// Stop logs an account out and removes its session. Returns ErrNotFound
// when no live session exists for id.
func (m *Manager) Stop(ctx context.Context, id string) error {
	session := m.registry.Remove(id)
	if session == nil {
		return ErrNotFound
	}
	session.markStopped()
	if session.cancel != nil {
		session.cancel()
	}
	if err := session.Client.Logout(ctx); err != nil {
		obs.Warn("logout failed", "account_id", id, "error", err.Error())
	}
	obs.Info("account stopped", "account_id", id)
	return nil
}

// StopAll stops every live session; used during graceful shutdown.
func (m *Manager) StopAll(ctx context.Context) {
	for _, s := range m.registry.Snapshot() {
		if err := m.Stop(ctx, s.AccountID); err != nil && !errors.Is(err, ErrNotFound) {
			obs.Warn("stop failed", "account_id", s.AccountID, "error", err.Error())
		}
	}
}

// SessionStats is one row of the control-plane stats response.
type SessionStats struct {
	UID        string `json:"uid"`
	Uptime     int64  `json:"uptime"`
	Prefix     string `json:"prefix"`
	ErrorCount int    `json:"errorCount"`
}

// Stats snapshots the live sessions.
func (m *Manager) Stats() []SessionStats {
	sessions := m.registry.Snapshot()
	out := make([]SessionStats, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, SessionStats{
			UID:        s.AccountID,
			Uptime:     int64(time.Since(s.StartedAt).Seconds()),
			Prefix:     s.Prefix,
			ErrorCount: s.ErrorCount(),
		})
	}
	return out
}

// CommandCount reports the number of registered commands.
func (m *Manager) CommandCount() int { return m.commands.Len() }
