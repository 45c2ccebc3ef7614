// Package command implements the prefixed-command pipeline: descriptor
// registry, role gating, cooldown throttling and handler execution.
package command

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Abudabih/FbAutomationv1/internal/config"
	"github.com/Abudabih/FbAutomationv1/internal/messenger"
)

// Tier is the authorization level required to invoke a command.
type Tier int

const (
	// TierAny allows every sender.
	TierAny Tier = iota
	// TierThreadAdmin requires an administrator of the originating thread
	// (bot admins and the creator also pass).
	TierThreadAdmin
	// TierBotAdmin requires membership in the session's admin set or
	// thread administration of the originating conversation.
	TierBotAdmin
	// TierCreator requires the configured creator identifier exactly.
	TierCreator
)

func (t Tier) String() string {
	switch t {
	case TierThreadAdmin:
		return "thread-admin"
	case TierBotAdmin:
		return "bot-admin"
	case TierCreator:
		return "creator"
	default:
		return "any"
	}
}

// SessionInfo is the per-session context a dispatch runs under.
type SessionInfo struct {
	Prefix    string
	Admins    []string
	StartedAt time.Time
}

// Invocation is the context handed to a command handler.
type Invocation struct {
	Client  messenger.Client
	Event   messenger.Event
	Args    []string
	Session SessionInfo
	Style   config.Style
}

// Handler executes one command invocation. A returned error (or panic) is
// contained by the dispatcher and never reaches the session event loop.
type Handler func(ctx context.Context, inv Invocation) error

// Command is an immutable descriptor. Reloading replaces the whole value.
type Command struct {
	Name        string
	Description string
	Cooldown    time.Duration
	Tier        Tier
	Run         Handler
}

// ErrInvalidCommand rejects descriptors missing a name or handler.
var ErrInvalidCommand = errors.New("command: descriptor needs a name and handler")

// Registry maps lower-cased command names to descriptors.
type Registry struct {
	mu   sync.RWMutex
	cmds map[string]Command
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{cmds: make(map[string]Command)}
}

// Register installs a descriptor, replacing any previous one of the same
// name.
func (r *Registry) Register(cmd Command) error {
	name := strings.ToLower(strings.TrimSpace(cmd.Name))
	if name == "" || cmd.Run == nil {
		return ErrInvalidCommand
	}
	cmd.Name = name

	r.mu.Lock()
	defer r.mu.Unlock()
	r.cmds[name] = cmd
	return nil
}

// Lookup resolves a command name case-insensitively.
func (r *Registry) Lookup(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.cmds[strings.ToLower(name)]
	return cmd, ok
}

// Len reports the number of registered commands.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cmds)
}

// Names returns all registered command names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.cmds))
	for name := range r.cmds {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
