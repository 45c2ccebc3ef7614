// Package messenger defines the narrow contract this service requires from
// the underlying chat-network client. Real transports register themselves
// via RegisterTransport, the same way database/sql drivers do; the rest of
// the codebase only sees the Client interface.
package messenger

import (
	"context"
	"errors"
	"sync"
)

// Credential is the opaque token bundle accepted by a transport's login.
// Its identity is unknown until login succeeds.
type Credential []byte

// Client is a logged-in handle onto one account.
type Client interface {
	// AccountID returns the stable identifier of the logged-in account.
	AccountID() string
	// Subscribe opens the event stream. Deliveries arrive in receipt order
	// and the channel closes when ctx ends or the stream terminates.
	Subscribe(ctx context.Context) <-chan Delivery
	// Send posts body into threadID, optionally replying to replyTo.
	Send(ctx context.Context, body, threadID, replyTo string) error
	// UserInfo resolves a display name for an account identifier.
	UserInfo(ctx context.Context, id string) (string, error)
	// ThreadAdmins lists the administrator identifiers of a conversation.
	ThreadAdmins(ctx context.Context, threadID string) ([]string, error)
	// Logout invalidates the handle and tears down its stream.
	Logout(ctx context.Context) error
}

// LoginFunc authenticates a credential and returns a live client.
// No timeout is imposed here; callers bound the call through ctx.
type LoginFunc func(ctx context.Context, cred Credential) (Client, error)

// ErrNoTransport is returned by Login when no transport has registered.
var ErrNoTransport = errors.New("messenger: no transport registered")

var (
	transportMu sync.RWMutex
	transport   LoginFunc
)

// RegisterTransport installs the process-wide login implementation.
// Typically called from a transport package's init via blank import.
func RegisterTransport(fn LoginFunc) {
	transportMu.Lock()
	defer transportMu.Unlock()
	transport = fn
}

// Login authenticates through the registered transport.
func Login(ctx context.Context, cred Credential) (Client, error) {
	transportMu.RLock()
	fn := transport
	transportMu.RUnlock()
	if fn == nil {
		return nil, ErrNoTransport
	}
	return fn(ctx, cred)
}
