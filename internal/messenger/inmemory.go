package messenger

import (
	"context"
	"errors"
	"sync"
)

// Sent records one outbound message posted through an InMemory client.
type Sent struct {
	Body     string
	ThreadID string
	ReplyTo  string
}

// InMemory implements Client without any network. It backs the package
// tests and the local demo transport.
type InMemory struct {
	mu        sync.Mutex
	accountID string
	names     map[string]string
	admins    map[string][]string
	sent      []Sent
	subs      map[int]chan Delivery
	next      int
	loggedOut bool

	// UserInfoErr and ThreadAdminsErr, when set, are returned by the
	// corresponding lookups to exercise failure paths.
	UserInfoErr     error
	ThreadAdminsErr error
}

var _ Client = (*InMemory)(nil)

// NewInMemory creates a logged-in fake client for accountID.
func NewInMemory(accountID string) *InMemory {
	return &InMemory{
		accountID: accountID,
		names:     make(map[string]string),
		admins:    make(map[string][]string),
		subs:      make(map[int]chan Delivery),
	}
}

func (c *InMemory) AccountID() string { return c.accountID }

// Subscribe registers a stream consumer. The channel closes when ctx ends
// or the client logs out.
func (c *InMemory) Subscribe(ctx context.Context) <-chan Delivery {
	ch := make(chan Delivery, 64)

	c.mu.Lock()
	if c.loggedOut {
		c.mu.Unlock()
		close(ch)
		return ch
	}
	id := c.next
	c.next++
	c.subs[id] = ch
	c.mu.Unlock()

	go func() {
		<-ctx.Done()
		c.mu.Lock()
		if sub, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(sub)
		}
		c.mu.Unlock()
	}()

	return ch
}

// Deliver pushes an event to every subscriber.
func (c *InMemory) Deliver(ev Event) {
	c.push(Delivery{Event: ev})
}

// Fail pushes a stream error to every subscriber.
func (c *InMemory) Fail(err error) {
	c.push(Delivery{Err: err})
}

func (c *InMemory) push(d Delivery) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ch := range c.subs {
		ch <- d
	}
}

func (c *InMemory) Send(ctx context.Context, body, threadID, replyTo string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loggedOut {
		return errors.New("messenger: client logged out")
	}
	c.sent = append(c.sent, Sent{Body: body, ThreadID: threadID, ReplyTo: replyTo})
	return nil
}

// SentMessages returns a copy of all recorded outbound messages.
func (c *InMemory) SentMessages() []Sent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Sent, len(c.sent))
	copy(out, c.sent)
	return out
}

// SetName seeds the display-name lookup table.
func (c *InMemory) SetName(id, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.names[id] = name
}

func (c *InMemory) UserInfo(ctx context.Context, id string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.UserInfoErr != nil {
		return "", c.UserInfoErr
	}
	name, ok := c.names[id]
	if !ok {
		return "", errors.New("messenger: unknown user")
	}
	return name, nil
}

// SetThreadAdmins seeds the thread-administrator lookup table.
func (c *InMemory) SetThreadAdmins(threadID string, ids []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.admins[threadID] = append([]string(nil), ids...)
}

func (c *InMemory) ThreadAdmins(ctx context.Context, threadID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ThreadAdminsErr != nil {
		return nil, c.ThreadAdminsErr
	}
	return append([]string(nil), c.admins[threadID]...), nil
}

// Logout closes every open subscription and rejects further sends.
func (c *InMemory) Logout(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loggedOut {
		return nil
	}
	c.loggedOut = true
	for id, ch := range c.subs {
		delete(c.subs, id)
		close(ch)
	}
	return nil
}

// LoggedOut reports whether Logout has been called.
func (c *InMemory) LoggedOut() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loggedOut
}
