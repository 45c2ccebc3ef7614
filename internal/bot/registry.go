package bot

import (
	"sort"
	"sync"

	"github.com/Abudabih/FbAutomationv1/internal/obs"
)

// Registry is the process-wide accountID -> Session map. Insert and remove
// are atomic so the single-active-session invariant holds under concurrent
// bootstraps.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Add inserts s if no session exists for its account. It returns the
// session that is live after the call and whether s was inserted.
func (r *Registry) Add(s *Session) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.sessions[s.AccountID]; ok {
		return existing, false
	}
	r.sessions[s.AccountID] = s
	obs.ActiveSessions.Set(float64(len(r.sessions)))
	return s, true
}

// Remove drops the session for id, returning it, or nil when absent.
func (r *Registry) Remove(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil
	}
	delete(r.sessions, id)
	obs.ActiveSessions.Set(float64(len(r.sessions)))
	return s
}

// Get looks up the live session for id.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Snapshot returns the live sessions ordered by account ID.
func (r *Registry) Snapshot() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AccountID < out[j].AccountID })
	return out
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
