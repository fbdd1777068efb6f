package server

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"codeberg.org/snonux/vocabquiz/internal/session"
)

// Registry maps session ids to quiz sessions
type Registry struct {
	newSession func() *session.Session
	ttl        time.Duration
	now        func() time.Time

	mu       sync.Mutex
	sessions map[uuid.UUID]*entry
}

type entry struct {
	sess     *session.Session
	lastSeen time.Time
}

// NewRegistry creates a registry that starts sessions with newSession.
// Sessions idle for longer than ttl are removed by Sweep; ttl <= 0 keeps
// them forever.
func NewRegistry(newSession func() *session.Session, ttl time.Duration) *Registry {
	return &Registry{
		newSession: newSession,
		ttl:        ttl,
		now:        time.Now,
		sessions:   make(map[uuid.UUID]*entry),
	}
}

// Get returns the session with id and marks it as used
func (r *Registry) Get(id uuid.UUID) (*session.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	e.lastSeen = r.now()
	return e.sess, true
}

// Create starts a new session under a random id
func (r *Registry) Create() (uuid.UUID, *session.Session) {
	sess := r.newSession()
	id := uuid.New()

	r.mu.Lock()
	r.sessions[id] = &entry{sess: sess, lastSeen: r.now()}
	r.mu.Unlock()
	return id, sess
}

// Len returns the number of live sessions
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep removes idle sessions and returns how many were removed
func (r *Registry) Sweep() int {
	if r.ttl <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.ttl)
	removed := 0
	for id, e := range r.sessions {
		if e.lastSeen.Before(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}
