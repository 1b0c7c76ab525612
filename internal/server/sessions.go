package server

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/sells-group/choropleth/internal/choropleth"
)

// SessionStore holds per-page tooltip state. It is an LRU with TTL expiry; each
// session has its own lock so hover and unhover for one page never interleave.
type SessionStore struct {
	mu         sync.Mutex
	entries    map[string]*session
	order      []string // LRU order: front=oldest, back=newest
	maxEntries int
	ttl        time.Duration
	now        func() time.Time

	created atomic.Int64
	evicted atomic.Int64
	expired atomic.Int64

	onEvict func(reason string)
}

type session struct {
	mu        sync.Mutex
	tooltip   choropleth.Tooltip
	touchedAt time.Time
}

// SessionStats contains store statistics.
type SessionStats struct {
	Sessions    int   `json:"sessions"`
	MaxSessions int   `json:"max_sessions"`
	Created     int64 `json:"created"`
	Evicted     int64 `json:"evicted"`
	Expired     int64 `json:"expired"`
}

// NewSessionStore creates a store with the given capacity and idle TTL.
func NewSessionStore(maxEntries int, ttl time.Duration) *SessionStore {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	return &SessionStore{
		entries:    make(map[string]*session),
		maxEntries: maxEntries,
		ttl:        ttl,
		now:        time.Now,
	}
}

// Create starts a new session with a hidden tooltip and returns its id.
func (s *SessionStore) Create() string {
	id := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insert(id)
	return id
}

// Apply runs fn against the session's current tooltip under the session lock and
// stores the resulting tooltip. Unknown or expired ids start from a hidden tooltip.
func (s *SessionStore) Apply(id string, fn func(cur choropleth.Tooltip) choropleth.Transition) choropleth.Transition {
	sess := s.acquire(id)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	tr := fn(sess.tooltip)
	sess.tooltip = tr.Tooltip
	return tr
}

// Tooltip returns the current tooltip for id.
func (s *SessionStore) Tooltip(id string) (choropleth.Tooltip, bool) {
	s.mu.Lock()
	sess, ok := s.entries[id]
	s.mu.Unlock()
	if !ok {
		return choropleth.Tooltip{}, false
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.tooltip, true
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Stats returns store statistics.
func (s *SessionStore) Stats() SessionStats {
	s.mu.Lock()
	n := len(s.entries)
	s.mu.Unlock()
	return SessionStats{
		Sessions:    n,
		MaxSessions: s.maxEntries,
		Created:     s.created.Load(),
		Evicted:     s.evicted.Load(),
		Expired:     s.expired.Load(),
	}
}

// Sweep drops every expired session.
func (s *SessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var remaining []string
	dropped := 0
	for _, id := range s.order {
		if now.Sub(s.entries[id].touchedAt) > s.ttl {
			delete(s.entries, id)
			dropped++
			continue
		}
		remaining = append(remaining, id)
	}
	s.order = remaining
	s.expired.Add(int64(dropped))
	for range dropped {
		s.notify("expired")
	}
	return dropped
}

// acquire returns the live session for id, creating it if needed, and marks it
// most recently used.
func (s *SessionStore) acquire(id string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.entries[id]
	if ok && s.now().Sub(sess.touchedAt) > s.ttl {
		delete(s.entries, id)
		s.removeFromOrder(id)
		s.expired.Add(1)
		s.notify("expired")
		ok = false
	}
	if !ok {
		return s.insert(id)
	}

	sess.touchedAt = s.now()
	s.removeFromOrder(id)
	s.order = append(s.order, id)
	return sess
}

// insert adds a fresh session, evicting the least recently used if at capacity.
// Callers hold s.mu.
func (s *SessionStore) insert(id string) *session {
	for len(s.entries) >= s.maxEntries && len(s.order) > 0 {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.entries, oldest)
		s.evicted.Add(1)
		s.notify("capacity")
	}

	sess := &session{tooltip: choropleth.Tooltip{State: choropleth.Hidden}, touchedAt: s.now()}
	s.entries[id] = sess
	s.order = append(s.order, id)
	s.created.Add(1)
	return sess
}

func (s *SessionStore) notify(reason string) {
	if s.onEvict != nil {
		s.onEvict(reason)
	}
}

func (s *SessionStore) removeFromOrder(id string) {
	for i, k := range s.order {
		if k == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}

func validSession(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
