package storage

import (
	"sync"
	"time"
)

// Closer is anything the store can tear down on eviction.
type Closer interface {
	Close()
}

type sessionEntry[S Closer] struct {
	session  S
	lastSeen time.Time
}

// SessionStore provides in-memory storage for live sessions by key.
type SessionStore[S Closer] struct {
	mu       sync.RWMutex
	sessions map[string]*sessionEntry[S]
	now      func() time.Time
}

// NewSessionStore creates a new SessionStore.
func NewSessionStore[S Closer]() *SessionStore[S] {
	return &SessionStore[S]{
		sessions: make(map[string]*sessionEntry[S]),
		now:      time.Now,
	}
}

// GetOrCreate returns the session stored under key, creating it with create when absent.
// The bool result is true when a new session was created.
func (s *SessionStore[S]) GetOrCreate(key string, create func() S) (S, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.sessions[key]; ok {
		e.lastSeen = s.now()
		return e.session, false
	}

	sess := create()
	s.sessions[key] = &sessionEntry[S]{session: sess, lastSeen: s.now()}
	return sess, true
}

// Get retrieves the session for key and refreshes its last access time.
func (s *SessionStore[S]) Get(key string) (S, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[key]
	if !ok {
		var zero S
		return zero, false
	}
	e.lastSeen = s.now()
	return e.session, true
}

// Delete closes and removes the session for key.
func (s *SessionStore[S]) Delete(key string) {
	s.mu.Lock()
	e, ok := s.sessions[key]
	delete(s.sessions, key)
	s.mu.Unlock()

	if ok {
		e.session.Close()
	}
}

// Len returns the number of live sessions.
func (s *SessionStore[S]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep closes and removes sessions idle for longer than ttl. It returns the evicted keys.
func (s *SessionStore[S]) Sweep(ttl time.Duration) []string {
	if ttl <= 0 {
		return nil
	}

	cutoff := s.now().Add(-ttl)

	s.mu.Lock()
	var expired []*sessionEntry[S]
	var keys []string
	for key, e := range s.sessions {
		if e.lastSeen.Before(cutoff) {
			expired = append(expired, e)
			keys = append(keys, key)
			delete(s.sessions, key)
		}
	}
	s.mu.Unlock()

	for _, e := range expired {
		e.session.Close()
	}
	return keys
}

// CloseAll closes and removes every session.
func (s *SessionStore[S]) CloseAll() {
	s.mu.Lock()
	all := s.sessions
	s.sessions = make(map[string]*sessionEntry[S])
	s.mu.Unlock()

	for _, e := range all {
		e.session.Close()
	}
}
