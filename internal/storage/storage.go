package storage

import (
	"sync"
	"time"

	"github.com/lehigh-university-libraries/askimage/internal/wizard"
)

// SessionStore keeps wizard sessions in memory. Nothing is persisted.
type SessionStore struct {
	sessions map[string]*wizard.Session
	mu       sync.RWMutex
}

func New() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*wizard.Session),
	}
}

func (s *SessionStore) Get(sessionID string) (*wizard.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, exists := s.sessions[sessionID]
	return session, exists
}

// GetOrCreate returns the session for sessionID, creating a fresh one (with a new
// id) when it is unknown. created reports whether a new session was made.
func (s *SessionStore) GetOrCreate(sessionID string) (session *wizard.Session, created bool) {
	if sessionID != "" {
		if session, ok := s.Get(sessionID); ok {
			return session, false
		}
	}

	session = wizard.NewSession()
	s.Set(session.ID, session)
	return session, true
}

func (s *SessionStore) Set(sessionID string, session *wizard.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = session
}

func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Prune removes sessions idle for longer than ttl and returns how many were removed.
func (s *SessionStore) Prune(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, session := range s.sessions {
		if session.LastSeen().Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}
