package handlers

import (
	"sync"

	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/aggregate"
	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/engine"
)

// sessionStore keeps question sessions between requests. When full, an
// arbitrary session is forgotten to make room.
type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*engine.Session
	max      int
}

func newSessionStore(max int) *sessionStore {
	if max <= 0 {
		max = 1024
	}
	return &sessionStore{sessions: make(map[string]*engine.Session), max: max}
}

// get returns the session with id when it belongs to the same model as
// snap; otherwise it starts a new one.
func (s *sessionStore) get(id string, eng *engine.Engine, snap *aggregate.Snapshot) *engine.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[id]; ok && sess.Snapshot().Fingerprint() == snap.Fingerprint() {
		return sess
	}

	if len(s.sessions) >= s.max {
		for k := range s.sessions {
			delete(s.sessions, k)
			break
		}
	}
	sess := eng.NewSession(snap)
	s.sessions[sess.ID()] = sess
	return sess
}

func (s *sessionStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
