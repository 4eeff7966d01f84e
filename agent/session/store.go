package session

import "sync"

// Store keeps sessions in process memory for the process lifetime.
// Sessions are created lazily on first reference. The map itself is
// guarded so different sessions can be served from different connections;
// the returned State is not, and concurrent turns on the same session id
// must be serialized by the caller.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*State
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]*State)}
}

// Get returns the session for sessionID, creating it if absent.
func (s *Store) Get(sessionID string) *State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.sessions[sessionID]
	if !ok {
		st = New(sessionID)
		s.sessions[sessionID] = st
	}
	return st
}

// Put replaces the in-memory session, used when restoring from an
// external context store.
func (s *Store) Put(st *State) {
	if st == nil || st.SessionID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[st.SessionID] = st
}
