package state

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session holds the dataset of one dashboard user.
type Session struct {
	ID       string
	DF       *DataFrame
	LastSeen time.Time
}

// Store holds dashboard sessions keyed by session id
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

// NewStore creates a store whose sessions expire after ttl of inactivity.
// A zero ttl disables expiry.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// NewSessionID returns a fresh random session id
func NewSessionID() string {
	return uuid.NewString()
}

// ValidSessionID reports whether id looks like an id issued by NewSessionID.
func ValidSessionID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// SetDataFrame replaces the dataset for the given session, creating the
// session if needed.
func (s *Store) SetDataFrame(id string, df *DataFrame) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictLocked()
	sess, ok := s.sessions[id]
	if !ok {
		sess = &Session{ID: id}
		s.sessions[id] = sess
	}
	sess.DF = df
	sess.LastSeen = s.now()
}

// GetDataFrame retrieves the dataset for the given session. It returns nil
// if the session is unknown, expired or idle.
func (s *Store) GetDataFrame(id string) *DataFrame {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictLocked()
	sess, ok := s.sessions[id]
	if !ok {
		return nil
	}
	sess.LastSeen = s.now()
	return sess.DF
}

// ClearDataFrame discards the dataset of a session
func (s *Store) ClearDataFrame(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[id]; ok {
		sess.DF = nil
		sess.LastSeen = s.now()
	}
}

// Len returns the number of live sessions
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Store) evictLocked() {
	if s.ttl <= 0 {
		return
	}
	cutoff := s.now().Add(-s.ttl)
	for id, sess := range s.sessions {
		if sess.LastSeen.Before(cutoff) {
			delete(s.sessions, id)
		}
	}
}
