package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store used in tests and single-node
// deployments without Redis. Same sliding-expiry semantics as RedisStore.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*memoryEntry
	// now is swappable so tests can step time past the inactivity window.
	now func() time.Time
}

type memoryEntry struct {
	session   Session
	expiresAt time.Time
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*memoryEntry),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the store's clock. Test hook.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *MemoryStore) Create(_ context.Context, userID uint) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sess := Session{
		Token:      newToken(),
		UserID:     userID,
		CreatedAt:  now,
		LastSeenAt: now,
	}
	s.sessions[sess.Token] = &memoryEntry{session: sess, expiresAt: now.Add(InactivityTimeout)}

	out := sess
	return &out, nil
}

func (s *MemoryStore) Get(_ context.Context, token string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[token]
	now := s.now()
	if !ok || now.After(entry.expiresAt) {
		delete(s.sessions, token)
		return nil, ErrNotFound
	}

	entry.session.LastSeenAt = now
	entry.expiresAt = now.Add(InactivityTimeout)

	out := entry.session
	return &out, nil
}

func (s *MemoryStore) EnsureCSRF(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[token]
	if !ok || s.now().After(entry.expiresAt) {
		delete(s.sessions, token)
		return "", ErrNotFound
	}
	if entry.session.CSRFToken == "" {
		entry.session.CSRFToken = newToken()
	}
	return entry.session.CSRFToken, nil
}

func (s *MemoryStore) Destroy(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}
