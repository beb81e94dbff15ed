package redis

import (
	"context"
	"time"

	"github.com/edupulse/student-risk-hub/internal/infrastructure/auth"
)

// ══════════════════════════════════════════════════════════════════════════════
// SESSION STORE
// ══════════════════════════════════════════════════════════════════════════════

// SessionStore keeps auth sessions in Redis so tokens survive restarts
// and expire without bookkeeping.
type SessionStore struct {
	cache *Cache
}

// NewSessionStore creates a new SessionStore.
func NewSessionStore(cache *Cache) *SessionStore {
	return &SessionStore{cache: cache}
}

// Put implements auth.SessionStore.
func (s *SessionStore) Put(ctx context.Context, token string, session auth.Session, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = TTLSession
	}
	return s.cache.Set(ctx, SessionKey(token), session, ttl)
}

// Get implements auth.SessionStore. Returns ErrCacheMiss for unknown or
// expired tokens.
func (s *SessionStore) Get(ctx context.Context, token string) (auth.Session, error) {
	var session auth.Session
	if err := s.cache.Get(ctx, SessionKey(token), &session); err != nil {
		return auth.Session{}, err
	}
	return session, nil
}

// Delete implements auth.SessionStore.
func (s *SessionStore) Delete(ctx context.Context, token string) error {
	return s.cache.Delete(ctx, SessionKey(token))
}
