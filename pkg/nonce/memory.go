package nonce

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps nonces in a map. Expired entries are ignored on read and
// removed by DeleteExpired, normally driven by a Janitor.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]time.Time // nonce -> expiry
	now     func() time.Time
}

func NewMemoryStore(opts ...Option) *MemoryStore {
	c := newConfig(opts)
	return &MemoryStore{
		entries: make(map[string]time.Time),
		now:     c.now,
	}
}

func (s *MemoryStore) HasNonce(_ context.Context, nonce string) (bool, error) {
	if nonce == "" {
		return false, ErrEmptyNonce
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.liveLocked(nonce), nil
}

func (s *MemoryStore) PutNonce(_ context.Context, nonce string, ttl time.Duration) error {
	if err := validate(nonce, ttl); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[nonce] = s.now().Add(ttl)
	return nil
}

// ClaimNonce stores nonce and reports true unless it is already present and
// unexpired.
func (s *MemoryStore) ClaimNonce(_ context.Context, nonce string, ttl time.Duration) (bool, error) {
	if err := validate(nonce, ttl); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.liveLocked(nonce) {
		return false, nil
	}
	s.entries[nonce] = s.now().Add(ttl)
	return true, nil
}

// DeleteExpired drops expired entries and returns how many were removed.
func (s *MemoryStore) DeleteExpired(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var n int64
	for k, exp := range s.entries {
		if !now.Before(exp) {
			delete(s.entries, k)
			n++
		}
	}
	return n, nil
}

// Len is the number of entries held, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *MemoryStore) liveLocked(nonce string) bool {
	exp, ok := s.entries[nonce]
	return ok && s.now().Before(exp)
}
