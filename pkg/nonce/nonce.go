// Package nonce provides stores that remember single-use identifiers for a
// bounded time. They back ID Site replay protection: the id of every
// accepted callback message is claimed once and any second claim within the
// TTL is refused.
//
// Three implementations are provided:
//
//   - MemoryStore for a single process
//   - RedisStore for a fleet sharing one Redis
//   - SQLiteStore for a single node that must survive restarts
//
// All of them implement HasNonce, PutNonce and ClaimNonce. ClaimNonce is an
// atomic check-and-set and should be preferred over HasNonce followed by
// PutNonce.
package nonce

import (
	"errors"
	"time"
)

var (
	ErrEmptyNonce = errors.New("nonce: empty nonce")
	ErrInvalidTTL = errors.New("nonce: ttl must be positive")
)

// Option configures MemoryStore and SQLiteStore.
type Option func(*config)

type config struct {
	now func() time.Time
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *config) { c.now = now }
}

func newConfig(opts []Option) config {
	c := config{now: time.Now}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func validate(nonce string, ttl time.Duration) error {
	if nonce == "" {
		return ErrEmptyNonce
	}
	if ttl <= 0 {
		return ErrInvalidTTL
	}
	return nil
}
