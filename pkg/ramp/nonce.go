package ramp

import (
	"context"
	"errors"
	"sync"
)

// ErrInvalidNonce is returned when a nonce is not strictly greater than the
// last nonce consumed for the same user
var ErrInvalidNonce = errors.New("nonce already used")

// NonceStore consumes per-user nonces. A nonce is valid exactly once and only
// if it is strictly greater than every nonce consumed before it, which makes
// replayed requests fail.
type NonceStore interface {
	// Use consumes the nonce for user, or returns ErrInvalidNonce
	Use(ctx context.Context, user string, nonce uint64) error
}

// MemoryNonceStore is a process-local NonceStore
type MemoryNonceStore struct {
	mu   sync.Mutex
	last map[string]uint64
	used map[string]bool
}

// NewMemoryNonceStore creates an empty nonce store
func NewMemoryNonceStore() *MemoryNonceStore {
	return &MemoryNonceStore{
		last: make(map[string]uint64),
		used: make(map[string]bool),
	}
}

// Use consumes the nonce for user
func (s *MemoryNonceStore) Use(_ context.Context, user string, nonce uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// nonce 0 is valid for the first request, so track first use separately
	if s.used[user] && nonce <= s.last[user] {
		return ErrInvalidNonce
	}

	s.last[user] = nonce
	s.used[user] = true
	return nil
}

// Ensure MemoryNonceStore implements NonceStore
var _ NonceStore = (*MemoryNonceStore)(nil)
