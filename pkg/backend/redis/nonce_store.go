// Package redis provides a Redis-backed nonce store, so replay protection
// holds across processes sharing one Redis instance.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/ezcrow/ramp/pkg/ramp"
)

// useNonce accepts the nonce only if it is strictly greater than the stored
// one, and stores it. Checking and storing run as one script, so concurrent
// callers cannot both consume the same nonce.
var useNonce = redis.NewScript(`
local cur = redis.call('GET', KEYS[1])
if cur and tonumber(ARGV[1]) <= tonumber(cur) then
	return 0
end
redis.call('SET', KEYS[1], ARGV[1])
return 1
`)

// NonceStore implements ramp.NonceStore on Redis
type NonceStore struct {
	client *redis.Client
	prefix string
}

// NewNonceStore creates a nonce store keyed under prefix
func NewNonceStore(client *redis.Client, prefix string) *NonceStore {
	if prefix == "" {
		prefix = "ramp"
	}
	return &NonceStore{client: client, prefix: prefix}
}

// Use consumes the nonce for user
func (s *NonceStore) Use(ctx context.Context, user string, nonce uint64) error {
	key := fmt.Sprintf("%s:nonce:%s", s.prefix, user)

	ok, err := useNonce.Run(ctx, s.client, []string{key}, nonce).Int()
	if err != nil {
		return fmt.Errorf("failed to consume nonce: %w", err)
	}
	if ok == 0 {
		return ramp.ErrInvalidNonce
	}
	return nil
}

// Ensure NonceStore implements NonceStore
var _ ramp.NonceStore = (*NonceStore)(nil)
