package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/galenus-health/galenus-go/core"
	"github.com/galenus-health/galenus-go/ports"
)

// defaultTokenKey is the single named slot holding the bearer token.
const defaultTokenKey = "galenus:auth_token"

// RedisStore is a Redis implementation of the TokenStore interface,
// used when several pharmacy terminals share one counter session.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore creates a Redis-backed store using the default key.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		key:    defaultTokenKey,
	}
}

var _ ports.TokenStore = (*RedisStore)(nil)

// Get reads the credential from Redis.
func (s *RedisStore) Get(ctx context.Context) (core.Credential, bool, error) {
	val, err := s.client.Get(ctx, s.key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: %v", core.ErrStoreUnavailable, err)
	}
	if val == "" {
		return "", false, nil
	}
	return core.Credential(val), true, nil
}

// Set overwrites the credential. No TTL: the server decides when the
// token stops being valid.
func (s *RedisStore) Set(ctx context.Context, token core.Credential) error {
	if err := s.client.Set(ctx, s.key, string(token), 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", core.ErrStoreUnavailable, err)
	}
	return nil
}

// Clear deletes the credential key. Deleting a missing key is a no-op.
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("%w: %v", core.ErrStoreUnavailable, err)
	}
	return nil
}

// Close closes the underlying Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
