// Package redisstore persists multiview state in Redis.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/goliatone/go-multiview/components/multiview"
)

// DefaultPrefix namespaces every key written by the store.
const DefaultPrefix = "multiview:"

// KV is the subset of the go-redis client used by Store.
type KV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// Options configures the store.
type Options struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// Store implements multiview.Storage on Redis string keys.
type Store struct {
	client KV
	prefix string
}

var _ multiview.Storage = (*Store)(nil)

// NewClient builds a go-redis client from opts.
func NewClient(opts Options) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
}

// New wraps client. An empty prefix falls back to DefaultPrefix.
func New(client KV, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{client: client, prefix: prefix}
}

// Key returns the namespaced redis key for a storage key.
func (s *Store) Key(key string) string {
	return s.prefix + key
}

// Load reads key. redis.Nil maps to multiview.ErrStorageKeyNotFound.
func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, s.Key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, multiview.ErrStorageKeyNotFound
		}
		return nil, fmt.Errorf("redisstore: load %s: %w", key, err)
	}
	return val, nil
}

// Save writes key without expiry.
func (s *Store) Save(ctx context.Context, key string, data []byte) error {
	if err := s.client.Set(ctx, s.Key(key), data, 0).Err(); err != nil {
		return fmt.Errorf("redisstore: save %s: %w", key, err)
	}
	return nil
}
