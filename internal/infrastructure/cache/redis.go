package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/hszk-dev/cliprelay/internal/domain/repository"
)

const (
	// documentKeyPrefix is the prefix for cache document keys in Redis.
	documentKeyPrefix = "cliprelay:document:"
)

// RedisDocument keeps a cache document under a single Redis key.
// The key never expires; entry expiry is decided by the Store.
type RedisDocument struct {
	client *redis.Client
	key    string
}

var _ repository.DocumentStore = (*RedisDocument)(nil)

// NewRedisDocument creates a Redis-backed document for the named store.
func NewRedisDocument(client *redis.Client, name string) *RedisDocument {
	return &RedisDocument{
		client: client,
		key:    buildKey(name),
	}
}

// Load reads the document. Returns repository.ErrDocumentNotFound if the key is absent.
func (d *RedisDocument) Load(ctx context.Context) ([]byte, error) {
	data, err := d.client.Get(ctx, d.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return data, nil
}

// Save replaces the document with data.
func (d *RedisDocument) Save(ctx context.Context, data []byte) error {
	if err := d.client.Set(ctx, d.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// buildKey constructs the Redis key for a store's document.
func buildKey(name string) string {
	return documentKeyPrefix + name
}
