package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisBackend stores records as plain Redis strings under a key prefix.
type RedisBackend struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisBackend wraps an existing client. Keys are stored as prefix+key.
func NewRedisBackend(rdb *redis.Client, prefix string) *RedisBackend {
	return &RedisBackend{rdb: rdb, prefix: prefix}
}

// DialRedis connects to addr and verifies the connection with a PING.
func DialRedis(ctx context.Context, addr string, db int) (*RedisBackend, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}
	return NewRedisBackend(rdb, "schemaflow:"), nil
}

// Name returns "redis".
func (b *RedisBackend) Name() string { return "redis" }

// Get reads the record stored under key.
func (b *RedisBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := b.rdb.Get(ctx, b.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, classifyRedis(err)
	}
	return data, true, nil
}

// Set replaces the record stored under key. Records never expire.
func (b *RedisBackend) Set(ctx context.Context, key string, data []byte) error {
	return classifyRedis(b.rdb.Set(ctx, b.prefix+key, data, 0).Err())
}

// Delete removes the record stored under key.
func (b *RedisBackend) Delete(ctx context.Context, key string) error {
	return classifyRedis(b.rdb.Del(ctx, b.prefix+key).Err())
}

// Close closes the underlying client.
func (b *RedisBackend) Close() error {
	return b.rdb.Close()
}

// classifyRedis marks connection-level failures as retryable.
func classifyRedis(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, redis.ErrClosed) {
		return err
	}
	return Retryable(err)
}

// Ensure RedisBackend implements Backend.
var _ Backend = (*RedisBackend)(nil)
