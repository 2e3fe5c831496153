// Package redisstore is an assetcache.Backend over go-redis/v9, with a
// connection-pool configuration surface for sizing concurrent access.
package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds the configuration for creating a Redis-backed Backend.
type Config struct {
	// Address is the Redis server address (e.g., "localhost:6379").
	Address string

	// Password is the Redis password for authentication. Optional.
	Password string

	// DB is the Redis database number to use. Optional, defaults to 0.
	DB int

	// PoolSize is the maximum number of socket connections. Optional,
	// defaults to 10.
	PoolSize int

	// DialTimeout is the timeout for establishing new connections. Optional,
	// defaults to 5 seconds.
	DialTimeout time.Duration

	// ReadTimeout is the timeout for socket reads. Optional, defaults to 5
	// seconds.
	ReadTimeout time.Duration

	// WriteTimeout is the timeout for socket writes. Optional, defaults to 5
	// seconds.
	WriteTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		PoolSize:     10,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
}

// Backend is an assetcache.Backend storing entries as Redis string values,
// all namespaced under the "assetcache:" prefix to avoid collisions with
// unrelated keys in the same database.
type Backend struct {
	client *redis.Client
}

func backendKey(key string) string {
	return "assetcache:" + key
}

// New connects to Redis per config, applying DefaultConfig for any zero
// fields, and pings once to verify connectivity.
func New(ctx context.Context, config Config) (*Backend, error) {
	if config.Address == "" {
		return nil, fmt.Errorf("redisstore: address is required")
	}
	def := DefaultConfig()
	if config.PoolSize == 0 {
		config.PoolSize = def.PoolSize
	}
	if config.DialTimeout == 0 {
		config.DialTimeout = def.DialTimeout
	}
	if config.ReadTimeout == 0 {
		config.ReadTimeout = def.ReadTimeout
	}
	if config.WriteTimeout == 0 {
		config.WriteTimeout = def.WriteTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr:         config.Address,
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     config.PoolSize,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redisstore: connect: %w", err)
	}
	return &Backend{client: client}, nil
}

// NewWithClient wraps an already-configured go-redis client.
func NewWithClient(client *redis.Client) *Backend {
	return &Backend{client: client}
}

func (b *Backend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	raw, err := b.client.Get(ctx, backendKey(key)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redisstore: get %q: %w", key, err)
	}
	return raw, true, nil
}

func (b *Backend) Set(ctx context.Context, key string, raw []byte) error {
	if err := b.client.Set(ctx, backendKey(key), raw, 0).Err(); err != nil {
		return fmt.Errorf("redisstore: set %q: %w", key, err)
	}
	return nil
}

func (b *Backend) Delete(ctx context.Context, key string) error {
	if err := b.client.Del(ctx, backendKey(key)).Err(); err != nil {
		return fmt.Errorf("redisstore: delete %q: %w", key, err)
	}
	return nil
}

// Keys scans every key under the "assetcache:" namespace and strips the
// prefix back off, so round-tripping through Get/Set/Delete works with the
// caller's original CacheKey, not the namespaced form.
func (b *Backend) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := b.client.Scan(ctx, 0, backendKey("*"), 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val()[len("assetcache:"):])
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redisstore: scan: %w", err)
	}
	return keys, nil
}

// Close releases the underlying connection pool.
func (b *Backend) Close() error {
	return b.client.Close()
}
