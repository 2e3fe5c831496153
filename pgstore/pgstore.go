// Package pgstore is an assetcache.Backend over PostgreSQL via pgx/v5.
// The stale boolean column is dropped since assetcache.Store derives
// staleness entirely from the CacheEntry.ExpiryTime encoded inside the
// stored bytes, and Keys is added so Store can rebuild its in-memory index
// on open.
package pgstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNilPool is returned when a nil pool is provided to NewWithPool.
var ErrNilPool = errors.New("pgstore: pool cannot be nil")

const (
	// DefaultTableName is the default table name for cache storage.
	DefaultTableName = "assetcache"
	// DefaultKeyPrefix is the default prefix applied to all stored keys.
	DefaultKeyPrefix = "cache:"
)

// Config holds the configuration for a pgstore Backend.
type Config struct {
	// TableName is the table cache entries live in (default: "assetcache").
	TableName string
	// KeyPrefix is prepended to every key before it reaches the table
	// (default: "cache:").
	KeyPrefix string
	// Timeout bounds each query when ctx carries no deadline of its own
	// (default: 5s).
	Timeout time.Duration
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		TableName: DefaultTableName,
		KeyPrefix: DefaultKeyPrefix,
		Timeout:   5 * time.Second,
	}
}

// Backend is an assetcache.Backend storing entries as rows in a PostgreSQL
// table.
type Backend struct {
	pool      *pgxpool.Pool
	tableName string
	keyPrefix string
	timeout   time.Duration
}

func (b *Backend) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, b.timeout)
}

func (b *Backend) cacheKey(key string) string {
	return b.keyPrefix + key
}

func (b *Backend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	ctx, cancel := b.withTimeout(ctx)
	defer cancel()

	var data []byte
	query := `SELECT data FROM ` + b.tableName + ` WHERE key = $1`
	err := b.pool.QueryRow(ctx, query, b.cacheKey(key)).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("pgstore: get %q: %w", key, err)
	}
	return data, true, nil
}

func (b *Backend) Set(ctx context.Context, key string, raw []byte) error {
	ctx, cancel := b.withTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO ` + b.tableName + ` (key, data, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET data = $2, created_at = $3
	`
	if _, err := b.pool.Exec(ctx, query, b.cacheKey(key), raw, time.Now()); err != nil {
		return fmt.Errorf("pgstore: set %q: %w", key, err)
	}
	return nil
}

func (b *Backend) Delete(ctx context.Context, key string) error {
	ctx, cancel := b.withTimeout(ctx)
	defer cancel()

	query := `DELETE FROM ` + b.tableName + ` WHERE key = $1`
	if _, err := b.pool.Exec(ctx, query, b.cacheKey(key)); err != nil {
		return fmt.Errorf("pgstore: delete %q: %w", key, err)
	}
	return nil
}

// Keys returns every key currently stored, with the configured prefix
// stripped back off.
func (b *Backend) Keys(ctx context.Context) ([]string, error) {
	ctx, cancel := b.withTimeout(ctx)
	defer cancel()

	query := `SELECT key FROM ` + b.tableName
	rows, err := b.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgstore: keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("pgstore: scan key: %w", err)
		}
		keys = append(keys, key[len(b.keyPrefix):])
	}
	return keys, rows.Err()
}

// CreateTable creates the cache table if it doesn't already exist.
func (b *Backend) CreateTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS ` + b.tableName + ` (
			key TEXT PRIMARY KEY,
			data BYTEA NOT NULL,
			created_at TIMESTAMP NOT NULL
		)
	`
	_, err := b.pool.Exec(ctx, query)
	return err
}

// Close closes the connection pool.
func (b *Backend) Close() {
	b.pool.Close()
}

// NewWithPool returns a Backend using an already-configured connection pool.
func NewWithPool(pool *pgxpool.Pool, config *Config) (*Backend, error) {
	if pool == nil {
		return nil, ErrNilPool
	}
	if config == nil {
		config = DefaultConfig()
	}
	return &Backend{
		pool:      pool,
		tableName: config.TableName,
		keyPrefix: config.KeyPrefix,
		timeout:   config.Timeout,
	}, nil
}

// New opens a connection pool to connString and ensures the cache table
// exists.
func New(ctx context.Context, connString string, config *Config) (*Backend, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	if config == nil {
		config = DefaultConfig()
	}
	b := &Backend{
		pool:      pool,
		tableName: config.TableName,
		keyPrefix: config.KeyPrefix,
		timeout:   config.Timeout,
	}
	if err := b.CreateTable(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return b, nil
}
