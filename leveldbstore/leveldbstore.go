// Package leveldbstore is an assetcache.Backend over goleveldb. Staleness
// lives entirely in CacheEntry.ExpiryTime, and Keys is implemented via
// goleveldb's iterator since stored keys are never hashed.
package leveldbstore

import (
	"context"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
)

// Backend is an assetcache.Backend storing entries directly in a goleveldb
// database, keyed by the caller's CacheKey with no prefix or transform.
type Backend struct {
	db *leveldb.DB
}

// New opens (or creates) a leveldb database at path.
func New(path string) (*Backend, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("leveldbstore: open %q: %w", path, err)
	}
	return &Backend{db: db}, nil
}

// NewWithDB wraps an already-opened leveldb database.
func NewWithDB(db *leveldb.DB) *Backend {
	return &Backend{db: db}
}

func (b *Backend) Get(_ context.Context, key string) ([]byte, bool, error) {
	raw, err := b.db.Get([]byte(key), nil)
	if err != nil {
		if err == leveldb.ErrNotFound {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("leveldbstore: get %q: %w", key, err)
	}
	return raw, true, nil
}

func (b *Backend) Set(_ context.Context, key string, raw []byte) error {
	if err := b.db.Put([]byte(key), raw, nil); err != nil {
		return fmt.Errorf("leveldbstore: set %q: %w", key, err)
	}
	return nil
}

func (b *Backend) Delete(_ context.Context, key string) error {
	if err := b.db.Delete([]byte(key), nil); err != nil {
		return fmt.Errorf("leveldbstore: delete %q: %w", key, err)
	}
	return nil
}

// Keys walks every key in the database. Stored keys are the caller's
// CacheKey verbatim, so no prefix-stripping or unhashing is needed.
func (b *Backend) Keys(ctx context.Context) ([]string, error) {
	iter := b.db.NewIterator(nil, nil)
	defer iter.Release()

	var keys []string
	for iter.Next() {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		keys = append(keys, string(iter.Key()))
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("leveldbstore: keys: %w", err)
	}
	return keys, nil
}

// Close closes the underlying database.
func (b *Backend) Close() error {
	return b.db.Close()
}
