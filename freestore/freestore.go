// Package freestore is an assetcache.Backend over coocood/freecache, a
// zero-GC-overhead in-memory cache with its own segment-based LRU eviction.
// Staleness lives entirely in CacheEntry.ExpiryTime; the underlying
// statistics accessors are forwarded since they cost nothing to expose.
package freestore

import (
	"context"
	"fmt"

	"github.com/coocood/freecache"

	"github.com/geotile/assetcache"
)

// Backend is an assetcache.Backend storing entries in a freecache.Cache.
type Backend struct {
	cache *freecache.Cache
}

// New creates a Backend with the given cache size in bytes. freecache
// enforces a 512KB minimum.
func New(size int) *Backend {
	return &Backend{cache: freecache.NewCache(size)}
}

func (b *Backend) Get(_ context.Context, key string) ([]byte, bool, error) {
	value, err := b.cache.Get([]byte(key))
	if err != nil {
		if err == freecache.ErrNotFound {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("freestore: get %q: %w", key, err)
	}
	return value, true, nil
}

func (b *Backend) Set(_ context.Context, key string, raw []byte) error {
	if err := b.cache.Set([]byte(key), raw, 0); err != nil {
		return fmt.Errorf("freestore: set %q: %w", key, err)
	}
	return nil
}

func (b *Backend) Delete(_ context.Context, key string) error {
	b.cache.Del([]byte(key))
	return nil
}

// Keys is unsupported: freecache evicts segments independently of any
// external index and its iterator can surface entries it is concurrently
// evacuating, so Store.OpenStore falls back to freecache's own LRU instead
// of rebuilding an external index from it.
func (b *Backend) Keys(context.Context) ([]string, error) {
	return nil, assetcache.ErrEnumerationUnsupported
}

// EntryCount returns the number of entries currently in the cache.
func (b *Backend) EntryCount() int64 { return b.cache.EntryCount() }

// HitRate returns the ratio of cache hits to total lookups.
func (b *Backend) HitRate() float64 { return b.cache.HitRate() }

// EvacuateCount returns the number of times entries were evicted because the
// cache was full.
func (b *Backend) EvacuateCount() int64 { return b.cache.EvacuateCount() }
