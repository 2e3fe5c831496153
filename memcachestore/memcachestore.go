// Package memcachestore is an assetcache.Backend over gomemcache. Staleness
// lives entirely in CacheEntry.ExpiryTime. There is no App Engine build
// variant, since nothing in this module's domain stack touches the legacy
// appengine SDK.
package memcachestore

import (
	"context"
	"fmt"

	"github.com/bradfitz/gomemcache/memcache"

	"github.com/geotile/assetcache"
)

// Backend is an assetcache.Backend storing entries as memcached items, all
// namespaced under the "assetcache:" prefix.
type Backend struct {
	client *memcache.Client
}

func backendKey(key string) string {
	return "assetcache:" + key
}

// New returns a Backend using the given memcache server(s) with equal
// weight. If a server is listed multiple times, it gets a proportional
// amount of weight.
func New(server ...string) *Backend {
	return NewWithClient(memcache.New(server...))
}

// NewWithClient wraps an already-configured memcache client.
func NewWithClient(client *memcache.Client) *Backend {
	return &Backend{client: client}
}

func (b *Backend) Get(_ context.Context, key string) ([]byte, bool, error) {
	item, err := b.client.Get(backendKey(key))
	if err != nil {
		if err == memcache.ErrCacheMiss {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("memcachestore: get %q: %w", key, err)
	}
	return item.Value, true, nil
}

func (b *Backend) Set(_ context.Context, key string, raw []byte) error {
	item := &memcache.Item{Key: backendKey(key), Value: raw}
	if err := b.client.Set(item); err != nil {
		return fmt.Errorf("memcachestore: set %q: %w", key, err)
	}
	return nil
}

func (b *Backend) Delete(_ context.Context, key string) error {
	if err := b.client.Delete(backendKey(key)); err != nil {
		if err == memcache.ErrCacheMiss {
			return nil
		}
		return fmt.Errorf("memcachestore: delete %q: %w", key, err)
	}
	return nil
}

// Keys is unsupported: the memcached wire protocol has no list-keys
// command, so Store.OpenStore falls back to memcached's own LRU eviction
// instead of rebuilding an external index from it.
func (b *Backend) Keys(context.Context) ([]string, error) {
	return nil, assetcache.ErrEnumerationUnsupported
}
