// Package hazelstore is an assetcache.Backend over a Hazelcast distributed
// map. Staleness lives entirely in CacheEntry.ExpiryTime, and Keys is added
// via the map's key set for index rebuild.
package hazelstore

import (
	"context"
	"fmt"

	"github.com/hazelcast/hazelcast-go-client"
)

// Backend is an assetcache.Backend storing entries as byte-slice values in
// a Hazelcast IMap.
type Backend struct {
	m *hazelcast.Map
}

func mapKey(key string) string { return "assetcache:" + key }

// New wraps an already-opened Hazelcast map.
func New(m *hazelcast.Map) *Backend {
	return &Backend{m: m}
}

func (b *Backend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := b.m.Get(ctx, mapKey(key))
	if err != nil {
		return nil, false, fmt.Errorf("hazelstore: get %q: %w", key, err)
	}
	if val == nil {
		return nil, false, nil
	}
	data, ok := val.([]byte)
	if !ok {
		return nil, false, nil
	}
	return data, true, nil
}

func (b *Backend) Set(ctx context.Context, key string, raw []byte) error {
	if err := b.m.Set(ctx, mapKey(key), raw); err != nil {
		return fmt.Errorf("hazelstore: set %q: %w", key, err)
	}
	return nil
}

func (b *Backend) Delete(ctx context.Context, key string) error {
	if _, err := b.m.Remove(ctx, mapKey(key)); err != nil {
		return fmt.Errorf("hazelstore: delete %q: %w", key, err)
	}
	return nil
}

// Keys returns every key in the map's "assetcache:" namespace, prefix
// stripped.
func (b *Backend) Keys(ctx context.Context) ([]string, error) {
	raw, err := b.m.GetKeySet(ctx)
	if err != nil {
		return nil, fmt.Errorf("hazelstore: keys: %w", err)
	}
	const prefix = "assetcache:"
	keys := make([]string, 0, len(raw))
	for _, v := range raw {
		s, ok := v.(string)
		if !ok || len(s) < len(prefix) || s[:len(prefix)] != prefix {
			continue
		}
		keys = append(keys, s[len(prefix):])
	}
	return keys, nil
}
