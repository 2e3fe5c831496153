package assetcache

import (
	"context"
	"sync"
)

// MemoryBackend is a Backend that stores raw entry bytes in an in-memory
// map. The module's tests use it wherever no external store is needed;
// OpenStore itself has no default backend and always takes one explicitly.
type MemoryBackend struct {
	mu    sync.RWMutex
	items map[string][]byte
}

// NewMemoryBackend returns a Backend that keeps everything in a map.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{items: map[string][]byte{}}
}

func (c *MemoryBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	raw, ok := c.items[key]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(raw))
	copy(cp, raw)
	return cp, true, nil
}

func (c *MemoryBackend) Set(_ context.Context, key string, raw []byte) error {
	cp := make([]byte, len(raw))
	copy(cp, raw)
	c.mu.Lock()
	c.items[key] = cp
	c.mu.Unlock()
	return nil
}

func (c *MemoryBackend) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
	return nil
}

// Keys lists every key currently stored, used by OpenStore to rebuild the
// in-memory index on startup.
func (c *MemoryBackend) Keys(_ context.Context) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.items))
	for k := range c.items {
		keys = append(keys, k)
	}
	return keys, nil
}
