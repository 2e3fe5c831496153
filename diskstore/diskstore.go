// Package diskstore is an assetcache.Backend backed by diskv, supplementing
// an in-memory LRU cache with persistent files on disk. Staleness comes
// entirely from CacheEntry.ExpiryTime; there is no side marker file.
package diskstore

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/peterbourgon/diskv"

	"github.com/geotile/assetcache"
)

// Backend is an assetcache.Backend storing entry bytes as files under a
// diskv-managed directory tree.
type Backend struct {
	d *diskv.Diskv
}

// New returns a Backend storing files under basePath, with a 100MB
// in-process diskv read cache on top of disk.
func New(basePath string) *Backend {
	return &Backend{
		d: diskv.New(diskv.Options{
			BasePath:     basePath,
			CacheSizeMax: 100 * 1024 * 1024,
		}),
	}
}

// NewWithDiskv wraps an already-configured diskv.Diskv.
func NewWithDiskv(d *diskv.Diskv) *Backend {
	return &Backend{d: d}
}

func (b *Backend) Get(_ context.Context, key string) ([]byte, bool, error) {
	raw, err := b.d.Read(keyToFilename(key))
	if err != nil {
		return nil, false, nil
	}
	return raw, true, nil
}

func (b *Backend) Set(_ context.Context, key string, raw []byte) error {
	if err := b.d.WriteStream(keyToFilename(key), bytes.NewReader(raw), true); err != nil {
		return fmt.Errorf("diskstore: set failed for key %q: %w", key, err)
	}
	return nil
}

func (b *Backend) Delete(_ context.Context, key string) error {
	if err := b.d.Erase(keyToFilename(key)); err != nil {
		return fmt.Errorf("diskstore: delete failed for key %q: %w", key, err)
	}
	return nil
}

// Keys cannot round-trip: entries are written under keyToFilename(key), a
// one-way SHA-256 digest, so Store.OpenStore's rebuild loop (Get on each
// enumerated value) would hash the already-hashed filename a second time
// and never find it. Same result as freestore: OpenStore skips its index
// rebuild (assetcache.ErrEnumerationUnsupported), so files written before
// the Store was opened are not seen by Prune, and diskv itself never
// evicts files from disk.
func (b *Backend) Keys(context.Context) ([]string, error) {
	return nil, assetcache.ErrEnumerationUnsupported
}

func keyToFilename(key string) string {
	h := sha256.New()
	_, _ = io.WriteString(h, key)
	return hex.EncodeToString(h.Sum(nil))
}
