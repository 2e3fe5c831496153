// Package multistore provides a multi-tiered assetcache.Backend that
// cascades through several backends with automatic fallback and promotion.
package multistore

import (
	"context"
	"fmt"

	"github.com/geotile/assetcache"
)

// Backend implements a multi-tiered caching strategy where tiers are ordered
// from fastest/smallest (first) to slowest/largest (last). On Get, it
// searches each tier in order and promotes a found value to every faster
// tier. On Set/Delete, it applies to every tier.
//
// Example tiering:
//   - Tier 1: MemoryBackend (fast, small, volatile)
//   - Tier 2: redisstore (medium speed, larger, persistent)
//   - Tier 3: pgstore (slower, largest, highly persistent)
type Backend struct {
	tiers []assetcache.Backend
}

// New builds a Backend from tiers, ordered fastest-first. Returns an error
// if no tiers are given or any tier is nil.
func New(tiers ...assetcache.Backend) (*Backend, error) {
	if len(tiers) == 0 {
		return nil, fmt.Errorf("multistore: at least one tier is required")
	}
	for _, tier := range tiers {
		if tier == nil {
			return nil, fmt.Errorf("multistore: tier cannot be nil")
		}
	}
	return &Backend{tiers: tiers}, nil
}

func (b *Backend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	for i, tier := range b.tiers {
		value, ok, err := tier.Get(ctx, key)
		if err != nil {
			return nil, false, fmt.Errorf("multistore: tier %d get %q: %w", i, key, err)
		}
		if ok {
			b.promoteToFasterTiers(ctx, key, value, i)
			return value, true, nil
		}
	}
	return nil, false, nil
}

func (b *Backend) Set(ctx context.Context, key string, value []byte) error {
	for i, tier := range b.tiers {
		if err := tier.Set(ctx, key, value); err != nil {
			return fmt.Errorf("multistore: tier %d set %q: %w", i, key, err)
		}
	}
	return nil
}

func (b *Backend) Delete(ctx context.Context, key string) error {
	for i, tier := range b.tiers {
		if err := tier.Delete(ctx, key); err != nil {
			return fmt.Errorf("multistore: tier %d delete %q: %w", i, key, err)
		}
	}
	return nil
}

// Keys enumerates the slowest (last) tier, on the assumption it is the most
// complete and longest-retained. Returns ErrEnumerationUnsupported if that
// tier does.
func (b *Backend) Keys(ctx context.Context) ([]string, error) {
	return b.tiers[len(b.tiers)-1].Keys(ctx)
}

// promoteToFasterTiers writes value to every tier faster than the one it
// was found in, so hot entries migrate toward the front of the chain.
// Promotion failures are logged, not propagated: the Get that triggered the
// promotion already succeeded.
func (b *Backend) promoteToFasterTiers(ctx context.Context, key string, value []byte, foundAtTier int) {
	for i := 0; i < foundAtTier; i++ {
		if err := b.tiers[i].Set(ctx, key, value); err != nil {
			assetcache.GetLogger().Warn("multistore: promotion failed", "tier", i, "key", key, "error", err)
		}
	}
}

var _ assetcache.Backend = (*Backend)(nil)
