// Package natsstore is an assetcache.Backend over a NATS JetStream
// Key/Value bucket. Keys returns assetcache.ErrEnumerationUnsupported,
// since stored keys are one-way hashes of the caller's keys.
package natsstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/geotile/assetcache"
)

// Config holds the configuration for creating a NATS K/V-backed Backend.
type Config struct {
	// NATSUrl is the URL of the NATS server. Empty defaults to
	// nats.DefaultURL.
	NATSUrl string
	// Bucket is the name of the K/V bucket to use for caching. Required.
	Bucket string
	// Description is an optional description for the K/V bucket.
	Description string
	// TTL is the time-to-live for cache entries. Zero means entries don't
	// expire on the NATS side (Store.Prune still applies externally).
	TTL time.Duration
	// NATSOptions carries additional nats.Connect options.
	NATSOptions []nats.Option
}

// Backend is an assetcache.Backend storing entries in a JetStream K/V
// bucket.
type Backend struct {
	kv jetstream.KeyValue
	nc *nats.Conn
}

// assetKey hashes key to a NATS K/V-safe identifier: CacheKeys are raw
// URLs (cachekey.go), which contain ':', '/', '?', and '=' — all of them
// forbidden in JetStream K/V keys — so a direct or lightly-escaped mapping
// isn't viable the way it is for the in-memory/SQL backends.
func assetKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return "assetcache_" + hex.EncodeToString(sum[:])
}

func (b *Backend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	entry, err := b.kv.Get(ctx, assetKey(key))
	if err != nil {
		if err == jetstream.ErrKeyNotFound {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("natsstore: get %q: %w", key, err)
	}
	return entry.Value(), true, nil
}

func (b *Backend) Set(ctx context.Context, key string, raw []byte) error {
	if _, err := b.kv.Put(ctx, assetKey(key), raw); err != nil {
		return fmt.Errorf("natsstore: set %q: %w", key, err)
	}
	return nil
}

func (b *Backend) Delete(ctx context.Context, key string) error {
	if err := b.kv.Delete(ctx, assetKey(key)); err != nil && err != jetstream.ErrKeyNotFound {
		return fmt.Errorf("natsstore: delete %q: %w", key, err)
	}
	return nil
}

// Keys cannot round-trip: assetKey is a one-way SHA-256 digest, so
// Store.OpenStore's rebuild (Get on each enumerated value) would hash an
// already-hashed key a second time and never find it. Same limitation as
// diskstore and freestore.
func (b *Backend) Keys(context.Context) ([]string, error) {
	return nil, assetcache.ErrEnumerationUnsupported
}

// Close closes the underlying NATS connection if it was created by New. A
// no-op for Backends built with NewWithKeyValue.
func (b *Backend) Close() error {
	if b.nc != nil {
		b.nc.Close()
	}
	return nil
}

// New connects to NATS, opens a JetStream context, and creates or updates
// the configured K/V bucket.
func New(ctx context.Context, config Config) (*Backend, error) {
	if config.Bucket == "" {
		return nil, fmt.Errorf("natsstore: bucket name is required")
	}
	url := config.NATSUrl
	if url == "" {
		url = nats.DefaultURL
	}

	nc, err := nats.Connect(url, config.NATSOptions...)
	if err != nil {
		return nil, fmt.Errorf("natsstore: connect: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("natsstore: create jetstream context: %w", err)
	}

	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      config.Bucket,
		Description: config.Description,
		TTL:         config.TTL,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("natsstore: create or update bucket: %w", err)
	}

	return &Backend{kv: kv, nc: nc}, nil
}

// NewWithKeyValue wraps an already-opened JetStream KeyValue bucket. The
// returned Backend never closes the caller's NATS connection.
func NewWithKeyValue(kv jetstream.KeyValue) *Backend {
	return &Backend{kv: kv}
}
