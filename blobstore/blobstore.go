// Package blobstore is an assetcache.Backend over Go Cloud Development Kit
// blob storage (S3, GCS, Azure Blob, local filesystem, in-memory). Staleness
// lives entirely in CacheEntry.ExpiryTime, so no separate marker object is
// needed alongside each blob.
package blobstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	"github.com/geotile/assetcache"
)

// Config holds the configuration for a blobstore Backend.
type Config struct {
	// BucketURL is the Go Cloud blob URL (e.g., "s3://bucket?region=us-west-2").
	BucketURL string
	// KeyPrefix is prepended to all blob keys (default: "cache/").
	KeyPrefix string
	// Timeout bounds every blob operation when ctx carries no deadline of
	// its own (default: 30s).
	Timeout time.Duration
	// Bucket is an optional pre-opened bucket; if set, BucketURL is ignored.
	Bucket *blob.Bucket
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		KeyPrefix: "cache/",
		Timeout:   30 * time.Second,
	}
}

// Backend is an assetcache.Backend storing entries as blobs in a Go Cloud
// bucket. Blob names are a SHA-256 digest of the caller's CacheKey, since
// cloud object keys carry their own character restrictions that a raw URL
// CacheKey would violate.
type Backend struct {
	bucket     *blob.Bucket
	keyPrefix  string
	timeout    time.Duration
	ownsBucket bool
}

// New opens the bucket at config.BucketURL (or uses config.Bucket if set)
// and returns a Backend. Call Close to release resources.
func New(ctx context.Context, config Config) (*Backend, error) {
	if config.BucketURL == "" && config.Bucket == nil {
		return nil, fmt.Errorf("blobstore: either BucketURL or Bucket must be provided")
	}
	def := DefaultConfig()
	if config.KeyPrefix == "" {
		config.KeyPrefix = def.KeyPrefix
	}
	if config.Timeout == 0 {
		config.Timeout = def.Timeout
	}

	if config.Bucket != nil {
		return &Backend{bucket: config.Bucket, keyPrefix: config.KeyPrefix, timeout: config.Timeout}, nil
	}

	bucket, err := blob.OpenBucket(ctx, config.BucketURL)
	if err != nil {
		return nil, fmt.Errorf("blobstore: open bucket: %w", err)
	}
	return &Backend{bucket: bucket, keyPrefix: config.KeyPrefix, timeout: config.Timeout, ownsBucket: true}, nil
}

// NewWithBucket wraps an already-opened bucket. The caller remains
// responsible for closing it.
func NewWithBucket(bucket *blob.Bucket, keyPrefix string, timeout time.Duration) *Backend {
	if keyPrefix == "" {
		keyPrefix = DefaultConfig().KeyPrefix
	}
	if timeout == 0 {
		timeout = DefaultConfig().Timeout
	}
	return &Backend{bucket: bucket, keyPrefix: keyPrefix, timeout: timeout}
}

func (b *Backend) blobKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return b.keyPrefix + hex.EncodeToString(sum[:])
}

func (b *Backend) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, b.timeout)
}

func (b *Backend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	ctx, cancel := b.withTimeout(ctx)
	defer cancel()

	reader, err := b.bucket.NewReader(ctx, b.blobKey(key), nil)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("blobstore: get %q: %w", key, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, false, fmt.Errorf("blobstore: read %q: %w", key, err)
	}
	return data, true, nil
}

func (b *Backend) Set(ctx context.Context, key string, raw []byte) error {
	ctx, cancel := b.withTimeout(ctx)
	defer cancel()

	writer, err := b.bucket.NewWriter(ctx, b.blobKey(key), nil)
	if err != nil {
		return fmt.Errorf("blobstore: set %q: create writer: %w", key, err)
	}
	_, writeErr := writer.Write(raw)
	closeErr := writer.Close()
	if writeErr != nil {
		return fmt.Errorf("blobstore: set %q: write: %w", key, writeErr)
	}
	if closeErr != nil {
		return fmt.Errorf("blobstore: set %q: close: %w", key, closeErr)
	}
	return nil
}

func (b *Backend) Delete(ctx context.Context, key string) error {
	ctx, cancel := b.withTimeout(ctx)
	defer cancel()

	if err := b.bucket.Delete(ctx, b.blobKey(key)); err != nil && gcerrors.Code(err) != gcerrors.NotFound {
		return fmt.Errorf("blobstore: delete %q: %w", key, err)
	}
	return nil
}

// Keys cannot round-trip: blobKey is a one-way SHA-256 digest, so
// Store.OpenStore's rebuild (Get on each enumerated value) would hash an
// already-hashed blob name a second time and never find it. Same limitation
// as diskstore and natsstore.
func (b *Backend) Keys(context.Context) ([]string, error) {
	return nil, assetcache.ErrEnumerationUnsupported
}

// Close closes the bucket if it was opened by New. A no-op for Backends
// built with NewWithBucket.
func (b *Backend) Close() error {
	if b.ownsBucket {
		if err := b.bucket.Close(); err != nil {
			return fmt.Errorf("blobstore: close bucket: %w", err)
		}
	}
	return nil
}
