package blobstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gocloud.dev/blob/memblob"

	"github.com/geotile/assetcache"
	"github.com/geotile/assetcache/test"
)

func TestBlobstoreConformance(t *testing.T) {
	bucket := memblob.OpenBucket(nil)
	defer bucket.Close()

	backend := NewWithBucket(bucket, "", 0)
	test.Backend(t, backend)
}

func TestBlobstoreKeysUnsupported(t *testing.T) {
	bucket := memblob.OpenBucket(nil)
	defer bucket.Close()

	backend := NewWithBucket(bucket, "", 0)

	_, err := backend.Keys(context.Background())
	require.ErrorIs(t, err, assetcache.ErrEnumerationUnsupported)
}

func TestBlobstoreNewRequiresURLOrBucket(t *testing.T) {
	_, err := New(context.Background(), Config{})
	require.Error(t, err)
}
