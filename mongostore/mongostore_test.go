package mongostore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/geotile/assetcache/test"
)

func TestMongostoreConformance(t *testing.T) {
	uri := os.Getenv("MONGOSTORE_TEST_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	config := Config{
		URI:        uri,
		Database:   "assetcache_test",
		Collection: "conformance",
		Timeout:    2 * time.Second,
	}

	ctx := context.Background()
	backend, err := New(ctx, config)
	if err != nil {
		t.Skipf("skipping test; no MongoDB reachable at %s: %v", uri, err)
	}
	defer backend.Close(ctx)

	test.Backend(t, backend)
}

func TestMongostoreTTLIndexCreated(t *testing.T) {
	uri := os.Getenv("MONGOSTORE_TEST_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	config := Config{
		URI:        uri,
		Database:   "assetcache_test",
		Collection: "ttl_test",
		Timeout:    2 * time.Second,
		TTL:        time.Minute,
	}

	ctx := context.Background()
	backend, err := New(ctx, config)
	if err != nil {
		t.Skipf("skipping test; no MongoDB reachable at %s: %v", uri, err)
	}
	defer backend.Close(ctx)

	require.NoError(t, backend.Set(ctx, "key", []byte("value")))

	value, found, err := backend.Get(ctx, "key")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("value"), value)
}
