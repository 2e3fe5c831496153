package redisstore

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/geotile/assetcache/test"
)

func TestRedisstoreConformance(t *testing.T) {
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("skipping test; no server running at localhost:6379")
	}
	_ = client.FlushAll(ctx)

	test.Backend(t, NewWithClient(client))
}

func TestRedisstoreKeysEnumeratesNamespacedKeys(t *testing.T) {
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("skipping test; no server running at localhost:6379")
	}
	_ = client.FlushAll(ctx)

	backend := NewWithClient(client)
	require.NoError(t, backend.Set(ctx, "a", []byte("1")))
	require.NoError(t, backend.Set(ctx, "b", []byte("2")))

	keys, err := backend.Keys(ctx)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"a", "b"}, keys)
}
