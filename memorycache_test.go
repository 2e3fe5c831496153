package assetcache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryBackendGetSetDelete(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()

	_, found, err := b.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, b.Set(ctx, "k", []byte("v")))
	raw, found, err := b.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "v", string(raw))

	require.NoError(t, b.Delete(ctx, "k"))
	_, found, err = b.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, found)
}

func TestMemoryBackendGetReturnsIndependentCopy(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()
	require.NoError(t, b.Set(ctx, "k", []byte("original")))

	raw, _, err := b.Get(ctx, "k")
	require.NoError(t, err)
	raw[0] = 'X'

	raw2, _, err := b.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "original", string(raw2))
}

func TestMemoryBackendKeys(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()
	require.NoError(t, b.Set(ctx, "a", []byte("1")))
	require.NoError(t, b.Set(ctx, "b", []byte("2")))

	keys, err := b.Keys(ctx)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"a", "b"}, keys)
}
