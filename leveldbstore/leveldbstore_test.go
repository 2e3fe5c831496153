package leveldbstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/geotile/assetcache/test"
)

func TestLeveldbstoreConformance(t *testing.T) {
	dir, err := os.MkdirTemp("", "leveldbstore")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	b, err := New(filepath.Join(dir, "db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	test.Backend(t, b)
}

func TestLeveldbstoreKeysEnumeratesStoredKeys(t *testing.T) {
	dir, err := os.MkdirTemp("", "leveldbstore")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	b, err := New(filepath.Join(dir, "db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	ctx := context.Background()
	require.NoError(t, b.Set(ctx, "a", []byte("1")))
	require.NoError(t, b.Set(ctx, "b", []byte("2")))

	keys, err := b.Keys(ctx)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"a", "b"}, keys)
}
