package diskstore

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/geotile/assetcache"
	"github.com/geotile/assetcache/test"
)

func TestDiskstoreConformance(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "assetcache-diskstore")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	test.Backend(t, New(tempDir))
}

func TestDiskstoreKeysUnsupported(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "assetcache-diskstore")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	backend := New(tempDir)
	_, err = backend.Keys(context.Background())
	require.ErrorIs(t, err, assetcache.ErrEnumerationUnsupported)
}
