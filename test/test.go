// Package test holds a shared conformance check exercised against every
// assetcache.Backend implementation.
package test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/geotile/assetcache"
)

// Backend exercises an assetcache.Backend implementation's Get/Set/Delete
// contract: miss before write, round-trip after Set, miss again after
// Delete.
func Backend(t *testing.T, backend assetcache.Backend) {
	t.Helper()
	ctx := context.Background()
	key := "testKey"

	_, ok, err := backend.Get(ctx, key)
	require.NoError(t, err)
	require.False(t, ok, "retrieved key before adding it")

	val := []byte("some bytes")
	require.NoError(t, backend.Set(ctx, key, val))

	retVal, ok, err := backend.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok, "could not retrieve an element we just added")
	require.True(t, bytes.Equal(retVal, val), "retrieved a different value than what we put in")

	require.NoError(t, backend.Delete(ctx, key))

	_, ok, err = backend.Get(ctx, key)
	require.NoError(t, err)
	require.False(t, ok, "deleted key still present")
}
