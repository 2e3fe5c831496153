//go:build integration

package memcachestore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	memcachedcontainer "github.com/testcontainers/testcontainers-go/modules/memcached"

	"github.com/geotile/assetcache"
	"github.com/geotile/assetcache/test"
)

func TestMemcachestoreIntegration(t *testing.T) {
	ctx := context.Background()

	container, err := memcachedcontainer.Run(ctx, "memcached:1.6-alpine")
	require.NoError(t, err)
	defer func() { require.NoError(t, testcontainers.TerminateContainer(container)) }()

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	backend := New(endpoint)

	test.Backend(t, backend)
}

func TestMemcachestoreKeysUnsupported(t *testing.T) {
	ctx := context.Background()

	container, err := memcachedcontainer.Run(ctx, "memcached:1.6-alpine")
	require.NoError(t, err)
	defer func() { require.NoError(t, testcontainers.TerminateContainer(container)) }()

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	backend := New(endpoint)

	_, err = backend.Keys(ctx)
	require.ErrorIs(t, err, assetcache.ErrEnumerationUnsupported)
}
