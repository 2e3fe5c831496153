//go:build integration

package mongostore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"

	"github.com/geotile/assetcache/test"
)

func TestMongostoreIntegration(t *testing.T) {
	ctx := context.Background()

	container, err := mongodb.Run(ctx, "mongo:8",
		mongodb.WithUsername("root"),
		mongodb.WithPassword("password"),
	)
	require.NoError(t, err)
	defer func() { require.NoError(t, container.Terminate(ctx)) }()

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	config := Config{
		URI:        uri,
		Database:   "assetcache_test",
		Collection: "integration",
		Timeout:    10 * time.Second,
	}

	backend, err := New(ctx, config)
	require.NoError(t, err)
	defer backend.Close(ctx)

	test.Backend(t, backend)
}
