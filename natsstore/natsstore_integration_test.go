//go:build integration

package natsstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	natscontainer "github.com/testcontainers/testcontainers-go/modules/nats"

	"github.com/geotile/assetcache/test"
)

func TestNatsstoreIntegration(t *testing.T) {
	ctx := context.Background()

	container, err := natscontainer.Run(ctx, "nats:2-alpine", testcontainers.WithCmd("-js"))
	require.NoError(t, err)
	defer func() { require.NoError(t, testcontainers.TerminateContainer(container)) }()

	endpoint, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	config := Config{
		NATSUrl: endpoint,
		Bucket:  "assetcache_integration",
	}

	backend, err := New(ctx, config)
	require.NoError(t, err)
	defer backend.Close()

	test.Backend(t, backend)
}
