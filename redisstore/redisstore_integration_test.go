//go:build integration

package redisstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	rediscontainer "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/geotile/assetcache/test"
)

func TestRedisstoreIntegration(t *testing.T) {
	ctx := context.Background()

	container, err := rediscontainer.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	defer func() { require.NoError(t, testcontainers.TerminateContainer(container)) }()

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	backend, err := New(ctx, Config{Address: endpoint})
	require.NoError(t, err)
	defer backend.Close()

	test.Backend(t, backend)
}
