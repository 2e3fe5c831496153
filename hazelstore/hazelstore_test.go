package hazelstore

import (
	"context"
	"testing"
	"time"

	"github.com/hazelcast/hazelcast-go-client"
	"github.com/hazelcast/hazelcast-go-client/types"

	"github.com/geotile/assetcache/test"
)

func setupHazelstoreBackend(t *testing.T) (*Backend, func()) {
	t.Helper()

	ctx := context.Background()

	config := hazelcast.Config{}
	config.Cluster.Network.SetAddresses("localhost:5701")
	config.Cluster.Unisocket = true
	config.Cluster.ConnectionStrategy.Timeout = types.Duration(5 * time.Second)

	client, err := hazelcast.StartNewClientWithConfig(ctx, config)
	if err != nil {
		t.Skipf("skipping test; no Hazelcast server running at localhost:5701: %v", err)
	}

	m, err := client.GetMap(ctx, "assetcache-test")
	if err != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_ = client.Shutdown(shutdownCtx)
		cancel()
		t.Fatalf("failed to get Hazelcast map: %v", err)
	}
	if err := m.Clear(ctx); err != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_ = client.Shutdown(shutdownCtx)
		cancel()
		t.Fatalf("failed to clear Hazelcast map: %v", err)
	}

	cleanup := func() {
		clearCtx, clearCancel := context.WithTimeout(context.Background(), 2*time.Second)
		_ = m.Clear(clearCtx)
		clearCancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = client.Shutdown(shutdownCtx)
		shutdownCancel()
	}

	return New(m), cleanup
}

func TestHazelstoreConformance(t *testing.T) {
	backend, cleanup := setupHazelstoreBackend(t)
	defer cleanup()

	test.Backend(t, backend)
}
