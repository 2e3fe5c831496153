package natsstore

import (
	"context"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/require"

	"github.com/geotile/assetcache"
	"github.com/geotile/assetcache/test"
)

func startNATSServer(t *testing.T) *server.Server {
	t.Helper()

	opts := &server.Options{
		JetStream: true,
		Port:      -1,
		Host:      "127.0.0.1",
	}

	ns, err := server.NewServer(opts)
	require.NoError(t, err)

	go ns.Start()

	if !ns.ReadyForConnections(4 * time.Second) {
		t.Fatal("NATS server did not start in time")
	}
	return ns
}

func setupNatsstoreBackend(t *testing.T) (*Backend, func()) {
	t.Helper()

	ns := startNATSServer(t)

	nc, err := nats.Connect(ns.ClientURL())
	require.NoError(t, err)

	js, err := jetstream.New(nc)
	require.NoError(t, err)

	ctx := context.Background()
	kv, err := js.CreateKeyValue(ctx, jetstream.KeyValueConfig{Bucket: "assetcache_test"})
	require.NoError(t, err)

	cleanup := func() {
		nc.Close()
		ns.Shutdown()
	}
	return NewWithKeyValue(kv), cleanup
}

func TestNatsstoreConformance(t *testing.T) {
	backend, cleanup := setupNatsstoreBackend(t)
	defer cleanup()

	test.Backend(t, backend)
}

func TestNatsstoreKeysUnsupported(t *testing.T) {
	backend, cleanup := setupNatsstoreBackend(t)
	defer cleanup()

	_, err := backend.Keys(context.Background())
	require.ErrorIs(t, err, assetcache.ErrEnumerationUnsupported)
}
