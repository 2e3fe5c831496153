package prometheus

import (
	"context"
	"time"

	"github.com/geotile/assetcache"
	"github.com/geotile/assetcache/metrics"
)

const (
	resultHit     = "hit"
	resultMiss    = "miss"
	resultSuccess = "success"
	resultError   = "error"
)

// InstrumentedBackend wraps an assetcache.Backend, recording Prometheus
// metrics for every Get/Set/Delete.
type InstrumentedBackend struct {
	underlying assetcache.Backend
	collector  metrics.Collector
	backend    string
}

// NewInstrumentedBackend wraps backend, labeling every recorded metric with
// name (e.g. "redis", "disk", "mongo"). A nil collector uses
// metrics.DefaultCollector.
func NewInstrumentedBackend(backend assetcache.Backend, name string, collector metrics.Collector) *InstrumentedBackend {
	if collector == nil {
		collector = metrics.DefaultCollector
	}
	return &InstrumentedBackend{underlying: backend, collector: collector, backend: name}
}

func (b *InstrumentedBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	start := time.Now()
	value, ok, err := b.underlying.Get(ctx, key)
	duration := time.Since(start)

	result := resultMiss
	if err != nil {
		result = resultError
	} else if ok {
		result = resultHit
	}
	b.collector.RecordCacheOperation("get", b.backend, result, duration)
	return value, ok, err
}

func (b *InstrumentedBackend) Set(ctx context.Context, key string, value []byte) error {
	start := time.Now()
	err := b.underlying.Set(ctx, key, value)
	duration := time.Since(start)

	result := resultSuccess
	if err != nil {
		result = resultError
	}
	b.collector.RecordCacheOperation("set", b.backend, result, duration)
	return err
}

func (b *InstrumentedBackend) Delete(ctx context.Context, key string) error {
	start := time.Now()
	err := b.underlying.Delete(ctx, key)
	duration := time.Since(start)

	result := resultSuccess
	if err != nil {
		result = resultError
	}
	b.collector.RecordCacheOperation("delete", b.backend, result, duration)
	return err
}

func (b *InstrumentedBackend) Keys(ctx context.Context) ([]string, error) {
	return b.underlying.Keys(ctx)
}

var _ assetcache.Backend = (*InstrumentedBackend)(nil)
