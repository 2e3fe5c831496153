package assetcache

// MetricsRecorder observes Store/CachingTransport operations. The
// metrics/prometheus subpackage is the concrete implementation
// (prometheus/client_golang CounterVec/HistogramVec/GaugeVec); nil is a
// valid MetricsRecorder-less default everywhere it is threaded through.
type MetricsRecorder interface {
	// ObserveCacheOp records one Store operation ("get" or "put") and
	// whether it hit an existing entry.
	ObserveCacheOp(op string, hit bool)
	// ObserveStoreSize reports the store's current tracked size in bytes
	// and entry count, called after every Prune.
	ObserveStoreSize(bytes int64, entries int)
}
