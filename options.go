package assetcache

// TransportOption configures a CachingTransport using the functional-options
// pattern.
type TransportOption func(*CachingTransport)

// WithTransportMetrics attaches a MetricsRecorder so CachingTransport
// observes cache hit/miss/revalidate operations alongside Store's own
// ObserveCacheOp calls (metrics.go, metrics/prometheus).
func WithTransportMetrics(m MetricsRecorder) TransportOption {
	return func(t *CachingTransport) { t.metrics = m }
}

// WithMarkCachedResponses sets whether responses served from the cache get
// an X-From-Cache: 1 header. Default: false.
func WithMarkCachedResponses(mark bool) TransportOption {
	return func(t *CachingTransport) { t.markCached = mark }
}

// WithCacheKeyHeaders folds the named request headers into the cache key,
// so that e.g. Authorization-scoped responses never collide across callers.
func WithCacheKeyHeaders(headers []string) TransportOption {
	return func(t *CachingTransport) { t.cacheKeyHeaders = headers }
}

// WithDisableWarningHeader suppresses the RFC 7234 Warning header
// (obsoleted by RFC 9111) that is added to stale responses served within a
// stale-while-revalidate window. No Warning is added on a failed
// revalidation.
func WithDisableWarningHeader(disable bool) TransportOption {
	return func(t *CachingTransport) { t.disableWarning = disable }
}

// WithRequestsPerPrune sets how many requests CachingTransport counts
// before triggering a detached store prune. Default: 10000.
// A value <= 0 disables automatic pruning.
func WithRequestsPerPrune(n int64) TransportOption {
	return func(t *CachingTransport) { t.requestsPerPrune = n }
}

// WithResilience wraps every inner Transport call in the given retry/
// circuit-breaker policies (resilience.go).
func WithResilience(cfg *ResilienceConfig) TransportOption {
	return func(t *CachingTransport) { t.resilience = cfg }
}
