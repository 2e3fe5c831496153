// Package assetcache is an RFC 9111 response cache and the future/
// continuation runtime that schedules it, extracted from a 3D-tile/glTF
// streaming engine's asset-fetch pipeline. It caches responses from an
// arbitrary Transport (not necessarily net/http) behind a CachingTransport,
// storing entries in a pluggable CacheStore and parsing Cache-Control with
// CacheControlParser.
package assetcache

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/geotile/assetcache/async"
)

// Transport is the trait every asset fetcher (cached or not) implements.
// Request returns a Future that resolves even when the underlying fetch
// produced no response (a nil *Response, not an error); Tick lets an
// embedder pump any per-tick bookkeeping the transport needs
// (CachingTransport's Tick does nothing; it prunes by request count).
type Transport interface {
	Request(rt *async.Runtime, url string, headers HttpHeaders) *async.Future[*Response]
	Tick()
}

// CachingTransport wraps an inner Transport with an RFC 9111 cache. It
// implements Transport itself, so caching transports compose.
type CachingTransport struct {
	inner Transport
	store *Store

	requestsPerPrune int64
	requestCounter   atomic.Int64

	cacheKeyHeaders []string
	markCached      bool
	disableWarning  bool
	resilience      *ResilienceConfig
	metrics         MetricsRecorder
}

// recordOp reports a request-level cache operation to the transport's
// MetricsRecorder, if one is configured.
func (t *CachingTransport) recordOp(op string, hit bool) {
	if t.metrics != nil {
		t.metrics.ObserveCacheOp(op, hit)
	}
}

// NewCachingTransport builds a CachingTransport around inner, storing
// entries in store. Defaults: requests_per_prune=10000.
func NewCachingTransport(inner Transport, store *Store, opts ...TransportOption) *CachingTransport {
	t := &CachingTransport{
		inner:            inner,
		store:            store,
		requestsPerPrune: 10000,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Tick is a no-op for CachingTransport: pruning is triggered inline by
// request volume, not by a tick.
func (t *CachingTransport) Tick() {}

// Request implements the caching request algorithm:
//
//  1. compute the cache key
//  2. look the key up in the store
//  3. absent -> fetch, then (if cacheable) store and resolve
//  4. present+fresh -> resolve immediately, no fetch
//  5. present+stale -> conditional re-fetch with validators
//  6. fetch runs on the worker pool
//  7. on 304, merge into the stored entry instead of replacing it
//  8. the store write and the response's resolution both run as worker
//     continuations (ThenWorker), never on the main scheduler; ThenMain is
//     reserved for the embedder's own continuations on the Future Request
//     returns
func (t *CachingTransport) Request(rt *async.Runtime, url string, headers HttpHeaders) *async.Future[*Response] {
	t.maybeTriggerPrune(rt)

	key := ComputeCacheKey(url, headers, t.cacheKeyHeaders)

	fetch := async.SpawnWorker(rt, func() (*async.Future[*Response], error) {
		entry, found, err := t.store.Get(context.Background(), key)
		if err != nil {
			// Backend failure on read is not fatal to the request: treat
			// as a miss rather than failing the caller.
			found = false
		}

		now := time.Now()
		switch {
		case !found:
			t.recordOp("get", false)
			return t.fetchAndStore(rt, url, key, headers, now), nil
		case !ShouldRevalidate(entry, now):
			t.recordOp("get", true)
			resp := entry.Response
			addAgeHeader(&resp, entry, now)
			if t.markCached {
				resp.Headers.Set("X-From-Cache", "1")
			}
			return async.Resolved(&resp), nil
		case t.withinStaleWhileRevalidate(entry, now):
			t.recordOp("get", true)
			resp := entry.Response
			addAgeHeader(&resp, entry, now)
			if !t.disableWarning {
				addStaleWarning(&resp)
			}
			async.SpawnWorker(rt, func() (struct{}, error) {
				t.revalidate(rt, url, key, headers, entry, now).Await(context.Background())
				return struct{}{}, nil
			})
			return async.Resolved(&resp), nil
		default:
			t.recordOp("get", true)
			return t.revalidate(rt, url, key, headers, entry, now), nil
		}
	})

	return async.ThenWorkerFuture(rt, fetch, func(f *async.Future[*Response]) *async.Future[*Response] {
		return f
	})
}

// fetchAndStore performs an uncached fetch and, if the response is
// cacheable, writes it before resolving.
func (t *CachingTransport) fetchAndStore(rt *async.Runtime, url, key string, headers HttpHeaders, now time.Time) *async.Future[*Response] {
	inner := t.executeInner(rt, url, headers)
	return async.ThenWorker(rt, inner, func(resp *Response) (*Response, error) {
		if resp == nil {
			return nil, nil
		}
		t.storeIfCacheable(context.Background(), url, headers, resp, now)
		return resp, nil
	})
}

// revalidate conditionally re-fetches a stale entry with validators and
// merges a 304 response into the stored entry.
func (t *CachingTransport) revalidate(rt *async.Runtime, url, key string, headers HttpHeaders, entry *CacheEntry, now time.Time) *async.Future[*Response] {
	condHeaders := headers.Clone()
	if etag := entry.Response.Headers.Get("ETag"); etag != "" {
		condHeaders.Set("If-None-Match", etag)
	}
	if lm := entry.Response.Headers.Get("Last-Modified"); lm != "" {
		condHeaders.Set("If-Modified-Since", lm)
	}

	inner := t.executeInner(rt, url, condHeaders)
	return async.ThenWorker(rt, inner, func(resp *Response) (*Response, error) {
		if resp == nil {
			return nil, nil
		}
		if resp.StatusCode == 304 {
			merged := mergeNotModified(entry, resp)
			if err := t.store.Put(context.Background(), key, merged); err != nil {
				GetLogger().Warn("cache store failed", "url", url, "error", err)
			}
			mresp := merged.Response
			addAgeHeader(&mresp, merged, now)
			mresp.Headers.Set("X-Revalidated", "1")
			return &mresp, nil
		}
		t.storeIfCacheable(context.Background(), url, headers, resp, now)
		return resp, nil
	})
}

// executeInner calls the inner Transport on the worker pool, wrapped in
// resilience policies (retry/circuit-breaker) if configured.
func (t *CachingTransport) executeInner(rt *async.Runtime, url string, headers HttpHeaders) *async.Future[*Response] {
	if t.resilience == nil {
		return t.inner.Request(rt, url, headers)
	}
	return async.SpawnWorker(rt, func() (*Response, error) {
		return t.resilience.Execute(func() (*Response, error) {
			return t.inner.Request(rt, url, headers).Await(context.Background())
		})
	})
}

// storeIfCacheable parses Cache-Control and, if the response qualifies,
// writes a new CacheEntry. Storage errors are logged and otherwise ignored;
// a failed write never fails the in-flight request.
func (t *CachingTransport) storeIfCacheable(ctx context.Context, url string, reqHeaders HttpHeaders, resp *Response, now time.Time) {
	cc, err := ParseCacheControl(resp.Headers)
	if err != nil {
		GetLogger().Warn("cache-control parse failed, not caching", "url", url, "error", err)
		return
	}
	if !ShouldCache("GET", resp.StatusCode, resp.Headers, cc, now) {
		return
	}
	entry := &CacheEntry{
		ExpiryTime:   ExpiryTime(resp.Headers, cc, now),
		LastAccessed: now,
		Request:      CachedRequest{Method: "GET", URL: url, Headers: reqHeaders},
		Response:     *resp,
	}
	key := ComputeCacheKey(url, reqHeaders, t.cacheKeyHeaders)
	if err := t.store.Put(ctx, key, entry); err != nil {
		GetLogger().Warn("cache store failed", "url", url, "error", err)
	}
}

// withinStaleWhileRevalidate reports whether entry's stored response
// carried stale-while-revalidate (RFC 5861) and the current moment still
// falls inside that grace window, letting CachingTransport serve the stale
// body immediately while revalidating in the background instead of
// blocking the caller.
func (t *CachingTransport) withinStaleWhileRevalidate(entry *CacheEntry, now time.Time) bool {
	cc, err := ParseCacheControl(entry.Response.Headers)
	if err != nil || cc == nil || cc.StaleWhileRevalidate == nil {
		return false
	}
	grace := entry.ExpiryTime.Add(time.Duration(*cc.StaleWhileRevalidate) * time.Second)
	return now.Before(grace)
}

// maybeTriggerPrune increments the request counter and, once it rolls over
// requestsPerPrune, fires a detached worker job that prunes the store.
// Exact counting under concurrent access is not required: an occasional
// extra or skipped prune trigger is harmless.
func (t *CachingTransport) maybeTriggerPrune(rt *async.Runtime) {
	if t.requestsPerPrune <= 0 {
		return
	}
	n := t.requestCounter.Add(1)
	if n%t.requestsPerPrune != 0 {
		return
	}
	async.SpawnWorker(rt, func() (struct{}, error) {
		if err := t.store.Prune(context.Background()); err != nil {
			GetLogger().Warn("cache prune failed", "error", err)
		}
		return struct{}{}, nil
	})
}

// mergeNotModified builds the CacheEntry that results from a 304 response:
// the stored body is kept, but end-to-end response headers from the 304 are
// merged in.
func mergeNotModified(entry *CacheEntry, resp304 *Response) *CacheEntry {
	merged := *entry
	merged.Response.Headers = entry.Response.Headers.Clone()
	resp304.Headers.Iterate(func(name, value string) {
		switch name {
		case "Content-Length", "Connection", "Transfer-Encoding":
			return
		}
		merged.Response.Headers.Set(name, value)
	})
	now := time.Now()
	merged.LastAccessed = now
	cc, _ := ParseCacheControl(merged.Response.Headers)
	merged.ExpiryTime = ExpiryTime(merged.Response.Headers, cc, now)
	return &merged
}
