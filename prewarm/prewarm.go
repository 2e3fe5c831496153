// Package prewarm proactively populates a CachingTransport's store before
// requests arrive, reducing first-access latency for known critical assets.
// It drives the same async.Runtime/Transport the rest of the module uses;
// XML sitemap crawling is out of scope (a web-crawling concern, orthogonal
// to a tile/glTF asset cache where callers already know their URL lists).
package prewarm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/geotile/assetcache"
	"github.com/geotile/assetcache/async"
)

// Result is the outcome of prewarming a single URL.
type Result struct {
	URL        string
	Success    bool
	StatusCode int
	Duration   time.Duration
	Size       int64
	Error      error
}

// Stats aggregates the outcome of a Prewarm call.
type Stats struct {
	Total         int
	Successful    int
	Failed        int
	TotalDuration time.Duration
	TotalBytes    int64
	Errors        []error
}

// ProgressCallback is invoked after each URL is processed. Calls come one at
// a time from the goroutine running PrewarmConcurrent, whatever the
// concurrency.
type ProgressCallback func(result *Result, completed, total int)

// Prewarmer issues requests for a fixed set of URLs through a Transport
// (typically a CachingTransport), forcing their responses into cache.
type Prewarmer struct {
	transport assetcache.Transport
	headers   assetcache.HttpHeaders
	timeout   time.Duration
}

// New builds a Prewarmer that drives transport. headers are sent with every
// prewarm request (e.g. an Authorization header needed to reach the asset
// origin). A zero timeout disables the per-request deadline.
func New(transport assetcache.Transport, headers assetcache.HttpHeaders, timeout time.Duration) *Prewarmer {
	return &Prewarmer{transport: transport, headers: headers, timeout: timeout}
}

// Prewarm fetches urls sequentially through rt, one at a time.
func (p *Prewarmer) Prewarm(ctx context.Context, rt *async.Runtime, urls []string) (*Stats, error) {
	return p.PrewarmConcurrent(ctx, rt, urls, 1, nil)
}

// PrewarmConcurrent fetches urls through rt with up to workers requests
// in flight at once. workers <= 0 is treated as 1.
func (p *Prewarmer) PrewarmConcurrent(ctx context.Context, rt *async.Runtime, urls []string, workers int, callback ProgressCallback) (*Stats, error) {
	if workers <= 0 {
		workers = 1
	}
	start := time.Now()
	stats := &Stats{Total: len(urls)}

	sem := make(chan struct{}, workers)
	results := make(chan *Result, len(urls))
	var wg sync.WaitGroup

	for _, url := range urls {
		select {
		case <-ctx.Done():
			wg.Wait()
			stats.TotalDuration = time.Since(start)
			return stats, ctx.Err()
		default:
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(url string) {
			defer wg.Done()
			defer func() { <-sem }()
			results <- p.fetchOne(ctx, rt, url)
		}(url)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for result := range results {
		completed++
		if result.Success {
			stats.Successful++
			stats.TotalBytes += result.Size
		} else {
			stats.Failed++
			if result.Error != nil {
				stats.Errors = append(stats.Errors, result.Error)
			}
		}
		if callback != nil {
			callback(result, completed, len(urls))
		}
	}

	stats.TotalDuration = time.Since(start)
	return stats, nil
}

func (p *Prewarmer) fetchOne(ctx context.Context, rt *async.Runtime, url string) *Result {
	result := &Result{URL: url}
	start := time.Now()

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	resp, err := p.transport.Request(rt, url, p.headers.Clone()).Await(ctx)
	result.Duration = time.Since(start)
	if err != nil {
		result.Error = fmt.Errorf("prewarm %q: %w", url, err)
		return result
	}
	if resp == nil {
		result.Error = fmt.Errorf("prewarm %q: no response", url)
		return result
	}

	result.StatusCode = int(resp.StatusCode)
	result.Size = int64(len(resp.Body))
	result.Success = resp.StatusCode >= 200 && resp.StatusCode < 400
	if !result.Success {
		result.Error = fmt.Errorf("prewarm %q: status %d", url, resp.StatusCode)
	}
	return result
}
