// Package httptransport is a net/http-backed assetcache.Transport: the
// concrete "fetch this URL over the wire" implementation that CachingTransport
// wraps in production, as opposed to the scripted fakes the module's own
// tests use. HTTP over net/http is the only wire format this module
// supports.
package httptransport

import (
	"io"
	"net/http"
	"time"

	"github.com/geotile/assetcache"
	"github.com/geotile/assetcache/async"
)

// Transport issues GET requests via an http.Client and converts the result
// to assetcache.Response.
type Transport struct {
	client *http.Client
}

// New builds a Transport using http.DefaultClient's settings with the given
// timeout. A zero timeout means no client-side deadline.
func New(timeout time.Duration) *Transport {
	return &Transport{client: &http.Client{Timeout: timeout}}
}

// NewWithClient wraps an already-configured http.Client.
func NewWithClient(client *http.Client) *Transport {
	return &Transport{client: client}
}

// Request performs a synchronous GET on the worker pool and resolves the
// returned Future with the result.
func (t *Transport) Request(rt *async.Runtime, url string, headers assetcache.HttpHeaders) *async.Future[*assetcache.Response] {
	return async.SpawnWorker(rt, func() (*assetcache.Response, error) {
		req, err := http.NewRequest(http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		headers.Iterate(func(name, value string) {
			req.Header.Add(name, value)
		})

		resp, err := t.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}

		out := assetcache.NewHttpHeaders()
		for name, values := range resp.Header {
			for _, v := range values {
				out.Add(name, v)
			}
		}

		return &assetcache.Response{
			StatusCode: uint16(resp.StatusCode),
			Headers:    out,
			Body:       body,
		}, nil
	})
}

// Tick is a no-op: Transport has no periodic bookkeeping of its own.
func (t *Transport) Tick() {}

var _ assetcache.Transport = (*Transport)(nil)
