package assetcache

import "time"

// Response is the inner Transport's result: a status code, response headers
// and a body. A nil *Response (with a nil error) represents a
// transport-level null response, distinct from a transport error.
type Response struct {
	StatusCode uint16
	Headers    HttpHeaders
	Body       []byte
}

// CachedRequest is the minimal request context recorded alongside a
// CacheEntry: enough to reconstruct a conditional revalidation request.
type CachedRequest struct {
	Method  string
	URL     string
	Headers HttpHeaders
}

// CacheEntry is one stored cache record. ExpiryTime is the absolute
// wall-clock time after which the entry is stale and must be revalidated
// before reuse. LastAccessed backs the store's LRU eviction policy and is
// not required to survive a process restart.
type CacheEntry struct {
	ExpiryTime   time.Time
	LastAccessed time.Time
	Request      CachedRequest
	Response     Response
}

// Size approximates the entry's footprint for CacheStore's max_bytes bound:
// response body plus a fixed overhead for headers/metadata.
func (e *CacheEntry) Size() int64 {
	n := int64(len(e.Response.Body))
	e.Response.Headers.Iterate(func(name, value string) {
		n += int64(len(name) + len(value))
	})
	e.Request.Headers.Iterate(func(name, value string) {
		n += int64(len(name) + len(value))
	})
	n += int64(len(e.Request.URL) + len(e.Request.Method))
	return n
}
