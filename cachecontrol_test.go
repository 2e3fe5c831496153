package assetcache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func headersWithCacheControl(v string) HttpHeaders {
	h := NewHttpHeaders()
	h.Set("Cache-Control", v)
	return h
}

func TestParseCacheControlAbsentHeader(t *testing.T) {
	cc, err := ParseCacheControl(NewHttpHeaders())
	require.NoError(t, err)
	require.Nil(t, cc)
}

func TestParseCacheControlDirectives(t *testing.T) {
	cc, err := ParseCacheControl(headersWithCacheControl(
		`max-age=60, no-cache, must-revalidate, stale-while-revalidate=30, private`))
	require.NoError(t, err)
	require.NotNil(t, cc)
	require.True(t, cc.NoCache)
	require.True(t, cc.MustRevalidate)
	require.True(t, cc.Private)
	require.NotNil(t, cc.MaxAge)
	require.Equal(t, 60, *cc.MaxAge)
	require.NotNil(t, cc.StaleWhileRevalidate)
	require.Equal(t, 30, *cc.StaleWhileRevalidate)
}

func TestParseCacheControlRejectsNonNumericMaxAge(t *testing.T) {
	_, err := ParseCacheControl(headersWithCacheControl("max-age=soon"))
	require.Error(t, err)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
}

func TestParseCacheControlRejectsNegativeMaxAge(t *testing.T) {
	_, err := ParseCacheControl(headersWithCacheControl("max-age=-1"))
	require.Error(t, err)
}

func TestParseCacheControlRejectsFloatMaxAge(t *testing.T) {
	_, err := ParseCacheControl(headersWithCacheControl("max-age=1.5"))
	require.Error(t, err)
}

func TestParseCacheControlIgnoresUnknownDirectives(t *testing.T) {
	cc, err := ParseCacheControl(headersWithCacheControl("community=UCI, max-age=5"))
	require.NoError(t, err)
	require.NotNil(t, cc.MaxAge)
	require.Equal(t, 5, *cc.MaxAge)
}

func TestShouldCacheRejectsNonGet(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cc := &CacheControl{MaxAge: intPtr(60)}
	require.False(t, ShouldCache("POST", 200, NewHttpHeaders(), cc, now))
}

func TestShouldCacheAcceptsKnownStatusCodes(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cc := &CacheControl{MaxAge: intPtr(60)}
	for _, code := range []uint16{200, 201, 202, 203, 204, 205, 304} {
		require.True(t, ShouldCache("GET", code, NewHttpHeaders(), cc, now), "status %d", code)
	}
}

func TestShouldCacheRejectsUnknownStatusCodes(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cc := &CacheControl{MaxAge: intPtr(60)}
	for _, code := range []uint16{300, 301, 404, 405, 410, 414, 418, 501} {
		require.False(t, ShouldCache("GET", code, NewHttpHeaders(), cc, now), "status %d", code)
	}
}

func TestShouldCacheRejectsNoStore(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cc := &CacheControl{NoStore: true, MaxAge: intPtr(60)}
	require.False(t, ShouldCache("GET", 200, NewHttpHeaders(), cc, now))
}

func TestShouldCacheRejectsNoCache(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cc := &CacheControl{NoCache: true, MaxAge: intPtr(60)}
	require.False(t, ShouldCache("GET", 200, NewHttpHeaders(), cc, now))
}

func TestShouldCacheRejectsNoExplicitFreshness(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require.False(t, ShouldCache("GET", 200, NewHttpHeaders(), nil, now))
}

func TestShouldCacheAcceptsFutureExpiresWithoutMaxAge(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	headers := NewHttpHeaders()
	headers.Set("Expires", FormatHTTPDate(now.Add(time.Hour)))
	require.True(t, ShouldCache("GET", 200, headers, nil, now))
}

func TestShouldCacheRejectsPastExpiresWithoutMaxAge(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	headers := NewHttpHeaders()
	headers.Set("Expires", FormatHTTPDate(now.Add(-time.Hour)))
	require.False(t, ShouldCache("GET", 200, headers, nil, now))
}

func TestExpiryTimePrefersMaxAge(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cc := &CacheControl{MaxAge: intPtr(30)}
	headers := NewHttpHeaders()
	headers.Set("Expires", FormatHTTPDate(now.Add(time.Hour)))

	got := ExpiryTime(headers, cc, now)
	require.Equal(t, now.Add(30*time.Second), got)
}

func TestExpiryTimeFallsBackToExpiresHeader(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	expires := now.Add(2 * time.Hour)
	headers := NewHttpHeaders()
	headers.Set("Expires", FormatHTTPDate(expires))

	got := ExpiryTime(headers, nil, now)
	require.Equal(t, expires.Unix(), got.Unix())
}

func TestExpiryTimeNoHeadersMeansAlreadyExpired(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	got := ExpiryTime(NewHttpHeaders(), nil, now)
	require.Equal(t, now, got)
}

func TestShouldRevalidate(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	fresh := &CacheEntry{ExpiryTime: now.Add(time.Minute)}
	stale := &CacheEntry{ExpiryTime: now.Add(-time.Minute)}

	require.False(t, ShouldRevalidate(fresh, now))
	require.True(t, ShouldRevalidate(stale, now))
}

func intPtr(n int) *int { return &n }
