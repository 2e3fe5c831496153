package assetcache

import (
	"strconv"
	"strings"
	"time"
)

// CacheControl is the parsed form of a Cache-Control header: every field is
// optional, nil/false meaning the directive was absent. Directives are
// comma-separated, optionally name=value, each trimmed before matching
// (must-revalidate, no-cache, no-store, no-transform, public, private,
// proxy-revalidate, max-age, s-maxage, stale-while-revalidate).
type CacheControl struct {
	MustRevalidate       bool
	NoCache              bool
	NoStore              bool
	NoTransform          bool
	Public               bool
	Private              bool
	ProxyRevalidate      bool
	MaxAge               *int
	SMaxage              *int
	StaleWhileRevalidate *int
}

// ParseCacheControl parses the Cache-Control header stored in headers. A
// missing header returns (nil, nil): absence is not an error. A directive
// with an unparseable numeric value (non-numeric, or containing a decimal
// point) returns a *ParseError wrapping ErrParse.
func ParseCacheControl(headers HttpHeaders) (*CacheControl, error) {
	raw := headers.Get("Cache-Control")
	if raw == "" {
		return nil, nil
	}

	cc := &CacheControl{}
	for _, directive := range strings.Split(raw, ",") {
		directive = strings.TrimSpace(directive)
		if directive == "" {
			continue
		}
		name, value, hasValue := strings.Cut(directive, "=")
		name = strings.ToLower(strings.TrimSpace(name))
		if hasValue {
			value = strings.TrimSpace(strings.Trim(value, `"`))
		}

		switch name {
		case "must-revalidate":
			cc.MustRevalidate = true
		case "no-cache":
			cc.NoCache = true
		case "no-store":
			cc.NoStore = true
		case "no-transform":
			cc.NoTransform = true
		case "public":
			cc.Public = true
		case "private":
			cc.Private = true
		case "proxy-revalidate":
			cc.ProxyRevalidate = true
		case "max-age":
			n, err := parseDeltaSeconds(value)
			if err != nil {
				return nil, &ParseError{Directive: directive, Err: err}
			}
			cc.MaxAge = &n
		case "s-maxage":
			n, err := parseDeltaSeconds(value)
			if err != nil {
				return nil, &ParseError{Directive: directive, Err: err}
			}
			cc.SMaxage = &n
		case "stale-while-revalidate":
			n, err := parseDeltaSeconds(value)
			if err != nil {
				return nil, &ParseError{Directive: directive, Err: err}
			}
			cc.StaleWhileRevalidate = &n
		default:
			// Unknown directives are ignored, matching
			// ResponseCacheControl.cpp's fixed recognized set.
		}
	}
	return cc, nil
}

// parseDeltaSeconds parses a delta-seconds value (RFC 9111 §1.2.2): a
// non-negative integer. Floats and negative values are rejected.
func parseDeltaSeconds(value string) (int, error) {
	if value == "" || strings.ContainsAny(value, ".eE") {
		return 0, strconv.ErrSyntax
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, strconv.ErrRange
	}
	return n, nil
}

// ShouldCache decides, for a GET response, whether CachingTransport may
// store it at all: the status must be one of the cacheable-by-default
// codes, neither no-store nor no-cache may be present, and the response
// must carry an explicit freshness lifetime (max-age, or an Expires in the
// future); nothing is cached by default.
func ShouldCache(method string, statusCode uint16, headers HttpHeaders, cc *CacheControl, now time.Time) bool {
	if method != "GET" {
		return false
	}
	switch statusCode {
	case 200, 201, 202, 203, 204, 205, 304:
	default:
		return false
	}
	if cc != nil && (cc.NoStore || cc.NoCache) {
		return false
	}
	if cc != nil && cc.MaxAge != nil {
		return true
	}
	if expires := headers.Get("Expires"); expires != "" {
		if t, err := ParseHTTPDate(expires); err == nil && t.After(now) {
			return true
		}
	}
	return false
}

// ExpiryTime computes the absolute wall-clock expiry for a freshly fetched
// response, given the time it was received. max-age takes precedence over
// Expires, which takes precedence over "expire immediately" when neither is
// present.
func ExpiryTime(headers HttpHeaders, cc *CacheControl, receivedAt time.Time) time.Time {
	if cc != nil && cc.MaxAge != nil {
		return receivedAt.Add(time.Duration(*cc.MaxAge) * time.Second)
	}
	if expires := headers.Get("Expires"); expires != "" {
		if t, err := ParseHTTPDate(expires); err == nil {
			return t
		}
	}
	return receivedAt
}

// ShouldRevalidate reports whether a stored entry must be revalidated before
// being returned. This cache always revalidates a stale entry; must-
// revalidate on the stored response's Cache-Control does not relax that,
// so it is folded into the always-true stale case rather than checked
// separately.
func ShouldRevalidate(entry *CacheEntry, now time.Time) bool {
	return now.After(entry.ExpiryTime)
}
