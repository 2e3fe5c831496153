package assetcache

import (
	"sort"
	"strings"
)

// ComputeCacheKey builds the CacheKey for a GET request to url. When
// keyHeaders is non-empty, the normalized values of those request headers
// are folded into the key (sorted for determinism). There is no
// server-declared Vary set here: CacheEntry carries no Vary header of its
// own, so only the caller-configured header list, not an arbitrary response
// Vary header, ever changes the key.
func ComputeCacheKey(url string, headers HttpHeaders, keyHeaders []string) string {
	if len(keyHeaders) == 0 {
		return url
	}

	var parts []string
	for _, name := range keyHeaders {
		value := headers.Get(name)
		if value == "" {
			continue
		}
		parts = append(parts, canonicalHeaderName(name)+":"+normalizeHeaderValue(value))
	}
	if len(parts) == 0 {
		return url
	}
	sort.Strings(parts)
	return url + "|" + strings.Join(parts, "|")
}

// normalizeHeaderValue collapses whitespace runs to a single space and
// removes the space after list-separating commas, so "en, fr" and "en,fr"
// fold into the same cache key.
func normalizeHeaderValue(value string) string {
	value = strings.TrimSpace(value)

	var b strings.Builder
	prevSpace := false
	for _, r := range value {
		switch r {
		case ' ', '\t', '\n', '\r':
			if !prevSpace {
				b.WriteRune(' ')
				prevSpace = true
			}
		default:
			b.WriteRune(r)
			prevSpace = false
		}
	}
	return strings.ReplaceAll(b.String(), ", ", ",")
}
