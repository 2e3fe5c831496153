package assetcache

import (
	"encoding/json"
	"net/textproto"
)

// HeaderPair is one name/value pair in an HttpHeaders ordered multimap.
type HeaderPair struct {
	Name  string
	Value string
}

// HttpHeaders is an ordered, case-insensitive multimap of header fields.
// Lookups canonicalize names the same way net/textproto does for
// net/http.Header, but insertion order and duplicate values are preserved
// for Iterate, matching the RFC 9111/7234 requirement that multi-valued
// headers (e.g. repeated Warning) round-trip intact.
type HttpHeaders struct {
	pairs []HeaderPair
}

// NewHttpHeaders builds an HttpHeaders from name/value pairs, preserving order.
func NewHttpHeaders(pairs ...HeaderPair) HttpHeaders {
	h := HttpHeaders{pairs: make([]HeaderPair, len(pairs))}
	copy(h.pairs, pairs)
	return h
}

func canonicalHeaderName(name string) string {
	return textproto.CanonicalMIMEHeaderKey(name)
}

// Add appends a value, keeping any existing values for name.
func (h *HttpHeaders) Add(name, value string) {
	h.pairs = append(h.pairs, HeaderPair{Name: canonicalHeaderName(name), Value: value})
}

// Set removes any existing values for name and stores a single value.
func (h *HttpHeaders) Set(name, value string) {
	name = canonicalHeaderName(name)
	out := h.pairs[:0]
	for _, p := range h.pairs {
		if p.Name != name {
			out = append(out, p)
		}
	}
	h.pairs = append(out, HeaderPair{Name: name, Value: value})
}

// Del removes all values for name.
func (h *HttpHeaders) Del(name string) {
	name = canonicalHeaderName(name)
	out := h.pairs[:0]
	for _, p := range h.pairs {
		if p.Name != name {
			out = append(out, p)
		}
	}
	h.pairs = out
}

// Get returns the first value stored for name, or "" if absent.
func (h HttpHeaders) Get(name string) string {
	name = canonicalHeaderName(name)
	for _, p := range h.pairs {
		if p.Name == name {
			return p.Value
		}
	}
	return ""
}

// Has reports whether name has at least one stored value.
func (h HttpHeaders) Has(name string) bool {
	name = canonicalHeaderName(name)
	for _, p := range h.pairs {
		if p.Name == name {
			return true
		}
	}
	return false
}

// Values returns every value stored for name, in insertion order.
func (h HttpHeaders) Values(name string) []string {
	name = canonicalHeaderName(name)
	var out []string
	for _, p := range h.pairs {
		if p.Name == name {
			out = append(out, p.Value)
		}
	}
	return out
}

// Iterate calls fn for every pair in insertion order.
func (h HttpHeaders) Iterate(fn func(name, value string)) {
	for _, p := range h.pairs {
		fn(p.Name, p.Value)
	}
}

// Clone returns an independent copy.
func (h HttpHeaders) Clone() HttpHeaders {
	out := HttpHeaders{pairs: make([]HeaderPair, len(h.pairs))}
	copy(out.pairs, h.pairs)
	return out
}

// Len returns the number of stored pairs (not distinct names).
func (h HttpHeaders) Len() int { return len(h.pairs) }

// MarshalJSON encodes the ordered pair list directly, since pairs is
// unexported and Store's entry envelope (store.go) needs HttpHeaders to
// round-trip through encoding/json.
func (h HttpHeaders) MarshalJSON() ([]byte, error) {
	if h.pairs == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(h.pairs)
}

// UnmarshalJSON is MarshalJSON's counterpart.
func (h *HttpHeaders) UnmarshalJSON(data []byte) error {
	var pairs []HeaderPair
	if err := json.Unmarshal(data, &pairs); err != nil {
		return err
	}
	h.pairs = pairs
	return nil
}
