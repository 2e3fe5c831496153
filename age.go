package assetcache

import (
	"strconv"
	"strings"
	"time"
)

// Date parses the response's Date header via the module's own RFC 1123
// parser (httpdate.go), returning ErrNoDateHeader if absent.
func Date(headers HttpHeaders) (time.Time, error) {
	raw := headers.Get("Date")
	if raw == "" {
		return time.Time{}, ErrNoDateHeader
	}
	return ParseHTTPDate(raw)
}

// parseAgeHeader parses an Age header per RFC 9111 §5.1: the first value
// wins if duplicated, and a negative or non-numeric value is ignored
// entirely rather than clamped.
func parseAgeHeader(headers HttpHeaders) (time.Duration, bool) {
	values := headers.Values("Age")
	if len(values) == 0 {
		return 0, false
	}
	raw := strings.TrimSpace(values[0])
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return time.Duration(n) * time.Second, true
}

// calculateAge computes the RFC 9111 §4.2.3 current_age for a stored entry:
//
//	apparent_age   = max(0, now_stored - date_value)
//	current_age    = max(apparent_age, age_value) + resident_time
//
// This folds the full six-variable formula down to the two quantities this
// cache actually tracks: the response's own Date/Age headers, and the
// entry's LastAccessed, which stands in for now_stored. Store.Get sets
// LastAccessed to the time of the read, so for an entry just returned by
// Store.Get resident_time is close to zero and the result is the time from
// Date to that read (or zero when there is no Date header). There is no
// separate request_time/response_time bookkeeping, since Response carries
// no such timestamps of its own.
func calculateAge(entry *CacheEntry, now time.Time) time.Duration {
	headers := entry.Response.Headers
	dateValue, err := Date(headers)
	if err != nil {
		return now.Sub(entry.LastAccessed)
	}

	apparentAge := time.Duration(0)
	if entry.LastAccessed.After(dateValue) {
		apparentAge = entry.LastAccessed.Sub(dateValue)
	}
	ageValue, _ := parseAgeHeader(headers)
	correctedInitialAge := apparentAge
	if ageValue > correctedInitialAge {
		correctedInitialAge = ageValue
	}

	residentTime := now.Sub(entry.LastAccessed)
	if residentTime < 0 {
		residentTime = 0
	}
	return correctedInitialAge + residentTime
}

func formatAge(age time.Duration) string {
	seconds := int64(age.Seconds())
	if seconds < 0 {
		seconds = 0
	}
	return strconv.FormatInt(seconds, 10)
}

// addAgeHeader sets the Age header on resp to reflect how long entry has
// been resident, per RFC 9111 §4.2.3.
func addAgeHeader(resp *Response, entry *CacheEntry, now time.Time) {
	resp.Headers.Set("Age", formatAge(calculateAge(entry, now)))
}
