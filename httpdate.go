package assetcache

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// httpDateLayout is the RFC 1123 format RFC 9111 requires for Date, Expires,
// Last-Modified and If-Modified-Since: "Mon, 02 Jan 2006 15:04:05 GMT".
const httpDateLayout = "Mon, 02 Jan 2006 15:04:05 GMT"

var monthAbbrev = map[string]int{
	"Jan": 1, "Feb": 2, "Mar": 3, "Apr": 4, "May": 5, "Jun": 6,
	"Jul": 7, "Aug": 8, "Sep": 9, "Oct": 10, "Nov": 11, "Dec": 12,
}

// isLeapYear, daysFrom0, daysFrom1970 and daysFrom1Jan implement a Gregorian
// day-count algorithm (the same one behind Boost.Chrono's linux timegm
// reimplementation), used so HTTP-date parsing never depends on the parsing
// process's local timezone database.
func isLeapYear(year int) bool {
	if year%400 == 0 {
		return true
	}
	if year%100 == 0 {
		return false
	}
	return year%4 == 0
}

func daysFrom0(year int) int {
	year--
	return 365*year + year/400 - year/100 + year/4
}

var daysFrom0To1970 = daysFrom0(1970)

func daysFrom1970(year int) int {
	return daysFrom0(year) - daysFrom0To1970
}

var daysBeforeMonth = [2][12]int{
	{0, 31, 59, 90, 120, 151, 181, 212, 243, 273, 304, 334},
	{0, 31, 60, 91, 121, 152, 182, 213, 244, 274, 305, 335},
}

func daysFrom1Jan(year, month, day int) int {
	leap := 0
	if isLeapYear(year) {
		leap = 1
	}
	return daysBeforeMonth[leap][month-1] + day - 1
}

// internalTimegm converts a UTC calendar date/time to a Unix timestamp
// without consulting any timezone database.
func internalTimegm(year, month, day, hour, minute, second int) int64 {
	if month > 12 {
		year += (month - 1) / 12
		month = (month-1)%12 + 1
	} else if month < 1 {
		yearsDiff := (-month + 12) / 12
		year -= yearsDiff
		month += 12 * yearsDiff
	}
	dayOfYear := daysFrom1Jan(year, month, day)
	daysSinceEpoch := int64(daysFrom1970(year) + dayOfYear)
	const secondsInDay = int64(3600 * 24)
	return secondsInDay*daysSinceEpoch + int64(3600*hour+60*minute+second)
}

// ParseHTTPDate parses an RFC 1123 HTTP-date ("Mon, 02 Jan 2006 15:04:05
// GMT"). On success it returns a UTC time computed purely from the
// calendar fields via internalTimegm, so the result never depends on the
// host's tzdata. On failure it returns the Unix epoch and a non-nil error;
// callers treat an unparseable date as equivalent to "already stale".
func ParseHTTPDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	fields := strings.Fields(s)
	if len(fields) != 6 {
		return time.Unix(0, 0).UTC(), fmt.Errorf("assetcache: malformed HTTP-date %q", s)
	}
	if fields[5] != "GMT" {
		return time.Unix(0, 0).UTC(), fmt.Errorf("assetcache: HTTP-date %q is not in GMT", s)
	}

	dayPart := strings.TrimSuffix(fields[1], ",")
	day, err := strconv.Atoi(dayPart)
	if err != nil {
		return time.Unix(0, 0).UTC(), fmt.Errorf("assetcache: malformed day in HTTP-date %q: %w", s, err)
	}
	month, ok := monthAbbrev[fields[2]]
	if !ok {
		return time.Unix(0, 0).UTC(), fmt.Errorf("assetcache: unknown month in HTTP-date %q", s)
	}
	year, err := strconv.Atoi(fields[3])
	if err != nil {
		return time.Unix(0, 0).UTC(), fmt.Errorf("assetcache: malformed year in HTTP-date %q: %w", s, err)
	}
	hms := strings.Split(fields[4], ":")
	if len(hms) != 3 {
		return time.Unix(0, 0).UTC(), fmt.Errorf("assetcache: malformed time in HTTP-date %q", s)
	}
	hour, err1 := strconv.Atoi(hms[0])
	minute, err2 := strconv.Atoi(hms[1])
	second, err3 := strconv.Atoi(hms[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Unix(0, 0).UTC(), fmt.Errorf("assetcache: malformed time in HTTP-date %q", s)
	}
	if fields[0] == "" {
		return time.Unix(0, 0).UTC(), fmt.Errorf("assetcache: malformed weekday in HTTP-date %q", s)
	}

	unix := internalTimegm(year, month, day, hour, minute, second)
	return time.Unix(unix, 0).UTC(), nil
}

// FormatHTTPDate renders t in RFC 1123 GMT form for use in Date, Expires,
// Last-Modified or If-Modified-Since headers.
func FormatHTTPDate(t time.Time) string {
	return t.UTC().Format(httpDateLayout)
}
