package wayback

import (
	"fmt"
	"strconv"
	"time"

	"github.com/araddon/dateparse"
	"github.com/rs/zerolog/log"
)

// TimestampLayout is the 14-digit YYYYMMDDhhmmss layout Wayback uses in
// archive URLs and CDX rows.
const TimestampLayout = "20060102150405"

// FormatTimestamp renders t as a Wayback-style 14-digit timestamp, always
// in UTC regardless of t's original location.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp parses a Wayback-style 14-digit timestamp into a UTC
// time.Time. Day-of-month or month fields of "00" are clamped to "01"
// rather than rejected, since real CDX data contains them (e.g.
// "20100000000000" parses to 2010-01-01).
//
// It also repairs a narrower, specific crawl artifact from the year 2000:
// some of that year's records have an erroneous extra "00" inserted before
// the month or day, pushing the rest of the timestamp out by two
// characters and truncating the seconds field when the string is cut to 14
// characters. That repair only fires for year-2000 timestamps; a "00"
// month or day field in any other year is the ordinary clamp-to-01 case
// above, not a shift to undo. See
// https://github.com/edgi-govdata-archiving/wayback for background; this
// behavior is carried over from the original implementation's
// parse_timestamp function.
func ParseTimestamp(raw string) (time.Time, error) {
	if len(raw) != 14 {
		return time.Time{}, fmt.Errorf("wayback: timestamp %q must be exactly 14 digits", raw)
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return time.Time{}, fmt.Errorf("wayback: timestamp %q is not all digits", raw)
		}
	}

	year, _ := strconv.Atoi(raw[0:4])

	fixed := raw
	if year == 2000 && raw[4:6] == "00" {
		log.Warn().Str("timestamp", raw).Msg("wayback: found invalid timestamp with month 00, repairing")
		fixed = raw[0:4] + raw[6:] + "00"
	} else if year == 2000 && raw[6:8] == "00" {
		log.Warn().Str("timestamp", raw).Msg("wayback: found invalid timestamp with day 00, repairing")
		fixed = raw[0:6] + raw[8:] + "00"
	}

	month, _ := strconv.Atoi(fixed[4:6])
	day, _ := strconv.Atoi(fixed[6:8])
	hour, _ := strconv.Atoi(fixed[8:10])
	minute, _ := strconv.Atoi(fixed[10:12])
	second, _ := strconv.Atoi(fixed[12:14])

	if month == 0 {
		month = 1
	}
	if day == 0 {
		day = 1
	}

	return time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC), nil
}

// ParseFlexibleDate interprets a date supplied by a caller for from_date/
// to_date search bounds. It first tries the strict 14-digit Wayback
// timestamp format, then falls back to araddon/dateparse's permissive
// parser so callers can pass natural date strings like "2020-01-01" without
// needing to format them themselves. A naive (timezone-less) result is
// treated as UTC.
func ParseFlexibleDate(raw string) (time.Time, error) {
	if len(raw) == 14 {
		if t, err := ParseTimestamp(raw); err == nil {
			return t, nil
		}
	}
	t, err := dateparse.ParseIn(raw, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("wayback: could not parse date %q: %w", raw, err)
	}
	return t.UTC(), nil
}

// EnsureUTC normalizes a caller-supplied time to UTC. A naive time (as Go
// has no true "naive" datetime, this means any time.Time regardless of its
// Location) is reinterpreted as already being in UTC only when treatAsUTC is
// true; otherwise it is converted. Wayback's API always deals in UTC.
func EnsureUTC(t time.Time, treatAsUTC bool) time.Time {
	if treatAsUTC {
		y, m, d := t.Date()
		hh, mm, ss := t.Clock()
		return time.Date(y, m, d, hh, mm, ss, t.Nanosecond(), time.UTC)
	}
	return t.UTC()
}

// WidenToDay returns the inclusive start and exclusive end of the UTC day
// containing t, used to widen a from_date/to_date search bound expressed as
// a bare date to the full day.
func WidenToDay(t time.Time) (start, end time.Time) {
	u := t.UTC()
	start = time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	end = start.Add(24 * time.Hour)
	return start, end
}
