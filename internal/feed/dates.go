package feed

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

var (
	// ErrEmptyDate is returned by NormalizeDate for blank input.
	ErrEmptyDate = errors.New("empty date")
	// ErrUnknownZone is returned when a textual zone has no known offset.
	ErrUnknownZone = errors.New("unknown time zone")
)

// dateLayouts are tried in order before falling back to dateparse.
// RFC-822 variants come first since they are what RSS pubDate carries.
var dateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"Mon, 2 Jan 2006 15:04 -0700",
	"Mon, 2 Jan 2006 15:04 MST",
	"Mon, 2 Jan 06 15:04:05 -0700",
	"Mon, 2 Jan 06 15:04:05 MST",
	"2 Jan 2006 15:04:05 -0700",
	"2 Jan 2006 15:04:05 MST",
	time.RFC822Z,
	time.RFC822,
	"Monday, 02-Jan-06 15:04:05 MST",
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04Z07:00",
}

// naiveLayouts carry no zone; they are read as UTC.
var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// zoneOffsets resolves the textual zones RFC 822 allows (plus a few common
// extras) to their offsets in seconds. time.Parse only knows abbreviations of
// the local zone and silently assigns a zero offset to the rest.
var zoneOffsets = map[string]int{
	"UT": 0, "UTC": 0, "GMT": 0, "Z": 0,
	"EST": -5 * 3600, "EDT": -4 * 3600,
	"CST": -6 * 3600, "CDT": -5 * 3600,
	"MST": -7 * 3600, "MDT": -6 * 3600,
	"PST": -8 * 3600, "PDT": -7 * 3600,
	"AKST": -9 * 3600, "AKDT": -8 * 3600,
	"HST": -10 * 3600,
	"WET": 0, "WEST": 1 * 3600,
	"BST": 1 * 3600, "CET": 1 * 3600, "CEST": 2 * 3600,
	"EET": 2 * 3600, "EEST": 3 * 3600,
	"A": -1 * 3600, "M": -12 * 3600, "N": 1 * 3600, "Y": 12 * 3600,
}

// NormalizeDate parses a feed timestamp in any of the accepted renderings and
// returns it in UTC. Values without zone information are taken to be UTC; a
// textual zone with no known offset is an error, so the item gets dropped.
func NormalizeDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, ErrEmptyDate
	}

	value = normalizeZone(value)

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return resolveZone(t)
		}
	}

	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}

	t, err := dateparse.ParseIn(value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("normalize date %q: %w", value, err)
	}

	return resolveZone(t)
}

// resolveZone fixes times whose zone abbreviation time.Parse did not recognise
// and returns the instant in UTC. time.Parse gives an unknown abbreviation a
// zero offset; one missing from zoneOffsets is rejected rather than read as UTC.
func resolveZone(t time.Time) (time.Time, error) {
	name, offset := t.Zone()
	if offset != 0 || name == "" || t.Location() == time.UTC || t.Location() == time.Local {
		return t.UTC(), nil
	}

	known, ok := zoneOffsets[strings.ToUpper(name)]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnknownZone, name)
	}

	return time.Date(
		t.Year(), t.Month(), t.Day(),
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(),
		time.FixedZone(name, known),
	).UTC(), nil
}

// normalizeZone upper-cases a trailing known zone and rewrites one- or
// two-letter zones (UT, Z, military letters) as a numeric offset, since
// time.Parse only accepts upper-case names of three letters or more.
func normalizeZone(value string) string {
	idx := strings.LastIndexByte(value, ' ')
	if idx < 0 {
		return value
	}

	zone := strings.ToUpper(value[idx+1:])

	offset, ok := zoneOffsets[zone]
	if !ok {
		return value
	}

	if len(zone) > 2 {
		return value[:idx+1] + zone
	}

	return value[:idx+1] + formatOffset(offset)
}

func formatOffset(seconds int) string {
	sign := '+'
	if seconds < 0 {
		sign = '-'
		seconds = -seconds
	}

	return fmt.Sprintf("%c%02d%02d", sign, seconds/3600, (seconds%3600)/60)
}
