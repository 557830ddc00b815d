package util

import (
	"errors"
	"strings"
	"time"

	"TrafficLight/internal/domain/models"
)

// APITimeLayout is the path timestamp format of the TrafficLight endpoint.
const APITimeLayout = "2006-01-02T15:04:05Z"

// DisplayLayout is used when logging instants in the display zone.
const DisplayLayout = "2006-01-02 15:04:05 MST"

// Layouts without an offset are read as UTC.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseUTC parses an upstream timestamp into a UTC instant.
// Accepts "...Z", "...+hh:mm" and offset-less strings, which are assumed UTC.
func ParseUTC(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, &models.ParseError{Input: s, Err: errors.New("empty timestamp")}
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	// RFC3339 requires "T"; the space-separated form with an offset is still ISO-8601.
	if t, err := time.Parse("2006-01-02 15:04:05.999999999Z07:00", s); err == nil {
		return t.UTC(), nil
	}
	var lastErr error
	for _, layout := range naiveLayouts {
		t, err := time.ParseInLocation(layout, s, time.UTC)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, &models.ParseError{Input: s, Err: lastErr}
}

// FormatDisplay renders t in loc for log lines. A nil loc means UTC.
func FormatDisplay(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DisplayLayout)
}

// QueryWindow returns the trailing window ending at the current UTC minute.
func QueryWindow(now time.Time, span time.Duration) (from, to time.Time) {
	to = now.UTC().Truncate(time.Minute)
	from = to.Add(-span)
	return from, to
}

// FormatAPITime renders t the way the data endpoint expects in its path.
func FormatAPITime(t time.Time) string {
	return t.UTC().Format(APITimeLayout)
}
