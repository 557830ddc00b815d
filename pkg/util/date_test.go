package util

import (
	"errors"
	"testing"
	"time"

	"TrafficLight/internal/domain/models"
)

func TestParseUTCVariants(t *testing.T) {
	want := time.Date(2025, 9, 8, 13, 23, 0, 0, time.UTC)
	for _, s := range []string{
		"2025-09-08T13:23:00Z",
		"2025-09-08T13:23:00+00:00",
		"2025-09-08T13:23:00",
	} {
		got, err := ParseUTC(s)
		if err != nil {
			t.Fatalf("ParseUTC(%q): %v", s, err)
		}
		if !got.Equal(want) || got.Location() != time.UTC {
			t.Fatalf("ParseUTC(%q) = %v, want %v", s, got, want)
		}
	}
}

func TestParseUTCOffset(t *testing.T) {
	got, err := ParseUTC("2025-09-08T15:23:00+02:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Format(time.RFC3339) != "2025-09-08T13:23:00Z" {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseUTCFractional(t *testing.T) {
	got, err := ParseUTC("2025-09-08T13:23:00.250")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Nanosecond() != 250*int(time.Millisecond) {
		t.Fatalf("unexpected nanos %d", got.Nanosecond())
	}
}

func TestParseUTCInvalid(t *testing.T) {
	for _, s := range []string{"", "yesterday", "2025-13-08T13:23:00Z", "08.09.2025 13:23"} {
		_, err := ParseUTC(s)
		if err == nil {
			t.Fatalf("expected error for %q", s)
		}
		if !errors.Is(err, models.ErrParse) {
			t.Fatalf("expected ErrParse for %q, got %v", s, err)
		}
		var pe *models.ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("expected *ParseError for %q", s)
		}
	}
}

func TestQueryWindow(t *testing.T) {
	now := time.Date(2025, 9, 8, 13, 23, 47, 123, time.FixedZone("CEST", 2*3600))
	from, to := QueryWindow(now, 10*time.Minute)
	if FormatAPITime(to) != "2025-09-08T11:23:00Z" {
		t.Fatalf("unexpected to %s", FormatAPITime(to))
	}
	if FormatAPITime(from) != "2025-09-08T11:13:00Z" {
		t.Fatalf("unexpected from %s", FormatAPITime(from))
	}
}

func TestFormatDisplay(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	ts := time.Date(2025, 9, 8, 13, 23, 0, 0, time.UTC)
	if got := FormatDisplay(ts, loc); got != "2025-09-08 15:23:00 CEST" {
		t.Fatalf("unexpected display %q", got)
	}
	if got := FormatDisplay(ts, nil); got != "2025-09-08 13:23:00 UTC" {
		t.Fatalf("unexpected display %q", got)
	}
}
