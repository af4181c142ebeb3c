package mcp

import (
	"testing"
	"time"
)

// TestParseFlexTime verifies both accepted date formats and rejection
// of garbage.
func TestParseFlexTime(t *testing.T) {
	got, err := parseFlexTime("2026-03-15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Year() != 2026 || got.Month() != time.March || got.Day() != 15 {
		t.Errorf("parsed = %v, want 2026-03-15", got)
	}

	got, err = parseFlexTime("2026-03-15T10:30:00Z")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Hour() != 10 || got.Minute() != 30 {
		t.Errorf("parsed = %v, want 10:30", got)
	}

	if _, err := parseFlexTime("not-a-date"); err == nil {
		t.Error("expected error for invalid date")
	}
}

// TestOptionalDateRange verifies that omitted sides stay nil.
func TestOptionalDateRange(t *testing.T) {
	start, end, err := optionalDateRange("", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start != nil || end != nil {
		t.Errorf("empty params gave start=%v end=%v, want nil/nil", start, end)
	}

	start, end, err = optionalDateRange("2026-03-01", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start == nil || end != nil {
		t.Errorf("start-only gave start=%v end=%v", start, end)
	}
	if start.Day() != 1 {
		t.Errorf("start day = %d, want 1", start.Day())
	}

	if _, _, err := optionalDateRange("bad", ""); err == nil {
		t.Error("expected error for invalid start")
	}
}
