package utils

import (
	"testing"
	"time"
)

func TestParseDateRangeDay(t *testing.T) {
	start, end, err := ParseDateRange("2024-03-10", time.UTC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !start.Equal(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("wrong start: %v", start)
	}
	if !end.Equal(time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("wrong end: %v", end)
	}
}

func TestParseDateRangeMonth(t *testing.T) {
	start, end, err := ParseDateRange("2024-02", time.UTC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !start.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("wrong start: %v", start)
	}
	// Leap year, the interval still ends on the first of March.
	if !end.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("wrong end: %v", end)
	}
}

func TestParseDateRangeYear(t *testing.T) {
	start, end, err := ParseDateRange("2024", time.UTC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !start.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("wrong start: %v", start)
	}
	if !end.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("wrong end: %v", end)
	}
}

func TestParseDateRangeHonorsLocation(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Ho_Chi_Minh")
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}
	start, _, err := ParseDateRange("2024-03-10", loc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start.Location() != loc {
		t.Errorf("expected start in %v, got %v", loc, start.Location())
	}
	// Midnight in Ho Chi Minh City is the previous day 17:00 UTC.
	if !start.UTC().Equal(time.Date(2024, 3, 9, 17, 0, 0, 0, time.UTC)) {
		t.Errorf("wrong UTC instant: %v", start.UTC())
	}
}

func TestParseDateRangeRejectsGarbage(t *testing.T) {
	for _, value := range []string{"", "10/03/2024", "2024-13", "2024-03-10T00:00:00Z", "yesterday"} {
		if _, _, err := ParseDateRange(value, time.UTC); err == nil {
			t.Errorf("expected error for %q", value)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("1990-04-15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Format("2006-01-02") != "1990-04-15" {
		t.Errorf("wrong date: %v", d)
	}
	if _, err := ParseDate("15/04/1990"); err == nil {
		t.Error("expected error for non-ISO date")
	}
}
