package utils

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"
)

var (
	reportLocOnce sync.Once
	reportLoc     *time.Location
)

// ReportLocation returns the timezone used for date filtering and daily
// report boundaries. Configured via REPORT_TIMEZONE.
func ReportLocation() *time.Location {
	reportLocOnce.Do(func() {
		name := os.Getenv("REPORT_TIMEZONE")
		if name == "" {
			name = "Asia/Ho_Chi_Minh"
		}
		loc, err := time.LoadLocation(name)
		if err != nil {
			log.Printf("Invalid REPORT_TIMEZONE %q, falling back to UTC: %v", name, err)
			loc = time.UTC
		}
		reportLoc = loc
	})
	return reportLoc
}

// ParseDateRange interprets a date string at year, month, or day granularity
// and returns the half-open interval [start, end) it covers in loc.
// Accepted forms: "2006", "2006-01", "2006-01-02".
func ParseDateRange(value string, loc *time.Location) (time.Time, time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02", value, loc); err == nil {
		return t, t.AddDate(0, 0, 1), nil
	}
	if t, err := time.ParseInLocation("2006-01", value, loc); err == nil {
		return t, t.AddDate(0, 1, 0), nil
	}
	if t, err := time.ParseInLocation("2006", value, loc); err == nil {
		return t, t.AddDate(1, 0, 0), nil
	}
	return time.Time{}, time.Time{}, fmt.Errorf("invalid date %q, expected YYYY, YYYY-MM or YYYY-MM-DD", value)
}

// ParseDate parses a calendar date in "2006-01-02" form.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return t, nil
}
