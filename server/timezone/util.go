// Package timezone provides calendar helpers for the analytics service.
//
// Week bounds, weekdays and request dates are all interpreted in one
// configured location so that reports line up with the users' calendar.
package timezone

import (
	"fmt"
	"strings"
	"time"
)

// UTC is the coordinated universal time timezone
var UTC = time.UTC

// Accepted layouts for request dates, tried in order.
const (
	LayoutLocalDateTime = "2006-01-02T15:04:05"
	LayoutDate          = "2006-01-02"
)

// ParseTimezone parses an IANA timezone identifier (e.g., "Asia/Shanghai").
// If the timezone is invalid, returns UTC and an error.
func ParseTimezone(tz string) (*time.Location, error) {
	if tz == "" || tz == "UTC" {
		return UTC, nil
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		return UTC, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}

	return loc, nil
}

// IsValidTimezone checks if a timezone identifier is valid.
func IsValidTimezone(tz string) bool {
	_, err := ParseTimezone(tz)
	return err == nil
}

// ParseDateTime parses an ISO-8601 date or date-time.
// Values with an offset (RFC 3339) keep it; local date-times and bare dates are read in tz.
func ParseDateTime(value string, tz *time.Location) (time.Time, error) {
	if tz == nil {
		tz = UTC
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	for _, layout := range []string{LayoutLocalDateTime, LayoutDate} {
		if t, err := time.ParseInLocation(layout, value, tz); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q: expected ISO-8601 such as 2006-01-02, 2006-01-02T15:04:05 or 2006-01-02T15:04:05Z07:00", value)
}

// StartOfDay returns the start of the day (00:00:00) in the given timezone.
func StartOfDay(t time.Time, tz *time.Location) time.Time {
	if tz == nil {
		tz = UTC
	}
	return time.Date(t.In(tz).Year(), t.In(tz).Month(), t.In(tz).Day(), 0, 0, 0, 0, tz)
}

// EndOfDay returns the end of the day (23:59:59.999999999) in the given timezone.
func EndOfDay(t time.Time, tz *time.Location) time.Time {
	if tz == nil {
		tz = UTC
	}
	return time.Date(t.In(tz).Year(), t.In(tz).Month(), t.In(tz).Day(), 23, 59, 59, 999999999, tz)
}
