package pkg

import (
	"fmt"
	"time"
)

// The backend represents calendar dates as YYYYMMDD integers (e.g. 20260215).
// These helpers convert between that form and time.Time / ISO strings.

// DateToDay converts a time.Time to the backend YYYYMMDD integer form.
func DateToDay(t time.Time) int {
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}

// DayToDate converts a YYYYMMDD integer to a time.Time (midnight UTC).
func DayToDate(day int) (time.Time, error) {
	if day < 10000101 || day > 99991231 {
		return time.Time{}, fmt.Errorf("invalid day value: %d", day)
	}
	year := day / 10000
	month := (day / 100) % 100
	dayOfMonth := day % 100
	if month < 1 || month > 12 || dayOfMonth < 1 || dayOfMonth > 31 {
		return time.Time{}, fmt.Errorf("invalid day value: %d", day)
	}
	t := time.Date(year, time.Month(month), dayOfMonth, 0, 0, 0, 0, time.UTC)
	// reject dates like 20260230 that time.Date silently normalizes
	if DateToDay(t) != day {
		return time.Time{}, fmt.Errorf("invalid day value: %d", day)
	}
	return t, nil
}

// ParseDay parses an ISO date string (2026-02-15) to the YYYYMMDD integer form.
func ParseDay(date string) (int, error) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return 0, fmt.Errorf("parse date [%s]: %w", date, err)
	}
	return DateToDay(t), nil
}

// FormatDay renders a YYYYMMDD integer as an ISO date string. Invalid values
// are rendered as raw digits rather than rejected, since this is used on
// already-persisted remote data.
func FormatDay(day int) string {
	t, err := DayToDate(day)
	if err != nil {
		return fmt.Sprintf("%d", day)
	}
	return t.Format("2006-01-02")
}
