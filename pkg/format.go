package pkg

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatDuration renders a duration in seconds as e.g. "1h05m30s", "25m00s" or "45s".
func FormatDuration(seconds int) string {
	if seconds <= 0 {
		return "0s"
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm%02ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

// FormatPace renders a pace in seconds per kilometer as e.g. "5:30/km".
func FormatPace(secPerKm int) string {
	if secPerKm <= 0 {
		return ""
	}
	return fmt.Sprintf("%d:%02d/km", secPerKm/60, secPerKm%60)
}

// ParsePace parses a "M:SS" pace string into seconds per kilometer.
func ParsePace(pace string) (int, error) {
	minutes, seconds, found := strings.Cut(pace, ":")
	if !found {
		return 0, fmt.Errorf("invalid pace %q, expected M:SS", pace)
	}
	m, err := strconv.Atoi(minutes)
	if err != nil || m < 0 {
		return 0, fmt.Errorf("invalid pace minutes in %q", pace)
	}
	s, err := strconv.Atoi(seconds)
	if err != nil || s < 0 || s > 59 {
		return 0, fmt.Errorf("invalid pace seconds in %q", pace)
	}
	return m*60 + s, nil
}

// FormatDistance renders a distance in meters as e.g. "10.0 km" or "800 m".
func FormatDistance(meters float64) string {
	if meters <= 0 {
		return "0 m"
	}
	if meters >= 1000 {
		return fmt.Sprintf("%.1f km", meters/1000)
	}
	return fmt.Sprintf("%d m", int(meters))
}
