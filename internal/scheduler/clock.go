package scheduler

import (
	"fmt"
	"strconv"
	"strings"
)

const minutesPerDay = 1440

// ParseClock converts a "HH:MM" wall-clock string into minutes since midnight.
func ParseClock(value string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(value), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock value %q", value)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid clock value %q: %w", value, err)
	}
	mins, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid clock value %q: %w", value, err)
	}
	if hours < 0 || hours > 23 || mins < 0 || mins > 59 {
		return 0, fmt.Errorf("clock value %q out of range", value)
	}
	return hours*60 + mins, nil
}

// mustClock parses a clock string or panics. The engine boundary recovers the
// panic into a failed result, so malformed input degrades instead of crashing.
func mustClock(value string) int {
	minutes, err := ParseClock(value)
	if err != nil {
		panic(err)
	}
	return minutes
}

// FormatClock renders minutes since midnight as "HH:MM".
func FormatClock(minutes int) string {
	minutes = ((minutes % minutesPerDay) + minutesPerDay) % minutesPerDay
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// AddClock shifts a clock string by delta minutes, wrapping past midnight.
func AddClock(value string, delta int) string {
	return FormatClock(mustClock(value) + delta)
}

// SpanMinutes returns the duration between two clock strings. An end before
// the start is treated as wrapping past midnight (e.g. sleep 22:30 to 06:30).
func SpanMinutes(start, end string) int {
	s := mustClock(start)
	e := mustClock(end)
	if e > s {
		return e - s
	}
	return (minutesPerDay - s) + e
}
