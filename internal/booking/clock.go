package booking

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseClock converts "HH:MM" (or "HH:MM:SS", seconds ignored) to a minute of
// day.
func ParseClock(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("invalid time %q (want HH:MM)", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return h*60 + m, nil
}

// Clock formats a minute of day as "HH:MM".
func Clock(min int) string {
	return fmt.Sprintf("%02d:%02d", min/60, min%60)
}

// DateOnly normalizes t to midnight UTC.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
