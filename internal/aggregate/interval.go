package aggregate

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseInterval turns an interval string ("30s", "1m", "4h", "1d") into
// a bucket width. The same parser serves the write and read paths so an
// interval string always means one width.
func ParseInterval(s string) (time.Duration, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if len(s) < 2 {
		return 0, fmt.Errorf("invalid interval %q", s)
	}
	unit := s[len(s)-1]
	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid interval %q", s)
	}
	switch unit {
	case 's':
		return time.Duration(n) * time.Second, nil
	case 'm':
		return time.Duration(n) * time.Minute, nil
	case 'h':
		return time.Duration(n) * time.Hour, nil
	case 'd':
		return time.Duration(n) * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("invalid interval unit %q", s)
	}
}

// Truncate maps a timestamp to the start of its bucket for the width.
func Truncate(t time.Time, width time.Duration) time.Time {
	return t.UTC().Truncate(width)
}
