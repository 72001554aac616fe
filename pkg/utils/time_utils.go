package utils

import (
	"fmt"
	"time"
)

// Timestamp formats t as the UTC RFC3339 string used for audit record keys
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// SecondsToDuration converts a second count from configuration into a duration
func SecondsToDuration(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}

// FormatDuration formats a duration with two decimal seconds, e.g. "12.34s"
func FormatDuration(d time.Duration) string {
	return fmt.Sprintf("%.2fs", d.Seconds())
}
