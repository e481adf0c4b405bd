// Package idgen provides identity and timestamp helpers shared by the
// signal envelope and dispatch pipeline.
package idgen

import (
	"time"

	"github.com/google/uuid"
)

// NewID returns a fresh UUID v4 string, used as the default Signal.ID.
func NewID() string {
	return uuid.NewString()
}

// NowISO8601 returns the current time, UTC, formatted per RFC3339Nano
// (a strict subset of ISO-8601 and the format CloudEvents consumers expect).
func NowISO8601() string {
	return FormatISO8601(time.Now())
}

// FormatISO8601 renders t as an ISO-8601 / RFC3339Nano timestamp in UTC.
func FormatISO8601(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ParseISO8601 parses a timestamp previously produced by FormatISO8601 or
// any other RFC3339-compliant producer.
func ParseISO8601(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
