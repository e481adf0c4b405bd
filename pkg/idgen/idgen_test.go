package idgen

import (
	"testing"
	"time"
)

func TestNewID_Unique(t *testing.T) {
	a := NewID()
	b := NewID()
	if a == "" || b == "" {
		t.Fatal("expected non-empty ids")
	}
	if a == b {
		t.Fatal("expected unique ids")
	}
}

func TestFormatAndParseISO8601_RoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 5, 12, 30, 0, 0, time.FixedZone("X", 3600))
	s := FormatISO8601(now)
	parsed, err := ParseISO8601(s)
	if err != nil {
		t.Fatal(err)
	}
	if !parsed.Equal(now) {
		t.Errorf("expected %v, got %v", now, parsed)
	}
}

func TestNowISO8601_Parseable(t *testing.T) {
	s := NowISO8601()
	if _, err := ParseISO8601(s); err != nil {
		t.Fatalf("NowISO8601 produced unparseable timestamp %q: %v", s, err)
	}
}
