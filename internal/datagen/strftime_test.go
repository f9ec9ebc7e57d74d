package datagen

import (
	"testing"
	"time"
)

func TestStrftimeLayout(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
	}{
		{"%Y-%m-%d", "2006-01-02"},
		{"%Y-%m-%dT%H:%M:%S.%fZ", "2006-01-02T15:04:05.000000Z"},
		{"%d/%b/%Y %H:%M", "02/Jan/2006 15:04"},
		{"%A, %B %d", "Monday, January 02"},
		{"%I:%M %p", "03:04 PM"},
		{"%y%j", "06002"},
		{"100%%", "100%"},
		{"%Q", "%Q"}, // unknown directive passes through
		{"", ""},
		{"plain text", "plain text"},
		{"%", "%"}, // trailing percent is literal
	}
	for _, tt := range tests {
		if got := strftimeLayout(tt.pattern); got != tt.want {
			t.Errorf("strftimeLayout(%q) = %q, want %q", tt.pattern, got, tt.want)
		}
	}
}

func TestDefaultTimeFormatRendering(t *testing.T) {
	ts := time.Date(2025, 5, 6, 12, 34, 56, 789123000, time.UTC)
	got := ts.Format(strftimeLayout(DefaultTimeFormat))
	want := "2025-05-06T12:34:56.789123Z"
	if got != want {
		t.Errorf("default format rendered %q, want %q", got, want)
	}
}
