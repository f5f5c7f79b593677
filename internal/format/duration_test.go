package format

import (
	"testing"
	"time"
)

func TestParseRetention(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Duration
		wantErr bool
	}{
		{"7d", 7 * 24 * time.Hour, false},
		{"1d", 24 * time.Hour, false},
		{"12h", 12 * time.Hour, false},
		{"48h", 48 * time.Hour, false},
		{" 7d ", 7 * 24 * time.Hour, false},
		{"", 0, true},
		{"d", 0, true},
		{"7", 0, true},
		{"7w", 0, true},
		{"0d", 0, true},
		{"-3h", 0, true},
		{"sevend", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRetention(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseRetention(%q) = %v, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRetention(%q): %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseRetention(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatRetention(t *testing.T) {
	tests := []struct {
		input time.Duration
		want  string
	}{
		{7 * 24 * time.Hour, "7d"},
		{24 * time.Hour, "1d"},
		{12 * time.Hour, "12h"},
		{36 * time.Hour, "36h"},
		{0, "1h"},
	}

	for _, tt := range tests {
		if got := FormatRetention(tt.input); got != tt.want {
			t.Errorf("FormatRetention(%v) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestFormatRetentionRoundTrip(t *testing.T) {
	for _, s := range []string{"7d", "1d", "12h", "36h"} {
		d, err := ParseRetention(s)
		if err != nil {
			t.Fatalf("ParseRetention(%q): %v", s, err)
		}
		if got := FormatRetention(d); got != s {
			t.Errorf("round trip %q -> %v -> %q", s, d, got)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		input time.Duration
		want  string
	}{
		{500 * time.Millisecond, "0s"},
		{5 * time.Second, "5s"},
		{90 * time.Second, "1m 30s"},
		{2*time.Hour + 15*time.Minute, "2h 15m"},
		{76 * time.Hour, "3d 4h"},
	}

	for _, tt := range tests {
		if got := FormatDuration(tt.input); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestTruncateWithEllipsis(t *testing.T) {
	if got := TruncateWithEllipsis("short", 10); got != "short" {
		t.Errorf("got %q", got)
	}
	if got := TruncateWithEllipsis("a very long process name", 10); got != "a very ..." {
		t.Errorf("got %q", got)
	}
	if got := TruncateWithEllipsis("abcdef", 3); got != "abc" {
		t.Errorf("got %q", got)
	}
	if got := TruncateWithEllipsis("anything", 0); got != "" {
		t.Errorf("got %q", got)
	}
}
