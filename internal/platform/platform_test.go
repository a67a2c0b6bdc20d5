package platform

import (
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"bybit", "bybit", "bybit", false},
		{"uppercase", "HTX", "htx", false},
		{"padded", "  Gate ", "gate", false},
		{"bliss", "bliss", "bliss", false},
		{"unknown", "binance", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Validate(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Validate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestToCanonicalDefaultOffsets(t *testing.T) {
	n := NewNormalizer(nil)
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		platform string
		wantHour int
	}{
		{Bybit, 13},
		{HTX, 5},
		{Bliss, 13},
		{Gate, 10},
		{"unknown", 10},
	}

	for _, tt := range tests {
		got := n.ToCanonical(tt.platform, base)
		if got.Hour() != tt.wantHour {
			t.Errorf("ToCanonical(%s) hour = %d, want %d", tt.platform, got.Hour(), tt.wantHour)
		}
	}
}

func TestToCanonicalCrossesMidnight(t *testing.T) {
	n := NewNormalizer(nil)
	local := time.Date(2025, 6, 1, 23, 30, 0, 0, time.UTC)

	got := n.ToCanonical(Bybit, local)
	want := time.Date(2025, 6, 2, 2, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("ToCanonical crossing midnight = %v, want %v", got, want)
	}
}

func TestNewNormalizerCustomOffsets(t *testing.T) {
	n := NewNormalizer(map[string]int{Bybit: -2})
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	if got := n.ToCanonical(Bybit, base).Hour(); got != 8 {
		t.Errorf("custom offset hour = %d, want 8", got)
	}
	// Platforms absent from a custom map get no shift
	if got := n.ToCanonical(HTX, base).Hour(); got != 10 {
		t.Errorf("unconfigured platform hour = %d, want 10", got)
	}
}
