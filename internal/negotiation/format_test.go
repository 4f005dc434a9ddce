package negotiation

import "testing"

func TestFormatCostDelta(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{5000, "+$5,000"},
		{0, "+$0"},
		{-1250.5, "-$1,250.5"},
		{1234567, "+$1,234,567"},
		{999, "+$999"},
		{-42, "-$42"},
	}
	for _, tt := range tests {
		if got := FormatCostDelta(tt.in); got != tt.want {
			t.Errorf("FormatCostDelta(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatWeeksDelta(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{2, "+2 weeks"},
		{-1.5, "-1.5 weeks"},
		{0, "+0 weeks"},
		{0.5, "+0.5 weeks"},
	}
	for _, tt := range tests {
		if got := FormatWeeksDelta(tt.in); got != tt.want {
			t.Errorf("FormatWeeksDelta(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
