package channel

import "testing"

func TestNormalizeAddress(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"+254712345678", "254712345678"},
		{"254712345678", "254712345678"},
		{"0712345678", "254712345678"},
		{"0112345678", "254112345678"},
		{"712345678", "254712345678"},
		{"112345678", "254112345678"},
		{"00254712345678", "254712345678"},
		{"0712 345 678", "254712345678"},
		{"(0712) 345-678", "254712345678"},
		// Non-Kenyan international numbers pass through digits-only.
		{"+14155552671", "14155552671"},
		{"", ""},
		{"not a number", ""},
	}
	for _, tt := range tests {
		if got := NormalizeAddress(tt.raw); got != tt.want {
			t.Errorf("NormalizeAddress(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestNormalizeAddress_Idempotent(t *testing.T) {
	inputs := []string{"+254712345678", "0712345678", "712345678", "14155552671", "0112345678"}
	for _, raw := range inputs {
		once := NormalizeAddress(raw)
		twice := NormalizeAddress(once)
		if once != twice {
			t.Errorf("NormalizeAddress not idempotent for %q: %q != %q", raw, once, twice)
		}
	}
}
