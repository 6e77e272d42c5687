package inputval

import "testing"

func TestIsValidPhone(t *testing.T) {
	tests := []struct {
		phone string
		want  bool
	}{
		{"+15550100100", true},
		{"15550100100", true},
		{"5550100", true}, // minimum length

		{"", false},
		{"555010", false},            // too short
		{"+1234567890123456", false}, // too long
		{"+1555010x100", false},      // letters
		{"+1 555 0100", false},       // not normalized
		{"++15550100100", false},     // double plus
	}

	for _, tt := range tests {
		t.Run(tt.phone, func(t *testing.T) {
			if got := IsValidPhone(tt.phone); got != tt.want {
				t.Errorf("IsValidPhone(%q) = %v, want %v", tt.phone, got, tt.want)
			}
		})
	}
}
