package normalize

import "testing"

func TestEmail(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"ngo@example.org", "ngo@example.org"},
		{"NGO@EXAMPLE.ORG", "ngo@example.org"},
		{"  Ngo@Example.Org  ", "ngo@example.org"},
		{"", ""},
		{"   ", ""},
		{"Mixed.Case@Domain.ORG", "mixed.case@domain.org"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Email(tt.input)
			if got != tt.want {
				t.Errorf("Email(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRegistrationNumber(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"r-1", "R-1"},
		{" ngo/2024/0042 ", "NGO/2024/0042"},
		{"R-1", "R-1"},
		{"", ""},
	}

	for _, tt := range tests {
		got := RegistrationNumber(tt.input)
		if got != tt.want {
			t.Errorf("RegistrationNumber(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestPhone(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"+1 (555) 123-4567", "+15551234567"},
		{"555.123.4567", "5551234567"},
		{"  0123 456 789 ", "0123456789"},
		{"5+5", "55"}, // plus only allowed at the front
		{"", ""},
	}

	for _, tt := range tests {
		got := Phone(tt.input)
		if got != tt.want {
			t.Errorf("Phone(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
