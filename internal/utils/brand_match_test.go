package utils

import "testing"

func TestFuzzyMatchBrand(t *testing.T) {
	tests := []struct {
		name  string
		brand string
		title string
		want  bool
	}{
		{"exact token", "Logitech", "Logitech M185 Wireless Mouse", true},
		{"case insensitive", "logitech", "LOGITECH G102 Gaming Mouse", true},
		{"substring", "boat", "boAt Airdopes 131 Earbuds", true},
		{"alias match", "HP", "Hewlett-Packard DeskJet Printer", true},
		{"apple product line alias", "Apple", "AirPods Pro (2nd Generation)", true},
		{"no match", "Logitech", "Generic Wireless Mouse", false},
		{"empty brand", "", "Logitech Mouse", false},
		{"empty title", "Logitech", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FuzzyMatchBrand(tt.brand, tt.title); got != tt.want {
				t.Errorf("FuzzyMatchBrand(%q, %q) = %v, want %v", tt.brand, tt.title, got, tt.want)
			}
		})
	}
}

func TestNormalizeBrand(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Hewlett-Packard", "hp"},
		{"XIAOMI", "mi"},
		{"Logitech", "logitech"},
		{"  SomeBrand  ", "somebrand"},
	}

	for _, tt := range tests {
		if got := NormalizeBrand(tt.input); got != tt.want {
			t.Errorf("NormalizeBrand(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
