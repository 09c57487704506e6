package service

import (
	"strings"
	"testing"
)

func TestBuildExtractionScript(t *testing.T) {
	script := BuildExtractionScript("https://www.amazon.in", nil)

	if strings.Contains(script, "__BASE_URL__") || strings.Contains(script, "__MIN_RATING__") {
		t.Fatal("placeholders were not substituted")
	}
	if !strings.Contains(script, "'https://www.amazon.in' + url") {
		t.Error("base URL not embedded for relative links")
	}
	if !strings.Contains(script, "const minRating = null;") {
		t.Error("nil min rating should render as null")
	}
	// The in-page filter must cover the known ad markers
	for _, marker := range []string{"/sspa/", "sp_atk=", "data-sponsored"} {
		if !strings.Contains(script, marker) {
			t.Errorf("script missing sponsored marker %q", marker)
		}
	}
}

func TestBuildExtractionScript_MinRating(t *testing.T) {
	script := BuildExtractionScript("https://www.amazon.in", float64Ptr(4.5))
	if !strings.Contains(script, "const minRating = 4.5;") {
		t.Error("min rating not embedded")
	}
}

func TestBuildPriceSliderScript(t *testing.T) {
	tests := []struct {
		name     string
		minPrice *float64
		maxPrice *float64
		wantMin  string
		wantMax  string
	}{
		{
			name:     "both bounds",
			minPrice: float64Ptr(300),
			maxPrice: float64Ptr(600),
			wantMin:  "const targetMin = 300;",
			wantMax:  "const targetMax = 600;",
		},
		{
			name:     "max only",
			maxPrice: float64Ptr(500),
			wantMin:  "const targetMin = null;",
			wantMax:  "const targetMax = 500;",
		},
		{
			name:     "min only",
			minPrice: float64Ptr(1000),
			wantMin:  "const targetMin = 1000;",
			wantMax:  "const targetMax = null;",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			script := BuildPriceSliderScript(tt.minPrice, tt.maxPrice)
			if script == "" {
				t.Fatal("expected non-empty script")
			}
			if !strings.Contains(script, tt.wantMin) {
				t.Errorf("script missing %q", tt.wantMin)
			}
			if !strings.Contains(script, tt.wantMax) {
				t.Errorf("script missing %q", tt.wantMax)
			}
		})
	}
}

func TestBuildPriceSliderScript_NoBounds(t *testing.T) {
	if script := BuildPriceSliderScript(nil, nil); script != "" {
		t.Errorf("expected empty script without bounds, got %d bytes", len(script))
	}
}
