package utils

import (
	"strings"
)

// brandAliases maps canonical brand keys to the spellings that show up
// in product titles.
var brandAliases = map[string][]string{
	"hp":        {"hp", "hewlett-packard", "hewlett packard"},
	"lg":        {"lg", "lg electronics"},
	"mi":        {"mi", "xiaomi", "redmi"},
	"samsung":   {"samsung", "galaxy"},
	"boat":      {"boat", "boAt"},
	"jbl":       {"jbl", "harman"},
	"logitech":  {"logitech", "logi"},
	"sony":      {"sony"},
	"apple":     {"apple", "iphone", "ipad", "macbook", "airpods"},
	"oneplus":   {"oneplus", "one plus"},
	"lenovo":    {"lenovo", "thinkpad", "ideapad"},
	"dell":      {"dell", "inspiron", "alienware"},
	"asus":      {"asus", "zenbook", "vivobook", "rog"},
	"whirlpool": {"whirlpool"},
	"philips":   {"philips"},
}

// FuzzyMatchBrand reports whether a product title plausibly belongs to
// the given brand. Matching is case-insensitive: exact token, substring,
// then known alias spellings.
func FuzzyMatchBrand(brand, title string) bool {
	brandLower := strings.ToLower(strings.TrimSpace(brand))
	titleLower := strings.ToLower(strings.TrimSpace(title))

	if brandLower == "" || titleLower == "" {
		return false
	}

	// Exact token match
	for _, token := range strings.Fields(titleLower) {
		if strings.Trim(token, "()[],.") == brandLower {
			return true
		}
	}

	// Contains match
	if strings.Contains(titleLower, brandLower) {
		return true
	}

	// Check aliases
	for key, values := range brandAliases {
		if strings.Contains(brandLower, key) {
			for _, alias := range values {
				if strings.Contains(titleLower, strings.ToLower(alias)) {
					return true
				}
			}
		}
	}

	return false
}

// NormalizeBrand normalizes a brand spelling to its canonical key when
// one is known, otherwise returns the trimmed lowercase input.
func NormalizeBrand(brand string) string {
	brandLower := strings.ToLower(strings.TrimSpace(brand))

	for key, values := range brandAliases {
		for _, alias := range values {
			if brandLower == strings.ToLower(alias) {
				return key
			}
		}
	}

	return brandLower
}
