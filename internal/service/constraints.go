package service

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"cartagent/internal/model"
)

// Constraints are the numeric bounds extracted from a free-text query.
// Any field may be absent; a query with no recognizable phrasing on an
// axis leaves that axis unset.
type Constraints struct {
	MinPrice  *float64
	MaxPrice  *float64
	MinRating *float64
}

var (
	// Rating is matched first and its span excised before price matching,
	// so phrases like "rating above 4000" can never leak into the price
	// axes.
	ratingRe = regexp.MustCompile(`rating\s+(?:above|over|at least|>=|≥)\s*(\d+(?:\.\d+)?)`)

	betweenPriceRe = regexp.MustCompile(`(?:priced\s+)?between\s+₹?\s*(\d+)\s*(?:and|to|-)\s*₹?\s*(\d+)`)
	maxPriceRe     = regexp.MustCompile(`(?:price[ds]?\s+)?(?:under|below|max|upto|up to|less than)\s+₹?\s*(\d+)`)
	minPriceRe     = regexp.MustCompile(`(?:price[ds]?\s+)?(?:over|above|min|more than|greater than)\s+₹?\s*(\d+)`)
)

// priceRules are evaluated in order with first-match-wins semantics per
// axis. The combined "between A and B" rule fully determines both bounds
// and shadows the single-bound rules.
var priceRules = []struct {
	re    *regexp.Regexp
	apply func(c *Constraints, m []string)
}{
	{
		re: betweenPriceRe,
		apply: func(c *Constraints, m []string) {
			c.MinPrice = parseNumber(m[1])
			c.MaxPrice = parseNumber(m[2])
		},
	},
	{
		re: maxPriceRe,
		apply: func(c *Constraints, m []string) {
			if c.MaxPrice == nil {
				c.MaxPrice = parseNumber(m[1])
			}
		},
	},
	{
		re: minPriceRe,
		apply: func(c *Constraints, m []string) {
			if c.MinPrice == nil {
				c.MinPrice = parseNumber(m[1])
			}
		},
	},
}

// ExtractConstraints pulls numeric price and rating bounds out of a
// natural language query using the fixed pattern list above.
func ExtractConstraints(query string) Constraints {
	var c Constraints
	lowered := strings.ToLower(query)

	// Rating axis first, then remove the phrase so its number cannot be
	// mistaken for a price.
	if m := ratingRe.FindStringSubmatch(lowered); m != nil {
		c.MinRating = parseNumber(m[1])
		lowered = ratingRe.ReplaceAllString(lowered, " ")
	}

	for _, rule := range priceRules {
		if m := rule.re.FindStringSubmatch(lowered); m != nil {
			rule.apply(&c, m)
			if rule.re == betweenPriceRe {
				break
			}
		}
	}

	return c
}

func parseNumber(s string) *float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// ValidateIntent fails fast on malformed intents, before any browser
// session is created.
func ValidateIntent(intent *model.ProductIntent) error {
	if intent == nil || strings.TrimSpace(intent.Product) == "" {
		return &model.ValidationError{Reason: "product name is required"}
	}

	minPrice, maxPrice := intent.MinPrice(), intent.MaxPrice()
	if minPrice != nil && maxPrice != nil && *minPrice > *maxPrice {
		return &model.ValidationError{
			Reason: fmt.Sprintf("min price (%.0f) cannot exceed max price (%.0f)", *minPrice, *maxPrice),
		}
	}

	if minRating := intent.MinRating(); minRating != nil {
		if *minRating <= 0 || *minRating > 5 {
			return &model.ValidationError{
				Reason: fmt.Sprintf("min rating %.1f must be in (0, 5]", *minRating),
			}
		}
	}

	return nil
}

// BuildSearchQuery builds the storefront search string: one brand source
// (hard constraint > per-call override > soft brand > first soft brands
// entry), then the product name, then attribute values in insertion
// order, space separated with empty parts skipped.
func BuildSearchQuery(intent *model.ProductIntent, brandOverride string) string {
	parts := []string{intent.Product}
	parts = append(parts, intent.AttributeValues()...)

	brand := ""
	switch {
	case intent.HardConstraints.Brand != "":
		brand = intent.HardConstraints.Brand
	case brandOverride != "":
		brand = brandOverride
	case intent.SoftPreferences.Brand != "":
		brand = intent.SoftPreferences.Brand
	case len(intent.SoftPreferences.Brands) > 0:
		brand = intent.SoftPreferences.Brands[0]
	}
	if brand != "" {
		parts = append([]string{brand}, parts...)
	}

	fields := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			fields = append(fields, p)
		}
	}
	return strings.Join(fields, " ")
}

// IsGenericIntent reports whether an intent is loosely specified: no hard
// brand constraint, at most 2 attributes and a product name of at most
// 2 words. Generic intents suppress brand/attribute enforcement in the
// compiled prompt so broader matches are allowed. Soft brand preferences
// deliberately do not gate genericity.
func IsGenericIntent(intent *model.ProductIntent) bool {
	return intent.HardConstraints.Brand == "" &&
		intent.AttributeCount() <= 2 &&
		len(strings.Fields(intent.Product)) <= 2
}
