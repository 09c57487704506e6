package model

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Sort preference values for ProductIntent.SortBy
const (
	SortPriceAsc   = "price_asc"
	SortPriceDesc  = "price_desc"
	SortRatingAsc  = "rating_asc"
	SortRatingDesc = "rating_desc"
)

// ProductIntent is the structured form of a shopping request.
//
// Core structure:
// - Product: base product name (required)
// - Attributes: descriptive characteristics (color, size, material, connectivity...)
// - HardConstraints: must satisfy (price range, rating, discount, brand)
// - SoftPreferences: nice to have, used for ranking/tie-breaking only
// - SortBy: explicit sorting preference
type ProductIntent struct {
	Product string `json:"product" binding:"required"`

	// Attributes preserves insertion order so the search query and prompt
	// text stay deterministic across runs.
	Attributes *orderedmap.OrderedMap[string, string] `json:"attributes,omitempty"`

	HardConstraints HardConstraints `json:"hard_constraints,omitempty"`
	SoftPreferences SoftPreferences `json:"soft_preferences,omitempty"`

	SortBy string `json:"sort_by,omitempty"`
}

// HardConstraints are requirements the selected product must satisfy exactly.
type HardConstraints struct {
	Price    *PriceRange    `json:"price,omitempty"`
	Rating   *RatingRange   `json:"rating,omitempty"`
	Discount *DiscountFloor `json:"discount,omitempty"`
	Brand    string         `json:"brand,omitempty"`
}

// SoftPreferences are ranking hints, not filters.
type SoftPreferences struct {
	Brand  string            `json:"brand,omitempty"`
	Brands []string          `json:"brands,omitempty"`
	Other  map[string]string `json:"other,omitempty"`
}

// PriceRange bounds a price in rupees. Either bound may be absent.
type PriceRange struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// RatingRange bounds a star rating (0-5].
type RatingRange struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// DiscountFloor is a minimum discount percentage.
type DiscountFloor struct {
	Min *float64 `json:"min,omitempty"`
}

// MinPrice returns the hard minimum price, or nil.
func (i *ProductIntent) MinPrice() *float64 {
	if i.HardConstraints.Price == nil {
		return nil
	}
	return i.HardConstraints.Price.Min
}

// MaxPrice returns the hard maximum price, or nil.
func (i *ProductIntent) MaxPrice() *float64 {
	if i.HardConstraints.Price == nil {
		return nil
	}
	return i.HardConstraints.Price.Max
}

// MinRating returns the hard minimum rating, or nil.
func (i *ProductIntent) MinRating() *float64 {
	if i.HardConstraints.Rating == nil {
		return nil
	}
	return i.HardConstraints.Rating.Min
}

// MaxRating returns the hard maximum rating, or nil.
func (i *ProductIntent) MaxRating() *float64 {
	if i.HardConstraints.Rating == nil {
		return nil
	}
	return i.HardConstraints.Rating.Max
}

// MinDiscount returns the hard minimum discount percentage, or nil.
func (i *ProductIntent) MinDiscount() *float64 {
	if i.HardConstraints.Discount == nil {
		return nil
	}
	return i.HardConstraints.Discount.Min
}

// AttributeCount returns the number of descriptive attributes.
func (i *ProductIntent) AttributeCount() int {
	if i.Attributes == nil {
		return 0
	}
	return i.Attributes.Len()
}

// AttributeValues returns attribute values in insertion order.
func (i *ProductIntent) AttributeValues() []string {
	if i.Attributes == nil {
		return nil
	}
	values := make([]string, 0, i.Attributes.Len())
	for pair := i.Attributes.Oldest(); pair != nil; pair = pair.Next() {
		values = append(values, pair.Value)
	}
	return values
}
