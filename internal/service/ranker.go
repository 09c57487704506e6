package service

import (
	"math"
	"sort"

	"cartagent/internal/model"
	"cartagent/internal/utils"
)

// Ranker orders recovered products. An explicit sort preference on the
// intent wins outright; otherwise products are ordered by a weighted
// blend of price fit, rating and soft brand affinity.
type Ranker struct {
	weightPrice  float64
	weightRating float64
	weightBrand  float64
}

// NewRanker creates a new ranker with specified weights.
func NewRanker(weightPrice, weightRating, weightBrand float64) *Ranker {
	return &Ranker{
		weightPrice:  weightPrice,
		weightRating: weightRating,
		weightBrand:  weightBrand,
	}
}

// NewDefaultRanker creates a ranker with the standard weight split.
func NewDefaultRanker() *Ranker {
	return NewRanker(0.4, 0.4, 0.2)
}

// RankProducts returns the products reordered for the given intent. The
// input slice is not modified. Ties keep recovery order, so ranking is
// deterministic for a fixed input.
func (r *Ranker) RankProducts(products []model.ProductItem, intent *model.ProductIntent) []model.ProductItem {
	ranked := make([]model.ProductItem, len(products))
	copy(ranked, products)

	if intent == nil {
		return ranked
	}

	if intent.SortBy != "" {
		r.sortByPreference(ranked, intent.SortBy)
		return ranked
	}

	scores := make([]float64, len(ranked))
	for i, p := range ranked {
		priceScore := r.calculatePriceScore(p.Price, intent)
		ratingScore := r.calculateRatingScore(p.Rating)
		brandScore := r.calculateBrandScore(p.Name, intent)

		scores[i] = (r.weightPrice * priceScore) +
			(r.weightRating * ratingScore) +
			(r.weightBrand * brandScore)
	}

	order := make([]int, len(ranked))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return scores[order[i]] > scores[order[j]]
	})

	result := make([]model.ProductItem, len(ranked))
	for i, idx := range order {
		result[i] = ranked[idx]
	}
	return result
}

// sortByPreference applies an explicit sort axis. Products missing the
// sorted value go last regardless of direction.
func (r *Ranker) sortByPreference(products []model.ProductItem, sortBy string) {
	key := func(p model.ProductItem) *float64 {
		switch sortBy {
		case model.SortPriceAsc, model.SortPriceDesc:
			return p.Price
		case model.SortRatingAsc, model.SortRatingDesc:
			return p.Rating
		}
		return nil
	}
	descending := sortBy == model.SortPriceDesc || sortBy == model.SortRatingDesc

	sort.SliceStable(products, func(i, j int) bool {
		vi, vj := key(products[i]), key(products[j])
		if vi == nil {
			return false
		}
		if vj == nil {
			return true
		}
		if descending {
			return *vi > *vj
		}
		return *vi < *vj
	})
}

// calculatePriceScore scores how well the price sits in the hard price
// range: proximity to the midpoint when both bounds exist.
func (r *Ranker) calculatePriceScore(price *float64, intent *model.ProductIntent) float64 {
	if price == nil {
		return 0.5 // Neutral score if no price
	}

	minPrice, maxPrice := intent.MinPrice(), intent.MaxPrice()
	if minPrice == nil && maxPrice == nil {
		return 1.0 // Full score if no price constraint
	}

	actualPrice := *price

	if minPrice != nil && maxPrice != nil {
		if actualPrice < *minPrice || actualPrice > *maxPrice {
			return 0.0
		}

		midpoint := (*minPrice + *maxPrice) / 2
		priceRange := *maxPrice - *minPrice
		if priceRange == 0 {
			return 1.0
		}

		distance := math.Abs(actualPrice - midpoint)
		score := 1.0 - (distance / (priceRange / 2))
		if score < 0 {
			score = 0
		}
		return score
	}

	if minPrice != nil {
		if actualPrice < *minPrice {
			return 0.0
		}
		return 1.0
	}

	if actualPrice > *maxPrice {
		return 0.0
	}
	// Cheaper relative to the cap is better
	score := 1.0 - (actualPrice / *maxPrice)
	if score < 0 {
		score = 0
	}
	return score
}

func (r *Ranker) calculateRatingScore(rating *float64) float64 {
	if rating == nil {
		return 0.5 // Neutral score if no rating
	}
	score := *rating / 5.0
	if score > 1.0 {
		score = 1.0
	}
	if score < 0 {
		score = 0
	}
	return score
}

// calculateBrandScore rewards titles matching a soft brand preference.
// An ordered brand list decays by position so earlier brands rank ahead.
func (r *Ranker) calculateBrandScore(title string, intent *model.ProductIntent) float64 {
	if intent.SoftPreferences.Brand != "" {
		if utils.FuzzyMatchBrand(intent.SoftPreferences.Brand, title) {
			return 1.0
		}
		return 0.0
	}

	for i, brand := range intent.SoftPreferences.Brands {
		if utils.FuzzyMatchBrand(brand, title) {
			return 1.0 / float64(i+1)
		}
	}

	if len(intent.SoftPreferences.Brands) > 0 {
		return 0.0
	}

	return 0.5 // Neutral score with no brand preference
}
