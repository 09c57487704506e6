package model

// ProductItem represents a single product in a cart or listing result.
type ProductItem struct {
	Name   string   `json:"name"`
	Price  *float64 `json:"price,omitempty"`
	Rating *float64 `json:"rating,omitempty"`
	URL    string   `json:"url"`
}

// CartResult is the terminal result of a single-add task.
type CartResult struct {
	Success bool          `json:"success"`
	Message string        `json:"message,omitempty"`
	Items   []ProductItem `json:"items"`
	Product *ProductItem  `json:"product,omitempty"`
}

// ProductListResult is the terminal result of a listing task.
// Count always equals len(Products).
type ProductListResult struct {
	Success  bool          `json:"success"`
	Products []ProductItem `json:"products"`
	Count    int           `json:"count"`
	Message  string        `json:"message,omitempty"`
}
