package service

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	"cartagent/internal/model"
	"cartagent/internal/utils"
)

// IntentParser turns a free-text shopping query into a ProductIntent.
// When the chat API is available it does the parsing; otherwise the
// regex constraint extractor provides a coarse fallback so the service
// keeps working without a key.
type IntentParser struct {
	client *OpenAIClient
}

// NewIntentParser creates an intent parser. client may be nil.
func NewIntentParser(client *OpenAIClient) *IntentParser {
	return &IntentParser{client: client}
}

// HasAI reports whether a chat client is configured, i.e. whether Parse
// can do better than the regex fallback.
func (p *IntentParser) HasAI() bool {
	return p.client != nil && p.client.IsEnabled()
}

const intentSystemPrompt = `You are a shopping intent parser for an Indian e-commerce assistant. Parse the user's natural language request into structured JSON.

Extract the following:
- product: the base product name, short and searchable (string, required)
- attributes: object of descriptive characteristics in the order mentioned, e.g. {"color": "black", "connectivity": "wireless"} (omit if none)
- hard_constraints: requirements the product MUST satisfy
  - price: {"min": number, "max": number} in rupees (omit absent bounds)
  - rating: {"min": number, "max": number} on a 0-5 star scale
  - discount: {"min": number} minimum discount percentage
  - brand: exact brand requirement (string)
- soft_preferences: nice-to-have hints used for ranking only
  - brand: single preferred brand (string)
  - brands: ordered list of preferred brands, most preferred first
  - other: object of other loose preferences
- sort_by: one of "price_asc", "price_desc", "rating_asc", "rating_desc" if the user asks for cheapest/most expensive/best rated

Important rules:
- Respond ONLY with valid JSON
- If a field is not mentioned, omit it
- "under 500" / "below 500" means price max 500; "above 500" means price min 500
- "between 300 and 600" sets both price bounds
- Rating phrases like "rating above 4" are ratings, never prices. A number above 5 after "rating above" refers to review counts, not ratings; ignore it
- "cheapest" means sort_by "price_asc"; "best rated" means sort_by "rating_desc"
- "prefer Samsung" is a soft preference; "must be Samsung" or "Samsung only" is a hard brand constraint

Examples:
Query: "wireless mouse under 500"
Response: {"product": "mouse", "attributes": {"connectivity": "wireless"}, "hard_constraints": {"price": {"max": 500}}}

Query: "black Logitech keyboard between 1000 and 2000 with rating above 4"
Response: {"product": "keyboard", "attributes": {"color": "black"}, "hard_constraints": {"price": {"min": 1000, "max": 2000}, "rating": {"min": 4}, "brand": "Logitech"}}

Query: "cheapest running shoes, prefer Nike or Adidas"
Response: {"product": "running shoes", "soft_preferences": {"brands": ["Nike", "Adidas"]}, "sort_by": "price_asc"}

Query: "water bottle with at least 50% off"
Response: {"product": "water bottle", "hard_constraints": {"discount": {"min": 50}}}`

// Parse builds a ProductIntent from a query, preferring the chat API
// and falling back to regex extraction when it is unavailable or fails.
func (p *IntentParser) Parse(ctx context.Context, query string) (*model.ProductIntent, error) {
	if strings.TrimSpace(query) == "" {
		return nil, &model.ValidationError{Reason: "query cannot be empty"}
	}

	if p.HasAI() {
		intent, err := p.parseWithAI(ctx, query)
		if err == nil {
			return intent, nil
		}
		log.Printf("AI intent parsing failed, falling back to regex extraction: %v", err)
	}

	return p.parseHeuristic(query)
}

func (p *IntentParser) parseWithAI(ctx context.Context, query string) (*model.ProductIntent, error) {
	req := ChatCompletionRequest{
		Messages: []ChatMessage{
			{Role: "system", Content: intentSystemPrompt},
			{Role: "user", Content: query},
		},
		ResponseFormat: &ResponseFormat{Type: "json_object"},
	}

	resp, err := p.client.ChatCompletion(ctx, req)
	if err != nil {
		return nil, err
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from chat API")
	}

	content := resp.Choices[0].Message.Content
	var intent model.ProductIntent
	if err := utils.ParseAgentJSON(content, &intent); err != nil {
		log.Printf("Failed to parse AI intent response, content: %s", content)
		return nil, fmt.Errorf("failed to parse AI response: %w", err)
	}

	if err := ValidateIntent(&intent); err != nil {
		return nil, fmt.Errorf("AI intent validation failed: %w", err)
	}

	return &intent, nil
}

// parseHeuristic derives a minimal intent directly from the query text:
// numeric constraints via the regex extractor, the stripped remainder
// as the product name.
func (p *IntentParser) parseHeuristic(query string) (*model.ProductIntent, error) {
	c := ExtractConstraints(query)

	intent := &model.ProductIntent{
		Product: stripConstraintPhrases(query),
	}
	if c.MinPrice != nil || c.MaxPrice != nil {
		intent.HardConstraints.Price = &model.PriceRange{Min: c.MinPrice, Max: c.MaxPrice}
	}
	if c.MinRating != nil {
		intent.HardConstraints.Rating = &model.RatingRange{Min: c.MinRating}
	}

	if err := ValidateIntent(intent); err != nil {
		return nil, err
	}
	return intent, nil
}

// stripConstraintPhrases removes recognized constraint phrasing so the
// remainder can serve as a search term.
func stripConstraintPhrases(query string) string {
	cleaned := strings.ToLower(query)
	for _, re := range []*regexp.Regexp{ratingRe, betweenPriceRe, maxPriceRe, minPriceRe} {
		cleaned = re.ReplaceAllString(cleaned, " ")
	}
	return strings.Join(strings.Fields(cleaned), " ")
}
