package service

import (
	"strings"
	"testing"

	"cartagent/internal/agent"
)

func newTestPipeline() *RecoveryPipeline {
	return NewRecoveryPipeline("https://www.amazon.in")
}

func TestRecoverCartResult_StructuredOutput(t *testing.T) {
	h := &agent.History{
		Output: []byte(`{"success": true, "message": "Added", "items": [{"name": "Mouse", "price": 499, "url": "/dp/B0TESTASIN"}]}`),
		Done:   true,
	}

	result := newTestPipeline().RecoverCartResult(h)
	if !result.Success {
		t.Fatal("expected success from structured output")
	}
	if len(result.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(result.Items))
	}
	if result.Items[0].URL != "https://www.amazon.in/dp/B0TESTASIN" {
		t.Errorf("item URL not normalized: %q", result.Items[0].URL)
	}
}

func TestRecoverCartResult_FinalTextWithProse(t *testing.T) {
	h := &agent.History{
		Done: true,
		FinalText: "I have completed the task. Here is the result:\n" +
			"```json\n{\"success\": true, \"message\": \"Added to cart\", \"product\": {\"name\": \"Mouse\", \"url\": \"B0TESTASIN\"}}\n```",
	}

	result := newTestPipeline().RecoverCartResult(h)
	if !result.Success {
		t.Fatal("expected success recovered from fenced JSON")
	}
	if result.Product == nil {
		t.Fatal("expected product")
	}
	if result.Product.URL != "https://www.amazon.in/dp/B0TESTASIN" {
		t.Errorf("product URL not normalized: %q", result.Product.URL)
	}
}

// A bare {"success": false} report carries no message, items or product,
// but it is still the agent's verdict and must survive as a failure.
func TestRecoverCartResult_ExplicitFailureReport(t *testing.T) {
	tests := []struct {
		name string
		h    *agent.History
	}{
		{
			name: "final text",
			h:    &agent.History{Done: true, FinalText: `{"success": false}`},
		},
		{
			name: "structured output",
			h:    &agent.History{Done: true, Output: []byte(`{"success": false}`)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := newTestPipeline().RecoverCartResult(tt.h)
			if result.Success {
				t.Fatal("explicit failure report was inverted to success")
			}
			if strings.Contains(result.Message, "added to cart successfully") {
				t.Errorf("fallback message replaced the agent's verdict: %q", result.Message)
			}
		})
	}
}

// A completed run with unusable text still reports success: the add most
// likely happened even though the agent failed to describe it.
func TestRecoverCartResult_OptimisticFallback(t *testing.T) {
	h := &agent.History{
		Done:      true,
		FinalText: "done, everything went fine",
	}

	result := newTestPipeline().RecoverCartResult(h)
	if !result.Success {
		t.Error("expected optimistic success for completed run")
	}
	if result.Items == nil || len(result.Items) != 0 {
		t.Errorf("expected empty items slice, got %v", result.Items)
	}
}

func TestRecoverCartResult_CompletedButEmpty(t *testing.T) {
	h := &agent.History{Done: true}

	result := newTestPipeline().RecoverCartResult(h)
	if result.Success {
		t.Error("expected failure when run completed with no output at all")
	}
}

func TestRecoverCartResult_IncompleteRun(t *testing.T) {
	h := &agent.History{
		Done:      false,
		RunErrors: []string{"", "timeout on step 12", "element not found", "retry exhausted", "fourth error"},
	}

	result := newTestPipeline().RecoverCartResult(h)
	if result.Success {
		t.Fatal("expected failure for incomplete run")
	}
	if !strings.Contains(result.Message, "timeout on step 12; element not found; retry exhausted") {
		t.Errorf("expected first 3 non-empty errors joined, got %q", result.Message)
	}
	if strings.Contains(result.Message, "fourth error") {
		t.Errorf("expected at most 3 errors, got %q", result.Message)
	}
}

func TestRecoverCartResult_IncompleteRunNoErrors(t *testing.T) {
	result := newTestPipeline().RecoverCartResult(&agent.History{})
	if result.Success {
		t.Fatal("expected failure")
	}
	if !strings.Contains(result.Message, "Unknown error occurred") {
		t.Errorf("expected unknown error message, got %q", result.Message)
	}
}

// Recovery is pure: the same history always yields the same result.
func TestRecoverCartResult_Deterministic(t *testing.T) {
	h := &agent.History{
		Done:      true,
		FinalText: `{"success": true, "message": "ok", "items": []}`,
	}

	p := newTestPipeline()
	first := p.RecoverCartResult(h)
	second := p.RecoverCartResult(h)
	if first.Success != second.Success || first.Message != second.Message {
		t.Error("recovery not deterministic for identical history")
	}
}

func TestRecoverListResult_StructuredOutput(t *testing.T) {
	h := &agent.History{
		Output: []byte(`{"products": [
			{"asin": "B0AAAAAAA1", "title": "Mouse A", "price": 399, "rating": 4.2, "url": "/dp/B0AAAAAAA1", "sponsored": false},
			{"asin": "B0AAAAAAA2", "title": "Mouse B", "price": 499, "url": "/dp/B0AAAAAAA2", "sponsored": true},
			{"asin": "B0AAAAAAA3", "title": "Mouse C", "price": "549", "url": "/dp/B0AAAAAAA3"}
		]}`),
		Done: true,
	}

	result := newTestPipeline().RecoverListResult(h, 5)
	if !result.Success {
		t.Fatal("expected success")
	}
	if result.Count != 2 {
		t.Fatalf("expected sponsored entry dropped, got count %d", result.Count)
	}
	if result.Products[1].Price == nil || *result.Products[1].Price != 549 {
		t.Error("string price not coerced")
	}
	if result.Products[0].URL != "https://www.amazon.in/dp/B0AAAAAAA1" {
		t.Errorf("URL not normalized: %q", result.Products[0].URL)
	}
}

func TestRecoverListResult_NumberedText(t *testing.T) {
	text := `Here are the products I found:

1) Wireless Mouse
- ASIN: B0AAAAAAA1
- Title: "Logitech M185 Wireless Mouse"
- Price: ₹649
- Rating: 4.3 out of 5
- URL: https://www.amazon.in/dp/B0AAAAAAA1
- Sponsored: No

2. Budget Mouse
- ASIN: B0AAAAAAA2
- Title: Generic Wireless Mouse
- Price: 299
- Rating: 3.9 out of 5
- URL: /dp/B0AAAAAAA2
- Sponsored: YES

3) Another Mouse
- ASIN: B0AAAAAAA3
- Title: "HP X200 Mouse"
- Price: ₹449
- Rating: 4.0 out of 5
- URL: B0AAAAAAA3
- Sponsored: false
`

	h := &agent.History{Done: true, FinalText: text}
	result := newTestPipeline().RecoverListResult(h, 5)

	if !result.Success {
		t.Fatal("expected success")
	}
	if result.Count != 2 {
		t.Fatalf("expected 2 products (sponsored dropped), got %d", result.Count)
	}
	if result.Products[0].Name != "Logitech M185 Wireless Mouse" {
		t.Errorf("unexpected first product name %q", result.Products[0].Name)
	}
	if result.Products[0].Rating == nil || *result.Products[0].Rating != 4.3 {
		t.Error("rating not parsed")
	}
	if result.Products[1].URL != "https://www.amazon.in/dp/B0AAAAAAA3" {
		t.Errorf("bare ASIN URL not rebuilt: %q", result.Products[1].URL)
	}
}

func TestRecoverListResult_ActionResults(t *testing.T) {
	h := &agent.History{
		Done: true,
		Steps: []agent.StepResult{
			{ExtractedContent: "navigated to search page"},
			{ExtractedContent: `{"success": true, "products": [
				{"asin": "B0AAAAAAA1", "title": "Mouse A", "price": 399, "url": "/dp/B0AAAAAAA1"},
				{"asin": "B0AAAAAAA2", "price": 450, "url": "/dp/B0AAAAAAA2"},
				{"asin": "", "title": "No identifier", "price": 100}
			], "count": 3}`},
		},
	}

	result := newTestPipeline().RecoverListResult(h, 5)
	if !result.Success {
		t.Fatal("expected success from action results")
	}
	// Title-less and ASIN-less probe records are dropped
	if result.Count != 1 {
		t.Fatalf("expected 1 product, got %d", result.Count)
	}
	if result.Products[0].Name != "Mouse A" {
		t.Errorf("unexpected product %q", result.Products[0].Name)
	}
}

func TestRecoverListResult_MaxProductsCap(t *testing.T) {
	h := &agent.History{
		Output: []byte(`{"products": [
			{"asin": "B0AAAAAAA1", "title": "A", "url": "/dp/B0AAAAAAA1"},
			{"asin": "B0AAAAAAA2", "title": "B", "url": "/dp/B0AAAAAAA2"},
			{"asin": "B0AAAAAAA3", "title": "C", "url": "/dp/B0AAAAAAA3"}
		]}`),
		Done: true,
	}

	result := newTestPipeline().RecoverListResult(h, 2)
	if result.Count != 2 {
		t.Errorf("expected cap at 2 products, got %d", result.Count)
	}
}

func TestRecoverListResult_CompletedEmpty(t *testing.T) {
	h := &agent.History{Done: true, FinalText: "no products matched"}

	result := newTestPipeline().RecoverListResult(h, 5)
	if result.Success {
		t.Error("list mode has no optimistic fallback")
	}
	if result.Products == nil || len(result.Products) != 0 {
		t.Errorf("expected empty products slice, got %v", result.Products)
	}
}

func TestRecoverListResult_IncompleteRun(t *testing.T) {
	h := &agent.History{RunErrors: []string{"browser crashed"}}

	result := newTestPipeline().RecoverListResult(h, 5)
	if result.Success {
		t.Fatal("expected failure")
	}
	if !strings.Contains(result.Message, "browser crashed") {
		t.Errorf("expected run error in message, got %q", result.Message)
	}
}
