package service

import (
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"

	"cartagent/internal/agent"
	"cartagent/internal/model"
	"cartagent/internal/utils"
)

// RecoveryPipeline turns an agent run history into exactly one typed
// result. Strategies are tried in a fixed order and the first one that
// yields a value wins; if all are exhausted a declared failure (or, for
// completed cart runs, the historical optimistic fallback) is
// synthesized. The pipeline is pure: same history in, same result out.
type RecoveryPipeline struct {
	amazonURL string
}

// NewRecoveryPipeline creates a recovery pipeline for the given storefront.
func NewRecoveryPipeline(amazonURL string) *RecoveryPipeline {
	return &RecoveryPipeline{amazonURL: amazonURL}
}

// cartStrategy attempts one recovery path; nil means "no result here,
// try the next one".
type cartStrategy func(h *agent.History) *model.CartResult

// RecoverCartResult recovers a CartResult from a single-add run.
func (r *RecoveryPipeline) RecoverCartResult(h *agent.History) *model.CartResult {
	strategies := []cartStrategy{
		r.cartFromStructuredOutput,
		r.cartFromDecodedOutput,
		r.cartFromFinalText,
	}
	for _, strategy := range strategies {
		if result := strategy(h); result != nil {
			r.normalizeCartURLs(result)
			return result
		}
	}

	if h.IsDone() {
		// Completed run with nothing recoverable. The optimistic success
		// here masks genuinely empty runs; kept for compatibility with
		// observed agent behavior.
		if h.FinalResult() == "" {
			return &model.CartResult{
				Success: false,
				Message: "Task completed but no product information found",
				Items:   []model.ProductItem{},
			}
		}
		return &model.CartResult{
			Success: true,
			Message: "Product added to cart successfully",
			Items:   []model.ProductItem{},
		}
	}

	return &model.CartResult{
		Success: false,
		Message: "Failed to add product to cart: " + joinRunErrors(h.Errors()),
		Items:   []model.ProductItem{},
	}
}

// cartFromStructuredOutput uses the directly-typed structured output.
func (r *RecoveryPipeline) cartFromStructuredOutput(h *agent.History) *model.CartResult {
	if len(h.Output) == 0 {
		return nil
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(h.Output, &raw); err != nil || !hasCartFields(raw) {
		return nil
	}
	var result model.CartResult
	if err := json.Unmarshal(h.Output, &result); err != nil {
		return nil
	}
	return &result
}

// cartFromDecodedOutput retries the structured output with tolerant
// parsing, covering runtimes that wrap the payload in prose or fences.
func (r *RecoveryPipeline) cartFromDecodedOutput(h *agent.History) *model.CartResult {
	if len(h.Output) == 0 {
		return nil
	}
	return decodeCartResult(string(h.Output))
}

// cartFromFinalText parses the final free-text result of a completed run:
// strict JSON first, then brace-matched extraction.
func (r *RecoveryPipeline) cartFromFinalText(h *agent.History) *model.CartResult {
	if !h.IsDone() || h.FinalResult() == "" {
		return nil
	}
	return decodeCartResult(h.FinalResult())
}

// decodeCartResult parses input into a CartResult with tolerant JSON
// extraction. The parse is accepted only when the payload explicitly
// carries at least one cart field, so an arbitrary JSON object in the
// text does not masquerade as a result.
func decodeCartResult(input string) *model.CartResult {
	var raw map[string]interface{}
	if err := utils.ParseAgentJSON(input, &raw); err != nil || !hasCartFields(raw) {
		return nil
	}
	var result model.CartResult
	if err := utils.ParseAgentJSON(input, &result); err != nil {
		return nil
	}
	return &result
}

// hasCartFields reports whether a decoded object carries any cart result
// field. A bare {"success": false} is a valid failure report and must be
// returned as-is, never replaced by the completed-run synthesis.
func hasCartFields(raw map[string]interface{}) bool {
	for _, key := range []string{"success", "message", "items", "product"} {
		if _, ok := raw[key]; ok {
			return true
		}
	}
	return false
}

func (r *RecoveryPipeline) normalizeCartURLs(result *model.CartResult) {
	if result.Product != nil {
		if fixed, err := FixProductURL(r.amazonURL, result.Product.URL); err == nil {
			result.Product.URL = fixed
		}
	}
	for i := range result.Items {
		if fixed, err := FixProductURL(r.amazonURL, result.Items[i].URL); err == nil {
			result.Items[i].URL = fixed
		}
	}
	if result.Items == nil {
		result.Items = []model.ProductItem{}
	}
}

type listStrategy func(h *agent.History, max int) []model.ProductItem

// RecoverListResult recovers a ProductListResult from a listing run.
func (r *RecoveryPipeline) RecoverListResult(h *agent.History, maxProducts int) *model.ProductListResult {
	strategies := []listStrategy{
		r.listFromStructuredOutput,
		r.listFromFinalTextJSON,
		r.listFromNumberedText,
		r.listFromActionResults,
	}

	var products []model.ProductItem
	for _, strategy := range strategies {
		if products = strategy(h, maxProducts); len(products) > 0 {
			break
		}
	}

	if len(products) > maxProducts {
		products = products[:maxProducts]
	}

	if len(products) > 0 {
		return &model.ProductListResult{
			Success:  true,
			Products: products,
			Count:    len(products),
			Message:  fmt.Sprintf("Found %d products matching the criteria", len(products)),
		}
	}

	if h.IsDone() {
		return &model.ProductListResult{
			Success:  false,
			Products: []model.ProductItem{},
			Count:    0,
			Message:  "No products found matching the criteria",
		}
	}

	return &model.ProductListResult{
		Success:  false,
		Products: []model.ProductItem{},
		Count:    0,
		Message:  "Failed to list products: " + joinRunErrors(h.Errors()),
	}
}

// rawProductList keeps the recovered records as loose maps so the
// sponsorship classifier sees every field the probe captured, not just
// the ones the typed result carries.
type rawProductList struct {
	Products []map[string]interface{} `json:"products"`
}

func (r *RecoveryPipeline) listFromStructuredOutput(h *agent.History, max int) []model.ProductItem {
	if len(h.Output) == 0 {
		return nil
	}
	var payload rawProductList
	if err := json.Unmarshal(h.Output, &payload); err != nil || len(payload.Products) == 0 {
		return nil
	}
	return r.convertEntries(payload.Products, max, false)
}

func (r *RecoveryPipeline) listFromFinalTextJSON(h *agent.History, max int) []model.ProductItem {
	if !h.IsDone() || h.FinalResult() == "" {
		return nil
	}
	var payload rawProductList
	if err := utils.ParseAgentJSON(h.FinalResult(), &payload); err != nil || len(payload.Products) == 0 {
		return nil
	}
	return r.convertEntries(payload.Products, max, false)
}

// numberedProductRe matches the human-formatted numbered product lists
// agents sometimes emit instead of JSON. Accepts 1) or 1. numbering,
// quoted or unquoted titles, and any casing of the sponsored flag.
var numberedProductRe = regexp.MustCompile(
	`(?:^|\n)\s*` +
		`(\d+)[\)\.]` +
		`\s+([^\n]+?)\s*` +
		`\n-\s*ASIN:\s*([A-Z0-9]+)\s*` +
		`\n-\s*Title:\s*(?:"([^"\n]+)"|([^\n]+))\s*` +
		`\n-\s*Price:\s*₹?(\d+)\s*` +
		`\n-\s*Rating:\s*([\d.]+)\s*out of 5\s*` +
		`\n-\s*URL:\s*([^\s\n]+)\s*` +
		`\n-\s*Sponsored:\s*(\w+)`,
)

func (r *RecoveryPipeline) listFromNumberedText(h *agent.History, max int) []model.ProductItem {
	if !h.IsDone() || h.FinalResult() == "" {
		return nil
	}

	matches := numberedProductRe.FindAllStringSubmatch(h.FinalResult(), -1)
	if len(matches) == 0 {
		return nil
	}

	var products []model.ProductItem
	for _, m := range matches {
		heading := strings.TrimSpace(m[2])
		title := strings.TrimSpace(m[4])
		if title == "" {
			title = strings.TrimSpace(m[5])
		}
		if title == "" {
			title = heading
		}

		sponsored := strings.ToLower(strings.TrimSpace(m[9]))
		if sponsored == "yes" || sponsored == "true" {
			continue
		}

		item := model.ProductItem{
			Name:   title,
			Price:  parseNumber(m[6]),
			Rating: parseNumber(m[7]),
			URL:    m[8],
		}
		if fixed, err := FixProductURL(r.amazonURL, item.URL); err == nil {
			item.URL = fixed
		}
		products = append(products, item)
		if len(products) >= max {
			break
		}
	}
	return products
}

// listFromActionResults scans per-step action outputs for the first
// payload carrying a products array (the output of the extraction probe).
func (r *RecoveryPipeline) listFromActionResults(h *agent.History, max int) []model.ProductItem {
	for idx, step := range h.ActionResults() {
		if step.ExtractedContent == "" {
			continue
		}
		var payload rawProductList
		if err := utils.ParseAgentJSON(step.ExtractedContent, &payload); err != nil || len(payload.Products) == 0 {
			continue
		}
		log.Printf("Recovered %d products from action result %d", len(payload.Products), idx)
		// Strict mode: probe output must carry both identifier and title
		if products := r.convertEntries(payload.Products, max, true); len(products) > 0 {
			return products
		}
	}
	return nil
}

// convertEntries filters sponsored and unidentified entries, coerces
// numerics and normalizes URLs. requireTitle additionally drops
// title-less records.
func (r *RecoveryPipeline) convertEntries(entries []map[string]interface{}, max int, requireTitle bool) []model.ProductItem {
	var products []model.ProductItem
	for _, record := range entries {
		if truthy(record["sponsored"]) || IsSponsored(record) {
			continue
		}
		if stringField(record, "asin") == "" {
			continue
		}

		title := stringField(record, "title")
		if requireTitle && title == "" {
			continue
		}
		if title == "" {
			title = "Unknown"
		}

		url := stringField(record, "url")
		if url != "" {
			if fixed, err := FixProductURL(r.amazonURL, url); err == nil {
				url = fixed
			}
		}

		products = append(products, model.ProductItem{
			Name:   title,
			Price:  coerceNumber(record["price"]),
			Rating: coerceNumber(record["rating"]),
			URL:    url,
		})
		if len(products) >= max {
			break
		}
	}
	return products
}

func coerceNumber(v interface{}) *float64 {
	switch val := v.(type) {
	case float64:
		return &val
	case json.Number:
		if f, err := val.Float64(); err == nil {
			return &f
		}
	case string:
		cleaned := strings.ReplaceAll(strings.TrimPrefix(strings.TrimSpace(val), "₹"), ",", "")
		if f, err := strconv.ParseFloat(cleaned, 64); err == nil {
			return &f
		}
	case int:
		f := float64(val)
		return &f
	}
	return nil
}

// joinRunErrors joins up to the first 3 non-empty recorded errors.
func joinRunErrors(errs []string) string {
	var picked []string
	for _, e := range errs {
		if e == "" {
			continue
		}
		picked = append(picked, e)
		if len(picked) == 3 {
			break
		}
	}
	if len(picked) == 0 {
		return "Unknown error occurred"
	}
	return strings.Join(picked, "; ")
}
