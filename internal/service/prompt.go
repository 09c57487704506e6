package service

import (
	"fmt"
	"sort"
	"strings"

	"cartagent/internal/model"
)

// PromptCompiler assembles the natural-language task string the browser
// agent executes. The compiled prompt is a best-effort program for the
// agent: it encodes the procedure but cannot guarantee the agent follows
// it, so all correctness-critical work stays in the deterministic helpers
// around it.
type PromptCompiler struct {
	amazonURL string
}

// NewPromptCompiler creates a prompt compiler for the given storefront.
func NewPromptCompiler(amazonURL string) *PromptCompiler {
	return &PromptCompiler{amazonURL: amazonURL}
}

const pageLoadPatienceRules = `
PAGE LOADING PATIENCE (CRITICAL):
- Amazon pages can take 5-10 seconds to fully load, especially search results and product pages
- DO NOT evaluate pages as "empty" or "blank" immediately after navigation
- ALWAYS wait at least 5-8 seconds after navigation before evaluating page state
- Check the DOM content and browser_state, not just visual appearance - pages may look empty but have content loading
- If you see products in the browser_state or DOM, the page IS loaded - don't say it's empty
- Only consider a page truly empty if: (1) waited 10+ seconds, (2) DOM has no product elements, (3) browser_state shows no content
- If page appears empty but browser_state shows content, wait 3-5 more seconds before deciding`

const emptyPageRules = `
HANDLING EMPTY PAGES:
- If search results page appears empty after applying price filter:
  1. Wait 10-15 seconds FIRST - Amazon pages load slowly
  2. Check browser_state and DOM content - if products are listed there, page IS loaded
  3. Only if truly empty after 15 seconds: Try refreshing the page (navigate to same URL again with new_tab=False)
  4. If still empty, try search WITHOUT price filter first to verify products exist
  5. If products exist without filter, try applying price filter again
  6. If price filter causes empty pages, relax constraints slightly (e.g., increase max price by 20%)
- DO NOT loop more than 3 times - if price filter consistently causes empty pages, proceed without price filter and manually verify products match requirements`

const antiLoopRules = `
ANTI-LOOP RULES:
- After extracting products using evaluate(), navigate to the FIRST valid non-sponsored product URL using navigate(url=url, new_tab=False)
- Wait 8-10 seconds after navigation before evaluating product page
- If navigation fails or wrong product page loads, use go_back() ONCE, then try the NEXT product from your list
- DO NOT use extract() action - it returns empty results and causes navigation errors
- DO NOT navigate to "about:blank" - always use a valid product URL from evaluate() result
- DO NOT extract products repeatedly from the same page
- DO NOT navigate back and forth more than 2 times - if first 2 products fail, stop and report error
- DO NOT refresh or go back if page is just loading slowly - be patient and wait`

// CompileCartTask assembles the single-add task prompt for a structured
// intent.
func (p *PromptCompiler) CompileCartTask(intent *model.ProductIntent) string {
	searchQuery := BuildSearchQuery(intent, "")
	selectionRules := p.buildSelectionRules(intent, IsGenericIntent(intent))
	priceFilter := p.priceFilterSection(intent.MinPrice(), intent.MaxPrice())
	extraction := p.extractionSection(intent.MinRating())

	var b strings.Builder
	fmt.Fprintf(&b, "You are shopping on Amazon India. Your task is to:\n\n")
	fmt.Fprintf(&b, "Find and add to cart: %s\n\n", intent.Product)
	fmt.Fprintf(&b, "SEARCH QUERY: %s\n\n", searchQuery)
	fmt.Fprintf(&b, "SELECTION RULES:\n%s\n", selectionRules)
	b.WriteString(p.cartRules(priceFilter, extraction))
	return b.String()
}

// CompileCartTaskFromQuery assembles the single-add prompt for a raw
// natural-language query, extracting price/rating bounds deterministically.
func (p *PromptCompiler) CompileCartTaskFromQuery(query string) string {
	c := ExtractConstraints(query)
	priceFilter := p.priceFilterSection(c.MinPrice, c.MaxPrice)
	extraction := p.extractionSection(c.MinRating)

	var b strings.Builder
	fmt.Fprintf(&b, "You are shopping on Amazon India. Your task is to:\n\n")
	fmt.Fprintf(&b, "%s\n", query)
	b.WriteString(p.cartRules(priceFilter, extraction))
	return b.String()
}

// CompileListTask assembles the listing task prompt for a structured
// intent.
func (p *PromptCompiler) CompileListTask(intent *model.ProductIntent, maxProducts int) string {
	searchQuery := BuildSearchQuery(intent, "")
	selectionRules := p.buildSelectionRules(intent, IsGenericIntent(intent))
	priceFilter := p.priceFilterSection(intent.MinPrice(), intent.MaxPrice())
	extractionScript := BuildExtractionScript(p.amazonURL, intent.MinRating())

	var b strings.Builder
	fmt.Fprintf(&b, "You are shopping on Amazon India. Your task is to:\n\n")
	fmt.Fprintf(&b, "Find and list the first %d products that match: %s\n\n", maxProducts, intent.Product)
	fmt.Fprintf(&b, "SEARCH QUERY: %s\n\n", searchQuery)
	fmt.Fprintf(&b, "SELECTION RULES:\n%s\n", selectionRules)
	b.WriteString(p.listRules(priceFilter, extractionScript, maxProducts))
	return b.String()
}

// CompileListTaskFromQuery assembles the listing prompt for a raw query.
func (p *PromptCompiler) CompileListTaskFromQuery(query string, maxProducts int) string {
	c := ExtractConstraints(query)
	priceFilter := p.priceFilterSection(c.MinPrice, c.MaxPrice)
	extractionScript := BuildExtractionScript(p.amazonURL, c.MinRating)

	var b strings.Builder
	fmt.Fprintf(&b, "You are shopping on Amazon India. Your task is to:\n\n")
	fmt.Fprintf(&b, "Find and list the first %d products that match: %s\n\n", maxProducts, query)
	b.WriteString(p.listRules(priceFilter, extractionScript, maxProducts))
	return b.String()
}

// priceFilterSection embeds the slider script with usage instructions,
// or returns "" when no price bound is set.
func (p *PromptCompiler) priceFilterSection(minPrice, maxPrice *float64) string {
	script := BuildPriceSliderScript(minPrice, maxPrice)
	if script == "" {
		return ""
	}
	return fmt.Sprintf(`
PRICE FILTER (RECOMMENDED METHOD):
- After searching, use the evaluate() action with this JavaScript code to set price filters:
%s
- Wait 5-8 seconds after executing for results to update
- Verify the filter was applied by checking visible product prices
- If sliders not found (returns success: false), fall back to clicking price filter buttons in the left sidebar
`, script)
}

// extractionSection embeds the extraction probe with usage instructions.
func (p *PromptCompiler) extractionSection(minRating *float64) string {
	script := BuildExtractionScript(p.amazonURL, minRating)
	return fmt.Sprintf(`
PRODUCT EXTRACTION (CRITICAL - USE THIS METHOD):
- DO NOT use extract() action - it returns empty results and causes navigation errors
- ALWAYS use evaluate() action with this JavaScript code to extract products:
%s
- This will return a result object with:
  * success: true/false
  * products: array of product objects with asin, title, price, rating, url, sponsored
  * count: number of products found
- After executing, check result.success and result.products
- If result.success is false, check result.error and try again
- Navigate to products using result.products[0].url (or first non-sponsored product)
- NEVER navigate to "about:blank" - always use a valid product URL from the extraction result
`, script)
}

func (p *PromptCompiler) cartRules(priceFilter, extraction string) string {
	var b strings.Builder
	b.WriteString("\nIMPORTANT RULES:\n")
	fmt.Fprintf(&b, "- Go to %s\n", p.amazonURL)
	b.WriteString("- Search for the product using the search query above\n")
	b.WriteString(priceFilter)
	b.WriteString(extraction)
	b.WriteString(`- Find a first valid non-sponsored product that matches the requirements
- Add it to cart only if it matches the requirements
- CRITICAL: When navigating to product pages, ALWAYS use navigate(url="...", new_tab=False) to open in the SAME tab
- NEVER use new_tab=True or open new tabs - this causes loops and confusion
- Only One product should be added to cart
- Return the product details when done and stop the task
`)
	b.WriteString(pageLoadPatienceRules)
	b.WriteString("\n")
	b.WriteString(emptyPageRules)
	b.WriteString(`
- Only Non Sponsored products should be added to cart
- Only Open the Product page if it matches the requirements
- After navigating to product page, wait 8-10 seconds before evaluating - product pages load slowly
- Only One product should be added to cart
- Return the product details when done and stop the task
`)
	b.WriteString(antiLoopRules)
	b.WriteString("\n")
	return b.String()
}

func (p *PromptCompiler) listRules(priceFilter, extractionScript string, maxProducts int) string {
	var b strings.Builder
	b.WriteString("\nIMPORTANT RULES:\n")
	fmt.Fprintf(&b, "- Go to %s\n", p.amazonURL)
	b.WriteString("- Search for the product using the search query above\n")
	b.WriteString(priceFilter)
	fmt.Fprintf(&b, `- After searching and applying filters, use the evaluate() action with this JavaScript code to extract products:
%s
- This will return a result object with:
  * success: true/false
  * products: array of product objects with asin, title, price, rating, url, sponsored
  * count: number of products found
- Extract the first %d non-sponsored products that match the requirements
- DO NOT add products to cart - only extract and list them
- DO NOT navigate to product pages - stay on the search results page
- Return the product list when done and stop the task
`, extractionScript, maxProducts)
	b.WriteString(pageLoadPatienceRules)
	b.WriteString("\n")
	b.WriteString(emptyPageRules)
	fmt.Fprintf(&b, `
- Only Non Sponsored products should be included in the list
- Return the first %d products that satisfy the conditions
`, maxProducts)
	return b.String()
}

// buildSelectionRules renders the hard constraints, attributes and soft
// preferences as prompt text. Generic intents suppress brand and
// attribute enforcement so broader matches are allowed.
func (p *PromptCompiler) buildSelectionRules(intent *model.ProductIntent, genericMode bool) string {
	rules := []string{"HARD CONSTRAINTS (MUST SATISFY):"}

	if v := intent.MinPrice(); v != nil {
		rules = append(rules, fmt.Sprintf("- Price >= ₹%.0f", *v))
	}
	if v := intent.MaxPrice(); v != nil {
		rules = append(rules, fmt.Sprintf("- Price <= ₹%.0f", *v))
	}
	if v := intent.MinRating(); v != nil {
		rules = append(rules, fmt.Sprintf("- Rating >= %.1f stars", *v))
	}
	if v := intent.MaxRating(); v != nil {
		rules = append(rules, fmt.Sprintf("- Rating <= %.1f stars", *v))
	}
	if v := intent.MinDiscount(); v != nil {
		rules = append(rules, fmt.Sprintf("- Discount >= %.0f%%", *v))
	}
	if intent.HardConstraints.Brand != "" && !genericMode {
		rules = append(rules, fmt.Sprintf("- Brand MUST be: %s", intent.HardConstraints.Brand))
	}

	if intent.AttributeCount() > 0 && !genericMode {
		rules = append(rules, "\nPRODUCT ATTRIBUTES (should be present in listing):")
		for pair := intent.Attributes.Oldest(); pair != nil; pair = pair.Next() {
			rules = append(rules, fmt.Sprintf("- %s: %s", titleCase(pair.Key), pair.Value))
		}
	}

	soft := intent.SoftPreferences
	if soft.Brand != "" || len(soft.Brands) > 0 || len(soft.Other) > 0 {
		rules = append(rules, "\nSOFT PREFERENCES (prefer but not required):")
		if soft.Brand != "" {
			rules = append(rules, fmt.Sprintf("- PREFER %s but accept other brands if constraints met", soft.Brand))
		}
		if len(soft.Brands) > 0 {
			rules = append(rules, fmt.Sprintf("- PREFER %s (try each brand one by one)", strings.Join(soft.Brands, " OR ")))
			rules = append(rules, fmt.Sprintf("  Search order: %s -> generic", strings.Join(soft.Brands, " -> ")))
		}
		// Sorted for deterministic prompt output
		keys := make([]string, 0, len(soft.Other))
		for k := range soft.Other {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			rules = append(rules, fmt.Sprintf("- Prefer %s: %s", k, soft.Other[k]))
		}
	}

	if len(rules) == 1 {
		rules = append(rules, "- None (select first valid non-sponsored product)")
	}

	return strings.Join(rules, "\n")
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
