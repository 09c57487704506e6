package service

import (
	"context"
	"log"

	"cartagent/internal/agent"
	"cartagent/internal/model"
	"cartagent/internal/utils"
)

// Shopper runs shopping tasks end to end: intent resolution, prompt
// compilation, the agent run and result recovery. Validation problems
// surface as errors before any browser session exists; once a run has
// started, failures are folded into the typed result instead.
type Shopper struct {
	runner   agent.Runner
	prompts  *PromptCompiler
	recovery *RecoveryPipeline
	ranker   *Ranker
	parser   *IntentParser
}

// NewShopper wires a shopper from its collaborators.
func NewShopper(runner agent.Runner, prompts *PromptCompiler, recovery *RecoveryPipeline, ranker *Ranker, parser *IntentParser) *Shopper {
	return &Shopper{
		runner:   runner,
		prompts:  prompts,
		recovery: recovery,
		ranker:   ranker,
		parser:   parser,
	}
}

// ResolveIntent produces the intent to shop with. A provided intent wins
// over the query; a bare query goes through the AI parser when one is
// configured. Without AI the query is validated through the regex
// extractor but kept raw (nil intent), so the compiled task carries the
// user's own wording instead of the extractor's lossy rewrite.
func (s *Shopper) ResolveIntent(ctx context.Context, query string, intent *model.ProductIntent) (*model.ProductIntent, error) {
	if intent != nil {
		if err := ValidateIntent(intent); err != nil {
			return nil, err
		}
		return intent, nil
	}
	if s.parser.HasAI() {
		return s.parser.Parse(ctx, query)
	}
	if _, err := s.parser.Parse(ctx, query); err != nil {
		return nil, err
	}
	return nil, nil
}

// AddToCart runs a single-add task. A nil intent means raw-query mode:
// the query is embedded verbatim with deterministically extracted price
// and rating bounds. The returned result is always non-nil; agent
// failures are reported through it.
func (s *Shopper) AddToCart(ctx context.Context, query string, intent *model.ProductIntent) *model.CartResult {
	var task string
	if intent != nil {
		task = s.prompts.CompileCartTask(intent)
		log.Printf("Starting cart task for product %q", intent.Product)
	} else {
		task = s.prompts.CompileCartTaskFromQuery(query)
		log.Printf("Starting cart task for query %q", utils.Truncate(query, 120))
	}

	history, err := s.runner.Run(ctx, task)
	if err != nil {
		log.Printf("Cart task run failed: %v", err)
		return &model.CartResult{
			Success: false,
			Message: "Failed to add product to cart: " + err.Error(),
			Items:   []model.ProductItem{},
		}
	}

	result := s.recovery.RecoverCartResult(history)
	log.Printf("Cart task finished: success=%v message=%q", result.Success, result.Message)
	return result
}

// ListProducts runs a listing task and returns up to maxProducts ranked
// products. A nil intent means raw-query mode, as in AddToCart.
func (s *Shopper) ListProducts(ctx context.Context, query string, intent *model.ProductIntent, maxProducts int) *model.ProductListResult {
	var task string
	if intent != nil {
		task = s.prompts.CompileListTask(intent, maxProducts)
		log.Printf("Starting list task for product %q (max %d)", intent.Product, maxProducts)
	} else {
		task = s.prompts.CompileListTaskFromQuery(query, maxProducts)
		log.Printf("Starting list task for query %q (max %d)", utils.Truncate(query, 120), maxProducts)
	}

	history, err := s.runner.Run(ctx, task)
	if err != nil {
		log.Printf("List task run failed: %v", err)
		return &model.ProductListResult{
			Success:  false,
			Products: []model.ProductItem{},
			Count:    0,
			Message:  "Failed to list products: " + err.Error(),
		}
	}

	result := s.recovery.RecoverListResult(history, maxProducts)
	if result.Success && len(result.Products) > 1 {
		result.Products = s.ranker.RankProducts(result.Products, intent)
	}

	log.Printf("List task finished: success=%v count=%d", result.Success, result.Count)
	return result
}

// describeIntent renders a compact one-line form for task records.
func describeIntent(intent *model.ProductIntent) string {
	return utils.Truncate(BuildSearchQuery(intent, ""), 120)
}
