package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"
	"google.golang.org/genai"

	"github.com/leadscoutai/leadscout/internal/interfaces"
	"github.com/leadscoutai/leadscout/internal/models"
)

// LLMPlanner implements interfaces.Planner over any interfaces.Classifier
// (Claude or Gemini — the supervisor's composition root decides which).
// Every method falls back to a deterministic result on error or empty
// output, so the supervisor never has to special-case planner failure.
type LLMPlanner struct {
	classifier interfaces.Classifier
	logger     arbor.ILogger
}

// New builds a planner backed by classifier.
func New(classifier interfaces.Classifier, logger arbor.ILogger) *LLMPlanner {
	return &LLMPlanner{classifier: classifier, logger: logger}
}

type strategyResponse struct {
	ProductCategory  string   `json:"product_category"`
	TargetTitles     []string `json:"target_titles"`
	CommunityQueries []string `json:"community_queries"`
	NewsFocus        string   `json:"news_focus"`
	Competitors      []string `json:"competitors"`
}

// InitialStrategy asks the classifier to analyze product into a
// Strategy. On any failure it returns a zero Strategy (not the
// fallback) — the supervisor decides when to invoke FallbackInitialStrategy,
// since the planner itself must not silently substitute one result for
// another.
func (p *LLMPlanner) InitialStrategy(ctx context.Context, product string, target int, icp map[string]interface{}) (models.Strategy, error) {
	icpJSON, _ := json.Marshal(icp)
	prompt := fmt.Sprintf(`Analyze this product description and produce a lead-generation strategy.

Product: %s
Target lead count: %d
Ideal customer profile (context, may be empty): %s

Respond with JSON matching exactly this shape:
{
  "product_category": "string",
  "target_titles": ["string", ...],
  "community_queries": ["string", ...],
  "news_focus": "string",
  "competitors": ["string", ...]
}`, product, target, string(icpJSON))

	var resp strategyResponse
	if err := p.classifier.Classify(ctx, prompt, nil, &resp); err != nil {
		p.logger.Warn().Err(err).Msg("planner: initial strategy classify failed")
		return models.Strategy{}, fmt.Errorf("planner: initial strategy: %w", err)
	}

	return models.Strategy{
		ProductCategory:  resp.ProductCategory,
		TargetTitles:     resp.TargetTitles,
		CommunityQueries: resp.CommunityQueries,
		NewsFocus:        resp.NewsFocus,
		Competitors:      resp.Competitors,
	}, nil
}

type compensationResponse struct {
	Tags []string `json:"tags"`
	Stop bool     `json:"stop"`
}

// ChooseCompensation asks the classifier which strategies to run next.
// Returns tags ordered per the priority rule even if the model's
// ordering didn't honor it.
func (p *LLMPlanner) ChooseCompensation(ctx context.Context, currentCount, target int, summary interfaces.ContextSummary, history []interfaces.CompensationHistoryEntry) ([]string, error) {
	historyJSON, _ := json.Marshal(history)
	prompt := fmt.Sprintf(`Current admitted lead count: %d. Target: %d.
News pages already fetched: %v
Community queries already used: %v
Competitors already scraped: %v
History of prior compensation rounds: %s

Decide which strategies to run next to close the shortfall. Respond with JSON:
{"tags": ["news"|"competitor"|"community", ...], "stop": bool}
Set "stop": true only if no further strategy can plausibly help.`,
		currentCount, target, summary.NewsPagesFetched, summary.CommunityQueriesUsed, summary.CompetitorsScraped, string(historyJSON))

	var resp compensationResponse
	if err := p.classifier.Classify(ctx, prompt, nil, &resp); err != nil {
		p.logger.Warn().Err(err).Msg("planner: choose compensation classify failed")
		return nil, fmt.Errorf("planner: choose compensation: %w", err)
	}
	if resp.Stop {
		return nil, nil
	}
	return orderByPriority(resp.Tags), nil
}

type listResponse struct {
	Items []string `json:"items"`
}

// MoreCompetitors asks for additional competitor names disjoint from
// exclude.
func (p *LLMPlanner) MoreCompetitors(ctx context.Context, product string, exclude []string) ([]string, error) {
	prompt := fmt.Sprintf(`Product: %s
Already-scraped competitors (do not repeat any of these): %s

Suggest up to 5 additional competitor company names. Respond with JSON: {"items": ["string", ...]}`,
		product, strings.Join(exclude, ", "))

	var resp listResponse
	if err := p.classifier.Classify(ctx, prompt, nil, &resp); err != nil {
		p.logger.Warn().Err(err).Msg("planner: more competitors classify failed")
		return nil, fmt.Errorf("planner: more competitors: %w", err)
	}
	return resp.Items, nil
}

// MoreCommunityQueries asks for additional free-text queries disjoint
// from exclude.
func (p *LLMPlanner) MoreCommunityQueries(ctx context.Context, product string, exclude []string) ([]string, error) {
	prompt := fmt.Sprintf(`Product: %s
Already-used community search queries (do not repeat any of these): %s

Suggest up to 5 additional free-text search queries for finding people discussing this need. Respond with JSON: {"items": ["string", ...]}`,
		product, strings.Join(exclude, ", "))

	var resp listResponse
	if err := p.classifier.Classify(ctx, prompt, nil, &resp); err != nil {
		p.logger.Warn().Err(err).Msg("planner: more community queries classify failed")
		return nil, fmt.Errorf("planner: more community queries: %w", err)
	}
	return resp.Items, nil
}

// genaiListSchema is available for a Gemini-backed planner to pass as
// the schema argument, enforcing {"items": [...]}  server-side.
func genaiListSchema() *genai.Schema {
	return &genai.Schema{
		Type:       genai.TypeObject,
		Properties: map[string]*genai.Schema{"items": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}}},
		Required:   []string{"items"},
	}
}
