package fetchadapter

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"google.golang.org/genai"

	"github.com/leadscoutai/leadscout/internal/common"
	"github.com/leadscoutai/leadscout/internal/interfaces"
)

// GeminiWebSearcher implements interfaces.WebSearcher via Gemini's
// GoogleSearch grounding tool, grounded on
// ternarybob-quaero/internal/workers/web/search_worker.go's
// executeWebSearch (genai.Tool{GoogleSearch:...} plus reading result
// URLs back out of GroundingMetadata.GroundingChunks).
type GeminiWebSearcher struct {
	apiKey string
	model  string
	cfg    common.GeminiConfig
	logger arbor.ILogger
}

// NewGeminiWebSearcher builds a searcher from GeminiConfig.
func NewGeminiWebSearcher(cfg common.GeminiConfig, logger arbor.ILogger) (*GeminiWebSearcher, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini websearch: api_key is required")
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &GeminiWebSearcher{apiKey: cfg.APIKey, model: model, cfg: cfg, logger: logger}, nil
}

// WebSearch resolves query via Gemini's web-grounded generation and
// returns the URLs surfaced in the grounding metadata.
func (s *GeminiWebSearcher) WebSearch(ctx context.Context, query string) ([]interfaces.SearchResult, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, s.cfg.TimeoutDuration())
	defer cancel()

	client, err := genai.NewClient(timeoutCtx, &genai.ClientConfig{
		APIKey:  s.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini websearch: create client: %w", err)
	}

	searchTool := &genai.Tool{GoogleSearch: &genai.GoogleSearch{}}
	config := &genai.GenerateContentConfig{Tools: []*genai.Tool{searchTool}}

	prompt := fmt.Sprintf("Search the web for: %s\nReturn the most relevant result with its title and URL.", query)

	resp, err := client.Models.GenerateContent(
		timeoutCtx,
		s.model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		config,
	)
	if err != nil {
		return nil, fmt.Errorf("gemini websearch: API call failed: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("gemini websearch: empty response")
	}

	var results []interfaces.SearchResult
	candidate := resp.Candidates[0]
	if candidate.GroundingMetadata != nil && candidate.GroundingMetadata.GroundingChunks != nil {
		for _, chunk := range candidate.GroundingMetadata.GroundingChunks {
			if chunk.Web == nil || chunk.Web.URI == "" {
				continue
			}
			results = append(results, interfaces.SearchResult{
				Title: chunk.Web.Title,
				URL:   chunk.Web.URI,
			})
		}
	}
	if len(results) == 0 {
		s.logger.Debug().Str("query", query).Msg("gemini websearch: no grounding chunks returned")
	}
	return results, nil
}

// deterministicSlugFallback builds a best-effort organization URL from a
// company name when WebSearch fails, per spec §4.5's fallback policy
// for competitor page resolution.
func deterministicSlugFallback(name string) string {
	slug := ""
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			slug += string(r)
		case r >= 'A' && r <= 'Z':
			slug += string(r - 'A' + 'a')
		case r == ' ' || r == '-' || r == '_':
			if len(slug) > 0 && slug[len(slug)-1] != '-' {
				slug += "-"
			}
		}
	}
	for len(slug) > 0 && slug[len(slug)-1] == '-' {
		slug = slug[:len(slug)-1]
	}
	return fmt.Sprintf("https://www.linkedin.com/company/%s", slug)
}

// ResolveOrganizationURL tries a WebSearcher first, then falls back to a
// deterministic slug URL — used by both the news worker (organization
// identifier resolution) and the competitor worker (competitor page
// resolution).
func ResolveOrganizationURL(ctx context.Context, searcher interfaces.WebSearcher, name string, timeout time.Duration) string {
	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	results, err := searcher.WebSearch(timeoutCtx, name+" official company page")
	if err == nil && len(results) > 0 {
		return results[0].URL
	}
	return deterministicSlugFallback(name)
}
