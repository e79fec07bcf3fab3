package llmadapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ternarybob/arbor"
	"google.golang.org/genai"

	"github.com/leadscoutai/leadscout/internal/common"
)

// GeminiClassifier implements interfaces.Classifier using Gemini's
// schema-constrained JSON output, grounded on
// competitor_worker.go's identifyCompetitors. Unlike ClaudeClassifier,
// callers pass a *genai.Schema as the schema argument and Gemini
// enforces the shape server-side.
type GeminiClassifier struct {
	apiKey  string
	model   string
	logger  arbor.ILogger
	tracker *CostTracker
	cfg     common.GeminiConfig
}

// NewGeminiClassifier builds a classifier from GeminiConfig.
func NewGeminiClassifier(cfg common.GeminiConfig, logger arbor.ILogger, tracker *CostTracker) (*GeminiClassifier, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini classifier: api_key is required")
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &GeminiClassifier{apiKey: cfg.APIKey, model: model, logger: logger, tracker: tracker, cfg: cfg}, nil
}

// Classify takes schema as a *genai.Schema, which constrains the JSON
// response shape, or nil, which requests JSON output with no schema;
// any other type is a caller error, returned rather than silently ignored.
func (g *GeminiClassifier) Classify(ctx context.Context, prompt string, schema interface{}, out interface{}) error {
	var respSchema *genai.Schema
	if schema != nil {
		s, ok := schema.(*genai.Schema)
		if !ok {
			return fmt.Errorf("gemini classify: schema must be *genai.Schema or nil, got %T", schema)
		}
		respSchema = s
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, g.cfg.TimeoutDuration())
	defer cancel()

	client, err := genai.NewClient(timeoutCtx, &genai.ClientConfig{
		APIKey:  g.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return fmt.Errorf("gemini classify: create client: %w", err)
	}

	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(0.2)),
		ResponseMIMEType: "application/json",
		ResponseSchema:   respSchema,
	}

	g.tracker.Record()
	resp, err := client.Models.GenerateContent(
		timeoutCtx,
		g.model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		config,
	)
	if err != nil {
		return fmt.Errorf("gemini classify: API call failed: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return fmt.Errorf("gemini classify: empty response")
	}

	text := resp.Text()
	if text == "" {
		return fmt.Errorf("gemini classify: empty response text")
	}

	if err := json.Unmarshal([]byte(text), out); err != nil {
		g.logger.Warn().Err(err).Str("response", text).Msg("gemini classify: failed to parse JSON response")
		return fmt.Errorf("gemini classify: parse response: %w", err)
	}
	return nil
}

// SellerFilterSchema is the shared schema used by every worker's Filter
// step, resolved from original_source's filter_sellers.py shape:
// {"items": [{"index": int, "is_seller": bool}]}.
func SellerFilterSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"items": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"index":     {Type: genai.TypeInteger, Description: "zero-based index of the candidate in the input list"},
						"is_seller": {Type: genai.TypeBoolean, Description: "true if the candidate is offering a product rather than seeking one"},
					},
					Required: []string{"index", "is_seller"},
				},
			},
		},
		Required: []string{"items"},
	}
}

// SellerFilterResult mirrors SellerFilterSchema for unmarshaling.
type SellerFilterResult struct {
	Items []struct {
		Index    int  `json:"index"`
		IsSeller bool `json:"is_seller"`
	} `json:"items"`
}
