// Package llmadapter implements the interfaces.Classifier capability
// over Anthropic Claude and Google Gemini, the two language-model
// providers the examples pack carries clients for. Workers depend only
// on interfaces.Classifier; which concrete adapter backs a job is a
// host composition-root decision.
package llmadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"

	"github.com/leadscoutai/leadscout/internal/common"
)

// ClaudeClassifier implements interfaces.Classifier by asking Claude to
// return JSON matching a schema described in the prompt. Claude's API
// has no native response-schema enforcement (unlike Gemini), so the
// prompt itself carries the shape and the adapter validates the result
// parses before handing it back — a parse failure is surfaced as an
// error per the adapter contract, never silently partial.
type ClaudeClassifier struct {
	client    *anthropic.Client
	model     string
	maxTokens int
	timeout   time.Duration
	temp      float32
	logger    arbor.ILogger
	tracker   *CostTracker
}

// NewClaudeClassifier builds a classifier from ClaudeConfig, grounded on
// the teacher's claude_service.go client construction.
func NewClaudeClassifier(cfg common.ClaudeConfig, logger arbor.ILogger, tracker *CostTracker) (*ClaudeClassifier, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("claude classifier: api_key is required")
	}
	model := cfg.Model
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	return &ClaudeClassifier{
		client:    anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:     model,
		maxTokens: maxTokens,
		timeout:   cfg.TimeoutDuration(),
		temp:      cfg.Temperature,
		logger:    logger,
		tracker:   tracker,
	}, nil
}

// Classify sends prompt (expected to describe the desired schema inline,
// e.g. "respond with JSON matching {...}") to Claude and unmarshals the
// response into out. schema is accepted for interface symmetry with the
// Gemini adapter but is not separately enforced here.
func (c *ClaudeClassifier) Classify(ctx context.Context, prompt string, schema interface{}, out interface{}) error {
	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(c.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if c.temp > 0 {
		params.Temperature = anthropic.Float(float64(c.temp))
	}

	c.tracker.Record()
	resp, err := c.client.Messages.New(timeoutCtx, params)
	if err != nil {
		return fmt.Errorf("claude classify: API call failed: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == anthropic.ContentBlockTypeText {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return fmt.Errorf("claude classify: empty response")
	}

	payload := extractJSON(text.String())
	if err := json.Unmarshal([]byte(payload), out); err != nil {
		c.logger.Warn().Err(err).Str("response", text.String()).Msg("claude classify: failed to parse JSON response")
		return fmt.Errorf("claude classify: parse response: %w", err)
	}
	return nil
}

// extractJSON strips markdown code fences a model sometimes wraps JSON
// in, despite being asked for raw JSON.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
