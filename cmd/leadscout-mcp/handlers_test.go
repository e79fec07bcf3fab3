package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadscoutai/leadscout/internal/models"
)

func TestFormatRunResult_IncludesJobIDAndLeads(t *testing.T) {
	result := models.RunResult{
		Success:      true,
		LLMCallCount: 3,
		Leads: []models.Lead{
			{Name: "Jane Doe", Company: "Acme", IntentScore: 82, SourcePlatform: "github", IntentSignal: "asked for migration help", Priority: models.PriorityHot},
		},
	}

	text := formatRunResult("job-42", "a CRM tool", result)

	assert.Contains(t, text, "Job ID: job-42")
	assert.Contains(t, text, "Jane Doe")
	assert.Contains(t, text, "hot")
}

func TestFormatRunResult_ListsErrorsWhenPresent(t *testing.T) {
	result := models.RunResult{Success: false, Errors: []string{"news worker failed twice"}}

	text := formatRunResult("job-1", "widgets", result)

	assert.Contains(t, text, "## Errors")
	assert.Contains(t, text, "news worker failed twice")
}

func TestErrorResult_WrapsMessage(t *testing.T) {
	res := errorResult("product parameter is required")

	require.Len(t, res.Content, 1)
}
