package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/leadscoutai/leadscout/internal/models"
	"github.com/leadscoutai/leadscout/internal/runstore"
)

func TestBuildReportMarkdown_IncludesLeadsAndTotals(t *testing.T) {
	record := &runstore.Record{
		ID:        "job-1",
		Product:   "a CRM for plumbers",
		Target:    10,
		StartedAt: time.Now().Add(-time.Minute),
		Result: models.RunResult{
			Success:      true,
			LLMCallCount: 4,
			TotalsByTier: map[models.Priority]int{models.PriorityHot: 1, models.PriorityWarm: 2},
			Leads: []models.Lead{
				{Name: "Jane Doe", Company: "Acme", Title: "VP Sales", IntentScore: 85, SourcePlatform: "github", IntentSignal: "asked for alternatives", Priority: models.PriorityHot},
			},
		},
	}

	markdown, title := buildReportMarkdown(record)

	assert.Equal(t, "Lead report: a CRM for plumbers", title)
	assert.Contains(t, markdown, "# Lead report: a CRM for plumbers")
	assert.Contains(t, markdown, "Job ID: job-1")
	assert.Contains(t, markdown, "Jane Doe")
	assert.Contains(t, markdown, "| hot | 1 |")
	assert.Contains(t, markdown, "| warm | 2 |")
}

func TestBuildReportMarkdown_OmitsErrorsSectionWhenNoneRecorded(t *testing.T) {
	record := &runstore.Record{ID: "job-2", Product: "widgets", Result: models.RunResult{Success: true}}

	markdown, _ := buildReportMarkdown(record)

	assert.NotContains(t, markdown, "## Errors")
}

func TestBuildReportMarkdown_ListsErrorsWhenPresent(t *testing.T) {
	record := &runstore.Record{
		ID:      "job-3",
		Product: "widgets",
		Result:  models.RunResult{Success: false, Errors: []string{"community worker timed out"}},
	}

	markdown, _ := buildReportMarkdown(record)

	assert.Contains(t, markdown, "## Errors")
	assert.Contains(t, markdown, "community worker timed out")
}
