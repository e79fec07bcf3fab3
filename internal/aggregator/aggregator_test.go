package aggregator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadscoutai/leadscout/internal/models"
)

func lead(name, company, platform string, score int) models.Lead {
	return models.Lead{
		Name:           name,
		Company:        company,
		IntentSignal:   "signal",
		IntentScore:    score,
		SourcePlatform: platform,
	}
}

func TestAggregate_SortsByScoreDescending(t *testing.T) {
	leads := []models.Lead{
		lead("A", "Co", "community", 70),
		lead("B", "Co2", "news", 90),
		lead("C", "Co3", "competitor", 65),
	}
	result := Aggregate(leads, 10, time.Second, nil, 0)

	require.Len(t, result.Leads, 3)
	assert.Equal(t, "B", result.Leads[0].Name)
	assert.Equal(t, "A", result.Leads[1].Name)
	assert.Equal(t, "C", result.Leads[2].Name)
}

func TestAggregate_TruncatesToTarget(t *testing.T) {
	leads := []models.Lead{
		lead("A", "Co1", "community", 90),
		lead("B", "Co2", "community", 80),
		lead("C", "Co3", "community", 70),
	}
	result := Aggregate(leads, 2, time.Second, nil, 0)
	assert.Len(t, result.Leads, 2)
}

func TestAggregate_DerivesPriorityOverridingInput(t *testing.T) {
	input := models.Lead{Name: "A", IntentSignal: "x", IntentScore: 85, SourcePlatform: "community", Priority: models.PriorityCold}
	result := Aggregate([]models.Lead{input}, 10, time.Second, nil, 0)

	require.Len(t, result.Leads, 1)
	assert.Equal(t, models.PriorityHot, result.Leads[0].Priority, "aggregator must overwrite any caller-supplied priority")
}

func TestAggregate_DedupeKeepsHigherScoringDuplicate(t *testing.T) {
	// S5: identical (name, company), different scores/platforms.
	leads := []models.Lead{
		lead("Jane Doe", "Acme Inc", "community", 80),
		lead("Jane Doe", "Acme Inc", "competitor", 65),
	}
	result := Aggregate(leads, 10, time.Second, nil, 0)

	require.Len(t, result.Leads, 1)
	assert.Equal(t, 80, result.Leads[0].IntentScore)
	assert.Equal(t, "community", result.Leads[0].SourcePlatform)
	assert.Equal(t, 1, result.DuplicatesRemoved)
}

func TestAggregate_NoDuplicateKeysInOutput(t *testing.T) {
	leads := []models.Lead{
		lead("A", "Co", "community", 90),
		lead("A", "Co", "news", 88),
		lead("B", "Co2", "competitor", 70),
	}
	result := Aggregate(leads, 10, time.Second, nil, 0)

	seen := map[string]bool{}
	for _, l := range result.Leads {
		key := l.Name + "|" + l.Company
		assert.False(t, seen[key], "dedupe key %s must not repeat", key)
		seen[key] = true
	}
}

func TestAggregate_EmptyInputIsUnsuccessful(t *testing.T) {
	result := Aggregate(nil, 10, time.Second, nil, 0)
	assert.False(t, result.Success)
	assert.Empty(t, result.Leads)
}

func TestAggregate_DeterministicForSameInput(t *testing.T) {
	leads := []models.Lead{
		lead("A", "Co", "community", 70),
		lead("B", "Co2", "news", 70),
	}
	r1 := Aggregate(leads, 10, time.Second, nil, 0)
	r2 := Aggregate(leads, 10, time.Second, nil, 0)

	require.Len(t, r1.Leads, 2)
	require.Len(t, r2.Leads, 2)
	assert.Equal(t, r1.Leads[0].Name, r2.Leads[0].Name, "stable sort must break ties identically across runs")
	assert.Equal(t, r1.Leads[1].Name, r2.Leads[1].Name)
}
