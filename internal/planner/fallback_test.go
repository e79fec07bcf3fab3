package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFallbackInitialStrategy_IsNeverEmpty(t *testing.T) {
	strategy := FallbackInitialStrategy("a CRM tool")
	assert.False(t, strategy.IsEmpty())
}

func TestFallbackChooseCompensation_NewsWhenBudgetRemains(t *testing.T) {
	assert.Equal(t, []string{"news"}, FallbackChooseCompensation(true))
}

func TestFallbackChooseCompensation_StopsWhenNoBudget(t *testing.T) {
	assert.Empty(t, FallbackChooseCompensation(false))
}

func TestOrderByPriority_NewsCompetitorCommunity(t *testing.T) {
	assert.Equal(t, []string{"news", "competitor", "community"}, orderByPriority([]string{"community", "competitor", "news"}))
}

func TestOrderByPriority_PreservesSubsetOrder(t *testing.T) {
	assert.Equal(t, []string{"news", "community"}, orderByPriority([]string{"community", "news"}))
}
