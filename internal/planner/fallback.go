// Package planner implements interfaces.Planner as a language-model-
// backed decision component with a deterministic fallback for every
// operation, per spec §4.7 and §7's planner-failure policy.
package planner

import (
	"github.com/leadscoutai/leadscout/internal/interfaces"
	"github.com/leadscoutai/leadscout/internal/models"
)

// FallbackInitialStrategy builds the deterministic template Strategy
// used when the LLM-backed planner fails or returns nothing usable.
func FallbackInitialStrategy(product string) models.Strategy {
	return models.FallbackStrategy(product)
}

// FallbackChooseCompensation implements the compensation fallback named
// in §7: "news" if news pages remain available, otherwise stop. Here
// "remain available" just means no a-priori cap exists at the
// supervisor layer — the Context's NextNewsPages always has more pages
// to offer, so the fallback always proposes news unless the caller
// signals there is truly nothing left via hasNewsBudget.
func FallbackChooseCompensation(hasNewsBudget bool) []string {
	if hasNewsBudget {
		return []string{"news"}
	}
	return nil
}

// FallbackMoreCompetitors and FallbackMoreCommunityQueries: an empty or
// failed planner response is treated as "no more work for this tag"
// (§7), so the fallback is simply nil — callers skip the tag.
func FallbackMoreCompetitors() []string      { return nil }
func FallbackMoreCommunityQueries() []string { return nil }

// orderByPriority stably reorders tags so that, among the tags present,
// "news" sorts before "competitor" before "community" — the priority
// order named in spec §4.1 Phase III.1.
func orderByPriority(tags []string) []string {
	rank := map[string]int{"news": 0, "competitor": 1, "community": 2}
	out := make([]string, len(tags))
	copy(out, tags)
	for i := 1; i < len(out); i++ {
		j := i
		for j > 0 && rank[out[j-1]] > rank[out[j]] {
			out[j-1], out[j] = out[j], out[j-1]
			j--
		}
	}
	return out
}

var _ interfaces.Planner = (*LLMPlanner)(nil)
