package interfaces

import (
	"context"

	"github.com/leadscoutai/leadscout/internal/models"
)

// CompensationHistoryEntry records one prior compensation sub-invocation:
// which strategy tag was chosen, how many new leads it produced, and
// whether it succeeded. Passed back to the planner on the next round so
// it can avoid repeating unproductive choices.
type CompensationHistoryEntry = models.CompensationRound

// ContextSummary is the read-only snapshot of resource consumption the
// supervisor hands the planner when asking for compensation choices —
// it never exposes the live Context, only a point-in-time copy.
type ContextSummary struct {
	NewsPagesFetched     []int
	CommunityQueriesUsed []string
	CompetitorsScraped   []string
}

// Planner is a language-model-backed decision component. Every
// operation may fail or return an empty result; the supervisor owns the
// deterministic fallback for each (spec §4.7, §7).
type Planner interface {
	// InitialStrategy produces the first Strategy from a product
	// description. May return an empty or partial Strategy.
	InitialStrategy(ctx context.Context, product string, target int, icp map[string]interface{}) (models.Strategy, error)

	// ChooseCompensation returns an ordered list of strategy tags
	// ("news", "competitor", "community") to run next, honoring that
	// priority order when tied, or an empty list to signal stop.
	ChooseCompensation(ctx context.Context, currentCount, target int, summary ContextSummary, history []CompensationHistoryEntry) ([]string, error)

	// MoreCompetitors produces additional competitor names disjoint
	// from exclude.
	MoreCompetitors(ctx context.Context, product string, exclude []string) ([]string, error)

	// MoreCommunityQueries produces additional free-text queries
	// disjoint from exclude.
	MoreCommunityQueries(ctx context.Context, product string, exclude []string) ([]string, error)
}
