// Package aggregator implements the pure, deterministic final reduction
// over admitted leads (spec §4.6): global dedupe, stable sort by
// intent score, truncation to target, priority derivation, and summary
// counts.
package aggregator

import (
	"sort"
	"time"

	"github.com/leadscoutai/leadscout/internal/leadctx"
	"github.com/leadscoutai/leadscout/internal/models"
)

// Aggregate reduces admitted leads to a RunResult. Within a supervisor
// run the leads have already passed through Context.AddLeads, which
// admits at most one lead per dedupe key, so this pass finds no
// collisions there; it applies the same key rule to any input slice
// and resolves a collision by keeping the higher score.
func Aggregate(admitted []models.Lead, target int, elapsed time.Duration, errs []string, llmCallCount int) models.RunResult {
	deduped, duplicatesRemoved := dedupeByKey(admitted)

	sort.SliceStable(deduped, func(i, j int) bool {
		return deduped[i].IntentScore > deduped[j].IntentScore
	})

	if len(deduped) > target {
		deduped = deduped[:target]
	}

	final := make([]models.Lead, len(deduped))
	tierCounts := make(map[models.Priority]int)
	platformCounts := make(map[string]int)
	for i, l := range deduped {
		l = l.WithDerivedPriority()
		final[i] = l
		tierCounts[l.Priority]++
		platformCounts[l.SourcePlatform]++
	}

	if errs == nil {
		errs = []string{}
	}

	return models.RunResult{
		Success:           len(final) > 0,
		Leads:             final,
		TotalsByTier:      tierCounts,
		TotalsByPlatform:  platformCounts,
		DuplicatesRemoved: duplicatesRemoved,
		Elapsed:           elapsed,
		Errors:            errs,
		LLMCallCount:      llmCallCount,
	}
}

// dedupeByKey applies the §3 dedupe-key rules globally: on collision,
// keep the higher-scoring lead; on tie, keep the first encountered.
func dedupeByKey(leads []models.Lead) ([]models.Lead, int) {
	byKey := make(map[string]int) // key -> index into kept
	kept := make([]models.Lead, 0, len(leads))
	duplicates := 0

	for _, lead := range leads {
		key := leadctx.DedupeKey(lead)
		if key == "" {
			kept = append(kept, lead)
			continue
		}
		if idx, ok := byKey[key]; ok {
			duplicates++
			if lead.IntentScore > kept[idx].IntentScore {
				kept[idx] = lead
			}
			continue
		}
		byKey[key] = len(kept)
		kept = append(kept, lead)
	}

	return kept, duplicates
}
