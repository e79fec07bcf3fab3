// Package competitor implements the competitor-engagement source
// worker (spec §4.5): resolves competitor names to pages, fetches
// recent posts, extracts engagers, and filters sellers.
package competitor

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/leadscoutai/leadscout/internal/fetchadapter"
	"github.com/leadscoutai/leadscout/internal/interfaces"
	"github.com/leadscoutai/leadscout/internal/llmadapter"
	"github.com/leadscoutai/leadscout/internal/models"
	"github.com/leadscoutai/leadscout/internal/workers/workerutil"
)

const (
	defaultIntentScore = 65
	internalFanout     = 5
)

// Worker mines competitor-page engagement for displacement leads.
type Worker struct {
	fetcher     interfaces.SourceFetcher
	searcher    interfaces.WebSearcher
	classifier  interfaces.Classifier
	stepTimeout time.Duration
	logger      arbor.ILogger
}

// New builds a competitor worker.
func New(fetcher interfaces.SourceFetcher, searcher interfaces.WebSearcher, classifier interfaces.Classifier, stepTimeout time.Duration, logger arbor.ILogger) *Worker {
	return &Worker{fetcher: fetcher, searcher: searcher, classifier: classifier, stepTimeout: stepTimeout, logger: logger}
}

var _ interfaces.Worker = (*Worker)(nil)

// Run executes Resolve -> Fetch -> Extract -> Filter over
// strategySlice.Competitors. cancel is polled after Resolve (before
// Fetch) and after Extract (before Filter).
func (w *Worker) Run(ctx context.Context, strategySlice models.Strategy, target int, cancel interfaces.CancelSignal) (models.WorkerResult, error) {
	trace := &workerutil.Trace{}
	lastStep := "resolve"

	if len(strategySlice.Competitors) == 0 {
		return models.WorkerResult{Success: true, LastStep: lastStep, Trace: trace.Lines()}, nil
	}

	pageURLs := make([]string, len(strategySlice.Competitors))
	workerutil.BoundedFanOut(w.logger, "competitor-resolve", len(strategySlice.Competitors), internalFanout, func(i int) {
		pageURLs[i] = fetchadapter.ResolveOrganizationURL(ctx, w.searcher, strategySlice.Competitors[i], w.stepTimeout)
	})
	lastStep = string(models.StepFetch)

	if cancel != nil && cancel.IsSet() {
		trace.Log(w.logger, "cancelled after resolve, before fetch")
		return workerutil.CancelledResult(models.StepName(lastStep), nil, trace.Lines()), nil
	}

	var engagers []fetchadapter.Engager
	err := workerutil.RunStep(ctx, w.stepTimeout, func(stepCtx context.Context) error {
		batch, err := w.fetcher.SourceFetch(stepCtx, interfaces.SourceCompetitorEngagement, pageURLs)
		if err != nil {
			return err
		}
		for _, item := range batch.Items {
			if e, ok := item.(fetchadapter.Engager); ok {
				engagers = append(engagers, e)
			}
		}
		return nil
	})
	if err != nil {
		trace.Log(w.logger, "fetch failed for %d competitor pages: %v", len(pageURLs), err)
		return models.WorkerResult{Success: false, Err: err.Error(), LastStep: lastStep, Trace: trace.Lines()}, nil
	}
	lastStep = string(models.StepExtract)

	engagers = dedupeEngagersByProfileURL(engagers)

	candidates := make([]models.Lead, 0, len(engagers))
	for _, e := range engagers {
		candidates = append(candidates, models.Lead{
			Name:           e.Name,
			ProfileURL:     e.ProfileURL,
			IntentSignal:   fmt.Sprintf("engaged with %s: %q", competitorNameFromPage(e.CompetitorPage), truncate(e.CommentExcerpt, 160)),
			IntentScore:    defaultIntentScore,
			SourcePlatform: "competitor",
			SourceURL:      e.CompetitorPage,
		})
	}
	lastStep = string(models.StepFilter)

	if cancel != nil && cancel.IsSet() {
		trace.Log(w.logger, "cancelled after extract, before filter")
		return workerutil.CancelledResult(models.StepExtract, nil, trace.Lines()), nil
	}

	excerpts := make([]string, len(candidates))
	for i, c := range candidates {
		excerpts[i] = c.IntentSignal
	}
	survivors := llmadapter.FilterSellers(ctx, w.classifier, w.logger, excerpts)

	final := make([]models.Lead, 0, len(survivors))
	for _, idx := range survivors {
		final = append(final, candidates[idx])
		if len(final) >= target {
			break
		}
	}

	return models.WorkerResult{Success: true, Leads: final, LastStep: lastStep, Trace: trace.Lines()}, nil
}

// dedupeEngagersByProfileURL removes repeat engagers surfaced from more
// than one page, per spec §4.5 step 3 ("deduplicated per-page by
// profile URL"), extended here to dedupe across the whole invocation
// since a worker run may span several competitor pages at once.
func dedupeEngagersByProfileURL(engagers []fetchadapter.Engager) []fetchadapter.Engager {
	seen := make(map[string]bool, len(engagers))
	out := make([]fetchadapter.Engager, 0, len(engagers))
	for _, e := range engagers {
		key := e.ProfileURL
		if key == "" {
			key = e.Name
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, e)
	}
	return out
}

func competitorNameFromPage(pageURL string) string {
	if pageURL == "" {
		return "competitor"
	}
	return pageURL
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
