// Package news implements the funding-news source worker (spec §4.4):
// fetches funding announcement list pages, extracts article summaries,
// selects plausible-fit companies, resolves their canonical
// organization identifier, and picks decision-maker leads per company.
package news

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/leadscoutai/leadscout/internal/fetchadapter"
	"github.com/leadscoutai/leadscout/internal/interfaces"
	"github.com/leadscoutai/leadscout/internal/llmadapter"
	"github.com/leadscoutai/leadscout/internal/models"
	"github.com/leadscoutai/leadscout/internal/workers/workerutil"
)

const (
	defaultIntentScore  = 75
	maxArticlesSelected = 5
	maxDecisionMakers   = 3
	internalFanout      = 5
)

// Worker mines funding-news signals for decision-maker leads.
type Worker struct {
	fetcher     interfaces.SourceFetcher
	searcher    interfaces.WebSearcher
	classifier  interfaces.Classifier
	stepTimeout time.Duration
	logger      arbor.ILogger
}

// New builds a news worker.
func New(fetcher interfaces.SourceFetcher, searcher interfaces.WebSearcher, classifier interfaces.Classifier, stepTimeout time.Duration, logger arbor.ILogger) *Worker {
	return &Worker{fetcher: fetcher, searcher: searcher, classifier: classifier, stepTimeout: stepTimeout, logger: logger}
}

var _ interfaces.Worker = (*Worker)(nil)

// Pages names the extra worker input the Strategy slice alone can't
// carry (the list of page numbers to fetch), since models.Strategy has
// no page-number field (spec §4.4 inputs include "a list of page
// numbers to fetch" separate from the Strategy proper). RunWithPages
// takes that list as a plain []int; nothing in the module uses Pages.
type Pages []int

// Run executes Fetch -> Extract -> Select -> Resolve -> decision-maker
// pick on pages 1 and 2; it is RunWithPages with those pages fixed.
func (w *Worker) Run(ctx context.Context, strategySlice models.Strategy, target int, cancel interfaces.CancelSignal) (models.WorkerResult, error) {
	return w.RunWithPages(ctx, strategySlice, target, []int{1, 2}, cancel)
}

// RunWithPages is the full entry point: Phase II calls it with pages
// 1,2; the compensation loop calls it with the next unfetched page
// batch from Context. cancel is polled between the Fetch, Select,
// and Filter stages — this worker has no per-item loop the way
// community does, so its step boundaries are the pipeline stages
// themselves rather than loop iterations.
func (w *Worker) RunWithPages(ctx context.Context, strategySlice models.Strategy, target int, pages []int, cancel interfaces.CancelSignal) (models.WorkerResult, error) {
	trace := &workerutil.Trace{}
	lastStep := string(models.StepFetch)

	pageStrs := make([]string, len(pages))
	for i, p := range pages {
		pageStrs[i] = strconv.Itoa(p)
	}

	var articles []fetchadapter.NewsArticle
	err := workerutil.RunStep(ctx, w.stepTimeout, func(stepCtx context.Context) error {
		batch, err := w.fetcher.SourceFetch(stepCtx, interfaces.SourceNews, pageStrs)
		if err != nil {
			return err
		}
		for _, item := range batch.Items {
			if a, ok := item.(fetchadapter.NewsArticle); ok {
				articles = append(articles, a)
			}
		}
		return nil
	})
	if err != nil {
		trace.Log(w.logger, "fetch failed for pages %v: %v", pages, err)
		return models.WorkerResult{Success: false, Err: err.Error(), LastStep: lastStep, Trace: trace.Lines()}, nil
	}
	lastStep = string(models.StepExtract)

	if cancel != nil && cancel.IsSet() {
		trace.Log(w.logger, "cancelled after fetch, before extract")
		return workerutil.CancelledResult(models.StepName(lastStep), nil, trace.Lines()), nil
	}

	selected := selectPlausibleArticles(articles, strategySlice.ProductCategory, maxArticlesSelected)
	lastStep = string(models.StepScore)

	var leads []models.Lead
	companyLeads := make([][]models.Lead, len(selected))
	workerutil.BoundedFanOut(w.logger, "news-companies", len(selected), internalFanout, func(i int) {
		article := selected[i]
		orgURL := fetchadapter.ResolveOrganizationURL(ctx, w.searcher, article.Company, w.stepTimeout)
		makers := w.pickDecisionMakers(ctx, article, strategySlice.TargetTitles)
		out := make([]models.Lead, 0, len(makers))
		for _, m := range makers {
			out = append(out, models.Lead{
				Name:           m,
				Title:          firstTitle(strategySlice.TargetTitles),
				Company:        article.Company,
				ProfileURL:     orgURL,
				IntentSignal:   fmt.Sprintf("%s raised funding (%s); role fits %s", article.Company, article.Excerpt, firstTitle(strategySlice.TargetTitles)),
				IntentScore:    defaultIntentScore,
				SourcePlatform: "news",
				SourceURL:      article.URL,
			})
		}
		companyLeads[i] = out
	})
	for _, cl := range companyLeads {
		leads = append(leads, cl...)
	}
	lastStep = string(models.StepFilter)

	if cancel != nil && cancel.IsSet() {
		trace.Log(w.logger, "cancelled after scoring, before filter")
		return workerutil.CancelledResult(models.StepScore, leads, trace.Lines()), nil
	}

	excerpts := make([]string, len(leads))
	for i, l := range leads {
		excerpts[i] = l.IntentSignal
	}
	survivors := llmadapter.FilterSellers(ctx, w.classifier, w.logger, excerpts)
	final := make([]models.Lead, 0, len(survivors))
	for _, idx := range survivors {
		final = append(final, leads[idx])
	}

	return models.WorkerResult{Success: true, Leads: final, LastStep: lastStep, Trace: trace.Lines()}, nil
}

// selectPlausibleArticles keeps up to max articles whose headline
// mentions productCategory (case-insensitive), per spec §4.4 step 3.
// With no productCategory it keeps the first max articles.
func selectPlausibleArticles(articles []fetchadapter.NewsArticle, productCategory string, max int) []fetchadapter.NewsArticle {
	if productCategory == "" {
		if len(articles) > max {
			return articles[:max]
		}
		return articles
	}
	var out []fetchadapter.NewsArticle
	keyword := strings.ToLower(productCategory)
	for _, a := range articles {
		if strings.Contains(strings.ToLower(a.Headline), keyword) {
			out = append(out, a)
		}
		if len(out) >= max {
			break
		}
	}
	return out
}

// pickDecisionMakers asks the classifier for 1-3 names at the company
// matching the target titles; on classifier unavailability it falls
// back to the first matching title alone (spec §9 open question: "pick
// the first 1 matching a target title").
func (w *Worker) pickDecisionMakers(ctx context.Context, article fetchadapter.NewsArticle, targetTitles []string) []string {
	prompt := fmt.Sprintf(`Company %q just raised funding: %s.
Given these target roles: %s
Suggest 1 to 3 plausible decision-maker names/titles at this company who would evaluate a new vendor in this space. Respond with JSON: {"items": ["string", ...]}`,
		article.Company, article.Excerpt, strings.Join(targetTitles, ", "))

	var resp struct {
		Items []string `json:"items"`
	}
	if err := w.classifier.Classify(ctx, prompt, nil, &resp); err != nil || len(resp.Items) == 0 {
		w.logger.Warn().Err(err).Str("company", article.Company).Msg("news worker: decision-maker classify failed, using fallback")
		return []string{firstTitle(targetTitles) + " at " + article.Company}
	}
	if len(resp.Items) > maxDecisionMakers {
		return resp.Items[:maxDecisionMakers]
	}
	return resp.Items
}

func firstTitle(titles []string) string {
	if len(titles) == 0 {
		return "Decision Maker"
	}
	return titles[0]
}
