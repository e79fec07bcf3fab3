// Package community implements the community-discussion source worker
// (spec §4.3): scores posts for buyer intent, extracts candidate leads,
// and filters out sellers/promoters.
package community

import (
	"context"
	"fmt"
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
	minRelevanceKeywordLen = 4
	minRelevanceRatio      = 0.30
	minIntentScoreToExtract = 50
	internalFanout          = 5
)

// Worker mines community discussions for buyer intent.
type Worker struct {
	fetcher     interfaces.SourceFetcher
	classifier  interfaces.Classifier
	stepTimeout time.Duration
	logger      arbor.ILogger
}

// New builds a community worker. fetcher supplies raw discussion posts
// (interfaces.SourceCommunity); classifier scores intent and filters
// sellers.
func New(fetcher interfaces.SourceFetcher, classifier interfaces.Classifier, stepTimeout time.Duration, logger arbor.ILogger) *Worker {
	return &Worker{fetcher: fetcher, classifier: classifier, stepTimeout: stepTimeout, logger: logger}
}

var _ interfaces.Worker = (*Worker)(nil)

type scoredPost struct {
	post  fetchadapter.DiscussionPost
	score int
}

// Run executes Fetch -> Score -> Extract -> Filter for each query in
// strategySlice.CommunityQueries, in order, stopping early once the
// accumulated lead count reaches target. cancel is polled between
// queries — the worker's own step boundary — so a cancellation raised
// mid-run is honored without aborting a query already in flight.
func (w *Worker) Run(ctx context.Context, strategySlice models.Strategy, target int, cancel interfaces.CancelSignal) (models.WorkerResult, error) {
	trace := &workerutil.Trace{}
	var leads []models.Lead
	lastStep := string(models.StepFetch)

	for _, query := range strategySlice.CommunityQueries {
		if len(leads) >= target {
			break
		}
		if cancel != nil && cancel.IsSet() {
			trace.Log(w.logger, "cancelled before query %q", query)
			return workerutil.CancelledResult(models.StepName(lastStep), leads, trace.Lines()), nil
		}

		var posts []fetchadapter.DiscussionPost
		err := workerutil.RunStep(ctx, w.stepTimeout, func(stepCtx context.Context) error {
			batch, err := w.fetcher.SourceFetch(stepCtx, interfaces.SourceCommunity, []string{query})
			if err != nil {
				return err
			}
			for _, item := range batch.Items {
				if p, ok := item.(fetchadapter.DiscussionPost); ok {
					posts = append(posts, p)
				}
			}
			return nil
		})
		lastStep = string(models.StepFetch)
		if err != nil {
			trace.Log(w.logger, "fetch failed for query %q: %v", query, err)
			return models.WorkerResult{Success: false, Leads: leads, Err: err.Error(), LastStep: lastStep, Trace: trace.Lines()}, nil
		}

		if relevanceRatio(posts, query) < minRelevanceRatio {
			trace.Log(w.logger, "query %q: low relevance ratio, proceeding with warning", query)
			w.logger.Warn().Str("query", query).Msg("community worker: low relevance ratio for fetched posts")
		}

		scored := w.scorePosts(ctx, posts)
		lastStep = string(models.StepScore)

		candidates := extractCandidates(scored, query)
		lastStep = string(models.StepExtract)
		if len(candidates) == 0 {
			continue
		}

		excerpts := make([]string, len(candidates))
		for i, c := range candidates {
			excerpts[i] = c.IntentSignal
		}
		survivors := llmadapter.FilterSellers(ctx, w.classifier, w.logger, excerpts)
		lastStep = string(models.StepFilter)

		for _, idx := range survivors {
			leads = append(leads, candidates[idx])
			if len(leads) >= target {
				break
			}
		}
	}

	return models.WorkerResult{Success: true, Leads: leads, LastStep: lastStep, Trace: trace.Lines()}, nil
}

// scorePosts scores each post's buyer intent in [0,100], internally
// fanning out with bounded concurrency (spec §5: "the community worker
// may score batches of posts in parallel").
func (w *Worker) scorePosts(ctx context.Context, posts []fetchadapter.DiscussionPost) []scoredPost {
	results := make([]scoredPost, len(posts))
	workerutil.BoundedFanOut(w.logger, "community-score", len(posts), internalFanout, func(i int) {
		results[i] = scoredPost{post: posts[i], score: scoreIntent(posts[i])}
	})
	return results
}

// scoreIntent applies the rubric from spec §4.3 heuristically: explicit
// requests for a solution score highest, promoter/off-topic lowest.
// A production deployment would route this through the classifier; the
// heuristic here keeps the worker deterministic and classifier-failure-
// tolerant for the Score step (only Filter is classifier-assisted per
// the Worker Pipeline Contract).
func scoreIntent(post fetchadapter.DiscussionPost) int {
	text := strings.ToLower(post.Title + " " + post.Body)

	var base int
	switch {
	case containsAny(text, "looking for", "recommend", "alternative to", "switching from", "need a tool"):
		base = 85
	case containsAny(text, "frustrated with", "hate", "doesn't work", "annoyed", "sick of"):
		base = 68
	case containsAny(text, "anyone use", "thoughts on", "experience with"):
		base = 48
	case containsAny(text, "just curious", "fyi", "heads up"):
		base = 28
	default:
		base = 12
	}
	return applyPostAgeDecay(base, post.CreatedAt)
}

// applyPostAgeDecay multiplies the base score by 0.85 once a post is
// older than 14 days, floored at 0 — a stale discussion is weaker
// evidence of current buying intent even if its text reads strongly.
func applyPostAgeDecay(base int, createdAt time.Time) int {
	if createdAt.IsZero() {
		return base
	}
	if time.Since(createdAt) <= 14*24*time.Hour {
		return base
	}
	decayed := int(float64(base) * 0.85)
	if decayed < 0 {
		decayed = 0
	}
	return decayed
}

func containsAny(haystack string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

// extractCandidates converts posts scoring >= minIntentScoreToExtract
// into Lead candidates, excluding deleted/bot authors.
func extractCandidates(scored []scoredPost, query string) []models.Lead {
	var out []models.Lead
	for _, sp := range scored {
		if sp.score < minIntentScoreToExtract {
			continue
		}
		if isExcludedAuthor(sp.post.Author) {
			continue
		}
		out = append(out, models.Lead{
			Name:           sp.post.Author,
			Company:        sp.post.Repository,
			IntentSignal:   excerptFor(sp.post),
			IntentScore:    sp.score,
			SourcePlatform: "community",
			SourceURL:      sp.post.URL,
		})
	}
	return out
}

func excerptFor(post fetchadapter.DiscussionPost) string {
	body := strings.TrimSpace(post.Body)
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	if body == "" {
		return post.Title
	}
	return fmt.Sprintf("%s: %s", post.Title, body)
}

func isExcludedAuthor(author string) bool {
	if author == "" || author == "[deleted]" {
		return true
	}
	lower := strings.ToLower(author)
	return strings.Contains(lower, "bot") || strings.Contains(lower, "moderator")
}

// relevanceRatio computes the fraction of posts whose title+body
// contains at least one query keyword of length >= 4, per spec §4.3's
// quality-gate threshold.
func relevanceRatio(posts []fetchadapter.DiscussionPost, query string) float64 {
	if len(posts) == 0 {
		return 0
	}
	keywords := keywordsOf(query)
	if len(keywords) == 0 {
		return 1
	}
	relevant := 0
	for _, p := range posts {
		text := strings.ToLower(p.Title + " " + p.Body)
		for _, kw := range keywords {
			if strings.Contains(text, kw) {
				relevant++
				break
			}
		}
	}
	return float64(relevant) / float64(len(posts))
}

func keywordsOf(query string) []string {
	var out []string
	for _, w := range strings.Fields(strings.ToLower(query)) {
		if len(w) >= minRelevanceKeywordLen {
			out = append(out, w)
		}
	}
	return out
}
