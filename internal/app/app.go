// Package app is the composition root: it turns a common.Config into a
// fully wired internal/supervisor.Supervisor plus the host-side stores
// a cmd/ entrypoint needs. Grounded on
// ternarybob-quaero/internal/app/app.go's App struct aggregating every
// service built from one Config, narrowed from the teacher's dozen
// document-pipeline services down to this module's LLM/fetch/worker/
// planner/supervisor stack.
package app

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/leadscoutai/leadscout/internal/common"
	"github.com/leadscoutai/leadscout/internal/fetchadapter"
	"github.com/leadscoutai/leadscout/internal/interfaces"
	"github.com/leadscoutai/leadscout/internal/llmadapter"
	"github.com/leadscoutai/leadscout/internal/planner"
	"github.com/leadscoutai/leadscout/internal/runstore"
	"github.com/leadscoutai/leadscout/internal/supervisor"
	"github.com/leadscoutai/leadscout/internal/workers/community"
	"github.com/leadscoutai/leadscout/internal/workers/competitor"
	"github.com/leadscoutai/leadscout/internal/workers/news"
)

// App holds every long-lived component built from one Config. A single
// App can run many supervisor jobs over its lifetime — Supervisor.Run
// is safe for concurrent use, per DESIGN.md's per-job state isolation
// decision.
type App struct {
	Config     *common.Config
	Logger     arbor.ILogger
	Supervisor *supervisor.Supervisor
	RunStore   *runstore.Store

	tracker *llmadapter.CostTracker
}

// New builds every adapter, worker, the planner, and the supervisor
// from cfg, wiring Claude or Gemini as the classifier depending on
// which API key is configured (Claude takes precedence when both are
// set, since it is the teacher's primary LLM client).
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	tracker := llmadapter.NewCostTracker()

	classifier, err := newClassifier(cfg, logger, tracker)
	if err != nil {
		return nil, fmt.Errorf("app: build classifier: %w", err)
	}

	searcher, err := fetchadapter.NewGeminiWebSearcher(cfg.Gemini, logger)
	if err != nil {
		return nil, fmt.Errorf("app: build web searcher: %w", err)
	}

	communityFetcher := fetchadapter.NewGitHubCommunityFetcher(cfg.GitHub.Token, cfg.RateLimit.FetchPerSecond, logger)
	newsFetcher := fetchadapter.NewNewsListFetcher("https://www.saastr.com/funding-announcements", cfg.RateLimit.FetchPerSecond, logger)
	competitorFetcher := fetchadapter.NewCompetitorEngagementFetcher(cfg.Workers.MaxPostsPerOrg, cfg.Workers.StepTimeoutDuration(), logger)

	stepTimeout := cfg.Workers.StepTimeoutDuration()
	communityWorker := community.New(communityFetcher, classifier, stepTimeout, logger)
	newsWorker := news.New(newsFetcher, searcher, classifier, stepTimeout, logger)
	competitorWorker := competitor.New(competitorFetcher, searcher, classifier, stepTimeout, logger)

	llmPlanner := planner.New(classifier, logger)

	sup := supervisor.New(llmPlanner, supervisor.Workers{
		Community:  communityWorker,
		News:       newsWorker,
		Competitor: competitorWorker,
	}, logger)

	store, err := runstore.Open(cfg.RunStore, logger)
	if err != nil {
		return nil, fmt.Errorf("app: open run store: %w", err)
	}

	return &App{Config: cfg, Logger: logger, Supervisor: sup, RunStore: store, tracker: tracker}, nil
}

// newClassifier picks Claude when its api_key is configured, otherwise
// falls back to Gemini. Both implement interfaces.Classifier
// identically from the supervisor's point of view.
func newClassifier(cfg *common.Config, logger arbor.ILogger, tracker *llmadapter.CostTracker) (interfaces.Classifier, error) {
	if cfg.Claude.APIKey != "" {
		return llmadapter.NewClaudeClassifier(cfg.Claude, logger, tracker)
	}
	if cfg.Gemini.APIKey != "" {
		return llmadapter.NewGeminiClassifier(cfg.Gemini, logger, tracker)
	}
	return nil, fmt.Errorf("no classifier configured: set claude.api_key or gemini.api_key")
}

// LLMCallCount reports the running total of language-model calls made
// by the shared classifier across every job this App has run. This is
// a process-wide diagnostic counter, distinct from the per-job count
// the supervisor records into each RunResult.
func (a *App) LLMCallCount() int {
	return a.tracker.Count()
}

// Close releases the App's long-lived resources.
func (a *App) Close() error {
	if a.RunStore != nil {
		return a.RunStore.Close()
	}
	return nil
}
