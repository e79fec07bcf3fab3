// Package supervisor implements the Supervisor Orchestrator (spec
// §4.1): the job engine that plans a strategy, fans out to the three
// source workers, reviews their output, runs a bounded compensation
// loop, and aggregates the admitted leads into a RunResult while
// streaming events. Grounded on
// ternarybob-quaero/internal/jobs/orchestrator/job_orchestrator.go's
// phase structure (plan -> dispatch -> collect -> finalize), adapted
// from quaero's generic job-definition DAG to this fixed four-phase
// algorithm.
package supervisor

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"

	"github.com/leadscoutai/leadscout/internal/aggregator"
	"github.com/leadscoutai/leadscout/internal/interfaces"
	"github.com/leadscoutai/leadscout/internal/leadctx"
	"github.com/leadscoutai/leadscout/internal/llmadapter"
	"github.com/leadscoutai/leadscout/internal/models"
)

const (
	// MaxRounds bounds the Phase III compensation loop (spec §4.1, §8.5).
	MaxRounds = 3
	// MaxWorkerRetries bounds per-worker Review retries (spec §4.1.1, §8.6).
	MaxWorkerRetries = 2
	// TargetBuffer is added to each worker's per-worker lead target
	// during Phase II fan-out (spec §4.1 Phase II).
	TargetBuffer = 5
	// NewsPageBatch is the default number of news pages requested per
	// compensation round (spec §4.1 Phase III.3.a).
	NewsPageBatch = 2

	tagNews       = "news"
	tagCompetitor = "competitor"
	tagCommunity  = "community"
)

// NewsWorker is the narrow extra capability the news worker exposes
// beyond interfaces.Worker: running against an explicit page list,
// needed by the compensation loop's page-budget bookkeeping.
type NewsWorker interface {
	interfaces.Worker
	RunWithPages(ctx context.Context, strategySlice models.Strategy, target int, pages []int, cancel interfaces.CancelSignal) (models.WorkerResult, error)
}

// Workers bundles the three source worker instances the supervisor
// drives by capability, never by concrete type (spec §9: "strategy
// dispatch is not inheritance").
type Workers struct {
	Community  interfaces.Worker
	News       NewsWorker
	Competitor interfaces.Worker
}

// Supervisor holds only the immutable collaborators a job needs —
// planner and workers are stateless adapters from the core's
// perspective (spec §2.1). All per-job mutable state lives in the job
// struct a Run call creates for itself, so concurrent Run calls on one
// Supervisor never share dedupe state (spec §9 "no cross-job state").
type Supervisor struct {
	planner interfaces.Planner
	workers Workers
	logger  arbor.ILogger
}

// New builds a Supervisor. LLM call accounting (RunResult.LLMCallCount)
// is tracked per job, not on the Supervisor itself, so concurrent Run
// calls never share a counter.
func New(planner interfaces.Planner, workers Workers, logger arbor.ILogger) *Supervisor {
	return &Supervisor{planner: planner, workers: workers, logger: logger}
}

// job is the per-Run mutable state: its own Context arena, lead
// accumulator, and error log. Created fresh by every Run call.
type job struct {
	sup     *Supervisor
	ctx     *leadctx.Context
	sink    interfaces.EventSink
	cancel  interfaces.CancelSignal
	tracker *llmadapter.CostTracker

	mu     sync.Mutex
	leads  []models.Lead
	errs   []string
	rounds int
}

func (j *job) admit(newLeads []models.Lead) int {
	admitted := j.ctx.AddLeads(newLeads)
	if len(admitted) == 0 {
		return 0
	}
	j.mu.Lock()
	j.leads = append(j.leads, admitted...)
	j.mu.Unlock()
	return len(admitted)
}

func (j *job) recordError(err string) {
	j.mu.Lock()
	j.errs = append(j.errs, err)
	j.mu.Unlock()
}

func (j *job) snapshot() ([]models.Lead, []string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	leads := make([]models.Lead, len(j.leads))
	copy(leads, j.leads)
	errs := make([]string, len(j.errs))
	copy(errs, j.errs)
	return leads, errs
}

func (j *job) admittedCount() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.leads)
}

// Run drives a single job from a product description to a RunResult,
// streaming events to sink. It never returns an error for worker-level
// failures — those land in RunResult.Errors — and only returns an error
// when strategy planning yields nothing usable and no fallback can be
// built (which, per spec §7, cannot actually happen since
// FallbackStrategy is always constructible from product).
func (s *Supervisor) Run(ctx context.Context, product string, target int, icp map[string]interface{}, sink interfaces.EventSink, cancel interfaces.CancelSignal) (models.RunResult, error) {
	start := time.Now()
	if cancel == nil {
		cancel = interfaces.NewCancelSignal()
	}
	j := &job{sup: s, ctx: leadctx.New(), sink: sink, cancel: cancel, tracker: llmadapter.NewCostTracker()}

	emit(sink, models.EventStatus, "", "job started")

	// Phase I — Plan.
	strategy := s.planPhase(ctx, j, product, target, icp, sink)

	if cancel.IsSet() {
		return j.cancelledResult(start), nil
	}

	// Phase II — Parallel fan-out + Review.
	s.fanOutPhase(ctx, j, strategy, target)

	j.ctx.MarkCommunityQueriesUsed(strategy.CommunityQueries)
	j.ctx.MarkCompetitorsScraped(strategy.Competitors)
	j.ctx.NextNewsPages(2) // records pages 1,2 as fetched per Phase II default

	if cancel.IsSet() {
		emit(sink, models.EventCancelled, "", "job cancelled during Phase II")
		return j.cancelledResult(start), nil
	}

	// Phase III — Compensation loop.
	s.compensationPhase(ctx, j, product, strategy, target)

	s.logger.Info().Int("rounds_run", j.rounds).Int("admitted", j.admittedCount()).Msg("supervisor: compensation loop complete")

	if cancel.IsSet() {
		emit(sink, models.EventCancelled, "", "job cancelled during Phase III")
		return j.cancelledResult(start), nil
	}

	// Phase IV — Aggregate.
	return s.aggregatePhase(j, target, start, sink), nil
}

var strategyValidator = validator.New()

func (s *Supervisor) planPhase(ctx context.Context, j *job, product string, target int, icp map[string]interface{}, sink interfaces.EventSink) models.Strategy {
	strategy, err := s.planner.InitialStrategy(ctx, product, target, icp)
	j.tracker.Record()
	if err != nil || strategy.IsEmpty() {
		if err != nil {
			s.logger.Warn().Err(err).Msg("supervisor: initial strategy planning failed, using fallback")
		}
		strategy = models.FallbackStrategy(product)
	}

	if verr := strategyValidator.Struct(strategy); verr != nil {
		s.logger.Warn().Err(verr).Msg("supervisor: planner strategy failed validation, proceeding anyway")
	}

	emit(sink, models.EventThought, "", fmt.Sprintf(
		"strategy: %d target titles, %d community queries, %d competitors",
		len(strategy.TargetTitles), len(strategy.CommunityQueries), len(strategy.Competitors)))

	return strategy
}

// perWorkerTarget implements spec §4.1 Phase II's
// ceil(target/workers) + buffer, buffer >= 5.
func perWorkerTarget(target, numWorkers int) int {
	return int(math.Ceil(float64(target)/float64(numWorkers))) + TargetBuffer
}

func (j *job) cancelledResult(start time.Time) models.RunResult {
	leads, errs := j.snapshot()
	return models.RunResult{
		Success: false,
		Leads:   leads,
		Elapsed: time.Since(start),
		Errors:  append(errs, "job cancelled"),
	}
}

func (s *Supervisor) aggregatePhase(j *job, target int, start time.Time, sink interfaces.EventSink) models.RunResult {
	leads, errs := j.snapshot()
	result := aggregator.Aggregate(leads, target, time.Since(start), errs, j.tracker.Count())

	byPlatform := make(map[string][]models.Lead)
	var platformOrder []string
	for _, l := range result.Leads {
		if _, ok := byPlatform[l.SourcePlatform]; !ok {
			platformOrder = append(platformOrder, l.SourcePlatform)
		}
		byPlatform[l.SourcePlatform] = append(byPlatform[l.SourcePlatform], l)
	}
	for _, platform := range platformOrder {
		emit(sink, models.EventLeadBatch, platform, "", models.LeadBatchPayload{SourcePlatform: platform, Leads: byPlatform[platform]})
	}
	emit(sink, models.EventCompleted, "", "job completed", models.CompletedPayload{Result: result})

	return result
}

// emit is a small variadic helper so callers can omit a payload.
func emit(sink interfaces.EventSink, eventType models.EventType, source, message string, payload ...interface{}) {
	if sink == nil {
		return
	}
	var p interface{}
	if len(payload) > 0 {
		p = payload[0]
	}
	sink.Publish(models.Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    source,
		Message:   message,
		Payload:   p,
	})
}
