package supervisor

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/leadscoutai/leadscout/internal/interfaces"
	"github.com/leadscoutai/leadscout/internal/models"
)

// stubWorker returns a fixed WorkerResult (or error) regardless of
// input, optionally failing its first N calls to exercise Review
// retries.
type stubWorker struct {
	mu       sync.Mutex
	failures int
	calls    int
	leads    []models.Lead
}

func (w *stubWorker) Run(_ context.Context, _ models.Strategy, target int, _ interfaces.CancelSignal) (models.WorkerResult, error) {
	w.mu.Lock()
	w.calls++
	attempt := w.calls
	w.mu.Unlock()

	if attempt <= w.failures {
		return models.WorkerResult{Success: false, Err: "transient failure"}, nil
	}
	leads := w.leads
	if len(leads) > target {
		leads = leads[:target]
	}
	return models.WorkerResult{Success: true, Leads: leads}, nil
}

type stubNewsWorker struct {
	stubWorker
}

func (w *stubNewsWorker) RunWithPages(_ context.Context, _ models.Strategy, target int, _ []int, _ interfaces.CancelSignal) (models.WorkerResult, error) {
	w.mu.Lock()
	w.calls++
	w.mu.Unlock()
	leads := w.leads
	if len(leads) > target {
		leads = leads[:target]
	}
	return models.WorkerResult{Success: true, Leads: leads}, nil
}

// blockingWorker blocks on a channel until released, letting a test
// cancel the job while this worker is still mid-flight, then checks
// cancel itself and returns a cancelled-but-successful result — the
// same contract a real worker's step-boundary check follows.
type blockingWorker struct {
	mu       sync.Mutex
	calls    int
	release  chan struct{}
	leads    []models.Lead
	observed bool
}

func (w *blockingWorker) Run(_ context.Context, _ models.Strategy, target int, cancel interfaces.CancelSignal) (models.WorkerResult, error) {
	w.mu.Lock()
	w.calls++
	w.mu.Unlock()
	<-w.release
	if cancel != nil && cancel.IsSet() {
		w.mu.Lock()
		w.observed = true
		w.mu.Unlock()
		return models.WorkerResult{Success: true}, nil
	}
	leads := w.leads
	if len(leads) > target {
		leads = leads[:target]
	}
	return models.WorkerResult{Success: true, Leads: leads}, nil
}

type stubPlanner struct {
	strategy        models.Strategy
	strategyErr     error
	compensation    [][]string
	compensationIdx int
	moreCompetitors []string
	moreCommunity   []string
}

func (p *stubPlanner) InitialStrategy(_ context.Context, _ string, _ int, _ map[string]interface{}) (models.Strategy, error) {
	return p.strategy, p.strategyErr
}

func (p *stubPlanner) ChooseCompensation(_ context.Context, _, _ int, _ interfaces.ContextSummary, _ []interfaces.CompensationHistoryEntry) ([]string, error) {
	if p.compensationIdx >= len(p.compensation) {
		return nil, nil
	}
	tags := p.compensation[p.compensationIdx]
	p.compensationIdx++
	return tags, nil
}

func (p *stubPlanner) MoreCompetitors(_ context.Context, _ string, exclude []string) ([]string, error) {
	for _, c := range p.moreCompetitors {
		excluded := false
		for _, e := range exclude {
			if e == c {
				excluded = true
			}
		}
		if !excluded {
			// Suggest one new name at a time, as a real planner
			// consulting incrementally would.
			return []string{c}, nil
		}
	}
	return nil, nil
}

func (p *stubPlanner) MoreCommunityQueries(_ context.Context, _ string, exclude []string) ([]string, error) {
	out := make([]string, 0)
	for _, c := range p.moreCommunity {
		excluded := false
		for _, e := range exclude {
			if e == c {
				excluded = true
			}
		}
		if !excluded {
			out = append(out, c)
		}
	}
	return out, nil
}

type memSink struct {
	mu     sync.Mutex
	events []models.Event
}

func (s *memSink) Publish(e models.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *memSink) ofType(t models.EventType) []models.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Event
	for _, e := range s.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// hookSink calls onEvent for every published event, letting a test
// synchronize on a specific lifecycle event instead of sleeping.
type hookSink struct {
	onEvent func(models.Event)
}

func (s *hookSink) Publish(e models.Event) {
	s.onEvent(e)
}

func lead(name, company, platform string, score int) models.Lead {
	return models.Lead{Name: name, Company: company, IntentSignal: "x", IntentScore: score, SourcePlatform: platform}
}

func newWorkers(community, news, competitor int) (*stubWorker, *stubNewsWorker, *stubWorker) {
	leadsFor := func(n int, platform string) []models.Lead {
		out := make([]models.Lead, n)
		for i := 0; i < n; i++ {
			out[i] = lead(platform+string(rune('A'+i)), platform+"Co", platform, 70)
		}
		return out
	}
	c := &stubWorker{leads: leadsFor(community, "community")}
	n := &stubNewsWorker{stubWorker{leads: leadsFor(news, "news")}}
	p := &stubWorker{leads: leadsFor(competitor, "competitor")}
	return c, n, p
}

// S1: a healthy run where Phase II alone meets target stops without
// entering compensation.
func TestRun_PhaseIIAloneMeetsTarget(t *testing.T) {
	community, news, competitor := newWorkers(4, 4, 4)
	planner := &stubPlanner{strategy: models.Strategy{ProductCategory: "widgets", CommunityQueries: []string{"q1"}, Competitors: []string{"Acme"}}}
	sup := New(planner, Workers{Community: community, News: news, Competitor: competitor}, arbor.NewLogger())

	sink := &memSink{}
	result, err := sup.Run(context.Background(), "widgets", 10, nil, sink, nil)

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Len(t, result.Leads, 10)
	assert.Equal(t, 0, planner.compensationIdx, "compensation must not run once target is already met")
}

// S3: Phase II falls short (4 of 5), and one compensation round closes
// the gap with a lead from a competitor the planner proposes.
func TestRun_CompensationClosesShortfall(t *testing.T) {
	community, news, _ := newWorkers(1, 1, 0)
	competitor := &perCallCompetitorWorker{}
	planner := &stubPlanner{
		strategy:        models.Strategy{ProductCategory: "widgets"},
		compensation:    [][]string{{tagCompetitor}},
		moreCompetitors: []string{"Rival1"},
		moreCommunity:   nil,
	}
	news.leads = append(news.leads, lead("newsD", "DCo", "news", 75), lead("newsE", "ECo", "news", 75))
	sup := New(planner, Workers{Community: community, News: news, Competitor: competitor}, arbor.NewLogger())

	sink := &memSink{}
	result, err := sup.Run(context.Background(), "widgets", 5, nil, sink, nil)

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Len(t, result.Leads, 5)
	assert.Equal(t, 1, planner.compensationIdx, "one compensation round must be consulted to close the shortfall")
}

// perCallCompetitorWorker returns a distinct lead on every call, so a
// planner that keeps finding fresh competitors never runs out of
// progress to make — only the MaxRounds bound can stop it.
type perCallCompetitorWorker struct {
	mu    sync.Mutex
	calls int
}

func (w *perCallCompetitorWorker) Run(_ context.Context, strategySlice models.Strategy, _ int, _ interfaces.CancelSignal) (models.WorkerResult, error) {
	if len(strategySlice.Competitors) == 0 {
		return models.WorkerResult{Success: true}, nil
	}
	w.mu.Lock()
	w.calls++
	n := w.calls
	w.mu.Unlock()
	name := strategySlice.Competitors[0] + "-contact"
	return models.WorkerResult{Success: true, Leads: []models.Lead{lead(name, strategySlice.Competitors[0], "competitor", 65+n)}}, nil
}

// §8.5 invariant: compensation never exceeds MaxRounds even if the
// planner keeps asking for more and every round keeps making progress.
func TestRun_CompensationLoopBoundedByMaxRounds(t *testing.T) {
	community, news, _ := newWorkers(0, 0, 0)
	competitor := &perCallCompetitorWorker{}
	planner := &stubPlanner{
		strategy: models.Strategy{ProductCategory: "widgets"},
		compensation: [][]string{
			{tagCompetitor}, {tagCompetitor}, {tagCompetitor}, {tagCompetitor}, {tagCompetitor},
		},
		moreCompetitors: []string{"Rival1", "Rival2", "Rival3", "Rival4", "Rival5"},
	}
	sup := New(planner, Workers{Community: community, News: news, Competitor: competitor}, arbor.NewLogger())

	sink := &memSink{}
	_, err := sup.Run(context.Background(), "widgets", 100, nil, sink, nil)

	require.NoError(t, err)
	assert.Equal(t, MaxRounds, planner.compensationIdx, "the planner must not be consulted beyond MaxRounds even though every round still makes progress")
}

// §4.1.1 / §8.6: a worker that fails is retried up to MaxWorkerRetries
// times before Review gives up on it.
func TestRun_ReviewRetriesFailingWorkerUpToBound(t *testing.T) {
	community := &stubWorker{failures: MaxWorkerRetries, leads: []models.Lead{lead("c1", "Co", "community", 70)}}
	news := &stubNewsWorker{stubWorker{leads: nil}}
	competitor := &stubWorker{leads: nil}
	planner := &stubPlanner{strategy: models.Strategy{ProductCategory: "widgets"}}
	sup := New(planner, Workers{Community: community, News: news, Competitor: competitor}, arbor.NewLogger())

	sink := &memSink{}
	result, err := sup.Run(context.Background(), "widgets", 3, nil, sink, nil)

	require.NoError(t, err)
	assert.Equal(t, MaxWorkerRetries+1, community.calls, "worker must be retried exactly MaxWorkerRetries times after its first failure")
	assert.Len(t, result.Leads, 1)
}

// §9 planner-failure policy: initial planning failure falls back to a
// deterministic strategy rather than aborting the job.
func TestRun_PlannerFailureFallsBackToDeterministicStrategy(t *testing.T) {
	community, news, competitor := newWorkers(3, 3, 3)
	planner := &stubPlanner{strategyErr: assert.AnError}
	sup := New(planner, Workers{Community: community, News: news, Competitor: competitor}, arbor.NewLogger())

	sink := &memSink{}
	result, err := sup.Run(context.Background(), "widgets", 5, nil, sink, nil)

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.NotEmpty(t, result.Leads)
}

// S6/§8.8: a cancellation raised before Phase II prevents any
// lead_batch/completed event and yields an unsuccessful cancelled result.
func TestRun_CancellationBeforeFanOutSkipsWork(t *testing.T) {
	community, news, competitor := newWorkers(5, 5, 5)
	planner := &stubPlanner{strategy: models.Strategy{ProductCategory: "widgets"}}
	sup := New(planner, Workers{Community: community, News: news, Competitor: competitor}, arbor.NewLogger())

	cancel := interfaces.NewCancelSignal()
	cancel.Cancel()
	sink := &memSink{}
	result, err := sup.Run(context.Background(), "widgets", 5, nil, sink, cancel)

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Empty(t, sink.ofType(models.EventLeadBatch))
	assert.Empty(t, sink.ofType(models.EventCompleted))
	assert.Equal(t, 0, community.calls)
}

// S6/§8.8 literal scenario: cancellation is raised after community
// completes but while competitor is still mid-flight. The in-flight
// worker must notice the signal at its own next step boundary rather
// than only being gated before it was launched.
func TestRun_CancellationDuringPhaseIIObservedByInFlightWorker(t *testing.T) {
	community, news, _ := newWorkers(3, 3, 0)
	competitor := &blockingWorker{release: make(chan struct{}), leads: []models.Lead{lead("c1", "Co", "competitor", 70)}}
	planner := &stubPlanner{strategy: models.Strategy{ProductCategory: "widgets"}}
	sup := New(planner, Workers{Community: community, News: news, Competitor: competitor}, arbor.NewLogger())

	cancel := interfaces.NewCancelSignal()
	var sawCommunityComplete sync.WaitGroup
	sawCommunityComplete.Add(1)
	var notifyMu sync.Mutex
	notified := false
	sink := &hookSink{onEvent: func(e models.Event) {
		if e.Type == models.EventWorkerComplete && e.Source == "community" {
			notifyMu.Lock()
			if !notified {
				notified = true
				sawCommunityComplete.Done()
			}
			notifyMu.Unlock()
		}
	}}

	done := make(chan models.RunResult, 1)
	go func() {
		result, _ := sup.Run(context.Background(), "widgets", 5, nil, sink, cancel)
		done <- result
	}()

	sawCommunityComplete.Wait()
	cancel.Cancel()
	close(competitor.release)

	result := <-done

	assert.False(t, result.Success, "job cancelled mid-Phase-II yields an unsuccessful cancelled result")
	assert.NotEmpty(t, result.Leads, "leads admitted before cancellation are preserved")

	competitor.mu.Lock()
	observed, calls := competitor.observed, competitor.calls
	competitor.mu.Unlock()
	assert.Equal(t, 1, calls)
	assert.True(t, observed, "the in-flight competitor worker must observe cancellation at its own step boundary, not just be skipped before launch")
}

// Duplicate leads surfaced by two different workers in the same run
// are only admitted once (Context.AddLeads is the sole dedupe gate).
func TestRun_DuplicateLeadAcrossWorkersAdmittedOnce(t *testing.T) {
	dup := lead("Jane Doe", "Acme Inc", "community", 80)
	dupFromNews := lead("Jane Doe", "Acme Inc", "news", 72)

	community := &stubWorker{leads: []models.Lead{dup}}
	news := &stubNewsWorker{stubWorker{leads: []models.Lead{dupFromNews}}}
	competitor := &stubWorker{}
	planner := &stubPlanner{strategy: models.Strategy{ProductCategory: "widgets"}}
	sup := New(planner, Workers{Community: community, News: news, Competitor: competitor}, arbor.NewLogger())

	sink := &memSink{}
	result, err := sup.Run(context.Background(), "widgets", 10, nil, sink, nil)

	require.NoError(t, err)
	require.Len(t, result.Leads, 1, "same (name, company) pair from two workers must dedupe to one lead")
}
