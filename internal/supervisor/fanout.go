package supervisor

import (
	"context"
	"fmt"
	"sync"

	"github.com/leadscoutai/leadscout/internal/common"
	"github.com/leadscoutai/leadscout/internal/models"
)

// fanOutPhase implements Phase II (spec §4.1): all three source
// workers run concurrently against the planned strategy, each with its
// own per-worker target, each independently reviewed and retried, and
// every admitted lead is fed through Context.AddLeads as soon as its
// worker finishes — no worker waits on another. Each goroutine is
// launched via common.SafeGo so a panic inside one worker's Run (a
// classifier response indexing bug, say) is recovered and turned into
// a recorded job error rather than crashing every other job sharing
// this Supervisor (spec §7 "no single worker can fail the job"). The
// job's cancel signal is threaded into every worker call, not just
// checked before launch, so a cancellation raised mid-Phase-II is
// observable inside a still-running worker's own step loop.
func (s *Supervisor) fanOutPhase(ctx context.Context, j *job, strategy models.Strategy, target int) {
	perWorker := perWorkerTarget(target, 3)

	// recoverAsError is deferred after wg.Done in each goroutine, so it
	// runs first and a panic is on the job's error list before wg.Wait
	// returns.
	recoverAsError := func(source string) {
		if r := recover(); r != nil {
			s.logger.Error().Str("source", source).Str("panic", fmt.Sprintf("%v", r)).Msg("supervisor: worker panicked")
			j.recordError(fmt.Sprintf("%s: worker panicked: %v", source, r))
		}
	}

	var wg sync.WaitGroup
	wg.Add(3)

	common.SafeGo(s.logger, "fanout-community", func() {
		defer wg.Done()
		defer recoverAsError("community")
		if j.cancel.IsSet() {
			return
		}
		result := emitWorkerLifecycle(ctx, s.logger, j.sink, "community", MaxWorkerRetries, func(stepCtx context.Context) (models.WorkerResult, error) {
			return s.workers.Community.Run(stepCtx, strategy, perWorker, j.cancel)
		})
		s.ingest(j, "community", result)
	})

	common.SafeGo(s.logger, "fanout-news", func() {
		defer wg.Done()
		defer recoverAsError("news")
		if j.cancel.IsSet() {
			return
		}
		result := emitWorkerLifecycle(ctx, s.logger, j.sink, "news", MaxWorkerRetries, func(stepCtx context.Context) (models.WorkerResult, error) {
			return s.workers.News.RunWithPages(stepCtx, strategy, perWorker, []int{1, 2}, j.cancel)
		})
		s.ingest(j, "news", result)
	})

	common.SafeGo(s.logger, "fanout-competitor", func() {
		defer wg.Done()
		defer recoverAsError("competitor")
		if j.cancel.IsSet() {
			return
		}
		result := emitWorkerLifecycle(ctx, s.logger, j.sink, "competitor", MaxWorkerRetries, func(stepCtx context.Context) (models.WorkerResult, error) {
			return s.workers.Competitor.Run(stepCtx, strategy, perWorker, j.cancel)
		})
		s.ingest(j, "competitor", result)
	})

	wg.Wait()
}

// ingest admits a reviewed worker's leads into the job accumulator and
// records a failure string when the worker never recovered.
func (s *Supervisor) ingest(j *job, source string, result models.WorkerResult) {
	if !result.Success {
		if result.Err != "" {
			j.recordError(source + ": " + result.Err)
		}
		return
	}
	admitted := j.admit(result.Leads)
	s.logger.Info().Str("source", source).Int("candidates", len(result.Leads)).Int("admitted", admitted).Msg("supervisor: worker result ingested")
}
