package supervisor

import (
	"context"

	"github.com/leadscoutai/leadscout/internal/interfaces"
	"github.com/leadscoutai/leadscout/internal/leadctx"
	"github.com/leadscoutai/leadscout/internal/models"
	"github.com/leadscoutai/leadscout/internal/planner"
)

// compensationPhase implements Phase III (spec §4.1): while the job is
// short of target and under MaxRounds, ask the planner which strategy
// tags to run next, dispatch each sequentially against a disjoint
// slice of work carried in the job's Context, and record the outcome
// as history the planner sees on the following round. The loop stops
// early on target-met, an explicit planner stop, cancellation, or a
// round in which no proposed tag has any disjoint work left. A round
// whose workers ran but admitted zero new leads does not stop the loop.
func (s *Supervisor) compensationPhase(ctx context.Context, j *job, product string, strategy models.Strategy, target int) {
	var history []interfaces.CompensationHistoryEntry

	for round := 0; round < MaxRounds; round++ {
		if j.cancel.IsSet() {
			return
		}
		if j.admittedCount() >= target {
			return
		}

		summary := interfaces.ContextSummary{
			NewsPagesFetched:     j.ctx.NewsPagesFetched(),
			CommunityQueriesUsed: j.ctx.CommunityQueriesUsed(),
			CompetitorsScraped:   j.ctx.CompetitorsScraped(),
		}

		tags, err := s.planner.ChooseCompensation(ctx, j.admittedCount(), target, summary, history)
		j.tracker.Record()
		if err != nil {
			s.logger.Warn().Err(err).Msg("supervisor: compensation planning failed, falling back")
			tags = planner.FallbackChooseCompensation(true)
		}
		if len(tags) == 0 {
			s.logger.Info().Int("round", round).Msg("supervisor: compensation loop stopped, planner chose nothing")
			return
		}

		j.rounds++
		ranAny := false

		for _, tag := range tags {
			if j.cancel.IsSet() {
				return
			}
			if j.admittedCount() >= target {
				return
			}

			entry, ok := s.runCompensationTag(ctx, j, product, strategy, target, tag)
			if !ok {
				continue
			}
			ranAny = true
			history = append(history, entry)
		}

		if !ranAny {
			s.logger.Info().Int("round", round).Msg("supervisor: no proposed tag had work left, stopping compensation")
			return
		}
	}
}

// runCompensationTag dispatches a single strategy tag's sub-invocation
// and returns the history entry to feed back to the planner. ok is
// false when the tag had no disjoint work left to do, in which case no
// worker ran and no history entry is recorded.
func (s *Supervisor) runCompensationTag(ctx context.Context, j *job, product string, strategy models.Strategy, target int, tag string) (interfaces.CompensationHistoryEntry, bool) {
	remaining := target - j.admittedCount()
	if remaining <= 0 {
		remaining = 1
	}

	switch tag {
	case tagNews:
		pages := j.ctx.NextNewsPages(NewsPageBatch)
		result := emitWorkerLifecycle(ctx, s.logger, j.sink, "news", MaxWorkerRetries, func(stepCtx context.Context) (models.WorkerResult, error) {
			return s.workers.News.RunWithPages(stepCtx, strategy, remaining, pages, j.cancel)
		})
		admitted := 0
		if result.Success {
			admitted = j.admit(result.Leads)
		} else if result.Err != "" {
			j.recordError("news (compensation): " + result.Err)
		}
		return interfaces.CompensationHistoryEntry{Tag: tagNews, NewLeads: admitted, Succeeded: result.Success, Detail: result.Err}, true

	case tagCompetitor:
		more, err := s.planner.MoreCompetitors(ctx, product, j.ctx.CompetitorsScraped())
		j.tracker.Record()
		if err != nil {
			s.logger.Warn().Err(err).Msg("supervisor: MoreCompetitors failed")
		}
		fresh := dedupeAgainstExclude(more, j.ctx.CompetitorsScraped())
		if len(fresh) == 0 {
			return interfaces.CompensationHistoryEntry{}, false
		}

		compStrategy := models.Strategy{Competitors: fresh}
		result := emitWorkerLifecycle(ctx, s.logger, j.sink, "competitor", MaxWorkerRetries, func(stepCtx context.Context) (models.WorkerResult, error) {
			return s.workers.Competitor.Run(stepCtx, compStrategy, remaining, j.cancel)
		})
		j.ctx.MarkCompetitorsScraped(fresh)
		admitted := 0
		if result.Success {
			admitted = j.admit(result.Leads)
		} else if result.Err != "" {
			j.recordError("competitor (compensation): " + result.Err)
		}
		return interfaces.CompensationHistoryEntry{Tag: tagCompetitor, NewLeads: admitted, Succeeded: result.Success, Detail: result.Err}, true

	case tagCommunity:
		more, err := s.planner.MoreCommunityQueries(ctx, product, j.ctx.CommunityQueriesUsed())
		j.tracker.Record()
		if err != nil {
			s.logger.Warn().Err(err).Msg("supervisor: MoreCommunityQueries failed")
		}
		fresh := dedupeAgainstExclude(more, j.ctx.CommunityQueriesUsed())
		if len(fresh) == 0 {
			return interfaces.CompensationHistoryEntry{}, false
		}

		commStrategy := models.Strategy{CommunityQueries: fresh}
		result := emitWorkerLifecycle(ctx, s.logger, j.sink, "community", MaxWorkerRetries, func(stepCtx context.Context) (models.WorkerResult, error) {
			return s.workers.Community.Run(stepCtx, commStrategy, remaining, j.cancel)
		})
		j.ctx.MarkCommunityQueriesUsed(fresh)
		admitted := 0
		if result.Success {
			admitted = j.admit(result.Leads)
		} else if result.Err != "" {
			j.recordError("community (compensation): " + result.Err)
		}
		return interfaces.CompensationHistoryEntry{Tag: tagCommunity, NewLeads: admitted, Succeeded: result.Success, Detail: result.Err}, true

	default:
		return interfaces.CompensationHistoryEntry{}, false
	}
}

// dedupeAgainstExclude filters candidates already recorded in the
// Context arena, re-using the same case-insensitive comparison
// UnusedOf applies when the planner is asked to avoid repeats but
// returns something it has already suggested before.
func dedupeAgainstExclude(candidates, exclude []string) []string {
	return leadctx.UnusedOf(candidates, exclude)
}

