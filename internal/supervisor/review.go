package supervisor

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"

	"github.com/leadscoutai/leadscout/internal/interfaces"
	"github.com/leadscoutai/leadscout/internal/models"
)

var leadValidator = validator.New()

// reviewedRun invokes runFn and applies the Review policy (spec
// §4.1.1): a worker that reports failure (Success == false with a
// non-empty Err) is retried up to maxRetries times with the same
// arguments. A worker that succeeds with zero leads is accepted as-is
// — an empty result is a valid outcome, not a failure. Review validates
// every returned lead and logs a warning when more leads fail
// validation than pass, but never drops or edits a lead on the
// strength of that check alone — deduplication is Context.AddLeads's
// job and the Aggregator's ranking is the only other gate downstream.
func reviewedRun(ctx context.Context, logger arbor.ILogger, source string, maxRetries int, runFn func(context.Context) (models.WorkerResult, error)) models.WorkerResult {
	var result models.WorkerResult
	var err error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		result, err = runFn(ctx)
		if err != nil {
			logger.Warn().Err(err).Str("source", source).Int("attempt", attempt).Msg("supervisor: worker invocation error")
			result = models.WorkerResult{Success: false, Err: err.Error()}
		}

		if result.Success || result.Err == "" {
			reviewLeads(logger, source, result.Leads)
			return result
		}

		if attempt < maxRetries {
			logger.Info().Str("source", source).Int("attempt", attempt).Str("reason", result.Err).Msg("supervisor: reviewing worker failure, retrying")
		}
	}

	return result
}

// reviewLeads counts how many of a worker's returned leads pass
// validation and logs a warning when invalid leads outnumber valid
// ones. It never removes a lead from the slice it was given.
func reviewLeads(logger arbor.ILogger, source string, leads []models.Lead) {
	if len(leads) == 0 {
		return
	}
	invalid := 0
	for _, l := range leads {
		if err := leadValidator.Struct(l); err != nil {
			invalid++
			continue
		}
		if verr := l.Validate(); verr != nil {
			invalid++
		}
	}
	valid := len(leads) - invalid
	if invalid > valid {
		logger.Warn().Str("source", source).Int("invalid", invalid).Int("valid", valid).
			Msg("supervisor: review found more invalid leads than valid ones")
	}
}

// emitWorkerLifecycle wraps reviewedRun with the worker_start /
// worker_complete event pair spec §6 requires for each worker
// invocation, keyed by source platform tag.
func emitWorkerLifecycle(ctx context.Context, logger arbor.ILogger, sink interfaces.EventSink, source string, maxRetries int, runFn func(context.Context) (models.WorkerResult, error)) models.WorkerResult {
	emit(sink, models.EventWorkerStart, source, "worker started")
	result := reviewedRun(ctx, logger, source, maxRetries, runFn)
	if result.Success {
		emit(sink, models.EventWorkerComplete, source, "worker completed", result)
	} else {
		emit(sink, models.EventWorkerComplete, source, "worker failed: "+result.Err, result)
	}
	return result
}
