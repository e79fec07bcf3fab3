package workerutil

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/leadscoutai/leadscout/internal/models"
)

// Trace accumulates the log lines a WorkerResult carries, one per
// worker invocation. Not safe for concurrent writes — a worker's steps
// run sequentially per the Worker Pipeline Contract.
type Trace struct {
	lines []string
}

// Log appends a line and mirrors it to logger at debug level.
func (t *Trace) Log(logger arbor.ILogger, format string, args ...interface{}) {
	line := format
	if len(args) > 0 {
		line = fmt.Sprintf(format, args...)
	}
	t.lines = append(t.lines, line)
	if logger != nil {
		logger.Debug().Msg(line)
	}
}

// Lines returns the accumulated trace.
func (t *Trace) Lines() []string {
	return t.lines
}

// RunStep executes fn under stepTimeout, returning its error (if any).
// The source workers wrap their Fetch step in it; Score, Extract and
// Filter run without this timeout. The timeout is the "default 2
// minutes per step" named in spec §5.
func RunStep(ctx context.Context, stepTimeout time.Duration, fn func(ctx context.Context) error) error {
	if stepTimeout <= 0 {
		stepTimeout = 2 * time.Minute
	}
	timeoutCtx, cancel := context.WithTimeout(ctx, stepTimeout)
	defer cancel()
	return fn(timeoutCtx)
}

// CancelledResult builds the WorkerResult a worker returns when it
// notices cancellation at a step boundary between pipeline steps —
// workers are not pre-empted mid-step (spec §4.1.2).
func CancelledResult(lastStep models.StepName, leadsSoFar []models.Lead, trace []string) models.WorkerResult {
	return models.WorkerResult{
		Success:  true,
		Leads:    leadsSoFar,
		LastStep: string(lastStep),
		Trace:    trace,
	}
}
