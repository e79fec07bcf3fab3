package interfaces

import (
	"context"

	"github.com/leadscoutai/leadscout/internal/models"
)

// LogFunc is the shape of a function that publishes a trace line under
// a worker's source tag. No worker takes one: the workers log through
// the arbor.ILogger passed to their constructors and collect trace
// lines in their WorkerResult, and the supervisor publishes only the
// worker_start/worker_complete events for them.
type LogFunc func(format string, args ...interface{})

// Worker is the narrow capability the supervisor refers to all three
// source workers by — community, news, and competitor-engagement
// implement this independently; there is no shared base type beyond
// this interface (spec §9 "strategy dispatch is not inheritance").
//
// cancel carries the job's cooperative cancellation flag into the
// worker's own step loop: a worker polls cancel.IsSet() at its own
// step boundaries (between queries, pipeline stages, fan-out rounds)
// and aborts with workerutil.CancelledResult rather than only being
// gated before it was launched.
type Worker interface {
	Run(ctx context.Context, strategySlice models.Strategy, target int, cancel CancelSignal) (models.WorkerResult, error)
}
