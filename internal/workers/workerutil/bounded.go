// Package workerutil holds the plumbing shared by all three source
// workers: bounded-concurrency fan-out for internal parallelism within
// a step, and a step-runner that enforces per-step timeouts and makes
// each step independently retriable, per the Worker Pipeline Contract
// (spec §4.2, §5). Grounded on the semaphore-via-buffered-channel
// pattern the teacher uses around internal/worker.WorkerPool, adapted
// from a queue-driven pool to a fixed-size task-slice fan-out since a
// worker's internal parallelism (score batches, page fetches) is
// always a known, bounded slice rather than an open queue.
package workerutil

import (
	"sync"

	"github.com/ternarybob/arbor"

	"github.com/leadscoutai/leadscout/internal/common"
)

// BoundedFanOut runs fn(i) for i in [0, n) with at most maxConcurrency
// in flight at once, per spec §5's "bounded concurrency of 5 tasks per
// worker" for internal parallelism. Each invocation is panic-protected
// via common.SafeGo so one bad item cannot take down the whole batch.
func BoundedFanOut(logger arbor.ILogger, name string, n, maxConcurrency int, fn func(i int)) {
	if maxConcurrency <= 0 {
		maxConcurrency = 5
	}
	sem := make(chan struct{}, maxConcurrency)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		sem <- struct{}{}
		common.SafeGo(logger, name, func() {
			defer wg.Done()
			defer func() { <-sem }()
			fn(i)
		})
	}
	wg.Wait()
}
