// Package fetchadapter implements the interfaces.SourceFetcher and
// interfaces.WebSearcher capabilities over concrete external sources:
// HTML pages (goquery/html-to-markdown), JS-rendered pages (chromedp),
// GitHub issue search (go-github) as the community source, and a search
// adapter. Each adapter owns its own throttling per spec §5 ("it does
// not enforce cross-job global rate limits; each worker owns its own
// adapter").
package fetchadapter

import (
	"context"

	"golang.org/x/time/rate"
)

// Throttler wraps golang.org/x/time/rate.Limiter with a context-aware
// Wait, grounded on the teacher's per-connection throttler map in
// websocket_events.go generalized to per-adapter use here.
type Throttler struct {
	limiter *rate.Limiter
}

// NewThrottler builds a throttler allowing ratePerSecond sustained
// requests with a burst of 1.
func NewThrottler(ratePerSecond float64) *Throttler {
	if ratePerSecond <= 0 {
		ratePerSecond = 1
	}
	return &Throttler{limiter: rate.NewLimiter(rate.Limit(ratePerSecond), 1)}
}

// Wait blocks until a token is available or ctx is cancelled.
func (t *Throttler) Wait(ctx context.Context) error {
	return t.limiter.Wait(ctx)
}
