// Package leadctx implements the per-job Context arena: the only
// mutable structure shared across the supervisor and its workers. Every
// mutation is an explicit method so it can be centralized and locked as
// one unit (spec §9 "Context as an arena") — callers never reach into
// fields directly.
package leadctx

import (
	"sort"
	"strings"
	"sync"

	"github.com/leadscoutai/leadscout/internal/models"
)

// Context is the per-job shared record of work already performed and
// identities already emitted. Safe for concurrent use by the supervisor
// and all workers it launches; every exported method acquires the same
// mutex, so each method is atomic on its own. No method combines a read
// of a used set with a write to it: the supervisor's compensation loop
// reads a used set, filters with UnusedOf, and marks the result in
// separate calls, one tag at a time.
type Context struct {
	mu sync.Mutex

	newsPagesFetched    map[int]struct{}
	communityQueriesUsed []string
	communityQueriesSet map[string]struct{}
	competitorsScraped  []string
	competitorsSet      map[string]struct{}
	emittedKeys         map[string]struct{}
}

// New returns an empty Context for one job. Created at job start,
// discarded at job end — no cross-job state is ever shared.
func New() *Context {
	return &Context{
		newsPagesFetched:    make(map[int]struct{}),
		communityQueriesSet: make(map[string]struct{}),
		competitorsSet:      make(map[string]struct{}),
		emittedKeys:         make(map[string]struct{}),
	}
}

// NextNewsPages returns the n integers immediately after the current
// maximum of news_pages_fetched (or starting at 1 if empty), and
// atomically records them as fetched.
func (c *Context) NextNewsPages(n int) []int {
	c.mu.Lock()
	defer c.mu.Unlock()

	start := 1
	for p := range c.newsPagesFetched {
		if p+1 > start {
			start = p + 1
		}
	}
	pages := make([]int, 0, n)
	for i := 0; i < n; i++ {
		p := start + i
		pages = append(pages, p)
		c.newsPagesFetched[p] = struct{}{}
	}
	return pages
}

// NewsPagesFetched returns a sorted snapshot of all pages fetched so far.
func (c *Context) NewsPagesFetched() []int {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]int, 0, len(c.newsPagesFetched))
	for p := range c.newsPagesFetched {
		out = append(out, p)
	}
	sort.Ints(out)
	return out
}

// MarkCommunityQueriesUsed appends queries to community_queries_used,
// skipping ones already recorded.
func (c *Context) MarkCommunityQueriesUsed(queries []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, q := range queries {
		if _, ok := c.communityQueriesSet[q]; ok {
			continue
		}
		c.communityQueriesSet[q] = struct{}{}
		c.communityQueriesUsed = append(c.communityQueriesUsed, q)
	}
}

// CommunityQueriesUsed returns a copy of the ordered set of queries
// already dispatched.
func (c *Context) CommunityQueriesUsed() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.communityQueriesUsed))
	copy(out, c.communityQueriesUsed)
	return out
}

// MarkCompetitorsScraped appends names to competitors_scraped, skipping
// ones already recorded. Called regardless of whether the competitor
// worker's run produced any leads (spec §4.1 Phase III.3.b).
func (c *Context) MarkCompetitorsScraped(names []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, n := range names {
		if _, ok := c.competitorsSet[n]; ok {
			continue
		}
		c.competitorsSet[n] = struct{}{}
		c.competitorsScraped = append(c.competitorsScraped, n)
	}
}

// CompetitorsScraped returns a copy of the ordered set of competitor
// names already scraped.
func (c *Context) CompetitorsScraped() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.competitorsScraped))
	copy(out, c.competitorsScraped)
	return out
}

// AddLeads filters candidates down to the ones whose dedupe key is not
// already in emitted_keys, inserts the admitted keys, and returns only
// the newly admitted leads. This is the sole source of per-job
// deduplication across worker invocations and compensation rounds.
func (c *Context) AddLeads(candidates []models.Lead) []models.Lead {
	c.mu.Lock()
	defer c.mu.Unlock()

	admitted := make([]models.Lead, 0, len(candidates))
	for _, lead := range candidates {
		key := DedupeKey(lead)
		if key == "" {
			continue
		}
		if _, seen := c.emittedKeys[key]; seen {
			continue
		}
		c.emittedKeys[key] = struct{}{}
		admitted = append(admitted, lead)
	}
	return admitted
}

// EmittedCount returns the number of dedupe keys admitted so far.
func (c *Context) EmittedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.emittedKeys)
}

// UnusedOf returns the candidates not present in used, preserving order.
// Used by the supervisor/planner before re-invoking a worker with a
// disjoint slice of work.
func UnusedOf(candidates []string, used []string) []string {
	usedSet := make(map[string]struct{}, len(used))
	for _, u := range used {
		usedSet[normalize(u)] = struct{}{}
	}
	out := make([]string, 0, len(candidates))
	for _, cand := range candidates {
		if _, ok := usedSet[normalize(cand)]; !ok {
			out = append(out, cand)
		}
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
