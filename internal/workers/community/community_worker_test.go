package community

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/leadscoutai/leadscout/internal/fetchadapter"
	"github.com/leadscoutai/leadscout/internal/interfaces"
	"github.com/leadscoutai/leadscout/internal/models"
)

type stubFetcher struct {
	posts []fetchadapter.DiscussionPost
	err   error
}

func (s stubFetcher) SourceFetch(_ context.Context, kind interfaces.SourceKind, _ []string) (interfaces.RawBatch, error) {
	if s.err != nil {
		return interfaces.RawBatch{}, s.err
	}
	items := make([]interface{}, len(s.posts))
	for i, p := range s.posts {
		items[i] = p
	}
	return interfaces.RawBatch{Kind: kind, Items: items}, nil
}

// cancellingFetcher returns stubFetcher's posts and raises cancel once
// the fetch is done, so the worker sees the signal at the boundary
// before its next query.
type cancellingFetcher struct {
	stubFetcher
	cancel *interfaces.AtomicCancelSignal
}

func (f cancellingFetcher) SourceFetch(ctx context.Context, kind interfaces.SourceKind, q []string) (interfaces.RawBatch, error) {
	batch, err := f.stubFetcher.SourceFetch(ctx, kind, q)
	f.cancel.Cancel()
	return batch, err
}

// failingClassifier always errors, exercising the fail-open path.
type failingClassifier struct{}

func (failingClassifier) Classify(_ context.Context, _ string, _ interface{}, _ interface{}) error {
	return fmt.Errorf("classifier unavailable")
}

func TestRun_ExtractsHighIntentPosts(t *testing.T) {
	posts := []fetchadapter.DiscussionPost{
		{Author: "alice", Title: "Looking for a tool to track leads", Body: "any recommendations?", URL: "https://example.com/1"},
		{Author: "[deleted]", Title: "Looking for alternative to X", Body: "need a tool now", URL: "https://example.com/2"},
		{Author: "bob", Title: "Just curious about pricing", Body: "fyi no rush", URL: "https://example.com/3"},
	}
	w := New(stubFetcher{posts: posts}, failingClassifier{}, time.Minute, arbor.NewLogger())

	strategy := models.Strategy{CommunityQueries: []string{"lead tracking tool alternative"}}
	result, err := w.Run(context.Background(), strategy, 10, interfaces.NewCancelSignal())

	require.NoError(t, err)
	assert.True(t, result.Success)
	require.Len(t, result.Leads, 1, "only alice's high-intent post should survive: bob scores too low, [deleted] is excluded")
	assert.Equal(t, "alice", result.Leads[0].Name)
	assert.Equal(t, "community", result.Leads[0].SourcePlatform)
}

func TestRun_StopsEarlyOnceTargetReached(t *testing.T) {
	posts := []fetchadapter.DiscussionPost{
		{Author: "alice", Title: "Looking for a tool", Body: "recommend something", URL: "https://example.com/1"},
	}
	w := New(stubFetcher{posts: posts}, failingClassifier{}, time.Minute, arbor.NewLogger())

	strategy := models.Strategy{CommunityQueries: []string{"q1", "q2", "q3"}}
	result, err := w.Run(context.Background(), strategy, 1, interfaces.NewCancelSignal())

	require.NoError(t, err)
	assert.Len(t, result.Leads, 1)
}

func TestRun_FetchFailureReturnsUnsuccessfulResult(t *testing.T) {
	w := New(stubFetcher{err: fmt.Errorf("network down")}, failingClassifier{}, time.Minute, arbor.NewLogger())

	strategy := models.Strategy{CommunityQueries: []string{"q1"}}
	result, err := w.Run(context.Background(), strategy, 5, interfaces.NewCancelSignal())

	require.NoError(t, err, "worker errors surface via WorkerResult, not a returned error")
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Err)
}

func TestRun_CancelledBeforeSecondQueryStopsWithLeadsSoFar(t *testing.T) {
	posts := []fetchadapter.DiscussionPost{
		{Author: "alice", Title: "Looking for a tool", Body: "recommend something", URL: "https://example.com/1"},
	}
	cancel := interfaces.NewCancelSignal()
	w := New(cancellingFetcher{stubFetcher: stubFetcher{posts: posts}, cancel: cancel}, failingClassifier{}, time.Minute, arbor.NewLogger())
	strategy := models.Strategy{CommunityQueries: []string{"q1", "q2"}}

	// target is set higher than what q1 alone can satisfy, so the loop
	// would normally continue into q2 — but the fetch for q1 raises
	// cancel, so the worker stops before q2 with q1's lead.
	result, err := w.Run(context.Background(), strategy, 100, cancel)

	require.NoError(t, err)
	assert.True(t, result.Success, "a cancelled worker reports its partial progress as a success, not a failure")
	assert.Len(t, result.Leads, 1)
}
