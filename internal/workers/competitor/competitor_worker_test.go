package competitor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/leadscoutai/leadscout/internal/fetchadapter"
	"github.com/leadscoutai/leadscout/internal/interfaces"
	"github.com/leadscoutai/leadscout/internal/models"
)

type stubCompetitorFetcher struct {
	engagers []fetchadapter.Engager
}

func (s stubCompetitorFetcher) SourceFetch(_ context.Context, kind interfaces.SourceKind, _ []string) (interfaces.RawBatch, error) {
	items := make([]interface{}, len(s.engagers))
	for i, e := range s.engagers {
		items[i] = e
	}
	return interfaces.RawBatch{Kind: kind, Items: items}, nil
}

type stubSearcher struct{}

func (stubSearcher) WebSearch(_ context.Context, _ string) ([]interfaces.SearchResult, error) {
	return nil, nil
}

type failingClassifier struct{}

func (failingClassifier) Classify(_ context.Context, _ string, _ interface{}, _ interface{}) error {
	return assert.AnError
}

func TestRun_DedupesEngagersByProfileURL(t *testing.T) {
	engagers := []fetchadapter.Engager{
		{Name: "Carol", ProfileURL: "https://www.linkedin.com/in/carol", CommentExcerpt: "this tool is slow", CompetitorPage: "https://competitor.example.com"},
		{Name: "Carol Dup", ProfileURL: "https://www.linkedin.com/in/carol", CommentExcerpt: "same person, different scrape pass", CompetitorPage: "https://competitor.example.com"},
	}
	w := New(stubCompetitorFetcher{engagers: engagers}, stubSearcher{}, failingClassifier{}, time.Minute, arbor.NewLogger())

	strategy := models.Strategy{Competitors: []string{"Rival Inc"}}
	result, err := w.Run(context.Background(), strategy, 10, interfaces.NewCancelSignal())

	require.NoError(t, err)
	assert.True(t, result.Success)
	require.Len(t, result.Leads, 1)
	assert.Equal(t, defaultIntentScore, result.Leads[0].IntentScore)
	assert.Equal(t, "competitor", result.Leads[0].SourcePlatform)
}

func TestRun_NoCompetitorsIsSuccessWithNoLeads(t *testing.T) {
	w := New(stubCompetitorFetcher{}, stubSearcher{}, failingClassifier{}, time.Minute, arbor.NewLogger())
	result, err := w.Run(context.Background(), models.Strategy{}, 10, interfaces.NewCancelSignal())

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Empty(t, result.Leads)
}

func TestRun_RespectsTarget(t *testing.T) {
	engagers := []fetchadapter.Engager{
		{Name: "A", ProfileURL: "https://x.com/a", CompetitorPage: "https://c.example.com"},
		{Name: "B", ProfileURL: "https://x.com/b", CompetitorPage: "https://c.example.com"},
		{Name: "C", ProfileURL: "https://x.com/c", CompetitorPage: "https://c.example.com"},
	}
	w := New(stubCompetitorFetcher{engagers: engagers}, stubSearcher{}, failingClassifier{}, time.Minute, arbor.NewLogger())

	strategy := models.Strategy{Competitors: []string{"Rival Inc"}}
	result, err := w.Run(context.Background(), strategy, 2, interfaces.NewCancelSignal())

	require.NoError(t, err)
	assert.Len(t, result.Leads, 2)
}

func TestRun_CancelledBeforeFetchReturnsCancelledResult(t *testing.T) {
	engagers := []fetchadapter.Engager{
		{Name: "A", ProfileURL: "https://x.com/a", CompetitorPage: "https://c.example.com"},
	}
	w := New(stubCompetitorFetcher{engagers: engagers}, stubSearcher{}, failingClassifier{}, time.Minute, arbor.NewLogger())

	cancel := interfaces.NewCancelSignal()
	cancel.Cancel()
	strategy := models.Strategy{Competitors: []string{"Rival Inc"}}
	result, err := w.Run(context.Background(), strategy, 10, cancel)

	require.NoError(t, err)
	assert.True(t, result.Success, "a cancelled worker reports its partial progress as a success, not a failure")
	assert.Empty(t, result.Leads)
}
