package news

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

type stubNewsFetcher struct {
	articles []fetchadapter.NewsArticle
}

func (s stubNewsFetcher) SourceFetch(_ context.Context, kind interfaces.SourceKind, _ []string) (interfaces.RawBatch, error) {
	items := make([]interface{}, len(s.articles))
	for i, a := range s.articles {
		items[i] = a
	}
	return interfaces.RawBatch{Kind: kind, Items: items}, nil
}

type stubSearcher struct{}

func (stubSearcher) WebSearch(_ context.Context, _ string) ([]interfaces.SearchResult, error) {
	return nil, nil // forces the deterministic slug fallback
}

type failingNewsClassifier struct{}

func (failingNewsClassifier) Classify(_ context.Context, _ string, _ interface{}, _ interface{}) error {
	return assert.AnError
}

func TestRunWithPages_ProducesOneLeadPerDecisionMaker(t *testing.T) {
	articles := []fetchadapter.NewsArticle{
		{Headline: "Acme Corp raises $10M Series A for CRM tooling", Company: "Acme Corp", Excerpt: "$10M Series A", URL: "https://news.example.com/1"},
	}
	w := New(stubNewsFetcher{articles: articles}, stubSearcher{}, failingNewsClassifier{}, time.Minute, arbor.NewLogger())

	strategy := models.Strategy{ProductCategory: "crm", TargetTitles: []string{"VP Sales"}}
	result, err := w.RunWithPages(context.Background(), strategy, 5, []int{1, 2}, interfaces.NewCancelSignal())

	require.NoError(t, err)
	assert.True(t, result.Success)
	require.Len(t, result.Leads, 1, "classifier failure falls back to one decision maker per company")
	assert.Equal(t, 75, result.Leads[0].IntentScore)
	assert.Equal(t, "news", result.Leads[0].SourcePlatform)
	assert.Equal(t, "Acme Corp", result.Leads[0].Company)
}

func TestRunWithPages_FetchFailureIsNonFatal(t *testing.T) {
	w := New(failingFetcher{}, stubSearcher{}, failingNewsClassifier{}, time.Minute, arbor.NewLogger())
	strategy := models.Strategy{ProductCategory: "crm"}
	result, err := w.RunWithPages(context.Background(), strategy, 5, []int{3, 4}, interfaces.NewCancelSignal())

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Err)
}

func TestRunWithPages_CancelledAfterFetchReturnsCancelledResult(t *testing.T) {
	articles := []fetchadapter.NewsArticle{
		{Headline: "Acme Corp raises $10M Series A for CRM tooling", Company: "Acme Corp", Excerpt: "$10M Series A", URL: "https://news.example.com/1"},
	}
	w := New(stubNewsFetcher{articles: articles}, stubSearcher{}, failingNewsClassifier{}, time.Minute, arbor.NewLogger())

	cancel := interfaces.NewCancelSignal()
	cancel.Cancel()
	strategy := models.Strategy{ProductCategory: "crm"}
	result, err := w.RunWithPages(context.Background(), strategy, 5, []int{1, 2}, cancel)

	require.NoError(t, err)
	assert.True(t, result.Success, "a cancelled worker reports its partial progress as a success, not a failure")
	assert.Empty(t, result.Leads)
}

type failingFetcher struct{}

func (failingFetcher) SourceFetch(_ context.Context, _ interfaces.SourceKind, _ []string) (interfaces.RawBatch, error) {
	return interfaces.RawBatch{}, assert.AnError
}
