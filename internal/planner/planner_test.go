package planner

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/leadscoutai/leadscout/internal/interfaces"
)

// stubClassifier unmarshals a fixed JSON response into out on every
// call, or returns err if set.
type stubClassifier struct {
	response string
	err      error
}

func (c stubClassifier) Classify(_ context.Context, _ string, _ interface{}, out interface{}) error {
	if c.err != nil {
		return c.err
	}
	return json.Unmarshal([]byte(c.response), out)
}

func TestInitialStrategy_ParsesClassifierResponse(t *testing.T) {
	classifier := stubClassifier{response: `{
		"product_category": "CRM",
		"target_titles": ["VP Sales"],
		"community_queries": ["best CRM for startups"],
		"news_focus": "CRM",
		"competitors": ["Salesforce"]
	}`}
	p := New(classifier, arbor.NewLogger())

	strategy, err := p.InitialStrategy(context.Background(), "a CRM tool", 20, nil)

	require.NoError(t, err)
	assert.Equal(t, "CRM", strategy.ProductCategory)
	assert.Equal(t, []string{"VP Sales"}, strategy.TargetTitles)
	assert.Equal(t, []string{"Salesforce"}, strategy.Competitors)
}

func TestInitialStrategy_PropagatesClassifierError(t *testing.T) {
	p := New(stubClassifier{err: assert.AnError}, arbor.NewLogger())

	_, err := p.InitialStrategy(context.Background(), "a CRM tool", 20, nil)

	assert.Error(t, err, "planner must surface classifier failure, not silently substitute a fallback")
}

func TestChooseCompensation_OrdersTagsByPriority(t *testing.T) {
	classifier := stubClassifier{response: `{"tags": ["community", "news", "competitor"], "stop": false}`}
	p := New(classifier, arbor.NewLogger())

	tags, err := p.ChooseCompensation(context.Background(), 5, 20, interfaces.ContextSummary{}, nil)

	require.NoError(t, err)
	assert.Equal(t, []string{"news", "competitor", "community"}, tags)
}

func TestChooseCompensation_StopReturnsEmpty(t *testing.T) {
	classifier := stubClassifier{response: `{"tags": ["news"], "stop": true}`}
	p := New(classifier, arbor.NewLogger())

	tags, err := p.ChooseCompensation(context.Background(), 20, 20, interfaces.ContextSummary{}, nil)

	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestMoreCompetitors_ReturnsItems(t *testing.T) {
	classifier := stubClassifier{response: `{"items": ["Rival One", "Rival Two"]}`}
	p := New(classifier, arbor.NewLogger())

	items, err := p.MoreCompetitors(context.Background(), "a CRM tool", []string{"Salesforce"})

	require.NoError(t, err)
	assert.Equal(t, []string{"Rival One", "Rival Two"}, items)
}

func TestMoreCommunityQueries_PropagatesError(t *testing.T) {
	p := New(stubClassifier{err: assert.AnError}, arbor.NewLogger())

	_, err := p.MoreCommunityQueries(context.Background(), "a CRM tool", nil)

	assert.Error(t, err)
}
