package leadctx

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadscoutai/leadscout/internal/models"
)

func TestNextNewsPages_StartsAtOneThenContinues(t *testing.T) {
	c := New()

	first := c.NextNewsPages(2)
	assert.Equal(t, []int{1, 2}, first)

	second := c.NextNewsPages(2)
	assert.Equal(t, []int{3, 4}, second)

	assert.Equal(t, []int{1, 2, 3, 4}, c.NewsPagesFetched())
}

func TestAddLeads_DedupesByPriorityChain(t *testing.T) {
	c := New()

	first := []models.Lead{
		{Name: "Ada Lovelace", Company: "Analytical Engines", IntentScore: 80, IntentSignal: "x", SourcePlatform: "community"},
	}
	admitted := c.AddLeads(first)
	require.Len(t, admitted, 1)

	// Same (name, company) pair, different score/platform — must not re-admit.
	dup := []models.Lead{
		{Name: "ada lovelace", Company: "Analytical Engines", IntentScore: 65, IntentSignal: "y", SourcePlatform: "competitor"},
	}
	admitted = c.AddLeads(dup)
	assert.Empty(t, admitted)
	assert.Equal(t, 1, c.EmittedCount())
}

func TestAddLeads_ConcurrentCallersNeverDoubleAdmit(t *testing.T) {
	c := New()

	const n = 50
	var wg sync.WaitGroup
	results := make(chan []models.Lead, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lead := models.Lead{Name: "Same Person", Company: "Same Co", IntentScore: 70, IntentSignal: "s", SourcePlatform: "community"}
			results <- c.AddLeads([]models.Lead{lead})
		}()
	}
	wg.Wait()
	close(results)

	total := 0
	for r := range results {
		total += len(r)
	}
	assert.Equal(t, 1, total, "exactly one goroutine should have admitted the duplicate lead")
}

func TestMarkCompetitorsScraped_Idempotent(t *testing.T) {
	c := New()
	c.MarkCompetitorsScraped([]string{"Acme", "Globex"})
	c.MarkCompetitorsScraped([]string{"Acme", "Initech"})

	assert.Equal(t, []string{"Acme", "Globex", "Initech"}, c.CompetitorsScraped())
}

func TestUnusedOf_FiltersCaseInsensitively(t *testing.T) {
	candidates := []string{"Acme", "Globex", "Initech"}
	used := []string{"acme"}

	assert.Equal(t, []string{"Globex", "Initech"}, UnusedOf(candidates, used))
}

func TestDedupeKey_PriorityOrder(t *testing.T) {
	withURL := models.Lead{ProfileURL: "https://www.linkedin.com/in/jdoe/", Name: "J Doe"}
	assert.Equal(t, "url:linkedin.com/in/jdoe", DedupeKey(withURL))

	withNameCompany := models.Lead{Name: "Jane Doe", Company: "Acme Inc"}
	assert.Equal(t, "namecompany:jane doe|acme inc", DedupeKey(withNameCompany))

	withEmail := models.Lead{Email: "Jane@Example.com"}
	assert.Equal(t, "email:jane@example.com", DedupeKey(withEmail))

	nameOnly := models.Lead{Name: "Jane Doe"}
	assert.Equal(t, "name:jane doe", DedupeKey(nameOnly))

	assert.Equal(t, "", DedupeKey(models.Lead{}))
}
