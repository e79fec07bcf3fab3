package llmadapter

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/leadscoutai/leadscout/internal/interfaces"
)

// FilterSellers runs the shared seller/promoter classifier over a batch
// of candidate excerpts and returns the indices that should survive.
// Per spec §4.2 and §9, a classifier failure must fail-open: on any
// error, every candidate index is returned unfiltered rather than
// dropping the batch.
func FilterSellers(ctx context.Context, classifier interfaces.Classifier, logger arbor.ILogger, excerpts []string) []int {
	allIndices := make([]int, len(excerpts))
	for i := range excerpts {
		allIndices[i] = i
	}
	if len(excerpts) == 0 {
		return allIndices
	}

	prompt := buildSellerFilterPrompt(excerpts)

	var result SellerFilterResult
	if err := classifier.Classify(ctx, prompt, SellerFilterSchema(), &result); err != nil {
		logger.Warn().Err(err).Int("candidates", len(excerpts)).Msg("seller filter classifier failed, failing open")
		return allIndices
	}

	buyers := make([]int, 0, len(excerpts))
	seen := make(map[int]bool, len(result.Items))
	for _, item := range result.Items {
		if item.Index < 0 || item.Index >= len(excerpts) {
			continue
		}
		seen[item.Index] = true
		if !item.IsSeller {
			buyers = append(buyers, item.Index)
		}
	}
	// Any index the classifier omitted is treated as "not classified" and
	// kept, consistent with fail-open: we never drop a candidate the
	// classifier didn't explicitly flag as a seller.
	for i := range excerpts {
		if !seen[i] {
			buyers = append(buyers, i)
		}
	}
	return buyers
}

func buildSellerFilterPrompt(excerpts []string) string {
	prompt := "For each numbered item below, decide whether the author is OFFERING a product/service (a seller or promoter) " +
		"rather than SEEKING one (a prospective buyer). Respond using the provided JSON schema, one entry per item, " +
		"using the item's zero-based index.\n\n"
	for i, e := range excerpts {
		prompt += fmt.Sprintf("%d: %s\n", i, e)
	}
	return prompt
}
