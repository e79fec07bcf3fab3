package models

// Strategy is the planner's output after analyzing a product description.
// Any field may be empty; the supervisor tolerates partial strategies by
// skipping the affected worker or requesting a fallback from the planner.
type Strategy struct {
	ProductCategory  string   `json:"product_category"`
	TargetTitles     []string `json:"target_titles" validate:"omitempty,dive,required"`
	CommunityQueries []string `json:"community_queries" validate:"omitempty,dive,required"`
	NewsFocus        string   `json:"news_focus"`
	Competitors      []string `json:"competitors" validate:"omitempty,dive,required"`
}

// IsEmpty reports whether the strategy carries no actionable slice for
// any worker at all — used by the supervisor to decide whether a planner
// response counts as "nothing usable".
func (s Strategy) IsEmpty() bool {
	return s.ProductCategory == "" &&
		len(s.TargetTitles) == 0 &&
		len(s.CommunityQueries) == 0 &&
		s.NewsFocus == "" &&
		len(s.Competitors) == 0
}

// FallbackStrategy builds a deterministic template Strategy from the
// product description alone, used when the planner fails or returns
// nothing usable for the initial plan (spec §7 planner-failure policy).
func FallbackStrategy(product string) Strategy {
	return Strategy{
		ProductCategory: product,
		TargetTitles:    []string{"Head of Sales", "VP Engineering", "Founder", "Product Manager"},
		CommunityQueries: []string{
			product + " recommendation",
			product + " alternative",
			"looking for " + product,
		},
		NewsFocus:   product,
		Competitors: nil,
	}
}
