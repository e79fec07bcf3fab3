package fetchadapter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"

	"github.com/leadscoutai/leadscout/internal/interfaces"
)

// Engager is one user who reacted to or commented on a competitor's
// post, reduced to the fields the competitor worker's Extract step
// needs.
type Engager struct {
	ProfileURL    string
	Name          string
	CommentExcerpt string
	CompetitorPage string
}

// CompetitorEngagementFetcher implements the competitor-engagement
// slice of interfaces.SourceFetcher. querySlice holds competitor page
// URLs (already resolved by the caller via ResolveOrganizationURL);
// each page is rendered with chromedp since engagement lists are
// typically populated client-side, then reduced with goquery.
type CompetitorEngagementFetcher struct {
	browser        *BrowserFetcher
	maxPostsPerOrg int
	logger         arbor.ILogger
}

// NewCompetitorEngagementFetcher builds a fetcher capped at
// maxPostsPerOrg posts inspected per competitor page.
func NewCompetitorEngagementFetcher(maxPostsPerOrg int, pageTimeout time.Duration, logger arbor.ILogger) *CompetitorEngagementFetcher {
	if maxPostsPerOrg <= 0 {
		maxPostsPerOrg = 5
	}
	return &CompetitorEngagementFetcher{
		browser:        NewBrowserFetcher(pageTimeout, logger),
		maxPostsPerOrg: maxPostsPerOrg,
		logger:         logger,
	}
}

// SourceFetch implements interfaces.SourceFetcher for kind ==
// competitor-engagement.
func (f *CompetitorEngagementFetcher) SourceFetch(ctx context.Context, kind interfaces.SourceKind, querySlice []string) (interfaces.RawBatch, error) {
	if kind != interfaces.SourceCompetitorEngagement {
		return interfaces.RawBatch{}, fmt.Errorf("competitor engagement fetcher: unsupported kind %q", kind)
	}

	var items []interface{}
	for _, pageURL := range querySlice {
		html, err := f.browser.FetchRendered(ctx, pageURL)
		if err != nil {
			return interfaces.RawBatch{}, fmt.Errorf("competitor engagement fetcher: %s: %w", pageURL, err)
		}

		engagers, err := extractEngagers(html, pageURL, f.maxPostsPerOrg)
		if err != nil {
			return interfaces.RawBatch{}, fmt.Errorf("competitor engagement fetcher: parse %s: %w", pageURL, err)
		}

		seen := make(map[string]bool, len(engagers))
		for _, e := range engagers {
			key := e.ProfileURL
			if key == "" {
				key = e.Name
			}
			if seen[key] {
				continue
			}
			seen[key] = true
			items = append(items, e)
		}
	}

	return interfaces.RawBatch{Kind: interfaces.SourceCompetitorEngagement, Items: items}, nil
}

// extractEngagers reads up to maxPosts*10 comment/reaction blocks from a
// rendered competitor page. The selector set is intentionally generic
// (".comment", ".reaction", "[data-engager]") since the concrete
// platform behind a competitor page varies; a production deployment
// would specialize per platform.
func extractEngagers(html, pageURL string, maxPosts int) ([]Engager, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	var engagers []Engager
	doc.Find(".comment, .reaction, [data-engager]").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if i >= maxPosts*10 {
			return false
		}
		name := strings.TrimSpace(s.Find(".author, .name").First().Text())
		if name == "" {
			name = strings.TrimSpace(s.AttrOr("data-name", ""))
		}
		if name == "" {
			return true
		}
		profileURL, _ := s.Find("a[href]").First().Attr("href")
		engagers = append(engagers, Engager{
			Name:           name,
			ProfileURL:     profileURL,
			CommentExcerpt: strings.TrimSpace(s.Text()),
			CompetitorPage: pageURL,
		})
		return true
	})

	return engagers, nil
}
