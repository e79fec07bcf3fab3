package fetchadapter

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"

	"github.com/leadscoutai/leadscout/internal/interfaces"
)

// NewsArticle is one funding-news item reduced to the fields the news
// worker's Extract step needs.
type NewsArticle struct {
	Headline string
	Company  string
	Excerpt  string
	URL      string
}

// NewsListFetcher implements the news slice of interfaces.SourceFetcher
// over a funding-news listing site, reusing HTMLFetcher's HTTP+goquery
// plumbing and interpreting querySlice as page numbers (as strings).
type NewsListFetcher struct {
	html    *HTMLFetcher
	baseURL string
	logger  arbor.ILogger
}

// NewNewsListFetcher builds a fetcher against a listing site whose pages
// are reachable at baseURL+"?page=N".
func NewNewsListFetcher(baseURL string, ratePerSecond float64, logger arbor.ILogger) *NewsListFetcher {
	return &NewsListFetcher{
		html:    NewHTMLFetcher(ratePerSecond, logger),
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger,
	}
}

// SourceFetch implements interfaces.SourceFetcher for kind == news.
// querySlice holds page numbers as decimal strings; pages are fetched
// independently (callers may parallelize across them) and article
// summaries from every page are flattened into one RawBatch, order
// preserved per spec §4.4 step 1.
func (f *NewsListFetcher) SourceFetch(ctx context.Context, kind interfaces.SourceKind, querySlice []string) (interfaces.RawBatch, error) {
	if kind != interfaces.SourceNews {
		return interfaces.RawBatch{}, fmt.Errorf("news list fetcher: unsupported kind %q", kind)
	}

	var items []interface{}
	for _, pageStr := range querySlice {
		page, err := strconv.Atoi(pageStr)
		if err != nil {
			return interfaces.RawBatch{}, fmt.Errorf("news list fetcher: invalid page %q: %w", pageStr, err)
		}

		pageURL := fmt.Sprintf("%s?page=%d", f.baseURL, page)
		fetched, err := f.html.Fetch(ctx, pageURL)
		if err != nil {
			return interfaces.RawBatch{}, fmt.Errorf("news list fetcher: page %d: %w", page, err)
		}

		articles := extractArticles(fetched)
		for _, a := range articles {
			items = append(items, a)
		}
	}

	return interfaces.RawBatch{Kind: interfaces.SourceNews, Items: items}, nil
}

// extractArticles re-parses the fetched page's markdown into article
// candidates, one per paragraph-like markdown block. Each candidate
// carries the block text as its Headline and the page URL; Company and
// Excerpt are left empty.
func extractArticles(page Page) []NewsArticle {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.Markdown))
	var blocks []string
	if err == nil {
		doc.Find("p").Each(func(_ int, s *goquery.Selection) {
			text := strings.TrimSpace(s.Text())
			if text != "" {
				blocks = append(blocks, text)
			}
		})
	}
	if len(blocks) == 0 {
		for _, line := range strings.Split(page.Markdown, "\n\n") {
			line = strings.TrimSpace(line)
			if line != "" {
				blocks = append(blocks, line)
			}
		}
	}

	articles := make([]NewsArticle, 0, len(blocks))
	for _, b := range blocks {
		articles = append(articles, NewsArticle{Headline: b, URL: page.URL})
	}
	return articles
}
