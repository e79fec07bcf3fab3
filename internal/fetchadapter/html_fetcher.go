package fetchadapter

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"
)

// Page is a fetched HTML document reduced to the fields the source
// workers need: the page's markdown body (for LLM extraction prompts)
// and the raw links discovered on it.
type Page struct {
	URL      string
	Title    string
	Markdown string
	Links    []string
}

// HTMLFetcher retrieves a page over HTTP and reduces it with goquery +
// html-to-markdown, grounded on
// ternarybob-quaero/internal/services/crawler/content_processor.go
// and link_extractor.go (goquery selection walking) composed with the
// html-to-markdown converter used for Jira/Confluence transform.
type HTMLFetcher struct {
	client    *http.Client
	throttle  *Throttler
	userAgent string
	logger    arbor.ILogger
}

// NewHTMLFetcher builds a fetcher throttled at ratePerSecond requests/s.
func NewHTMLFetcher(ratePerSecond float64, logger arbor.ILogger) *HTMLFetcher {
	return &HTMLFetcher{
		client:    &http.Client{Timeout: 30 * time.Second},
		throttle:  NewThrottler(ratePerSecond),
		userAgent: "leadscout/1.0 (+https://leadscout.ai/bot)",
		logger:    logger,
	}
}

// Fetch retrieves pageURL, waiting on the throttle first.
func (f *HTMLFetcher) Fetch(ctx context.Context, pageURL string) (Page, error) {
	if err := f.throttle.Wait(ctx); err != nil {
		return Page{}, fmt.Errorf("html fetch: rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return Page{}, fmt.Errorf("html fetch: build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("html fetch: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return Page{}, fmt.Errorf("html fetch: %s returned status %d", pageURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return Page{}, fmt.Errorf("html fetch: parse HTML: %w", err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())

	html, err := doc.Find("body").Html()
	if err != nil {
		return Page{}, fmt.Errorf("html fetch: extract body: %w", err)
	}

	converter := md.NewConverter("", true, nil)
	markdown, err := converter.ConvertString(html)
	if err != nil {
		f.logger.Warn().Err(err).Str("url", pageURL).Msg("html fetch: markdown conversion failed, falling back to stripped text")
		markdown = doc.Find("body").Text()
	}

	var links []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok && strings.HasPrefix(href, "http") {
			links = append(links, href)
		}
	})

	return Page{URL: pageURL, Title: title, Markdown: markdown, Links: links}, nil
}
