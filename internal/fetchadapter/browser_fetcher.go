package fetchadapter

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"
)

// BrowserFetcher renders a page with a headless Chrome instance before
// extracting its HTML, for competitor engagement pages whose engager
// lists are populated client-side. Grounded on the teacher's use of
// chromedp/cdproto in its UI test harness (test/ui/screenshot_helper.go),
// generalized here from screenshotting to content extraction.
type BrowserFetcher struct {
	logger  arbor.ILogger
	timeout time.Duration
}

// NewBrowserFetcher builds a fetcher that allows up to timeout for a
// single page render.
func NewBrowserFetcher(timeout time.Duration, logger arbor.ILogger) *BrowserFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &BrowserFetcher{logger: logger, timeout: timeout}
}

// FetchRendered navigates to pageURL, waits for the DOM to settle, and
// returns the rendered HTML body.
func (f *BrowserFetcher) FetchRendered(ctx context.Context, pageURL string) (string, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, chromedp.DefaultExecAllocatorOptions[:]...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	timeoutCtx, cancelTimeout := context.WithTimeout(browserCtx, f.timeout)
	defer cancelTimeout()

	var html string
	err := chromedp.Run(timeoutCtx,
		chromedp.Navigate(pageURL),
		chromedp.Sleep(1*time.Second),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("browser fetch: render %s: %w", pageURL, err)
	}
	return html, nil
}
