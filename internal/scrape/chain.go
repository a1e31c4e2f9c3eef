package scrape

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Chain tries fetchers in priority order, returning the first success.
type Chain struct {
	fetchers []Fetcher
}

// NewChain creates a Chain. Fetchers are tried in the given order.
func NewChain(fetchers ...Fetcher) *Chain {
	return &Chain{fetchers: fetchers}
}

func (c *Chain) Name() string { return "chain" }

// Fetch tries each fetcher in order for a single URL.
func (c *Chain) Fetch(ctx context.Context, targetURL string) (*Page, error) {
	var lastErr error
	for _, f := range c.fetchers {
		page, err := f.Fetch(ctx, targetURL)
		if err == nil && page != nil {
			return page, nil
		}
		if err != nil {
			zap.L().Debug("scrape: fetcher failed, trying next",
				zap.String("fetcher", f.Name()),
				zap.String("url", targetURL),
				zap.Error(err),
			)
			lastErr = err
		}
	}
	if lastErr != nil {
		return nil, eris.Wrap(lastErr, "scrape: all fetchers failed")
	}
	return nil, eris.Errorf("scrape: no fetcher configured for %s", targetURL)
}

// FetchDowngrade fetches targetURL and, when an https fetch fails, retries
// once over plain http. It returns the page and the URL that was served.
func FetchDowngrade(ctx context.Context, f Fetcher, targetURL string) (*Page, string, error) {
	page, err := f.Fetch(ctx, targetURL)
	if err == nil {
		return page, targetURL, nil
	}
	if rest, ok := strings.CutPrefix(targetURL, "https://"); ok {
		httpURL := "http://" + rest
		page, httpErr := f.Fetch(ctx, httpURL)
		if httpErr == nil {
			return page, httpURL, nil
		}
		err = httpErr
	}
	return nil, targetURL, err
}

// FetchHTML is FetchDowngrade returning only the HTML, or "" when both
// attempts fail.
func FetchHTML(ctx context.Context, f Fetcher, targetURL string) string {
	page, _, err := FetchDowngrade(ctx, f, targetURL)
	if err != nil {
		zap.L().Debug("scrape: page unavailable", zap.String("url", targetURL), zap.Error(err))
		return ""
	}
	return page.HTML
}

// FetchAll fetches urls concurrently. The result is index-aligned with urls;
// failed fetches leave a nil entry.
func FetchAll(ctx context.Context, f Fetcher, urls []string, maxConcurrent int) []*Page {
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}
	pages := make([]*Page, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)
	for i, u := range urls {
		g.Go(func() error {
			page, err := f.Fetch(gctx, u)
			if err != nil {
				zap.L().Debug("scrape: fetch failed", zap.String("url", u), zap.Error(err))
				return nil
			}
			pages[i] = page
			return nil
		})
	}
	_ = g.Wait()
	return pages
}
