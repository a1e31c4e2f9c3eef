package scrape

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-scout/internal/resilience"
	"github.com/sells-group/lead-scout/pkg/jina"
)

// JinaFetcher fetches pages through the Jina Reader, which renders
// JavaScript-heavy sites that the plain HTTP fetcher cannot read. Three
// consecutive failures open its breaker for a minute.
type JinaFetcher struct {
	client  jina.Client
	breaker *resilience.CircuitBreaker
}

// NewJinaFetcher wraps a Jina client configured to return HTML.
func NewJinaFetcher(client jina.Client) *JinaFetcher {
	return &JinaFetcher{
		client:  client,
		breaker: resilience.NewCircuitBreaker("jina_reader", 3, time.Minute),
	}
}

func (j *JinaFetcher) Name() string { return "jina" }

// Fetch reads targetURL via Jina Reader.
func (j *JinaFetcher) Fetch(ctx context.Context, targetURL string) (*Page, error) {
	return resilience.ExecuteVal(ctx, j.breaker, func(ctx context.Context) (*Page, error) {
		resp, err := j.client.Read(ctx, targetURL)
		if err != nil {
			return nil, err
		}
		html := resp.Data.HTML
		if html == "" {
			html = resp.Data.Content
		}
		if len(strings.TrimSpace(html)) < 100 {
			return nil, eris.Errorf("jina: empty page %s", targetURL)
		}
		url := resp.Data.URL
		if url == "" {
			url = targetURL
		}
		return &Page{URL: url, StatusCode: 200, HTML: html, Source: "jina"}, nil
	})
}
