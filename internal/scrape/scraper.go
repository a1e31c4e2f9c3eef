// Package scrape fetches company web pages and turns their HTML into the
// text, links and technology signals the pipeline stages work on.
package scrape

import "context"

// Page is a fetched HTML document.
type Page struct {
	URL        string
	StatusCode int
	HTML       string
	Source     string // e.g. "local_http", "jina"
}

// Fetcher retrieves the HTML of a single URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Page, error)
	Name() string
}
