// Package provider defines the capability interfaces the lead pipeline
// depends on and the adapters that bind them to concrete API clients.
package provider

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"
)

// ErrNoSearchProvider is returned when no search provider has credentials.
var ErrNoSearchProvider = eris.New("provider: no search provider configured (set a serper, perplexity, jina or newsapi key)")

// SearchResult is one web or news hit in provider-neutral form.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
	Date    string `json:"date,omitempty"`
}

// Searcher runs web and news searches.
type Searcher interface {
	Name() string
	WebSearch(ctx context.Context, query string, count int) ([]SearchResult, error)
	NewsSearch(ctx context.Context, query string, count int) ([]SearchResult, error)
}

// EmailFinder discovers published addresses for a domain and verifies them.
// Verify returns the provider's raw status string.
type EmailFinder interface {
	Name() string
	DomainSearch(ctx context.Context, domain string, limit int) ([]string, error)
	Verify(ctx context.Context, email string) (string, map[string]any, error)
}

// Verifier checks deliverability of a single address and returns the
// provider's raw status string.
type Verifier interface {
	Name() string
	Verify(ctx context.Context, email string) (string, map[string]any, error)
}

// Completer generates text from a system and user prompt. When schema is
// non-nil the completion must be a JSON document matching it.
type Completer interface {
	Name() string
	Complete(ctx context.Context, system, user string, schema json.RawMessage) (string, error)
}

// RegistryRecord is the public record of a company.
type RegistryRecord struct {
	Name         string `json:"name"`
	Headquarters string `json:"headquarters,omitempty"`
	Website      string `json:"website,omitempty"`
	URL          string `json:"url,omitempty"`
	Source       string `json:"source"`
}

// Registry looks up companies by name. A nil record with a nil error means
// no match.
type Registry interface {
	Name() string
	SearchByName(ctx context.Context, name string) (*RegistryRecord, error)
}
