package provider

import (
	"context"

	"github.com/sells-group/lead-scout/pkg/jina"
	"github.com/sells-group/lead-scout/pkg/newsapi"
	"github.com/sells-group/lead-scout/pkg/perplexity"
	"github.com/sells-group/lead-scout/pkg/serper"
)

// SerperSearcher searches Google web and news through Serper.
type SerperSearcher struct {
	client serper.Client
}

// NewSerperSearcher wraps a Serper client.
func NewSerperSearcher(c serper.Client) *SerperSearcher {
	return &SerperSearcher{client: c}
}

func (s *SerperSearcher) Name() string { return Serper }

func (s *SerperSearcher) WebSearch(ctx context.Context, query string, count int) ([]SearchResult, error) {
	res, err := s.client.Search(ctx, query, count)
	if err != nil {
		return nil, err
	}
	return fromSerper(res), nil
}

func (s *SerperSearcher) NewsSearch(ctx context.Context, query string, count int) ([]SearchResult, error) {
	res, err := s.client.News(ctx, query, count)
	if err != nil {
		return nil, err
	}
	return fromSerper(res), nil
}

func fromSerper(in []serper.Result) []SearchResult {
	out := make([]SearchResult, 0, len(in))
	for _, r := range in {
		out = append(out, SearchResult{Title: r.Title, URL: r.Link, Snippet: r.Snippet, Date: r.Date})
	}
	return out
}

// PerplexitySearcher uses the Perplexity Search API. It has no news
// endpoint, so news searches run the same query as web searches.
type PerplexitySearcher struct {
	client  perplexity.Client
	country string
}

// NewPerplexitySearcher wraps a Perplexity client. country is an optional
// country name used to localize results.
func NewPerplexitySearcher(c perplexity.Client, country string) *PerplexitySearcher {
	return &PerplexitySearcher{client: c, country: perplexity.CountryCode(country)}
}

func (s *PerplexitySearcher) Name() string { return Perplexity }

func (s *PerplexitySearcher) WebSearch(ctx context.Context, query string, count int) ([]SearchResult, error) {
	resp, err := s.client.Search(ctx, perplexity.SearchRequest{
		Query:      query,
		MaxResults: count,
		Country:    s.country,
	})
	if err != nil {
		return nil, err
	}
	out := make([]SearchResult, 0, len(resp.Results))
	for _, r := range resp.Results {
		out = append(out, SearchResult{Title: r.Title, URL: r.URL, Snippet: r.Snippet, Date: r.Date})
	}
	if count > 0 && len(out) > count {
		out = out[:count]
	}
	return out, nil
}

func (s *PerplexitySearcher) NewsSearch(ctx context.Context, query string, count int) ([]SearchResult, error) {
	return s.WebSearch(ctx, query, count)
}

// JinaSearcher uses Jina Search. News searches reuse the web endpoint.
type JinaSearcher struct {
	client jina.Client
}

// NewJinaSearcher wraps a Jina client.
func NewJinaSearcher(c jina.Client) *JinaSearcher {
	return &JinaSearcher{client: c}
}

func (s *JinaSearcher) Name() string { return Jina }

func (s *JinaSearcher) WebSearch(ctx context.Context, query string, count int) ([]SearchResult, error) {
	resp, err := s.client.Search(ctx, query, count)
	if err != nil {
		return nil, err
	}
	out := make([]SearchResult, 0, len(resp.Data))
	for _, r := range resp.Data {
		out = append(out, SearchResult{Title: r.Title, URL: r.URL, Snippet: r.Description, Date: r.Date})
	}
	if count > 0 && len(out) > count {
		out = out[:count]
	}
	return out, nil
}

func (s *JinaSearcher) NewsSearch(ctx context.Context, query string, count int) ([]SearchResult, error) {
	return s.WebSearch(ctx, query, count)
}

// NewsAPISearcher only serves news; web searches return no results.
type NewsAPISearcher struct {
	client newsapi.Client
}

// NewNewsAPISearcher wraps a NewsAPI client.
func NewNewsAPISearcher(c newsapi.Client) *NewsAPISearcher {
	return &NewsAPISearcher{client: c}
}

func (s *NewsAPISearcher) Name() string { return NewsAPI }

func (s *NewsAPISearcher) WebSearch(context.Context, string, int) ([]SearchResult, error) {
	return nil, nil
}

func (s *NewsAPISearcher) NewsSearch(ctx context.Context, query string, count int) ([]SearchResult, error) {
	articles, err := s.client.Everything(ctx, query, count)
	if err != nil {
		return nil, err
	}
	out := make([]SearchResult, 0, len(articles))
	for _, a := range articles {
		out = append(out, SearchResult{Title: a.Title, URL: a.URL, Snippet: a.Description, Date: a.PublishedAt})
	}
	return out, nil
}
