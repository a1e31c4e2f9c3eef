// Package newsapi provides a client for the NewsAPI "everything" endpoint.
package newsapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-scout/internal/resilience"
)

const defaultBaseURL = "https://newsapi.org/v2"

// Client searches news articles.
type Client interface {
	Everything(ctx context.Context, query string, pageSize int) ([]Article, error)
}

// Article is a single news article.
type Article struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	PublishedAt string `json:"publishedAt"`
	Source      struct {
		Name string `json:"name"`
	} `json:"source"`
}

type everythingResponse struct {
	Status   string    `json:"status"`
	Articles []Article `json:"articles"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithLanguage sets the article language filter. Default "it".
func WithLanguage(lang string) Option {
	return func(c *httpClient) {
		c.language = lang
	}
}

// WithRetry overrides the retry policy.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(c *httpClient) {
		c.retry = cfg
	}
}

type httpClient struct {
	apiKey   string
	baseURL  string
	language string
	http     *http.Client
	retry    resilience.RetryConfig
}

// NewClient creates a NewsAPI client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:   apiKey,
		baseURL:  defaultBaseURL,
		language: "it",
		http:     &http.Client{Timeout: 30 * time.Second},
		retry:    resilience.DefaultRetryConfig(),
	}
	for _, o := range opts {
		o(c)
	}
	c.retry.OnRetry = resilience.LogRetry("newsapi", "everything")
	return c
}

func (c *httpClient) Everything(ctx context.Context, query string, pageSize int) ([]Article, error) {
	pageSize = max(1, min(pageSize, 100))
	params := url.Values{}
	params.Set("q", query)
	params.Set("pageSize", strconv.Itoa(pageSize))
	params.Set("language", c.language)
	params.Set("sortBy", "publishedAt")
	reqURL := c.baseURL + "/everything?" + params.Encode()

	body, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, eris.Wrap(err, "newsapi: create request")
		}
		req.Header.Set("X-Api-Key", c.apiKey)

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, eris.Wrap(err, "newsapi: send request")
		}
		defer resp.Body.Close() //nolint:errcheck

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, eris.Wrap(err, "newsapi: read response")
		}
		return data, resilience.CheckStatus("newsapi", resp.StatusCode, data)
	})
	if err != nil {
		return nil, err
	}

	var result everythingResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "newsapi: unmarshal response")
	}
	if len(result.Articles) > pageSize {
		result.Articles = result.Articles[:pageSize]
	}
	return result.Articles, nil
}
