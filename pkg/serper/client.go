// Package serper provides a client for the Serper.dev Google Search and
// Google News API.
package serper

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-scout/internal/resilience"
)

const defaultBaseURL = "https://google.serper.dev"

// Client performs web and news searches.
type Client interface {
	Search(ctx context.Context, query string, num int) ([]Result, error)
	News(ctx context.Context, query string, num int) ([]Result, error)
}

// Result is a single organic or news result.
type Result struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
	Date    string `json:"date"`
	Source  string `json:"source"`
}

type searchRequest struct {
	Q   string `json:"q"`
	Num int    `json:"num"`
}

type searchResponse struct {
	Organic []Result `json:"organic"`
	News    []Result `json:"news"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRetry overrides the retry policy.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(c *httpClient) {
		c.retry = cfg
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	retry   resilience.RetryConfig
}

// NewClient creates a Serper client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		retry:   resilience.DefaultRetryConfig(),
	}
	for _, o := range opts {
		o(c)
	}
	c.retry.OnRetry = resilience.LogRetry("serper", "search")
	return c
}

func (c *httpClient) Search(ctx context.Context, query string, num int) ([]Result, error) {
	resp, err := c.post(ctx, "/search", searchRequest{Q: query, Num: num})
	if err != nil {
		return nil, err
	}
	return resp.Organic, nil
}

func (c *httpClient) News(ctx context.Context, query string, num int) ([]Result, error) {
	resp, err := c.post(ctx, "/news", searchRequest{Q: query, Num: num})
	if err != nil {
		return nil, err
	}
	return resp.News, nil
}

func (c *httpClient) post(ctx context.Context, path string, payload searchRequest) (*searchResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, eris.Wrap(err, "serper: marshal request")
	}

	respBody, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return nil, eris.Wrap(err, "serper: create request")
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-API-KEY", c.apiKey)

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, eris.Wrap(err, "serper: send request")
		}
		defer resp.Body.Close() //nolint:errcheck

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, eris.Wrap(err, "serper: read response")
		}
		return data, resilience.CheckStatus("serper", resp.StatusCode, data)
	})
	if err != nil {
		return nil, err
	}

	var result searchResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "serper: unmarshal response")
	}
	return &result, nil
}
