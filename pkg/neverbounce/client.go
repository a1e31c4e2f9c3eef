// Package neverbounce provides a client for the NeverBounce single check API.
package neverbounce

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-scout/internal/resilience"
)

const defaultBaseURL = "https://api.neverbounce.com/v4"

// Client checks single email addresses.
type Client interface {
	Check(ctx context.Context, email string) (*CheckResult, error)
}

// CheckResult is the NeverBounce verdict. Result is one of valid, invalid,
// disposable, catchall, unknown.
type CheckResult struct {
	Status  string   `json:"status"`
	Result  string   `json:"result"`
	Flags   []string `json:"flags"`
	Message string   `json:"message"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
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

// NewClient creates a NeverBounce client.
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
	c.retry.OnRetry = resilience.LogRetry("neverbounce", "check")
	return c
}

func (c *httpClient) Check(ctx context.Context, email string) (*CheckResult, error) {
	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("email", email)
	reqURL := c.baseURL + "/single/check?" + params.Encode()

	body, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, eris.Wrap(err, "neverbounce: create request")
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, eris.Wrap(err, "neverbounce: send request")
		}
		defer resp.Body.Close() //nolint:errcheck

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, eris.Wrap(err, "neverbounce: read response")
		}
		return data, resilience.CheckStatus("neverbounce", resp.StatusCode, data)
	})
	if err != nil {
		return nil, err
	}

	var res CheckResult
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, eris.Wrap(err, "neverbounce: unmarshal response")
	}
	if res.Status != "success" {
		return nil, eris.Errorf("neverbounce: %s: %s", res.Status, res.Message)
	}
	return &res, nil
}
