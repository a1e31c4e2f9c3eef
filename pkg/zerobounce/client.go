// Package zerobounce provides a client for the ZeroBounce single email
// validation API.
package zerobounce

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

const defaultBaseURL = "https://api.zerobounce.net/v2"

// Client validates single email addresses.
type Client interface {
	Validate(ctx context.Context, email string) (*Validation, error)
}

// Validation is the ZeroBounce verdict for one address. Status is one of
// valid, invalid, catch-all, unknown, spamtrap, abuse, do_not_mail.
type Validation struct {
	Address   string `json:"address"`
	Status    string `json:"status"`
	SubStatus string `json:"sub_status"`
	MXFound   string `json:"mx_found"`
	Error     string `json:"error"`
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

// NewClient creates a ZeroBounce client.
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
	c.retry.OnRetry = resilience.LogRetry("zerobounce", "validate")
	return c
}

func (c *httpClient) Validate(ctx context.Context, email string) (*Validation, error) {
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("email", email)
	params.Set("ip_address", "")
	reqURL := c.baseURL + "/validate?" + params.Encode()

	body, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, eris.Wrap(err, "zerobounce: create request")
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, eris.Wrap(err, "zerobounce: send request")
		}
		defer resp.Body.Close() //nolint:errcheck

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, eris.Wrap(err, "zerobounce: read response")
		}
		return data, resilience.CheckStatus("zerobounce", resp.StatusCode, data)
	})
	if err != nil {
		return nil, err
	}

	var v Validation
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, eris.Wrap(err, "zerobounce: unmarshal response")
	}
	if v.Error != "" {
		return nil, eris.Errorf("zerobounce: %s", v.Error)
	}
	return &v, nil
}
