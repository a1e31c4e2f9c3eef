// Package hunter provides a client for the Hunter.io domain search and email
// verifier APIs.
package hunter

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

const defaultBaseURL = "https://api.hunter.io/v2"

// Client finds and verifies public email addresses.
type Client interface {
	DomainSearch(ctx context.Context, domain string, limit int) ([]Email, error)
	Verify(ctx context.Context, email string) (*Verification, error)
}

// Email is an address published for a domain.
type Email struct {
	Value      string `json:"value"`
	Type       string `json:"type"`
	Confidence int    `json:"confidence"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Position   string `json:"position"`
}

// Verification is the result of the email verifier.
type Verification struct {
	Email  string `json:"email"`
	Status string `json:"status"`
	Result string `json:"result"`
	Score  int    `json:"score"`
}

type domainSearchResponse struct {
	Data struct {
		Domain string  `json:"domain"`
		Emails []Email `json:"emails"`
	} `json:"data"`
}

type verifyResponse struct {
	Data Verification `json:"data"`
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

// NewClient creates a Hunter client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 60 * time.Second},
		retry:   resilience.DefaultRetryConfig(),
	}
	for _, o := range opts {
		o(c)
	}
	c.retry.OnRetry = resilience.LogRetry("hunter", "request")
	return c
}

func (c *httpClient) DomainSearch(ctx context.Context, domain string, limit int) ([]Email, error) {
	params := url.Values{}
	params.Set("domain", domain)
	params.Set("limit", strconv.Itoa(limit))

	var resp domainSearchResponse
	if err := c.get(ctx, "/domain-search", params, &resp); err != nil {
		return nil, err
	}
	return resp.Data.Emails, nil
}

func (c *httpClient) Verify(ctx context.Context, email string) (*Verification, error) {
	params := url.Values{}
	params.Set("email", email)

	var resp verifyResponse
	if err := c.get(ctx, "/email-verifier", params, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

func (c *httpClient) get(ctx context.Context, path string, params url.Values, out any) error {
	params.Set("api_key", c.apiKey)
	reqURL := c.baseURL + path + "?" + params.Encode()

	body, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, eris.Wrap(err, "hunter: create request")
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, eris.Wrap(err, "hunter: send request")
		}
		defer resp.Body.Close() //nolint:errcheck

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, eris.Wrap(err, "hunter: read response")
		}
		return data, resilience.CheckStatus("hunter", resp.StatusCode, data)
	})
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrap(err, "hunter: unmarshal response")
	}
	return nil
}
