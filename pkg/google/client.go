// Package google wraps the Places API (New) text search.
package google

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-scout/internal/resilience"
)

const defaultBaseURL = "https://places.googleapis.com/v1"

var fieldMask = strings.Join([]string{
	"places.displayName",
	"places.formattedAddress",
	"places.websiteUri",
	"places.nationalPhoneNumber",
	"places.rating",
	"places.userRatingCount",
}, ",")

// Client performs Google Places API operations.
type Client interface {
	TextSearch(ctx context.Context, query string) (*TextSearchResponse, error)
}

// TextSearchResponse is the response from Places Text Search.
type TextSearchResponse struct {
	Places []Place `json:"places"`
}

// Place represents a place returned by the API.
type Place struct {
	DisplayName         DisplayName `json:"displayName"`
	FormattedAddress    string      `json:"formattedAddress"`
	WebsiteURI          string      `json:"websiteUri"`
	NationalPhoneNumber string      `json:"nationalPhoneNumber"`
	Rating              float64     `json:"rating"`
	UserRatingCount     int         `json:"userRatingCount"`
}

// DisplayName holds the place's display name.
type DisplayName struct {
	Text string `json:"text"`
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

// WithRegion biases results towards a CLDR region code ("IT" by default).
func WithRegion(region string) Option {
	return func(c *httpClient) {
		c.region = region
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
	region  string
	http    *http.Client
	retry   resilience.RetryConfig
}

// NewClient creates a Google Places API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		region:  "IT",
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
		retry: resilience.DefaultRetryConfig(),
	}
	for _, o := range opts {
		o(c)
	}
	c.retry.OnRetry = resilience.LogRetry("google", "text_search")
	return c
}

type textSearchRequest struct {
	TextQuery    string `json:"textQuery"`
	RegionCode   string `json:"regionCode,omitempty"`
	LanguageCode string `json:"languageCode,omitempty"`
}

func (c *httpClient) TextSearch(ctx context.Context, query string) (*TextSearchResponse, error) {
	payload := textSearchRequest{TextQuery: query, RegionCode: c.region}
	if strings.EqualFold(c.region, "IT") {
		payload.LanguageCode = "it"
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, eris.Wrap(err, "google: marshal request")
	}

	respBody, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/places:searchText", bytes.NewReader(body))
		if err != nil {
			return nil, eris.Wrap(err, "google: create request")
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Goog-Api-Key", c.apiKey)
		req.Header.Set("X-Goog-FieldMask", fieldMask)

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, eris.Wrap(err, "google: send request")
		}
		defer resp.Body.Close() //nolint:errcheck

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, eris.Wrap(err, "google: read response")
		}
		return data, resilience.CheckStatus("google", resp.StatusCode, data)
	})
	if err != nil {
		return nil, err
	}

	var result TextSearchResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "google: unmarshal response")
	}

	return &result, nil
}
