// Package opencorporates provides a client for the OpenCorporates company
// search API.
package opencorporates

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

const (
	defaultBaseURL      = "https://api.opencorporates.com/v0.4"
	defaultJurisdiction = "it"
)

// Client searches registered companies.
type Client interface {
	SearchCompanies(ctx context.Context, name string, perPage int) ([]Company, error)
}

// Company is one registry entry.
type Company struct {
	Name                    string   `json:"name"`
	CompanyNumber           string   `json:"company_number"`
	JurisdictionCode        string   `json:"jurisdiction_code"`
	IncorporationDate       string   `json:"incorporation_date"`
	CurrentStatus           string   `json:"current_status"`
	RegisteredAddressInFull string   `json:"registered_address_in_full"`
	RegisteredAddress       *Address `json:"registered_address"`
	OpenCorporatesURL       string   `json:"opencorporates_url"`
}

// Address is the structured registered address.
type Address struct {
	StreetAddress string `json:"street_address"`
	Locality      string `json:"locality"`
	Region        string `json:"region"`
	PostalCode    string `json:"postal_code"`
	Country       string `json:"country"`
}

// String joins the non-empty address parts.
func (a *Address) String() string {
	if a == nil {
		return ""
	}
	out := ""
	for _, p := range []string{a.StreetAddress, a.PostalCode, a.Locality, a.Region, a.Country} {
		if p == "" {
			continue
		}
		if out != "" {
			out += ", "
		}
		out += p
	}
	return out
}

// Headquarters returns the best available registered address.
func (c Company) Headquarters() string {
	if c.RegisteredAddressInFull != "" {
		return c.RegisteredAddressInFull
	}
	return c.RegisteredAddress.String()
}

type searchResponse struct {
	Results struct {
		Companies []struct {
			Company Company `json:"company"`
		} `json:"companies"`
	} `json:"results"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithJurisdiction restricts searches to a jurisdiction code ("it" by default).
func WithJurisdiction(code string) Option {
	return func(c *httpClient) {
		c.jurisdiction = code
	}
}

// WithRetry overrides the retry policy.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(c *httpClient) {
		c.retry = cfg
	}
}

type httpClient struct {
	apiKey       string
	baseURL      string
	jurisdiction string
	http         *http.Client
	retry        resilience.RetryConfig
}

// NewClient creates an OpenCorporates client. The API token is optional.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:       apiKey,
		baseURL:      defaultBaseURL,
		jurisdiction: defaultJurisdiction,
		http:         &http.Client{Timeout: 20 * time.Second},
		retry:        resilience.DefaultRetryConfig(),
	}
	for _, o := range opts {
		o(c)
	}
	c.retry.OnRetry = resilience.LogRetry("opencorporates", "search")
	return c
}

func (c *httpClient) SearchCompanies(ctx context.Context, name string, perPage int) ([]Company, error) {
	if perPage <= 0 {
		perPage = 5
	}
	params := url.Values{}
	params.Set("q", name)
	params.Set("per_page", strconv.Itoa(perPage))
	if c.jurisdiction != "" {
		params.Set("jurisdiction_code", c.jurisdiction)
	}
	if c.apiKey != "" {
		params.Set("api_token", c.apiKey)
	}
	reqURL := c.baseURL + "/companies/search?" + params.Encode()

	body, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, eris.Wrap(err, "opencorporates: create request")
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, eris.Wrap(err, "opencorporates: send request")
		}
		defer resp.Body.Close() //nolint:errcheck

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, eris.Wrap(err, "opencorporates: read response")
		}
		return data, resilience.CheckStatus("opencorporates", resp.StatusCode, data)
	})
	if err != nil {
		return nil, err
	}

	var sr searchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, eris.Wrap(err, "opencorporates: unmarshal response")
	}
	out := make([]Company, 0, len(sr.Results.Companies))
	for _, item := range sr.Results.Companies {
		out = append(out, item.Company)
	}
	return out, nil
}

