package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lead-scout/internal/config"
	"github.com/sells-group/lead-scout/internal/model"
	"github.com/sells-group/lead-scout/internal/mx"
	"github.com/sells-group/lead-scout/internal/pipeline"
	"github.com/sells-group/lead-scout/internal/profile"
	"github.com/sells-group/lead-scout/internal/provider"
	"github.com/sells-group/lead-scout/internal/scrape"
	"github.com/sells-group/lead-scout/internal/store"
)

type oneHitSearcher struct{}

func (oneHitSearcher) Name() string { return "stub" }

func (oneHitSearcher) WebSearch(context.Context, string, int) ([]provider.SearchResult, error) {
	return []provider.SearchResult{{Title: "Fabbrica Modena", URL: "https://fabbrica-modena.it"}}, nil
}

func (oneHitSearcher) NewsSearch(context.Context, string, int) ([]provider.SearchResult, error) {
	return nil, nil
}

type stubProviders struct {
	searcher provider.Searcher
}

func (s stubProviders) Keys(model.Credentials) provider.Keys { return provider.Keys{} }

func (s stubProviders) Searcher(provider.Keys, string) (provider.Searcher, error) {
	if s.searcher == nil {
		return nil, provider.ErrNoSearchProvider
	}
	return s.searcher, nil
}

func (s stubProviders) EmailFinder(provider.Keys) provider.EmailFinder { return nil }
func (s stubProviders) Verifier(provider.Keys) provider.Verifier       { return nil }
func (s stubProviders) Completers(provider.Keys) []provider.Completer  { return nil }
func (s stubProviders) Registry(provider.Keys) provider.Registry       { return nil }

type blankFetcher struct{}

func (blankFetcher) Name() string { return "blank" }

func (blankFetcher) Fetch(_ context.Context, u string) (*scrape.Page, error) {
	return &scrape.Page{URL: u, StatusCode: 200}, nil
}

type noMX struct{}

func (noMX) Lookup(context.Context, string) (mx.Result, error) {
	return mx.Result{}, errors.New("no mx")
}

func newTestServer(t *testing.T, searcher provider.Searcher, token string) (*httptest.Server, store.ProfileCache) {
	t.Helper()
	cfg := &config.Config{
		Pipeline:  config.PipelineConfig{Concurrency: 2, DefaultLimit: 5},
		Discovery: config.DiscoveryConfig{GrowthKeywords: []string{"assunzioni"}, RateLimit: 1000},
		Scoring:   config.DefaultScoring(),
	}
	p := pipeline.New(cfg, stubProviders{searcher: searcher}, blankFetcher{}, noMX{}, nil, nil)

	cache, err := store.NewSQLite(filepath.Join(t.TempDir(), "profiles.db"), time.Hour)
	require.NoError(t, err)
	require.NoError(t, cache.Migrate(context.Background()))
	t.Cleanup(func() { _ = cache.Close() })
	profiles := profile.New(cache, blankFetcher{}, config.ProfileConfig{TTLDays: 30})

	s := New(p, profiles, config.ServerConfig{AllowedOrigins: []string{"*"}, BearerToken: token})
	srv := httptest.NewServer(s.Routes())
	t.Cleanup(srv.Close)
	return srv, cache
}

func postJSON(t *testing.T, srv *httptest.Server, path string, body any, token string) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, srv.URL+path, bytes.NewReader(data))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

var modenaRun = map[string]any{
	"industry":  "produzione",
	"geography": map[string]any{"provinces": []string{"Modena"}},
	"limit":     1,
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, oneHitSearcher{}, "secret")

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Equal(t, "ok", body["status"])
}

func TestBearerToken(t *testing.T) {
	srv, _ := newTestServer(t, oneHitSearcher{}, "secret")
	empty := map[string]any{"leads": []any{}}

	assert.Equal(t, http.StatusUnauthorized, postJSON(t, srv, "/score", empty, "").StatusCode)
	assert.Equal(t, http.StatusForbidden, postJSON(t, srv, "/score", empty, "wrong").StatusCode)
	assert.Equal(t, http.StatusOK, postJSON(t, srv, "/score", empty, "secret").StatusCode)
}

func TestRun(t *testing.T) {
	srv, _ := newTestServer(t, oneHitSearcher{}, "")

	resp := postJSON(t, srv, "/run", modenaRun, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var res model.RunResult
	decodeBody(t, resp, &res)
	assert.Len(t, res.RunID, 12)
	require.Len(t, res.Leads, 1)
	assert.Equal(t, model.LeadNew, res.Leads[0].Status)
	require.NotNil(t, res.Leads[0].EstimatedBudgetEUR)
	assert.InDelta(t, 20000, *res.Leads[0].EstimatedBudgetEUR, 0.001)
}

func TestRunErrors(t *testing.T) {
	srv, _ := newTestServer(t, nil, "")

	resp := postJSON(t, srv, "/run", modenaRun, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Contains(t, body["error"], "no search provider")

	resp = postJSON(t, srv, "/run", map[string]any{"limit": 1}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/run", strings.NewReader("{not json"))
	require.NoError(t, err)
	raw, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer raw.Body.Close() //nolint:errcheck
	assert.Equal(t, http.StatusBadRequest, raw.StatusCode)
}

func TestStageEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, oneHitSearcher{}, "")

	resp := postJSON(t, srv, "/discover", modenaRun, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var disc struct {
		Candidates []*model.CompanyCandidate `json:"candidates"`
	}
	decodeBody(t, resp, &disc)
	require.Len(t, disc.Candidates, 1)
	assert.Equal(t, "Modena", disc.Candidates[0].Province)

	resp = postJSON(t, srv, "/enrich", map[string]any{"candidates": disc.Candidates}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var enr struct {
		Companies []*model.CompanyProfile `json:"companies"`
	}
	decodeBody(t, resp, &enr)
	require.Len(t, enr.Companies, 1)
	assert.Equal(t, "Fabbrica Modena", enr.Companies[0].Name)

	resp = postJSON(t, srv, "/identify", map[string]any{"companies": enr.Companies}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var ident struct {
		Leads []*model.LeadRecord `json:"leads"`
	}
	decodeBody(t, resp, &ident)
	require.Len(t, ident.Leads, 1)
	assert.Equal(t, []int{4, 6}, ident.Leads[0].InvestmentWindowMonths)
	assert.Nil(t, ident.Leads[0].DecisionMaker)

	resp = postJSON(t, srv, "/verify", map[string]any{"leads": ident.Leads}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var ver struct {
		Leads []*model.LeadRecord `json:"leads"`
	}
	decodeBody(t, resp, &ver)
	require.Len(t, ver.Leads, 1)
	require.NotNil(t, ver.Leads[0].VerifiedEmail)
	assert.Equal(t, model.EmailInvalid, ver.Leads[0].VerifiedEmail.Status)

	resp = postJSON(t, srv, "/score", map[string]any{"leads": ver.Leads}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var scored struct {
		Leads []*model.LeadRecord `json:"leads"`
	}
	decodeBody(t, resp, &scored)
	require.Len(t, scored.Leads, 1)
	assert.Positive(t, scored.Leads[0].Score)
}

func TestExportCSV(t *testing.T) {
	srv, _ := newTestServer(t, oneHitSearcher{}, "")

	lead := model.NewLead(model.CompanyProfile{CompanyCandidate: model.CompanyCandidate{Name: "Alfa", Website: "https://alfa.it"}}, nil)
	resp := postJSON(t, srv, "/export", map[string]any{"leads": []any{lead}, "file_format": "csv"}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), ".csv")

	var buf bytes.Buffer
	_, err := buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\ufeff")))
	assert.Contains(t, buf.String(), "Alfa")
}

func TestImportLinkedIn(t *testing.T) {
	srv, _ := newTestServer(t, oneHitSearcher{}, "")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "connections.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte("First Name;Last Name;Company;Position\nMario;Rossi;Alfa Srl;CEO\n"))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("mapping", "not json"))
	require.NoError(t, mw.Close())

	resp, err := http.Post(srv.URL+"/import/linkedin", mw.FormDataContentType(), &body)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		ImportedRows int                 `json:"imported_rows"`
		Leads        []*model.LeadRecord `json:"leads"`
	}
	decodeBody(t, resp, &out)
	assert.Equal(t, 1, out.ImportedRows)
	require.Len(t, out.Leads, 1)
	assert.Equal(t, "Alfa Srl", out.Leads[0].Company.Name)
	require.NotNil(t, out.Leads[0].DecisionMaker)
	assert.Equal(t, "Mario Rossi", out.Leads[0].DecisionMaker.Name)
}

func TestProfileCacheEndpoints(t *testing.T) {
	srv, cache := newTestServer(t, oneHitSearcher{}, "")
	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, "https://a.it", []byte(`{}`)))
	require.NoError(t, cache.Set(ctx, "https://b.it", []byte(`{}`)))

	resp := postJSON(t, srv, "/profile/purge", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var purged map[string]int
	decodeBody(t, resp, &purged)
	assert.Equal(t, 0, purged["purged"])
	assert.Equal(t, 30, purged["ttl_days"])

	resp = postJSON(t, srv, "/profile/flush", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var flushed map[string]int
	decodeBody(t, resp, &flushed)
	assert.Equal(t, 2, flushed["deleted"])
}
