package opencorporates

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lead-scout/internal/resilience"
)

func TestSearchCompanies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/companies/search", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "Rossi Impianti", q.Get("q"))
		assert.Equal(t, "it", q.Get("jurisdiction_code"))
		assert.Equal(t, "5", q.Get("per_page"))
		assert.Equal(t, "oc-token", q.Get("api_token"))
		_, _ = w.Write([]byte(`{"results":{"companies":[
			{"company":{"name":"ROSSI IMPIANTI S.R.L.","company_number":"MI123","jurisdiction_code":"it","registered_address_in_full":"VIA ROMA 1, MILANO"}},
			{"company":{"name":"ROSSI IMPIANTI SUD S.R.L.","registered_address":{"street_address":"Via Napoli 2","locality":"Bari","postal_code":"70100"}}}
		]}}`))
	}))
	defer srv.Close()

	c := NewClient("oc-token", WithBaseURL(srv.URL))
	got, err := c.SearchCompanies(context.Background(), "Rossi Impianti", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "ROSSI IMPIANTI S.R.L.", got[0].Name)
	assert.Equal(t, "VIA ROMA 1, MILANO", got[0].Headquarters())
	assert.Equal(t, "Via Napoli 2, 70100, Bari", got[1].Headquarters())
}

func TestSearchCompaniesWithoutToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := r.URL.Query()["api_token"]
		assert.False(t, ok)
		assert.Equal(t, "gb", r.URL.Query().Get("jurisdiction_code"))
		_, _ = w.Write([]byte(`{"results":{"companies":[]}}`))
	}))
	defer srv.Close()

	c := NewClient("", WithBaseURL(srv.URL), WithJurisdiction("gb"))
	got, err := c.SearchCompanies(context.Background(), "Acme", 3)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSearchCompaniesError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient("bad", WithBaseURL(srv.URL), WithRetry(resilience.RetryConfig{MaxAttempts: 1}))
	_, err := c.SearchCompanies(context.Background(), "Acme", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opencorporates: unexpected status 401")
}

func TestAddressStringNil(t *testing.T) {
	var a *Address
	assert.Empty(t, a.String())
	assert.Empty(t, Company{}.Headquarters())
}
