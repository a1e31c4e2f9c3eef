package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lead-scout/internal/resilience"
)

func TestTextSearch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/places:searchText", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Goog-Api-Key"))
		assert.Contains(t, r.Header.Get("X-Goog-FieldMask"), "places.formattedAddress")

		var body textSearchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Rossi Impianti Srl", body.TextQuery)
		assert.Equal(t, "IT", body.RegionCode)
		assert.Equal(t, "it", body.LanguageCode)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"places":[{
			"displayName":{"text":"Rossi Impianti"},
			"formattedAddress":"Via Roma 1, 20100 Milano MI, Italia",
			"websiteUri":"https://rossi-impianti.it/",
			"rating":4.5,
			"userRatingCount":127
		}]}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := client.TextSearch(context.Background(), "Rossi Impianti Srl")

	require.NoError(t, err)
	require.Len(t, resp.Places, 1)
	p := resp.Places[0]
	assert.Equal(t, "Rossi Impianti", p.DisplayName.Text)
	assert.Equal(t, "Via Roma 1, 20100 Milano MI, Italia", p.FormattedAddress)
	assert.Equal(t, "https://rossi-impianti.it/", p.WebsiteURI)
	assert.InDelta(t, 4.5, p.Rating, 0.001)
	assert.Equal(t, 127, p.UserRatingCount)
}

func TestTextSearch_RegionOverride(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body textSearchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "CH", body.RegionCode)
		assert.Empty(t, body.LanguageCode)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewClient("k", WithBaseURL(srv.URL), WithRegion("CH"))
	resp, err := client.TextSearch(context.Background(), "Nessuno")
	require.NoError(t, err)
	assert.Empty(t, resp.Places)
}

func TestTextSearch_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"message":"API key not valid"}}`))
	}))
	defer srv.Close()

	client := NewClient("bad", WithBaseURL(srv.URL), WithRetry(resilience.RetryConfig{MaxAttempts: 1}))
	_, err := client.TextSearch(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "google: unexpected status 403")
}

func TestTextSearch_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	client := NewClient("k", WithBaseURL(srv.URL))
	_, err := client.TextSearch(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "google: unmarshal response")
}
