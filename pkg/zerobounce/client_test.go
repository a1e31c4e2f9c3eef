package zerobounce

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus string
		wantErr    string
	}{
		{"valid", `{"address":"a@acme.it","status":"valid","sub_status":"","mx_found":"true"}`, "valid", ""},
		{"catch all", `{"address":"a@acme.it","status":"catch-all"}`, "catch-all", ""},
		{"api error", `{"error":"Invalid API Key or your account ran out of credits"}`, "", "Invalid API Key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/validate", r.URL.Path)
				assert.Equal(t, "zb-key", r.URL.Query().Get("api_key"))
				assert.Equal(t, "a@acme.it", r.URL.Query().Get("email"))
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient("zb-key", WithBaseURL(srv.URL))
			v, err := c.Validate(context.Background(), "a@acme.it")
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, v.Status)
		})
	}
}
