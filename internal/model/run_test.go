package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunRequestDefaults(t *testing.T) {
	req := RunRequest{Industry: "  logistica "}
	req.ApplyDefaults(30)

	assert.Equal(t, "logistica", req.Industry)
	assert.Equal(t, "Italia", req.Geography.Country)
	assert.Equal(t, "Unknown", req.Segment.Type)
	assert.Equal(t, []int{4, 6}, req.InvestmentWindowMonths)
	assert.Equal(t, []string{"email", "linkedin"}, req.AllowedChannels)
	assert.Equal(t, 30, req.Limit)
	assert.True(t, req.ProfileEnabled())
	require.NoError(t, req.Validate())

	// Defaults must not alias the shared window slice.
	req.InvestmentWindowMonths[0] = 1
	assert.Equal(t, []int{4, 6}, DefaultInvestmentWindow)
}

func TestRunRequestValidate(t *testing.T) {
	disabled := false
	tests := []struct {
		name    string
		mutate  func(*RunRequest)
		wantErr string
	}{
		{name: "valid", mutate: func(r *RunRequest) { r.EnableProjectProfile = &disabled }},
		{name: "missing industry", mutate: func(r *RunRequest) { r.Industry = "" }, wantErr: "Industry"},
		{name: "limit too high", mutate: func(r *RunRequest) { r.Limit = 500 }, wantErr: "Limit"},
		{name: "bad segment", mutate: func(r *RunRequest) { r.Segment.Type = "Huge" }, wantErr: "Segment.Type"},
		{name: "bad channel", mutate: func(r *RunRequest) { r.AllowedChannels = []string{"fax"} }, wantErr: "AllowedChannels"},
		{name: "bad reference url", mutate: func(r *RunRequest) { r.ReferenceCompanyURL = "not a url" }, wantErr: "ReferenceCompanyURL"},
		{name: "window length", mutate: func(r *RunRequest) { r.InvestmentWindowMonths = []int{1, 2, 3} }, wantErr: "InvestmentWindowMonths"},
		{name: "window inverted", mutate: func(r *RunRequest) { r.InvestmentWindowMonths = []int{6, 4} }, wantErr: "inverted"},
		{name: "bad search provider", mutate: func(r *RunRequest) { r.Credentials.SearchProvider = "bing" }, wantErr: "SearchProvider"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := RunRequest{Industry: "retail"}
			req.ApplyDefaults(30)
			tt.mutate(&req)

			err := req.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				assert.False(t, req.ProfileEnabled())
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
