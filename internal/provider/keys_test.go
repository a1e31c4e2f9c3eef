package provider

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lead-scout/internal/config"
	"github.com/sells-group/lead-scout/internal/model"
)

func TestSelectSearcher(t *testing.T) {
	tests := []struct {
		name string
		keys Keys
		want string
	}{
		{"auto picks serper first", Keys{Serper: "s", Perplexity: "p", Jina: "j", NewsAPI: "n"}, Serper},
		{"auto falls to perplexity", Keys{Perplexity: "p", NewsAPI: "n"}, Perplexity},
		{"auto falls to jina", Keys{Jina: "j", NewsAPI: "n"}, Jina},
		{"auto falls to newsapi", Keys{NewsAPI: "n"}, NewsAPI},
		{"preference honored", Keys{SearchPreference: "perplexity", Serper: "s", Perplexity: "p"}, Perplexity},
		{"preference is case-insensitive", Keys{SearchPreference: " NewsAPI ", Serper: "s", NewsAPI: "n"}, NewsAPI},
		{"preference without key falls back", Keys{SearchPreference: "jina", Serper: "s"}, Serper},
		{"explicit auto", Keys{SearchPreference: "auto", Jina: "j"}, Jina},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SelectSearcher(tt.keys)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelectSearcherNoKeys(t *testing.T) {
	_, err := SelectSearcher(Keys{SearchPreference: "serper", Hunter: "h"})
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNoSearchProvider))
}

func TestKeysMerge(t *testing.T) {
	cfg := config.ProvidersConfig{
		SearchPreference: "auto",
		Serper:           config.APIConfig{Key: "cfg-serper"},
		Hunter:           config.APIConfig{Key: "cfg-hunter"},
		EmailVerify:      config.EmailVerifyConfig{Provider: "zerobounce", Key: "cfg-zb"},
		Google:           config.APIConfig{Key: "cfg-google"},
		OpenCorporates:   config.APIConfig{Key: "cfg-oc"},
	}
	k := KeysFromConfig(cfg).Merge(model.Credentials{
		SearchProvider: "perplexity",
		PerplexityKey:  " req-pplx ",
		HunterKey:      "",
		EmailVerifyKey: "req-zb",
		GoogleKey:      "req-google",
	})

	assert.Equal(t, "perplexity", k.SearchPreference)
	assert.Equal(t, "cfg-serper", k.Serper)
	assert.Equal(t, "req-pplx", k.Perplexity)
	assert.Equal(t, "cfg-hunter", k.Hunter)
	assert.Equal(t, "zerobounce", k.EmailVerifyProvider)
	assert.Equal(t, "req-zb", k.EmailVerify)
	assert.Equal(t, "req-google", k.Google)
	assert.Equal(t, "cfg-oc", k.OpenCorporates)
}
