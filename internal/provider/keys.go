package provider

import (
	"strings"

	"github.com/sells-group/lead-scout/internal/config"
	"github.com/sells-group/lead-scout/internal/model"
)

// Search provider names, in automatic selection priority order.
const (
	Serper     = "serper"
	Perplexity = "perplexity"
	Jina       = "jina"
	NewsAPI    = "newsapi"
)

// SearchPriority is the order providers are tried in when no preference is
// given or the preferred provider has no key.
var SearchPriority = []string{Serper, Perplexity, Jina, NewsAPI}

// Keys holds the effective credentials for one run.
type Keys struct {
	SearchPreference    string
	Serper              string
	Perplexity          string
	Jina                string
	NewsAPI             string
	Hunter              string
	EmailVerifyProvider string
	EmailVerify         string
	OpenCorporates      string
	Google              string
	Anthropic           string
}

// KeysFromConfig returns the configured credentials.
func KeysFromConfig(cfg config.ProvidersConfig) Keys {
	return Keys{
		SearchPreference:    cfg.SearchPreference,
		Serper:              cfg.Serper.Key,
		Perplexity:          cfg.Perplexity.Key,
		Jina:                cfg.Jina.Key,
		NewsAPI:             cfg.NewsAPI.Key,
		Hunter:              cfg.Hunter.Key,
		EmailVerifyProvider: cfg.EmailVerify.Provider,
		EmailVerify:         cfg.EmailVerify.Key,
		OpenCorporates:      cfg.OpenCorporates.Key,
		Google:              cfg.Google.Key,
		Anthropic:           cfg.Anthropic.Key,
	}
}

// Merge overlays per-request credentials. Empty values keep the configured
// key.
func (k Keys) Merge(c model.Credentials) Keys {
	pick := func(override, fallback string) string {
		if strings.TrimSpace(override) != "" {
			return strings.TrimSpace(override)
		}
		return fallback
	}
	k.SearchPreference = pick(c.SearchProvider, k.SearchPreference)
	k.Serper = pick(c.SerperKey, k.Serper)
	k.Perplexity = pick(c.PerplexityKey, k.Perplexity)
	k.Jina = pick(c.JinaKey, k.Jina)
	k.NewsAPI = pick(c.NewsAPIKey, k.NewsAPI)
	k.Hunter = pick(c.HunterKey, k.Hunter)
	k.EmailVerifyProvider = pick(c.EmailVerifyProvider, k.EmailVerifyProvider)
	k.EmailVerify = pick(c.EmailVerifyKey, k.EmailVerify)
	k.OpenCorporates = pick(c.OpenCorporatesKey, k.OpenCorporates)
	k.Google = pick(c.GoogleKey, k.Google)
	k.Anthropic = pick(c.AnthropicKey, k.Anthropic)
	return k
}

func (k Keys) searchKey(name string) string {
	switch name {
	case Serper:
		return k.Serper
	case Perplexity:
		return k.Perplexity
	case Jina:
		return k.Jina
	case NewsAPI:
		return k.NewsAPI
	}
	return ""
}

// SelectSearcher picks the search provider for k. An explicit preference
// wins when that provider has a key; otherwise the first provider in
// SearchPriority with a key is used.
func SelectSearcher(k Keys) (string, error) {
	pref := strings.ToLower(strings.TrimSpace(k.SearchPreference))
	if pref != "" && pref != "auto" && k.searchKey(pref) != "" {
		return pref, nil
	}
	for _, name := range SearchPriority {
		if k.searchKey(name) != "" {
			return name, nil
		}
	}
	return "", ErrNoSearchProvider
}
