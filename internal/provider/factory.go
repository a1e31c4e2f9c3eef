package provider

import (
	"strings"

	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/sells-group/lead-scout/internal/config"
	"github.com/sells-group/lead-scout/internal/model"
	"github.com/sells-group/lead-scout/pkg/anthropic"
	"github.com/sells-group/lead-scout/pkg/google"
	"github.com/sells-group/lead-scout/pkg/hunter"
	"github.com/sells-group/lead-scout/pkg/jina"
	"github.com/sells-group/lead-scout/pkg/neverbounce"
	"github.com/sells-group/lead-scout/pkg/newsapi"
	"github.com/sells-group/lead-scout/pkg/opencorporates"
	"github.com/sells-group/lead-scout/pkg/perplexity"
	"github.com/sells-group/lead-scout/pkg/serper"
	"github.com/sells-group/lead-scout/pkg/zerobounce"
)

// Factory builds provider adapters from the configured endpoints and a set
// of effective keys.
type Factory struct {
	cfg config.ProvidersConfig
}

// NewFactory creates a Factory.
func NewFactory(cfg config.ProvidersConfig) *Factory {
	return &Factory{cfg: cfg}
}

// Keys returns the configured credentials overlaid with creds.
func (f *Factory) Keys(creds model.Credentials) Keys {
	return KeysFromConfig(f.cfg).Merge(creds)
}

// Searcher returns the search provider chosen by SelectSearcher. country
// localizes providers that support it.
func (f *Factory) Searcher(k Keys, country string) (Searcher, error) {
	name, err := SelectSearcher(k)
	if err != nil {
		return nil, err
	}
	zap.L().Debug("provider: search provider selected", zap.String("provider", name))

	switch name {
	case Serper:
		return NewSerperSearcher(serper.NewClient(k.Serper, serper.WithBaseURL(withDefault(f.cfg.Serper.BaseURL, "https://google.serper.dev")))), nil
	case Perplexity:
		return NewPerplexitySearcher(f.perplexityClient(k.Perplexity), country), nil
	case Jina:
		return NewJinaSearcher(f.JinaClient(k.Jina)), nil
	default:
		return NewNewsAPISearcher(newsapi.NewClient(k.NewsAPI, newsapi.WithBaseURL(withDefault(f.cfg.NewsAPI.BaseURL, "https://newsapi.org/v2")))), nil
	}
}

// EmailFinder returns the Hunter finder, or nil without a key.
func (f *Factory) EmailFinder(k Keys) EmailFinder {
	if k.Hunter == "" {
		return nil
	}
	return NewHunterFinder(hunter.NewClient(k.Hunter, hunter.WithBaseURL(withDefault(f.cfg.Hunter.BaseURL, "https://api.hunter.io/v2"))))
}

// Verifier returns the generic verifier named by k.EmailVerifyProvider, or
// nil when the provider or its key is missing.
func (f *Factory) Verifier(k Keys) Verifier {
	if k.EmailVerify == "" {
		return nil
	}
	switch strings.ToLower(k.EmailVerifyProvider) {
	case ZeroBounce:
		var opts []zerobounce.Option
		if f.cfg.EmailVerify.BaseURL != "" {
			opts = append(opts, zerobounce.WithBaseURL(f.cfg.EmailVerify.BaseURL))
		}
		return NewZeroBounceVerifier(zerobounce.NewClient(k.EmailVerify, opts...))
	case NeverBounce:
		var opts []neverbounce.Option
		if f.cfg.EmailVerify.BaseURL != "" {
			opts = append(opts, neverbounce.WithBaseURL(f.cfg.EmailVerify.BaseURL))
		}
		return NewNeverBounceVerifier(neverbounce.NewClient(k.EmailVerify, opts...))
	case "":
		return nil
	default:
		zap.L().Warn("provider: unknown email verifier", zap.String("provider", k.EmailVerifyProvider))
		return nil
	}
}

// Completers returns the configured text generators in fallback order:
// Anthropic first, then Perplexity.
func (f *Factory) Completers(k Keys) []Completer {
	var out []Completer
	if k.Anthropic != "" {
		out = append(out, NewAnthropicCompleter(anthropic.NewClient(k.Anthropic, option.WithMaxRetries(2)), withDefault(f.cfg.Anthropic.Model, "claude-haiku-4-5-20251001")))
	}
	if k.Perplexity != "" {
		out = append(out, NewPerplexityCompleter(f.perplexityClient(k.Perplexity)))
	}
	return out
}

// Registry returns the company registry: OpenCorporates when it has a key,
// else Google Places, else nil.
func (f *Factory) Registry(k Keys) Registry {
	switch {
	case k.OpenCorporates != "":
		return NewOpenCorporatesRegistry(opencorporates.NewClient(k.OpenCorporates,
			opencorporates.WithBaseURL(withDefault(f.cfg.OpenCorporates.BaseURL, "https://api.opencorporates.com/v0.4"))))
	case k.Google != "":
		return NewPlacesRegistry(google.NewClient(k.Google,
			google.WithBaseURL(withDefault(f.cfg.Google.BaseURL, "https://places.googleapis.com/v1"))))
	}
	return nil
}

// JinaClient builds a Jina client for key. The configured base URL is the
// search endpoint; reads always go through r.jina.ai.
func (f *Factory) JinaClient(key string) jina.Client {
	var opts []jina.Option
	if f.cfg.Jina.BaseURL != "" {
		opts = append(opts, jina.WithSearchBaseURL(f.cfg.Jina.BaseURL))
	}
	return jina.NewClient(key, opts...)
}

func (f *Factory) perplexityClient(key string) perplexity.Client {
	return perplexity.NewClient(key,
		perplexity.WithBaseURL(withDefault(f.cfg.Perplexity.BaseURL, "https://api.perplexity.ai")),
		perplexity.WithModel(f.cfg.Perplexity.Model),
	)
}

func withDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
