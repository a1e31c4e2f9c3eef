package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lead-scout/internal/mx"
	"github.com/sells-group/lead-scout/internal/pipeline"
	"github.com/sells-group/lead-scout/internal/preset"
	"github.com/sells-group/lead-scout/internal/profile"
	"github.com/sells-group/lead-scout/internal/provider"
	"github.com/sells-group/lead-scout/internal/scrape"
	"github.com/sells-group/lead-scout/internal/store"
)

// leadEnv holds everything the run, serve and profile commands share.
type leadEnv struct {
	Cache    store.ProfileCache
	Profiles *profile.Builder
	Pipeline *pipeline.Pipeline
}

// Close releases the profile cache.
func (e *leadEnv) Close() {
	if e.Cache != nil {
		_ = e.Cache.Close()
	}
}

// initEnv validates the configuration, opens the profile cache and builds the
// pipeline. Callers should defer env.Close().
func initEnv(ctx context.Context) (*leadEnv, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	factory := provider.NewFactory(cfg.Providers)
	fetcher := newFetcher(factory)

	ttl := time.Duration(cfg.Profile.TTLDays) * 24 * time.Hour
	cache, err := store.Open(ctx, cfg.Store, ttl)
	if err != nil {
		return nil, eris.Wrap(err, "open profile cache")
	}
	zap.L().Debug("profile cache ready", zap.String("driver", cfg.Store.Driver))

	profiles := profile.New(cache, fetcher, cfg.Profile)
	p := pipeline.New(
		cfg,
		factory,
		fetcher,
		mx.NewDNSChecker(nil, 5*time.Second),
		preset.NewLoader(cfg.PresetsDir),
		profiles,
	)

	return &leadEnv{Cache: cache, Profiles: profiles, Pipeline: p}, nil
}

// newFetcher returns the plain HTTP fetcher, backed by Jina Reader when a
// Jina key is configured.
func newFetcher(factory *provider.Factory) scrape.Fetcher {
	local := scrape.NewHTTPFetcher(
		time.Duration(cfg.Fetch.TimeoutSecs)*time.Second,
		scrape.WithUserAgent(cfg.Fetch.UserAgent),
		scrape.WithMaxBody(int64(cfg.Fetch.MaxBodyKB)*1024),
	)
	if cfg.Providers.Jina.Key == "" {
		return local
	}
	zap.L().Info("jina reader fallback enabled")
	return scrape.NewChain(local, scrape.NewJinaFetcher(factory.JinaClient(cfg.Providers.Jina.Key)))
}
