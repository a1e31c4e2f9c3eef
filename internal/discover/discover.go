// Package discover finds candidate companies through web and news search.
package discover

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/lead-scout/internal/config"
	"github.com/sells-group/lead-scout/internal/model"
	"github.com/sells-group/lead-scout/internal/provider"
	"github.com/sells-group/lead-scout/internal/urlutil"
)

// Per-query result caps.
const (
	maxWebResults  = 10
	maxNewsResults = 5
)

// maxGrowthKeywords caps the growth keywords combined with each province.
const maxGrowthKeywords = 6

// Request describes one discovery run.
type Request struct {
	Industry  string
	Geography model.Geography
	Limit     int
}

// Discoverer turns search results into candidates, unique by apex domain.
type Discoverer struct {
	search  provider.Searcher
	limiter *rate.Limiter
	cfg     config.DiscoveryConfig
}

// New creates a Discoverer. A nil searcher is allowed and makes every run
// fail with provider.ErrNoSearchProvider.
func New(search provider.Searcher, cfg config.DiscoveryConfig) *Discoverer {
	rateLimit := cfg.RateLimit
	if rateLimit <= 0 {
		rateLimit = 2
	}
	if cfg.WebResults <= 0 {
		cfg.WebResults = maxWebResults
	}
	cfg.WebResults = min(cfg.WebResults, maxWebResults)
	if cfg.NewsResults <= 0 {
		cfg.NewsResults = maxNewsResults
	}
	cfg.NewsResults = min(cfg.NewsResults, maxNewsResults)
	if len(cfg.GrowthKeywords) == 0 {
		cfg.GrowthKeywords = config.DefaultGrowthKeywords
	}
	return &Discoverer{
		search:  search,
		limiter: rate.NewLimiter(rate.Limit(rateLimit), 1),
		cfg:     cfg,
	}
}

type query struct {
	text     string
	province string
}

// BuildQueries returns the province-major query set: each province crossed
// with the first growth keywords, then two generic per-province queries.
func BuildQueries(industry string, provinces, growthKeywords []string) []string {
	qs := buildQueries(industry, provinces, growthKeywords)
	out := make([]string, len(qs))
	for i, q := range qs {
		out[i] = q.text
	}
	return out
}

func buildQueries(industry string, provinces, growthKeywords []string) []query {
	kws := growthKeywords
	if len(kws) > maxGrowthKeywords {
		kws = kws[:maxGrowthKeywords]
	}
	var out []query
	for _, prov := range provinces {
		for _, kw := range kws {
			out = append(out, query{text: fmt.Sprintf("%s %s %s azienda", industry, prov, kw), province: prov})
		}
		out = append(out,
			query{text: fmt.Sprintf("%s aziende %s", industry, prov), province: prov},
			query{text: fmt.Sprintf("%s %s investe ampliamento", industry, prov), province: prov},
		)
	}
	return out
}

// run accumulates candidates for one Discover call.
type run struct {
	industry   string
	limit      int
	candidates []*model.CompanyCandidate
	byDomain   map[string]*model.CompanyCandidate
}

func (r *run) full() bool { return len(r.candidates) >= r.limit }

func (r *run) add(domain string, c *model.CompanyCandidate) {
	r.byDomain[domain] = c
	r.candidates = append(r.candidates, c)
}

func (r *run) newCandidate(domain, province string, signals []string, ev model.Evidence) *model.CompanyCandidate {
	return &model.CompanyCandidate{
		Name:          domain,
		Website:       urlutil.Normalize(domain),
		Province:      province,
		Industry:      r.industry,
		GrowthSignals: signals,
		Evidences:     []model.Evidence{ev},
	}
}

// Discover runs the query set and returns at most req.Limit candidates in
// discovery order. Individual search failures are logged and skipped.
func (d *Discoverer) Discover(ctx context.Context, req Request) ([]*model.CompanyCandidate, error) {
	if d.search == nil {
		return nil, provider.ErrNoSearchProvider
	}
	if req.Limit <= 0 {
		return nil, nil
	}
	log := zap.L().With(zap.String("stage", "discover"), zap.String("provider", d.search.Name()))

	r := &run{
		industry: req.Industry,
		limit:    req.Limit,
		byDomain: make(map[string]*model.CompanyCandidate),
	}

	for _, q := range buildQueries(req.Industry, req.Geography.Provinces, d.cfg.GrowthKeywords) {
		if r.full() {
			break
		}

		web, err := d.webSearch(ctx, q.text)
		if err != nil {
			if ctx.Err() != nil {
				return r.candidates, eris.Wrap(ctx.Err(), "discover: cancelled")
			}
			log.Warn("web search failed", zap.String("query", q.text), zap.Error(err))
		}
		for _, item := range web {
			domain := resultDomain(item)
			if domain == "" {
				continue
			}
			if _, seen := r.byDomain[domain]; seen {
				continue
			}
			r.add(domain, r.newCandidate(domain, q.province, []string{}, toEvidence(item, model.SourceWeb)))
			if r.full() {
				break
			}
		}
		if r.full() {
			break
		}

		news, err := d.newsSearch(ctx, q.text)
		if err != nil {
			if ctx.Err() != nil {
				return r.candidates, eris.Wrap(ctx.Err(), "discover: cancelled")
			}
			log.Warn("news search failed", zap.String("query", q.text), zap.Error(err))
		}
		for _, item := range news {
			domain := resultDomain(item)
			if domain == "" {
				continue
			}
			ev := toEvidence(item, model.SourceNews)
			if existing, ok := r.byDomain[domain]; ok {
				existing.AddEvidence(ev)
				if item.Title != "" {
					existing.GrowthSignals = append(existing.GrowthSignals, item.Title)
				}
			} else {
				signal := item.Title
				if signal == "" {
					signal = "news"
				}
				r.add(domain, r.newCandidate(domain, q.province, []string{signal}, ev))
			}
			if r.full() {
				break
			}
		}
	}

	log.Info("discovery complete", zap.Int("candidates", len(r.candidates)))
	return r.candidates, nil
}

func (d *Discoverer) webSearch(ctx context.Context, q string) ([]provider.SearchResult, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return d.search.WebSearch(ctx, q, d.cfg.WebResults)
}

func (d *Discoverer) newsSearch(ctx context.Context, q string) ([]provider.SearchResult, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return d.search.NewsSearch(ctx, q, d.cfg.NewsResults)
}

func resultDomain(item provider.SearchResult) string {
	if urlutil.Host(item.URL) == "" {
		return ""
	}
	return urlutil.ApexDomain(item.URL)
}

func toEvidence(item provider.SearchResult, source string) model.Evidence {
	title := item.Title
	if title == "" {
		title = "result"
	}
	return model.Evidence{
		Title:       title,
		URL:         item.URL,
		Snippet:     item.Snippet,
		PublishedAt: item.Date,
		Source:      source,
	}
}
