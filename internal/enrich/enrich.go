// Package enrich turns discovered candidates into company profiles by
// reading their websites.
package enrich

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/lead-scout/internal/model"
	"github.com/sells-group/lead-scout/internal/provider"
	"github.com/sells-group/lead-scout/internal/scrape"
	"github.com/sells-group/lead-scout/internal/urlutil"
)

// AboutPaths are the company pages probed after the homepage, in order.
var AboutPaths = []string{"/chi-siamo", "/azienda", "/about", "/company"}

const (
	maxServices       = 15
	maxTargets        = 15
	maxTechnologies   = 12
	maxPerPage        = 12
	maxRecentProjects = 8
	maxLineLen        = 140
	snippetLen        = 250
)

var (
	serviceRe = regexp.MustCompile(`(?i)(servizi|soluzioni|prodotti|impianti|software|sistemi)`)
	targetRe  = regexp.MustCompile(`(?i)(clienti|settori|industria|retail|logistica|produzione|B2B|PMI|enterprise)`)
)

// Enricher reads candidate websites.
type Enricher struct {
	fetcher     scrape.Fetcher
	registry    provider.Registry
	concurrency int
}

// New creates an Enricher. registry may be nil.
func New(f scrape.Fetcher, registry provider.Registry, concurrency int) *Enricher {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Enricher{fetcher: f, registry: registry, concurrency: concurrency}
}

// GuessName derives a display name from an apex domain, e.g.
// "fabbrica-modena.it" becomes "Fabbrica Modena".
func GuessName(domain string) string {
	label, _, _ := strings.Cut(domain, ".")
	label = strings.ReplaceAll(label, "-", " ")
	return cases.Title(language.Italian).String(label)
}

// ClassifyLines scans text lines of 3 to 120 characters and returns the ones
// that describe services and target customers. A line may be both.
func ClassifyLines(text string) (services, targets []string) {
	for _, line := range scrape.Lines(text, 3, 120) {
		if serviceRe.MatchString(line) {
			services = append(services, line)
		}
		if targetRe.MatchString(line) {
			targets = append(targets, line)
		}
		if len(services) > maxPerPage && len(targets) > maxPerPage {
			break
		}
	}
	return capList(dedup(services), maxPerPage), capList(dedup(targets), maxPerPage)
}

// Enrich builds the profile of one candidate. It never fails: missing pages
// leave fields empty.
func (e *Enricher) Enrich(ctx context.Context, c *model.CompanyCandidate) *model.CompanyProfile {
	domain := urlutil.ApexDomain(c.Website)
	base := urlutil.Base(c.Website)
	log := zap.L().With(zap.String("stage", "enrich"), zap.String("domain", domain))

	profile := &model.CompanyProfile{
		CompanyCandidate: model.CompanyCandidate{
			Name:          GuessName(domain),
			Province:      c.Province,
			Industry:      c.Industry,
			GrowthSignals: append([]string{}, c.GrowthSignals...),
			Evidences:     append([]model.Evidence{}, c.Evidences...),
		},
		ServicesProducts: []string{},
		TargetCustomers:  []string{},
		Technologies:     []string{},
		Partners:         []string{},
	}

	var services, targets, tech []string

	page, served, err := scrape.FetchDowngrade(ctx, e.fetcher, base)
	if err != nil {
		log.Debug("homepage unavailable", zap.Error(err))
	} else {
		base = urlutil.Base(served)
		if page.HTML != "" {
			doc := scrape.Parse(page.HTML)
			if title := doc.Title(); title != "" {
				profile.AddEvidence(model.Evidence{Title: title, URL: base, Source: model.SourceSite})
			}
			profile.Description = doc.MetaDescription()
			tech = append(tech, scrape.DetectTech(page.HTML)...)
			s, t := ClassifyLines(doc.Text())
			services = append(services, s...)
			targets = append(targets, t...)
		}
	}
	profile.Website = base

	for _, path := range AboutPaths {
		if ctx.Err() != nil {
			break
		}
		pageURL := strings.TrimRight(base, "/") + path
		p, err := e.fetcher.Fetch(ctx, pageURL)
		if err != nil || p.HTML == "" {
			continue
		}
		text := scrape.CleanText(p.HTML)
		s, t := ClassifyLines(text)
		services = append(services, s...)
		targets = append(targets, t...)
		tech = append(tech, scrape.DetectTech(p.HTML)...)
		profile.AddEvidence(model.Evidence{
			Title:   "page:" + path,
			URL:     pageURL,
			Snippet: truncate(text, snippetLen),
			Source:  model.SourceSite,
		})
	}

	profile.ServicesProducts = capList(dedup(filterLen(services, maxLineLen)), maxServices)
	profile.TargetCustomers = capList(dedup(filterLen(targets, maxLineLen)), maxTargets)
	profile.Technologies = capList(dedup(tech), maxTechnologies)
	profile.RecentProjects = capList(append([]string{}, c.GrowthSignals...), maxRecentProjects)

	if e.registry != nil {
		e.lookupRegistry(ctx, profile, log)
	}
	return profile
}

func (e *Enricher) lookupRegistry(ctx context.Context, profile *model.CompanyProfile, log *zap.Logger) {
	rec, err := e.registry.SearchByName(ctx, profile.Name)
	if err != nil {
		log.Debug("registry lookup failed", zap.String("registry", e.registry.Name()), zap.Error(err))
		return
	}
	if rec != nil && rec.Headquarters != "" {
		profile.Headquarters = rec.Headquarters
	}
}

// EnrichAll enriches candidates concurrently. The result is index-aligned
// with the input.
func (e *Enricher) EnrichAll(ctx context.Context, candidates []*model.CompanyCandidate) []*model.CompanyProfile {
	out := make([]*model.CompanyProfile, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, c := range candidates {
		g.Go(func() error {
			out[i] = e.Enrich(gctx, c)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func dedup(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func filterLen(in []string, maxLen int) []string {
	out := in[:0:0]
	for _, s := range in {
		if len([]rune(s)) <= maxLen {
			out = append(out, s)
		}
	}
	return out
}

func capList(in []string, n int) []string {
	if len(in) > n {
		return in[:n]
	}
	return in
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
