// Package pipeline runs the lead generation stages end to end: discovery,
// enrichment, decision-maker identification, budget estimation, contact
// verification, scoring and optional outreach drafts.
package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lead-scout/internal/config"
	"github.com/sells-group/lead-scout/internal/discover"
	"github.com/sells-group/lead-scout/internal/enrich"
	"github.com/sells-group/lead-scout/internal/estimate"
	"github.com/sells-group/lead-scout/internal/identify"
	"github.com/sells-group/lead-scout/internal/model"
	"github.com/sells-group/lead-scout/internal/mx"
	"github.com/sells-group/lead-scout/internal/preset"
	"github.com/sells-group/lead-scout/internal/profile"
	"github.com/sells-group/lead-scout/internal/provider"
	"github.com/sells-group/lead-scout/internal/scorer"
	"github.com/sells-group/lead-scout/internal/scrape"
	"github.com/sells-group/lead-scout/internal/verify"
)

// EvidenceBudget titles the evidence that records a lead's budget estimate.
const EvidenceBudget = "budget_estimate"

// Providers builds the provider set of one run from its credentials.
// *provider.Factory implements it.
type Providers interface {
	Keys(creds model.Credentials) provider.Keys
	Searcher(k provider.Keys, country string) (provider.Searcher, error)
	EmailFinder(k provider.Keys) provider.EmailFinder
	Verifier(k provider.Keys) provider.Verifier
	Completers(k provider.Keys) []provider.Completer
	Registry(k provider.Keys) provider.Registry
}

// Pipeline orchestrates the lead stages.
type Pipeline struct {
	cfg       *config.Config
	providers Providers
	fetcher   scrape.Fetcher
	mx        mx.Checker
	presets   *preset.Loader
	profiles  *profile.Builder
	scorer    *scorer.Scorer
}

// New creates a Pipeline. presets and profiles may be nil, which disables
// presets and the reference profile respectively.
func New(
	cfg *config.Config,
	providers Providers,
	fetcher scrape.Fetcher,
	checker mx.Checker,
	presets *preset.Loader,
	profiles *profile.Builder,
) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		providers: providers,
		fetcher:   fetcher,
		mx:        checker,
		presets:   presets,
		profiles:  profiles,
		scorer:    scorer.New(cfg.Scoring),
	}
}

// NewRunID returns a 12 character hex run id taken from a random UUID.
func NewRunID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// Run executes a full pipeline run. Only an invalid request or a discovery
// failure is returned as an error; every later stage degrades per lead.
func (p *Pipeline) Run(ctx context.Context, req *model.RunRequest) (*model.RunResult, error) {
	if err := p.prepare(req); err != nil {
		return nil, err
	}

	runID := NewRunID()
	log := zap.L().With(zap.String("run_id", runID), zap.String("industry", req.Industry))
	log.Info("pipeline: starting run",
		zap.Strings("provinces", req.Geography.Provinces),
		zap.Int("limit", req.Limit),
	)
	start := time.Now()

	keys := p.providers.Keys(req.Credentials)
	pre := p.LoadPreset(req.Preset)

	var ref *model.ProjectProfile
	if p.profileEnabled(req) {
		var err error
		ref, err = p.buildProfile(ctx, keys, req.ReferenceCompanyURL, req.ForceRefreshProfile)
		if err != nil {
			log.Warn("pipeline: reference profile unavailable", zap.String("url", req.ReferenceCompanyURL), zap.Error(err))
			ref = nil
		}
	}

	candidates, err := p.discover(ctx, keys, req)
	if err != nil {
		return nil, err
	}
	log.Info("pipeline: discovery complete", zap.Int("candidates", len(candidates)))

	companies := p.enrich(ctx, keys, candidates)
	dms := p.Identify(ctx, companies)
	leads := BuildLeads(companies, dms, ref, pre, req.InvestmentWindowMonths)

	p.verify(ctx, keys, leads)
	p.scorer.ScoreAll(leads, ref, pre)

	result := &model.RunResult{
		RunID:          runID,
		ProjectProfile: ref,
		Leads:          leads,
	}
	if pre != nil {
		result.Preset = pre.ID
	}

	if req.IncludeEmailDrafts {
		completers := p.providers.Completers(keys)
		if len(completers) == 0 {
			log.Info("pipeline: email drafts requested but no LLM is configured")
		} else {
			result.EmailDrafts = DraftEmails(ctx, completers, leads, pre.Sender(), p.concurrency())
		}
	}

	log.Info("pipeline: run complete",
		zap.Int("leads", len(leads)),
		zap.Int("drafts", len(result.EmailDrafts)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return result, nil
}

// Discover runs the discovery stage alone.
func (p *Pipeline) Discover(ctx context.Context, req *model.RunRequest) ([]*model.CompanyCandidate, error) {
	if err := p.prepare(req); err != nil {
		return nil, err
	}
	return p.discover(ctx, p.providers.Keys(req.Credentials), req)
}

// Enrich runs the enrichment stage alone. The registry is chosen from creds.
func (p *Pipeline) Enrich(ctx context.Context, creds model.Credentials, candidates []*model.CompanyCandidate) []*model.CompanyProfile {
	return p.enrich(ctx, p.providers.Keys(creds), candidates)
}

// Identify finds a decision maker per company, index-aligned with companies.
func (p *Pipeline) Identify(ctx context.Context, companies []*model.CompanyProfile) []*model.DecisionMaker {
	return identify.New(p.fetcher, p.concurrency()).IdentifyAll(ctx, companies)
}

// Verify runs contact verification on leads in place.
func (p *Pipeline) Verify(ctx context.Context, creds model.Credentials, leads []*model.LeadRecord) {
	p.verify(ctx, p.providers.Keys(creds), leads)
}

// Score scores leads in place against an optional reference profile and the
// preset named by presetID.
func (p *Pipeline) Score(leads []*model.LeadRecord, ref *model.ProjectProfile, presetID string) {
	p.scorer.ScoreAll(leads, ref, p.LoadPreset(presetID))
}

// BuildProfile builds or loads the cached reference profile of refURL.
func (p *Pipeline) BuildProfile(ctx context.Context, creds model.Credentials, refURL string, force bool) (*model.ProjectProfile, error) {
	return p.buildProfile(ctx, p.providers.Keys(creds), refURL, force)
}

// LoadPreset returns the preset named id, or nil when id is empty, unknown or
// unreadable.
func (p *Pipeline) LoadPreset(id string) *model.Preset {
	if p.presets == nil || strings.TrimSpace(id) == "" {
		return nil
	}
	pre, err := p.presets.Load(id)
	if err != nil {
		zap.L().Warn("pipeline: preset not loaded", zap.String("preset", id), zap.Error(err))
		return nil
	}
	if pre == nil {
		zap.L().Warn("pipeline: preset not found", zap.String("preset", id))
	}
	return pre
}

// BuildLeads turns enriched companies and their decision makers into leads
// with status nuovo. Each company gets its budget estimate, recorded as a
// heuristic evidence. dms may be shorter than companies.
func BuildLeads(
	companies []*model.CompanyProfile,
	dms []*model.DecisionMaker,
	ref *model.ProjectProfile,
	pre *model.Preset,
	window []int,
) []*model.LeadRecord {
	var boosts []model.BoostRule
	if pre != nil {
		boosts = pre.BudgetKeywordBoosts
	}

	leads := make([]*model.LeadRecord, 0, len(companies))
	for i, c := range companies {
		if c == nil {
			continue
		}
		est := estimate.Budget(c, ref, boosts)
		c.AddEvidence(model.Evidence{
			Title:   EvidenceBudget,
			URL:     c.Website,
			Snippet: est.Rationale,
			Source:  model.SourceHeuristic,
		})

		lead := model.NewLead(*c, window)
		if i < len(dms) {
			lead.DecisionMaker = dms[i]
		}
		lead.EstimatedBudgetEUR = model.Float(est.AmountEUR)
		leads = append(leads, lead)
	}
	return leads
}

func (p *Pipeline) prepare(req *model.RunRequest) error {
	if req == nil {
		return eris.New("pipeline: nil run request")
	}
	req.ApplyDefaults(p.cfg.Pipeline.DefaultLimit)
	return req.Validate()
}

func (p *Pipeline) profileEnabled(req *model.RunRequest) bool {
	return p.profiles != nil &&
		p.cfg.Profile.Enabled &&
		req.ProfileEnabled() &&
		strings.TrimSpace(req.ReferenceCompanyURL) != ""
}

func (p *Pipeline) buildProfile(ctx context.Context, keys provider.Keys, refURL string, force bool) (*model.ProjectProfile, error) {
	if p.profiles == nil {
		return nil, eris.New("pipeline: reference profile builder not configured")
	}
	return p.profiles.Build(ctx, refURL, force, p.providers.Completers(keys)...)
}

func (p *Pipeline) discover(ctx context.Context, keys provider.Keys, req *model.RunRequest) ([]*model.CompanyCandidate, error) {
	search, err := p.providers.Searcher(keys, req.Geography.Country)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: select search provider")
	}
	candidates, err := discover.New(search, p.cfg.Discovery).Discover(ctx, discover.Request{
		Industry:  req.Industry,
		Geography: req.Geography,
		Limit:     req.Limit,
	})
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: discover")
	}
	return candidates, nil
}

func (p *Pipeline) enrich(ctx context.Context, keys provider.Keys, candidates []*model.CompanyCandidate) []*model.CompanyProfile {
	return enrich.New(p.fetcher, p.providers.Registry(keys), p.concurrency()).EnrichAll(ctx, candidates)
}

func (p *Pipeline) verify(ctx context.Context, keys provider.Keys, leads []*model.LeadRecord) {
	v := verify.New(p.mx, p.providers.EmailFinder(keys), p.providers.Verifier(keys), p.concurrency())
	v.VerifyAll(ctx, leads)
}

func (p *Pipeline) concurrency() int {
	if p.cfg.Pipeline.Concurrency > 0 {
		return p.cfg.Pipeline.Concurrency
	}
	return 5
}
