// Package scorer ranks leads with a weighted composite score and maps the
// score to a class.
package scorer

import (
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/lead-scout/internal/config"
	"github.com/sells-group/lead-scout/internal/model"
)

// DefaultClass is used when no configured range contains the score.
const DefaultClass = "cold"

// Breakdown holds the integer sub-scores of one lead.
type Breakdown struct {
	Fit       int `json:"fit"`
	Budget    int `json:"budget"`
	Timing    int `json:"timing"`
	Growth    int `json:"growth"`
	Alignment int `json:"alignment"`
	Total     int `json:"total"`
}

// Scorer computes composite lead scores.
type Scorer struct {
	cfg config.ScoringConfig
}

// New creates a Scorer. cfg is expected to have passed Validate.
func New(cfg config.ScoringConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// ReferenceKeywords collects the lowercased services, technologies and
// industries of the reference profile plus the preset portfolio keywords.
func ReferenceKeywords(profile *model.ProjectProfile, preset *model.Preset) map[string]struct{} {
	kw := make(map[string]struct{})
	if profile != nil {
		addKeywords(kw, profile.ServicesOffered...)
		addKeywords(kw, profile.Technologies...)
		addKeywords(kw, profile.IndustriesServed...)
	}
	if preset != nil {
		addKeywords(kw, preset.PortfolioKeywords...)
	}
	return kw
}

func addKeywords(set map[string]struct{}, items ...string) {
	for _, s := range items {
		if strings.TrimSpace(s) != "" {
			set[strings.ToLower(s)] = struct{}{}
		}
	}
}

// Score computes the breakdown of lead against the reference keywords.
func (s *Scorer) Score(lead *model.LeadRecord, refKeywords map[string]struct{}) Breakdown {
	w := s.cfg.Weights
	var b Breakdown

	if lead.Company.Industry != "" {
		b.Fit = w.Fit
	}

	switch budget := lead.EstimatedBudgetEUR; {
	case budget == nil || *budget == 0:
		b.Budget = frac(w.Budget, 0.5)
	case *budget >= 100_000, *budget >= s.cfg.BudgetTarget:
		b.Budget = w.Budget
	case *budget >= s.cfg.BudgetMin:
		b.Budget = frac(w.Budget, 0.7)
	default:
		b.Budget = frac(w.Budget, 0.3)
	}

	b.Timing = frac(w.Timing, 0.5)
	if win := lead.InvestmentWindowMonths; len(win) > 0 {
		lo, hi := win[0], win[0]
		for _, m := range win[1:] {
			lo = min(lo, m)
			hi = max(hi, m)
		}
		if lo <= 6 && hi >= 4 {
			b.Timing = w.Timing
		}
	}

	b.Growth = int(clamp(float64(len(lead.Company.Evidences))/5.0, 0, 1) * float64(w.Growth))

	base := min(len(lead.Company.ServicesProducts), 10)
	b.Alignment = int(float64(base) / 10.0 * float64(w.Alignment))
	if len(refKeywords) > 0 {
		switch ov := overlap(refKeywords, lead.Company); {
		case ov >= 6:
			b.Alignment = w.Alignment
		case ov >= 3:
			b.Alignment = max(b.Alignment, frac(w.Alignment, 0.7))
		case ov >= 1:
			b.Alignment = max(b.Alignment, frac(w.Alignment, 0.4))
		}
	}

	b.Total = int(clamp(float64(b.Fit+b.Budget+b.Timing+b.Growth+b.Alignment), 0, 100))
	return b
}

// ScoreAll scores every lead in place.
func (s *Scorer) ScoreAll(leads []*model.LeadRecord, profile *model.ProjectProfile, preset *model.Preset) {
	ref := ReferenceKeywords(profile, preset)
	for _, lead := range leads {
		b := s.Score(lead, ref)
		lead.Score = b.Total
		lead.ScoreClass = s.Classify(b.Total)
		zap.L().Debug("lead scored",
			zap.String("stage", "score"),
			zap.String("company", lead.Company.Name),
			zap.Int("score", b.Total),
			zap.String("class", lead.ScoreClass),
		)
	}
}

// Classify returns the first configured class whose inclusive range
// contains score.
func (s *Scorer) Classify(score int) string {
	for _, c := range s.cfg.Classes {
		if c.Low <= score && score <= c.High {
			return c.Name
		}
	}
	return DefaultClass
}

// overlap counts the company keywords present in ref.
func overlap(ref map[string]struct{}, c model.CompanyProfile) int {
	company := make(map[string]struct{})
	addKeywords(company, c.ServicesProducts...)
	addKeywords(company, c.Technologies...)
	if c.Industry != "" {
		company[strings.ToLower(c.Industry)] = struct{}{}
	}
	n := 0
	for k := range company {
		if _, ok := ref[k]; ok {
			n++
		}
	}
	return n
}

func frac(weight int, f float64) int {
	return int(float64(weight) * f)
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
