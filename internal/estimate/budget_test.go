package estimate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lead-scout/internal/model"
)

func company(industry string) *model.CompanyProfile {
	return &model.CompanyProfile{CompanyCandidate: model.CompanyCandidate{Industry: industry}}
}

func TestBudgetMinimalSignals(t *testing.T) {
	est := Budget(company("cantieristica"), nil, nil)

	assert.InDelta(t, 0.35, est.Score, 1e-9)
	assert.Equal(t, BandUnder30k, est.Band)
	assert.InDelta(t, 20_000, est.AmountEUR, 0)
	assert.Equal(t, "band=<30k; score=0.35; segnali minimi", est.Rationale)
}

func TestBudgetEndToEndScenario(t *testing.T) {
	c := company("produzione")
	c.RecentProjects = []string{"Fabbrica Modena — assunzioni in corso"}
	c.Evidences = []model.Evidence{{Title: "Fabbrica Modena — assunzioni in corso", Source: model.SourceWeb}}

	est := Budget(c, nil, nil)
	assert.InDelta(t, 0.35*1.15, est.Score, 1e-9)
	assert.Equal(t, BandUnder30k, est.Band)
	assert.InDelta(t, 20_000, est.AmountEUR, 0)
	assert.Contains(t, est.Rationale, "sector_mult=1.15")
}

func TestBudgetEmployeeMonotonic(t *testing.T) {
	tiers := []*int{nil, model.Int(10), model.Int(49), model.Int(50), model.Int(250), model.Int(999), model.Int(1000), model.Int(50000)}
	for _, industry := range []string{"", "hospitality", "automotive"} {
		prev := -1.0
		for _, emp := range tiers {
			c := company(industry)
			c.EmployeesEst = emp
			c.Description = "nuovo stabilimento e investimento in automazione"
			got := Budget(c, nil, nil).PreClampScore
			assert.GreaterOrEqual(t, got, prev, "industry %q employees %v", industry, emp)
			prev = got
		}
	}
}

func TestBudgetFactors(t *testing.T) {
	c := company("automotive")
	c.EmployeesEst = model.Int(300)
	c.RevenueEstEUR = model.Float(25_000_000)
	for i := 0; i < 5; i++ {
		c.Evidences = append(c.Evidences, model.Evidence{Title: "e"})
	}
	c.Description = "Nuovo stabilimento, gara d'appalto per videosorveglianza"

	est := Budget(c, nil, nil)

	// 0.35 + 0.22 + 0.16 + 0.08 + min(0.20+0.12+0.10, 0.35) = 1.16, x1.25, clamped.
	assert.InDelta(t, 1.16*1.25, est.PreClampScore, 1e-9)
	assert.InDelta(t, 1.0, est.Score, 1e-9)
	assert.Equal(t, BandOver100k, est.Band)
	assert.Equal(t,
		"band=100k+; score=1.00; dipendenti>=250 | fatturato>=20M | evidenze>=4 | keyword_boost=0.35 | sector_mult=1.25",
		est.Rationale)
}

func TestBudgetPresetBoosts(t *testing.T) {
	c := company("")
	c.ServicesProducts = []string{"Impianti fotovoltaici per capannoni"}

	base := Budget(c, nil, nil)
	boosted := Budget(c, nil, []model.BoostRule{
		{Pattern: `fotovoltaic`, Boost: 0.12},
		{Pattern: `([unclosed`, Boost: 0.5},
		{Pattern: `eolico`, Boost: 0.3},
	})

	assert.InDelta(t, 0.35, base.Score, 1e-9)
	assert.InDelta(t, 0.47, boosted.Score, 1e-9)
	assert.Equal(t, Band30to50k, boosted.Band)
	assert.Contains(t, boosted.Rationale, "keyword_boost=0.12")
}

func TestBudgetProjectProfileCalibration(t *testing.T) {
	c := company("")
	c.EmployeesEst = model.Int(60) // 0.49

	tests := []struct {
		name    string
		profile *model.ProjectProfile
		want    float64
	}{
		{"no profile", nil, 0.49},
		{"small deals", &model.ProjectProfile{TypicalDealMinEUR: model.Float(10_000), TypicalDealMaxEUR: model.Float(40_000)}, 0.49},
		{"min only", &model.ProjectProfile{TypicalDealMinEUR: model.Float(50_000)}, 0.54},
		{"min and max", &model.ProjectProfile{TypicalDealMinEUR: model.Float(60_000), TypicalDealMaxEUR: model.Float(150_000)}, 0.59},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est := Budget(c, tt.profile, nil)
			assert.InDelta(t, tt.want, est.Score, 1e-9)
			assert.True(t, strings.HasPrefix(est.Rationale, "band="))
		})
	}
}

func TestBand(t *testing.T) {
	tests := []struct {
		score  float64
		amount float64
		band   string
	}{
		{0, 20_000, BandUnder30k},
		{0.4499, 20_000, BandUnder30k},
		{0.45, 40_000, Band30to50k},
		{0.5999, 40_000, Band30to50k},
		{0.60, 75_000, Band50to100k},
		{0.7799, 75_000, Band50to100k},
		{0.78, 125_000, BandOver100k},
		{1, 125_000, BandOver100k},
	}
	for _, tt := range tests {
		amount, band := Band(tt.score)
		require.Equal(t, tt.band, band, "score %v", tt.score)
		assert.InDelta(t, tt.amount, amount, 0)
	}
}

func TestIndustryMultiplier(t *testing.T) {
	assert.InDelta(t, 1.10, IndustryMultiplier(" Sanità "), 1e-9)
	assert.InDelta(t, 1.0, IndustryMultiplier("edilizia"), 1e-9)
}
