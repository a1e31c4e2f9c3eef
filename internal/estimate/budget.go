// Package estimate scores a company's likely project budget from the
// signals collected during enrichment.
package estimate

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/lead-scout/internal/model"
)

// Budget bands, lowest first.
const (
	BandUnder30k  = "<30k"
	Band30to50k   = "30–50k"
	Band50to100k  = "50–100k"
	BandOver100k  = "100k+"
	baseScore     = 0.35
	maxKeywordSum = 0.35
)

// industryMultipliers scale the score by sector. Unlisted sectors use 1.0.
var industryMultipliers = map[string]float64{
	"logistica":   1.15,
	"produzione":  1.15,
	"automotive":  1.25,
	"retail":      1.05,
	"hospitality": 0.95,
	"sanità":      1.10,
	"energia":     1.25,
}

type keywordBoost struct {
	re    *regexp.Regexp
	boost float64
}

func boost(pattern string, b float64) keywordBoost {
	return keywordBoost{re: regexp.MustCompile(`(?i)` + pattern), boost: b}
}

var keywordBoosts = []keywordBoost{
	boost(`(ampliamento|nuov(a|e)\s+sede|nuov(o|a)\s+stabilimento|nuov(o|a)\s+magazzino)`, 0.20),
	boost(`(investimento|capex|piano\s+industriale|modernizzazione|revamping)`, 0.15),
	boost(`(bando|gara|aggiudicazione|commessa|appalto)`, 0.12),
	boost(`(sicurezza|videosorveglianza|controllo\s+accessi|antintrusione|cctv)`, 0.10),
	boost(`(ict|it\s+infrastructure|cyber|soc|siem|iso\s*27001)`, 0.10),
	boost(`(automation|automazione|robot|wms|mes|erp)`, 0.10),
	boost(`(data\s+center|cloud\s+migration|sd-wan)`, 0.08),
}

// Estimate is the budget verdict for one company. Score is the final value
// in [0,1] that selects the band; PreClampScore is the value after the sector
// multiplier, before clamping and reference-profile calibration.
type Estimate struct {
	AmountEUR     float64 `json:"amount_eur"`
	Band          string  `json:"band"`
	Score         float64 `json:"score"`
	PreClampScore float64 `json:"pre_clamp_score"`
	Rationale     string  `json:"rationale"`
}

// Budget estimates the project budget of company. profile and extra are
// optional: the reference profile nudges the score up for large typical
// deals and extra adds preset keyword boosts.
func Budget(company *model.CompanyProfile, profile *model.ProjectProfile, extra []model.BoostRule) Estimate {
	score := baseScore
	var factors []string

	if emp := company.EmployeesEst; emp != nil && *emp > 0 {
		switch {
		case *emp >= 1000:
			score += 0.30
			factors = append(factors, "dipendenti>=1000")
		case *emp >= 250:
			score += 0.22
			factors = append(factors, "dipendenti>=250")
		case *emp >= 50:
			score += 0.14
			factors = append(factors, "dipendenti>=50")
		default:
			score += 0.05
			factors = append(factors, "dipendenti<50")
		}
	}

	if rev := company.RevenueEstEUR; rev != nil && *rev > 0 {
		switch {
		case *rev >= 100_000_000:
			score += 0.25
			factors = append(factors, "fatturato>=100M")
		case *rev >= 20_000_000:
			score += 0.16
			factors = append(factors, "fatturato>=20M")
		case *rev >= 5_000_000:
			score += 0.08
			factors = append(factors, "fatturato>=5M")
		}
	}

	switch n := len(company.Evidences); {
	case n >= 8:
		score += 0.14
		factors = append(factors, "evidenze>=8")
	case n >= 4:
		score += 0.08
		factors = append(factors, "evidenze>=4")
	}

	if kw := keywordScore(corpus(company), extra); kw > 0 {
		kw = math.Min(kw, maxKeywordSum)
		score += kw
		factors = append(factors, fmt.Sprintf("keyword_boost=%.2f", kw))
	}

	mult := IndustryMultiplier(company.Industry)
	score *= mult
	if mult != 1.0 {
		factors = append(factors, fmt.Sprintf("sector_mult=%.2f", mult))
	}
	preClamp := score
	score = clamp01(score)

	if profile != nil {
		if profile.TypicalDealMinEUR != nil && *profile.TypicalDealMinEUR >= 50_000 {
			score = clamp01(score + 0.05)
		}
		if profile.TypicalDealMaxEUR != nil && *profile.TypicalDealMaxEUR >= 100_000 {
			score = clamp01(score + 0.05)
		}
	}

	amount, band := Band(score)
	rationale := "segnali minimi"
	if len(factors) > 0 {
		rationale = strings.Join(factors, " | ")
	}
	return Estimate{
		AmountEUR:     amount,
		Band:          band,
		Score:         score,
		PreClampScore: preClamp,
		Rationale:     fmt.Sprintf("band=%s; score=%.2f; %s", band, score, rationale),
	}
}

// Band maps a score in [0,1] to its budget estimate and label.
func Band(score float64) (float64, string) {
	switch {
	case score < 0.45:
		return 20_000, BandUnder30k
	case score < 0.60:
		return 40_000, Band30to50k
	case score < 0.78:
		return 75_000, Band50to100k
	default:
		return 125_000, BandOver100k
	}
}

// IndustryMultiplier returns the sector multiplier for industry.
func IndustryMultiplier(industry string) float64 {
	if m, ok := industryMultipliers[strings.ToLower(strings.TrimSpace(industry))]; ok {
		return m
	}
	return 1.0
}

func corpus(c *model.CompanyProfile) string {
	parts := []string{
		c.Description,
		strings.Join(c.ServicesProducts, " "),
		strings.Join(c.RecentProjects, " "),
		strings.Join(c.TargetCustomers, " "),
		strings.Join(c.Technologies, " "),
	}
	return strings.ToLower(strings.Join(parts, " "))
}

func keywordScore(text string, extra []model.BoostRule) float64 {
	var sum float64
	for _, kb := range keywordBoosts {
		if kb.re.MatchString(text) {
			sum += kb.boost
		}
	}
	for _, r := range extra {
		if r.Pattern == "" {
			continue
		}
		re, err := regexp.Compile(`(?i)` + r.Pattern)
		if err != nil {
			zap.L().Debug("estimate: skipping invalid boost pattern", zap.String("pattern", r.Pattern), zap.Error(err))
			continue
		}
		if re.MatchString(text) {
			sum += r.Boost
		}
	}
	return sum
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
