package profile

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/lead-scout/internal/model"
	"github.com/sells-group/lead-scout/internal/provider"
	"github.com/sells-group/lead-scout/internal/scrape"
)

// Schema is the JSON schema the completers must satisfy.
var Schema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "services_offered": {"type": "array", "items": {"type": "string"}},
    "industries_served": {"type": "array", "items": {"type": "string"}},
    "technologies": {"type": "array", "items": {"type": "string"}},
    "value_props": {"type": "array", "items": {"type": "string"}},
    "proof_points": {"type": "array", "items": {"type": "string"}},
    "typical_deal_min_eur": {"type": ["integer", "null"]},
    "typical_deal_max_eur": {"type": ["integer", "null"]},
    "notes": {"type": ["string", "null"]}
  },
  "required": ["services_offered", "industries_served", "technologies", "value_props",
    "proof_points", "typical_deal_min_eur", "typical_deal_max_eur", "notes"]
}`)

const systemPrompt = "Sei un analista B2B. Produci output JSON valido."

const userPrompt = `Estrai un profilo offerta B2B dal testo del sito (italiano).
Restituisci SOLO JSON conforme allo schema.
- services_offered: max 12
- industries_served: max 10
- technologies: max 12
- value_props: max 8
- proof_points: max 10
- typical_deal_min_eur/max_eur: se deducibile; altrimenti null

TESTO:
`

// List caps shared by the language model and heuristic paths.
const (
	maxServices   = 12
	maxIndustries = 10
	maxTechs      = 12
	maxValueProps = 8
	maxProofs     = 10
)

type extracted struct {
	ServicesOffered   []string `json:"services_offered"`
	IndustriesServed  []string `json:"industries_served"`
	Technologies      []string `json:"technologies"`
	ValueProps        []string `json:"value_props"`
	ProofPoints       []string `json:"proof_points"`
	TypicalDealMinEUR *float64 `json:"typical_deal_min_eur"`
	TypicalDealMaxEUR *float64 `json:"typical_deal_max_eur"`
	Notes             *string  `json:"notes"`
}

func (b *Builder) fromCompleters(ctx context.Context, text string, completers []provider.Completer, log *zap.Logger) *model.ProjectProfile {
	if len(completers) == 0 {
		return nil
	}
	user := userPrompt + truncate(text, b.cfg.MaxChars)
	for _, c := range completers {
		out, err := c.Complete(ctx, systemPrompt, user, Schema)
		if err != nil {
			log.Warn("profile extraction failed", zap.String("provider", c.Name()), zap.Error(err))
			continue
		}
		var ex extracted
		if err := json.Unmarshal([]byte(out), &ex); err != nil {
			log.Warn("profile extraction returned invalid JSON", zap.String("provider", c.Name()), zap.Error(err))
			continue
		}
		log.Debug("profile extracted", zap.String("provider", c.Name()))
		p := &model.ProjectProfile{
			ServicesOffered:   capList(ex.ServicesOffered, maxServices),
			IndustriesServed:  capList(ex.IndustriesServed, maxIndustries),
			Technologies:      capList(ex.Technologies, maxTechs),
			ValueProps:        capList(ex.ValueProps, maxValueProps),
			ProofPoints:       capList(ex.ProofPoints, maxProofs),
			TypicalDealMinEUR: ex.TypicalDealMinEUR,
			TypicalDealMaxEUR: ex.TypicalDealMaxEUR,
		}
		if ex.Notes != nil {
			p.Notes = *ex.Notes
		}
		return p
	}
	return nil
}

var (
	serviceHints = []string{
		"videosorveglianza", "antintrusione", "cctv", "controllo accessi", "impianti", "sicurezza",
		"manutenzione", "assistenza", "progettazione", "installazione", "cablaggio", "rete", "network",
		"wi-fi", "cyber", "firewall", "server", "voip", "tvcc",
	}
	techHints = []string{
		"siem", "soc", "iso", "onvif", "rtsp", "poe", "vms", "cloud", "azure", "aws", "vmware",
		"fortinet", "cisco", "mikrotik", "sap", "erp", "wms", "mes",
	}
	industryHints = []string{
		"automotive", "logistica", "retail", "industria", "produzione", "hospitality", "sanità",
		"energia", "pubblica amministrazione", "pa",
	}
	proofHints = []string{
		"case", "studio", "cliente", "referenza", "partner", "certificazione", "progetto",
		"installato", "realizzato",
	}
)

// Heuristic buckets the lines of text by keyword into a profile. A line may
// land in several buckets.
func Heuristic(text string) *model.ProjectProfile {
	var services, techs, industries, proofs []string
	for _, line := range scrape.Lines(text, 3, 90) {
		l := strings.ToLower(line)
		if containsAny(l, serviceHints) {
			services = append(services, line)
		}
		if containsAny(l, techHints) {
			techs = append(techs, line)
		}
		if containsAny(l, industryHints) {
			industries = append(industries, line)
		}
		if containsAny(l, proofHints) {
			proofs = append(proofs, line)
		}
	}
	return &model.ProjectProfile{
		ServicesOffered:  capList(services, maxServices),
		IndustriesServed: capList(industries, maxIndustries),
		Technologies:     capList(techs, maxTechs),
		ValueProps:       []string{},
		ProofPoints:      capList(proofs, maxProofs),
		Notes:            HeuristicNotes,
	}
}

// capList deduplicates xs preserving order and keeps at most n items.
func capList(xs []string, n int) []string {
	out := make([]string, 0, min(len(xs), n))
	seen := make(map[string]bool, len(xs))
	for _, x := range xs {
		if len(out) == n {
			break
		}
		if seen[x] {
			continue
		}
		seen[x] = true
		out = append(out, x)
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
