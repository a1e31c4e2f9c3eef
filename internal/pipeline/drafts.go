package pipeline

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/lead-scout/internal/model"
	"github.com/sells-group/lead-scout/internal/provider"
)

const draftSystemPrompt = `Sei un assistente commerciale B2B. Scrivi email brevi, professionali e personalizzate.
Non inventare dati: se manca un dettaglio, usa formule neutre (es. "ho notato che...") e cita SOLO ciò che è in input.
Obiettivo: richiedere un meeting di 15-20 minuti.`

// DraftEmails writes one first-contact email per lead, signed by sender.
// Completers are tried in order; a lead none of them can draft is skipped.
// Drafts keep the order of leads.
func DraftEmails(ctx context.Context, completers []provider.Completer, leads []*model.LeadRecord, sender string, concurrency int) []model.EmailDraft {
	if len(completers) == 0 || len(leads) == 0 {
		return nil
	}
	if concurrency <= 0 {
		concurrency = 1
	}

	drafts := make([]*model.EmailDraft, len(leads))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, lead := range leads {
		g.Go(func() error {
			drafts[i] = draftOne(gctx, completers, lead, sender)
			return nil
		})
	}
	_ = g.Wait()

	out := make([]model.EmailDraft, 0, len(leads))
	for _, d := range drafts {
		if d != nil {
			out = append(out, *d)
		}
	}
	return out
}

func draftOne(ctx context.Context, completers []provider.Completer, lead *model.LeadRecord, sender string) *model.EmailDraft {
	if lead == nil {
		return nil
	}
	user := fmt.Sprintf("Scrivi una bozza email per fissare un appuntamento. Mittente: %s.\n\n%s", sender, LeadContext(lead))
	log := zap.L().With(zap.String("stage", "drafts"), zap.String("company", lead.Company.Name))

	for _, c := range completers {
		text, err := c.Complete(ctx, draftSystemPrompt, user, nil)
		if err != nil {
			log.Debug("draft completion failed", zap.String("llm", c.Name()), zap.Error(err))
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		d := &model.EmailDraft{Company: lead.Company.Name, Draft: text}
		if lead.VerifiedEmail != nil {
			d.EmailTo = lead.VerifiedEmail.Email
		}
		return d
	}
	log.Warn("no draft generated")
	return nil
}

// LeadContext renders the prospect facts an outreach draft may cite.
func LeadContext(lead *model.LeadRecord) string {
	c := lead.Company
	evidence := model.UnknownName
	if len(c.Evidences) > 0 {
		evidence = c.Evidences[0].Title
	}
	name, role := model.UnknownName, model.UnknownName
	if dm := lead.DecisionMaker; dm != nil {
		name, role = dm.Name, dm.Role
	}

	var b strings.Builder
	b.WriteString("Prospect:\n")
	fmt.Fprintf(&b, "- Azienda: %s\n", c.Name)
	fmt.Fprintf(&b, "- Sito: %s\n", c.Website)
	fmt.Fprintf(&b, "- Settore: %s\n", c.Industry)
	fmt.Fprintf(&b, "- Trigger: %s\n", strings.Join(c.RecentProjects, ", "))
	fmt.Fprintf(&b, "- Evidenza: %s\n\n", evidence)
	b.WriteString("Decision maker:\n")
	fmt.Fprintf(&b, "- Nome: %s\n", name)
	fmt.Fprintf(&b, "- Ruolo: %s\n\n", role)
	b.WriteString("Obiettivo: proporre incontro per valutare esigenze su sicurezza/impianti/ICT (personalizza in base al caso).\n")
	return b.String()
}
