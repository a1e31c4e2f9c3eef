// Package identify finds the most likely decision maker on a company site.
package identify

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/lead-scout/internal/model"
	"github.com/sells-group/lead-scout/internal/scrape"
)

// PeoplePaths are the pages probed for names, in order.
var PeoplePaths = []string{"/team", "/chi-siamo", "/azienda", "/about", "/contatti", "/contact", "/organigramma"}

const maxHitsPerPage = 6

type rolePattern struct {
	role string
	re   *regexp.Regexp
}

func role(name string, alternatives ...string) rolePattern {
	return rolePattern{
		role: name,
		re:   regexp.MustCompile(`(?i)\b(?:` + strings.Join(alternatives, "|") + `)\b`),
	}
}

// Table order is the tie-break: a line matching several roles gets the
// first one.
var rolePatterns = []rolePattern{
	role("CEO", "CEO", "Chief Executive Officer", "Amministratore Delegato", "AD"),
	role("General Manager", "General Manager", "Direttore Generale"),
	role("Direttore Operations", "Direttore Operations", "Operations Director", "Direttore Produzione", "Plant Manager", "Responsabile Produzione"),
	role("Responsabile ICT", "CIO", "IT Manager", "Responsabile IT", "Responsabile ICT", "Direttore ICT"),
	role("Responsabile Acquisti", "Procurement", "Responsabile Acquisti", "Buyer", "Purchasing"),
	role("Direttore Commerciale", "Sales Director", "Direttore Commerciale"),
	role("Direttore Marketing", "Marketing Director", "Direttore Marketing"),
}

var nameRe = regexp.MustCompile(`[A-ZÀ-ÖØ-Ý][\p{L}\p{N}_'’\-]+\s+[A-ZÀ-ÖØ-Ý][\p{L}\p{N}_'’\-]+`)

// ExtractPeople scans text lines of 8 to 140 characters for role mentions.
// The name is the capitalized two-word run before the role, else the one
// after it, else model.UnknownName. Results are unique by name and role.
func ExtractPeople(text string) []model.DecisionMaker {
	var hits []model.DecisionMaker
	for _, line := range strings.Split(text, "\n") {
		s := strings.TrimSpace(line)
		if n := len([]rune(s)); n < 8 || n > 140 {
			continue
		}
		for _, rp := range rolePatterns {
			loc := rp.re.FindStringIndex(s)
			if loc == nil {
				continue
			}
			hits = append(hits, model.DecisionMaker{Name: nameAround(s, loc), Role: rp.role})
			break
		}
		if len(hits) >= maxHitsPerPage {
			break
		}
	}

	seen := make(map[string]struct{}, len(hits))
	out := make([]model.DecisionMaker, 0, len(hits))
	for _, h := range hits {
		key := strings.ToLower(h.Name) + "\x00" + strings.ToLower(h.Role)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, h)
	}
	return out
}

func nameAround(line string, roleLoc []int) string {
	if m := nameRe.FindString(line[:roleLoc[0]]); m != "" {
		return m
	}
	if m := nameRe.FindString(line[roleLoc[1]:]); m != "" {
		return m
	}
	return model.UnknownName
}

// Identifier probes people pages.
type Identifier struct {
	fetcher     scrape.Fetcher
	concurrency int
}

// New creates an Identifier.
func New(f scrape.Fetcher, concurrency int) *Identifier {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Identifier{fetcher: f, concurrency: concurrency}
}

// Identify returns the first person found on the first people page that
// mentions any role, or nil.
func (id *Identifier) Identify(ctx context.Context, company *model.CompanyProfile) *model.DecisionMaker {
	if company == nil || company.Website == "" {
		return nil
	}
	base := strings.TrimRight(company.Website, "/")
	for _, path := range PeoplePaths {
		if ctx.Err() != nil {
			return nil
		}
		pageURL := base + path
		page, err := id.fetcher.Fetch(ctx, pageURL)
		if err != nil || page.HTML == "" {
			continue
		}
		people := ExtractPeople(scrape.CleanText(page.HTML))
		if len(people) == 0 {
			continue
		}
		dm := people[0]
		dm.SourceURL = pageURL
		zap.L().Debug("decision maker found",
			zap.String("stage", "identify"),
			zap.String("company", company.Name),
			zap.String("role", dm.Role),
			zap.String("url", pageURL),
		)
		return &dm
	}
	return nil
}

// IdentifyAll runs Identify for every company concurrently. The result is
// index-aligned with companies.
func (id *Identifier) IdentifyAll(ctx context.Context, companies []*model.CompanyProfile) []*model.DecisionMaker {
	out := make([]*model.DecisionMaker, len(companies))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(id.concurrency)
	for i, c := range companies {
		g.Go(func() error {
			out[i] = id.Identify(gctx, c)
			return nil
		})
	}
	_ = g.Wait()
	return out
}
