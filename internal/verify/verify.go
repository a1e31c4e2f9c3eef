// Package verify attaches a contact email to each lead: published
// addresses first, then name-based guesses checked by a verifier.
package verify

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/sells-group/lead-scout/internal/model"
	"github.com/sells-group/lead-scout/internal/mx"
	"github.com/sells-group/lead-scout/internal/provider"
	"github.com/sells-group/lead-scout/internal/urlutil"
)

// Contact sources recorded on the lead.
const (
	SourceMX       = "mx"
	SourceHunter   = "hunter"
	SourceVerifier = "verifier"
	SourcePattern  = "pattern"

	ContactPatternVerifier = "pattern+verifier"
)

const (
	domainSearchLimit = 10
	maxGuesses        = 5
)

// patterns are the mailbox templates tried in order.
var patterns = []func(first, last string) string{
	func(first, last string) string { return first + "." + last },
	func(first, last string) string { return first + last },
	func(first, last string) string { return first[:1] + last },
	func(first, last string) string { return first + "_" + last },
}

// Verifier resolves contact emails for leads.
type Verifier struct {
	mx          mx.Checker
	finder      provider.EmailFinder
	verifier    provider.Verifier
	concurrency int
}

// New creates a Verifier. finder and verifier are optional.
func New(checker mx.Checker, finder provider.EmailFinder, verifier provider.Verifier, concurrency int) *Verifier {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Verifier{mx: checker, finder: finder, verifier: verifier, concurrency: concurrency}
}

// Verify sets lead.VerifiedEmail and lead.ContactSource. Leads without a
// usable website are left untouched.
func (v *Verifier) Verify(ctx context.Context, lead *model.LeadRecord) {
	if lead == nil || urlutil.Host(lead.Company.Website) == "" {
		return
	}
	domain := urlutil.ApexDomain(lead.Company.Website)
	log := zap.L().With(zap.String("stage", "verify"), zap.String("domain", domain))

	res, err := v.mx.Lookup(ctx, domain)
	if err != nil {
		log.Debug("no mail exchanger", zap.Error(err))
		lead.VerifiedEmail = &model.VerifiedEmail{
			Status:  model.EmailInvalid,
			Source:  SourceMX,
			Details: map[string]any{"mx": err.Error()},
		}
		return
	}

	if v.finder != nil {
		if ve := v.fromFinder(ctx, domain, log); ve != nil {
			lead.VerifiedEmail = ve
			lead.ContactSource = SourceHunter
			return
		}
	}

	if !lead.DecisionMaker.HasName() {
		return
	}
	first, last := SplitName(lead.DecisionMaker.Name)
	if first == "" || last == "" {
		return
	}
	guesses := Guesses(first, last, domain)

	if v.verifier != nil {
		for _, g := range guesses {
			status, details, err := v.verifier.Verify(ctx, g)
			if err != nil {
				log.Debug("verifier failed", zap.String("email", g), zap.Error(err))
				continue
			}
			if mapVerifierStatus(status) == model.EmailValid {
				if details == nil {
					details = map[string]any{}
				}
				details["status"] = status
				lead.VerifiedEmail = &model.VerifiedEmail{
					Email:   g,
					Status:  model.EmailValid,
					Source:  SourceVerifier,
					Details: details,
				}
				lead.ContactSource = ContactPatternVerifier
				return
			}
		}
	}

	lead.VerifiedEmail = &model.VerifiedEmail{
		Email:   guesses[0],
		Status:  model.EmailUnknown,
		Source:  SourcePattern,
		Details: map[string]any{"mx": res.String(), "guesses": guesses},
	}
	lead.ContactSource = SourcePattern
}

func (v *Verifier) fromFinder(ctx context.Context, domain string, log *zap.Logger) *model.VerifiedEmail {
	emails, err := v.finder.DomainSearch(ctx, domain, domainSearchLimit)
	if err != nil {
		log.Warn("domain search failed", zap.String("provider", v.finder.Name()), zap.Error(err))
		return nil
	}
	if len(emails) == 0 {
		return nil
	}
	email := emails[0]
	status, details, err := v.finder.Verify(ctx, email)
	if err != nil {
		log.Warn("email verification failed", zap.String("provider", v.finder.Name()), zap.Error(err))
		return nil
	}
	return &model.VerifiedEmail{
		Email:   email,
		Status:  mapFinderStatus(status),
		Source:  SourceHunter,
		Details: map[string]any{"hunter": details, "status": status},
	}
}

// VerifyAll runs Verify on every lead concurrently.
func (v *Verifier) VerifyAll(ctx context.Context, leads []*model.LeadRecord) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.concurrency)
	for _, lead := range leads {
		g.Go(func() error {
			v.Verify(gctx, lead)
			return nil
		})
	}
	_ = g.Wait()
}

// SplitName returns the folded first and last tokens of a full name, or
// empty strings when the name has fewer than two tokens.
func SplitName(full string) (string, string) {
	full = strings.TrimSpace(full)
	if full == "" || full == model.UnknownName {
		return "", ""
	}
	parts := strings.Fields(full)
	if len(parts) < 2 {
		return "", ""
	}
	return mailboxToken(parts[0]), mailboxToken(parts[len(parts)-1])
}

// Guesses expands the mailbox templates for first and last at domain,
// deduplicated and capped.
func Guesses(first, last, domain string) []string {
	seen := make(map[string]bool, len(patterns))
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		g := fmt.Sprintf("%s@%s", p(first, last), domain)
		if seen[g] {
			continue
		}
		seen[g] = true
		out = append(out, g)
		if len(out) == maxGuesses {
			break
		}
	}
	return out
}

// mailboxToken lowercases s, folds diacritics and keeps ASCII letters only.
func mailboxToken(s string) string {
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(fold, s)
	if err != nil {
		folded = s
	}
	var b strings.Builder
	for _, r := range strings.ToLower(folded) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func mapFinderStatus(status string) model.EmailStatus {
	switch status {
	case "valid", "accept_all":
		return model.EmailValid
	case "invalid", "reject":
		return model.EmailInvalid
	default:
		return model.EmailUnknown
	}
}

func mapVerifierStatus(status string) model.EmailStatus {
	switch strings.ToLower(status) {
	case "valid", "deliverable":
		return model.EmailValid
	case "invalid", "undeliverable":
		return model.EmailInvalid
	default:
		return model.EmailUnknown
	}
}
