// Package profile builds the reference project profile: what the seller's
// own company offers, extracted from its website and cached per URL.
package profile

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lead-scout/internal/config"
	"github.com/sells-group/lead-scout/internal/model"
	"github.com/sells-group/lead-scout/internal/provider"
	"github.com/sells-group/lead-scout/internal/scrape"
	"github.com/sells-group/lead-scout/internal/store"
	"github.com/sells-group/lead-scout/internal/urlutil"
)

// HeuristicNotes marks profiles built without a language model.
const HeuristicNotes = "profilo estratto via euristiche (nessun LLM disponibile)"

const pageSeparator = "\n\n---\n\n"

// KeyPageHints select which homepage links are worth reading. A link
// qualifies when its anchor text or href contains any hint.
var KeyPageHints = []string{
	"servizi", "service", "solutions", "soluzioni", "impianti", "videosorveglianza", "sicurezza",
	"ict", "it", "cyber", "case-study", "case studies", "referenze", "clienti", "partner",
	"chi-siamo", "about", "contatti", "contact",
}

// Builder extracts and caches reference profiles.
type Builder struct {
	cache   store.ProfileCache
	fetcher scrape.Fetcher
	cfg     config.ProfileConfig
	ttl     time.Duration
}

// New creates a Builder. cache may be nil, in which case nothing is cached.
func New(cache store.ProfileCache, f scrape.Fetcher, cfg config.ProfileConfig) *Builder {
	if cfg.TTLDays <= 0 {
		cfg.TTLDays = 183
	}
	if cfg.MaxLinks <= 0 {
		cfg.MaxLinks = 8
	}
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = 12000
	}
	return &Builder{
		cache:   cache,
		fetcher: f,
		cfg:     cfg,
		ttl:     time.Duration(cfg.TTLDays) * 24 * time.Hour,
	}
}

// TTL returns how long a cached profile stays fresh.
func (b *Builder) TTL() time.Duration { return b.ttl }

// Build returns the profile of refURL. A fresh cached profile is returned
// unless force is set. completers are tried in order; when none produces
// valid JSON the profile falls back to keyword heuristics.
func (b *Builder) Build(ctx context.Context, refURL string, force bool, completers ...provider.Completer) (*model.ProjectProfile, error) {
	refURL = urlutil.Normalize(refURL)
	if refURL == "" {
		return nil, eris.New("profile: empty reference url")
	}
	log := zap.L().With(zap.String("stage", "profile"), zap.String("reference_url", refURL))

	if b.cache != nil {
		if n, err := b.cache.PurgeExpired(ctx, b.ttl); err != nil {
			log.Warn("cache purge failed", zap.Error(err))
		} else if n > 0 {
			log.Info("purged expired profiles", zap.Int("count", n))
		}
		if force {
			if err := b.cache.Delete(ctx, refURL); err != nil {
				log.Warn("cache delete failed", zap.Error(err))
			}
		} else if p := b.cached(ctx, refURL, log); p != nil {
			log.Debug("profile cache hit")
			return p, nil
		}
	}

	home, err := b.fetcher.Fetch(ctx, refURL)
	if err != nil {
		return nil, eris.Wrapf(err, "profile: fetch %s", refURL)
	}

	links := PickLinks(refURL, home.HTML, b.cfg.MaxLinks)
	texts := []string{scrape.CleanText(home.HTML)}
	for _, page := range scrape.FetchAll(ctx, b.fetcher, links, 4) {
		if page == nil {
			continue
		}
		texts = append(texts, scrape.CleanText(page.HTML))
	}
	combined := strings.Join(texts, pageSeparator)

	p := b.fromCompleters(ctx, combined, completers, log)
	if p == nil {
		p = Heuristic(combined)
	}
	p.ReferenceURL = refURL

	b.store(ctx, refURL, p, log)
	return p, nil
}

func (b *Builder) cached(ctx context.Context, key string, log *zap.Logger) *model.ProjectProfile {
	e, err := b.cache.Get(ctx, key)
	if err != nil {
		log.Warn("cache read failed", zap.Error(err))
		return nil
	}
	if e == nil {
		return nil
	}
	var p model.ProjectProfile
	if err := json.Unmarshal(e.Value, &p); err != nil {
		log.Warn("discarding undecodable cached profile", zap.Error(err))
		return nil
	}
	return &p
}

func (b *Builder) store(ctx context.Context, key string, p *model.ProjectProfile, log *zap.Logger) {
	if b.cache == nil {
		return
	}
	data, err := json.Marshal(p)
	if err != nil {
		log.Warn("marshal profile failed", zap.Error(err))
		return
	}
	if err := b.cache.Set(ctx, key, data); err != nil {
		log.Warn("cache write failed", zap.Error(err))
	}
}

// Purge removes expired cached profiles.
func (b *Builder) Purge(ctx context.Context) (int, error) {
	if b.cache == nil {
		return 0, nil
	}
	return b.cache.PurgeExpired(ctx, b.ttl)
}

// Flush removes every cached profile.
func (b *Builder) Flush(ctx context.Context) (int, error) {
	if b.cache == nil {
		return 0, nil
	}
	return b.cache.Flush(ctx)
}

// PickLinks returns up to limit distinct same-site links (same apex
// domain, so www. and other subdomains count) of the page at
// base whose anchor text or href contains a key page hint.
func PickLinks(base, rawHTML string, limit int) []string {
	var out []string
	seen := make(map[string]bool)
	for _, l := range scrape.Parse(rawHTML).Links() {
		if len(out) >= limit {
			break
		}
		abs := urlutil.Resolve(base, l.Href)
		if abs == "" || !urlutil.SameSite(abs, base) || seen[abs] {
			continue
		}
		text := strings.ToLower(l.Text)
		href := strings.ToLower(l.Href)
		if !containsAny(text, KeyPageHints) && !containsAny(href, KeyPageHints) {
			continue
		}
		seen[abs] = true
		out = append(out, abs)
	}
	return out
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
