// Package urlutil normalizes website URLs and reduces them to their
// registrable (apex) domain.
package urlutil

import (
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// Normalize ensures u carries a scheme, defaulting to https.
func Normalize(u string) string {
	u = strings.TrimSpace(u)
	if u == "" {
		return ""
	}
	if !strings.Contains(u, "://") {
		u = "https://" + u
	}
	return u
}

// Host returns the lowercased host of u without port or leading "www.".
func Host(u string) string {
	parsed, err := url.Parse(Normalize(u))
	if err != nil {
		return ""
	}
	host := strings.ToLower(parsed.Hostname())
	return strings.TrimPrefix(host, "www.")
}

// ApexDomain returns the registrable domain of u (e.g. "acme.co.uk" for
// "https://shop.acme.co.uk/x"). When no registrable domain can be derived the
// input is returned unchanged.
func ApexDomain(u string) string {
	host := Host(u)
	if host == "" {
		return u
	}
	apex, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return u
	}
	return apex
}

// Base returns scheme://host of u, the root that site paths are resolved
// against.
func Base(u string) string {
	parsed, err := url.Parse(Normalize(u))
	if err != nil || parsed.Host == "" {
		return strings.TrimRight(Normalize(u), "/")
	}
	return parsed.Scheme + "://" + parsed.Host
}

// Join resolves path against the base of u.
func Join(u, path string) string {
	return Base(u) + "/" + strings.TrimLeft(path, "/")
}

// Resolve resolves href relative to base. It returns "" for hrefs that do not
// parse or that point to non-http schemes.
func Resolve(base, href string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ""
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	abs := b.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return ""
	}
	abs.Fragment = ""
	return abs.String()
}

// SameSite reports whether a and b share a registrable domain, so
// "https://acme.it" and "https://shop.acme.it" are the same site.
func SameSite(a, b string) bool {
	ha, hb := Host(a), Host(b)
	if ha == "" || hb == "" {
		return false
	}
	pa, errA := publicsuffix.EffectiveTLDPlusOne(ha)
	pb, errB := publicsuffix.EffectiveTLDPlusOne(hb)
	return errA == nil && errB == nil && pa == pb
}
