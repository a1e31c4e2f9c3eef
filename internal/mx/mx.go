// Package mx checks whether a domain accepts mail.
package mx

import (
	"context"
	"net"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Resolver is the subset of *net.Resolver used for MX lookups.
type Resolver interface {
	LookupMX(ctx context.Context, name string) ([]*net.MX, error)
}

// Checker looks up mail exchangers for a domain.
type Checker interface {
	Lookup(ctx context.Context, domain string) (Result, error)
}

// Result lists the mail exchangers of a domain, lowest preference first.
type Result struct {
	Hosts []string
}

// String joins the hosts with commas.
func (r Result) String() string {
	return strings.Join(r.Hosts, ",")
}

// DNSChecker resolves MX records with a bounded timeout.
type DNSChecker struct {
	resolver Resolver
	timeout  time.Duration
}

// NewDNSChecker creates a checker. A nil resolver uses net.DefaultResolver.
func NewDNSChecker(r Resolver, timeout time.Duration) *DNSChecker {
	if r == nil {
		r = net.DefaultResolver
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &DNSChecker{resolver: r, timeout: timeout}
}

// Lookup returns the MX hosts of domain. A domain without records is an
// error so callers can treat it the same way as a resolution failure.
func (c *DNSChecker) Lookup(ctx context.Context, domain string) (Result, error) {
	domain = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(domain)), ".")
	if domain == "" {
		return Result{}, eris.New("mx: empty domain")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	records, err := c.resolver.LookupMX(ctx, domain)
	if err != nil {
		return Result{}, eris.Wrapf(err, "mx: lookup %s", domain)
	}

	sort.SliceStable(records, func(i, j int) bool { return records[i].Pref < records[j].Pref })
	var res Result
	for _, r := range records {
		host := strings.TrimSuffix(r.Host, ".")
		if host == "" {
			continue
		}
		res.Hosts = append(res.Hosts, host)
	}
	if len(res.Hosts) == 0 {
		return Result{}, eris.Errorf("mx: no records for %s", domain)
	}
	return res, nil
}
