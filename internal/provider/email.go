package provider

import (
	"context"
	"strings"

	"github.com/sells-group/lead-scout/pkg/hunter"
	"github.com/sells-group/lead-scout/pkg/neverbounce"
	"github.com/sells-group/lead-scout/pkg/zerobounce"
)

// Generic verifier names.
const (
	ZeroBounce  = "zerobounce"
	NeverBounce = "neverbounce"
)

// HunterFinder adapts the Hunter API to EmailFinder.
type HunterFinder struct {
	client hunter.Client
}

// NewHunterFinder wraps a Hunter client.
func NewHunterFinder(c hunter.Client) *HunterFinder {
	return &HunterFinder{client: c}
}

func (h *HunterFinder) Name() string { return "hunter" }

// DomainSearch returns the published addresses for domain, highest
// confidence first as ranked by Hunter.
func (h *HunterFinder) DomainSearch(ctx context.Context, domain string, limit int) ([]string, error) {
	emails, err := h.client.DomainSearch(ctx, domain, limit)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(emails))
	for _, e := range emails {
		if v := strings.TrimSpace(e.Value); v != "" {
			out = append(out, v)
		}
	}
	return out, nil
}

func (h *HunterFinder) Verify(ctx context.Context, email string) (string, map[string]any, error) {
	v, err := h.client.Verify(ctx, email)
	if err != nil {
		return "", nil, err
	}
	return v.Status, map[string]any{
		"result": v.Result,
		"score":  v.Score,
	}, nil
}

// ZeroBounceVerifier adapts ZeroBounce to Verifier.
type ZeroBounceVerifier struct {
	client zerobounce.Client
}

// NewZeroBounceVerifier wraps a ZeroBounce client.
func NewZeroBounceVerifier(c zerobounce.Client) *ZeroBounceVerifier {
	return &ZeroBounceVerifier{client: c}
}

func (z *ZeroBounceVerifier) Name() string { return ZeroBounce }

func (z *ZeroBounceVerifier) Verify(ctx context.Context, email string) (string, map[string]any, error) {
	v, err := z.client.Validate(ctx, email)
	if err != nil {
		return "", nil, err
	}
	details := map[string]any{"provider": ZeroBounce}
	if v.SubStatus != "" {
		details["sub_status"] = v.SubStatus
	}
	return v.Status, details, nil
}

// NeverBounceVerifier adapts NeverBounce to Verifier.
type NeverBounceVerifier struct {
	client neverbounce.Client
}

// NewNeverBounceVerifier wraps a NeverBounce client.
func NewNeverBounceVerifier(c neverbounce.Client) *NeverBounceVerifier {
	return &NeverBounceVerifier{client: c}
}

func (n *NeverBounceVerifier) Name() string { return NeverBounce }

func (n *NeverBounceVerifier) Verify(ctx context.Context, email string) (string, map[string]any, error) {
	res, err := n.client.Check(ctx, email)
	if err != nil {
		return "", nil, err
	}
	details := map[string]any{"provider": NeverBounce}
	if len(res.Flags) > 0 {
		details["flags"] = res.Flags
	}
	return res.Result, details, nil
}
