package scrape

import "regexp"

type techSignature struct {
	name     string
	patterns []*regexp.Regexp
}

func sig(name string, patterns ...string) techSignature {
	s := techSignature{name: name}
	for _, p := range patterns {
		s.patterns = append(s.patterns, regexp.MustCompile(`(?i)`+p))
	}
	return s
}

// Order is the order technologies are reported in.
var techSignatures = []techSignature{
	sig("WordPress", `wp-content`, `wp-includes`),
	sig("WooCommerce", `woocommerce`, `wc-`),
	sig("Shopify", `cdn\.shopify\.com`, `Shopify`),
	sig("Google Tag Manager", `googletagmanager\.com/gtm\.js`),
	sig("Google Analytics", `google-analytics\.com`, `gtag\(`),
	sig("HubSpot", `js\.hs-scripts\.com`, `hubspot`),
}

// MaxTechnologies caps the number of technologies reported for one page.
const MaxTechnologies = 10

// DetectTech returns the names of technologies whose signatures appear in
// raw HTML, in signature-table order.
func DetectTech(rawHTML string) []string {
	var found []string
	for _, s := range techSignatures {
		for _, p := range s.patterns {
			if p.MatchString(rawHTML) {
				found = append(found, s.name)
				break
			}
		}
		if len(found) == MaxTechnologies {
			break
		}
	}
	return found
}
