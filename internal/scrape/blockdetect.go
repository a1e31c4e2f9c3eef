package scrape

import (
	"net/http"
	"strings"
)

// BlockType describes the kind of block detected.
type BlockType string

const (
	BlockNone       BlockType = ""
	BlockCloudflare BlockType = "cloudflare"
	BlockJSShell    BlockType = "js_shell"
)

// DetectBlock reports anti-bot interstitials. Captcha widgets are not treated
// as blocks: contact pages routinely embed one next to real content.
func DetectBlock(resp *http.Response, body []byte) (bool, BlockType) {
	if resp == nil {
		return false, BlockNone
	}

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusServiceUnavailable {
		if resp.Header.Get("cf-ray") != "" || strings.EqualFold(resp.Header.Get("server"), "cloudflare") {
			return true, BlockCloudflare
		}
	}

	if len(body) > 4096 {
		return false, BlockNone
	}
	lower := strings.ToLower(string(body))
	if strings.Contains(lower, "checking your browser") || strings.Contains(lower, "cf-browser-verification") {
		return true, BlockCloudflare
	}
	if strings.Contains(lower, "<noscript") && strings.Contains(lower, "enable javascript") {
		return true, BlockJSShell
	}
	return false, BlockNone
}
