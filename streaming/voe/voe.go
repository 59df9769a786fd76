// Package voe resolves VOE hoster pages into playable stream URLs.
//
// VOE embeds its stream manifest as an obfuscated JSON blob inside a
// <script type="application/json"> tag and bounces visitors through
// JavaScript redirects before serving the real page. The deobfuscation
// pipeline is a fixed composition of reversible transforms captured from the
// hoster's own player script; when VOE rotates the scheme, the round-trip
// fixture test is the first thing that breaks.
package voe

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/kinocast-cli/kinocast/key"
	"github.com/kinocast-cli/kinocast/network"
	"github.com/kinocast-cli/kinocast/streaming"
	"github.com/kinocast-cli/kinocast/streaming/transform"
	"github.com/spf13/viper"
)

// markers are the junk sequences VOE sprinkles into the base64 layer.
var markers = []string{"@#", "^^", "~@", "%?", "*~", "!!", "#&"}

// shiftOffset is the fixed character shift applied during obfuscation; the
// pipeline subtracts it.
const shiftOffset = 3

// baitPatterns identify decoy URLs served to scrapers instead of the stream.
var baitPatterns = []string{"bigbuckbunny", "test-videos.co.uk", "sample-videos.com"}

var (
	scriptRe   = regexp.MustCompile(`(?s)<script\s+type="application/json">\s*(\[.*?\])\s*</script>`)
	fallbackRe = regexp.MustCompile(`(https?://[^\s"']+\.(?:mp4|m3u8)[^\s"']*)`)

	redirectRes = []*regexp.Regexp{
		regexp.MustCompile(`window\.location\.href\s*=\s*['"]([^'"]+)['"]`),
		regexp.MustCompile(`window\.location\s*=\s*['"]([^'"]+)['"]`),
		regexp.MustCompile(`location\.href\s*=\s*['"]([^'"]+)['"]`),
	}
)

// Deobfuscate turns the raw <script type="application/json"> payload into
// the stream URL it hides. Pure: no network, no state.
func Deobfuscate(rawJSON string) (string, error) {
	var parts []string
	if err := json.Unmarshal([]byte(rawJSON), &parts); err != nil {
		return "", streaming.Parsef("payload is not a JSON array: %w", err)
	}
	if len(parts) == 0 {
		return "", streaming.Parsef("payload array is empty")
	}

	step := transform.RotateLetters(parts[0], 13)
	step = transform.StripMarkers(step, markers...)

	step, err := transform.DecodeBase64(transform.CleanBase64(step))
	if err != nil {
		return "", streaming.Parsef("outer base64 layer: %w", err)
	}

	step = transform.ShiftRunes(step, -shiftOffset)
	step = transform.Reverse(step)

	step, err = transform.DecodeBase64(transform.CleanBase64(step))
	if err != nil {
		return "", streaming.Parsef("inner base64 layer: %w", err)
	}

	var manifest map[string]any
	if err := json.Unmarshal([]byte(step), &manifest); err != nil {
		return "", streaming.Parsef("decoded payload is not JSON: %w", err)
	}

	for _, field := range []string{"direct_access_url", "source"} {
		if raw, ok := manifest[field].(string); ok && raw != "" {
			return validateStreamURL(raw)
		}
	}

	return "", streaming.Parsef("decoded payload carries no stream URL")
}

// validateStreamURL requires a scheme and a host; anything less means the
// pipeline decoded garbage.
func validateStreamURL(raw string) (string, error) {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", streaming.Parsef("decoded value %q is not a URL", raw)
	}
	return raw, nil
}

func isBait(streamURL string) bool {
	lower := strings.ToLower(streamURL)
	for _, pattern := range baitPatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}

// Resolver extracts playable URLs from VOE stream pages.
type Resolver struct {
	client *http.Client
}

func New() *Resolver {
	return &Resolver{client: network.NoRedirect}
}

func (r *Resolver) Name() string {
	return "voe"
}

// CanHandle claims voe.sx and its rotating mirror domains.
func (r *Resolver) CanHandle(pageURL string) bool {
	return strings.Contains(pageURL, "voe.sx") || strings.Contains(pageURL, "voe.")
}

// Resolve fetches the page, follows JavaScript and Location redirects up to
// the configured hop limit, and runs the deobfuscation pipeline on every
// embedded payload until one yields a non-bait stream URL.
func (r *Resolver) Resolve(ctx context.Context, pageURL string) (string, error) {
	current := pageURL
	hops := r.maxRedirects()

	for hop := 0; ; hop++ {
		html, status, err := network.Get(ctx, r.client, current, nil)
		if err != nil {
			return "", streaming.Networkf("fetch %s: %w", current, err)
		}
		if status < 200 || status >= 300 {
			return "", streaming.Networkf("fetch %s: status %d", current, status)
		}

		if redirect, ok := extractRedirect(html); ok {
			if hop >= hops {
				return "", streaming.Networkf("redirect limit (%d) exceeded resolving %s", hops, pageURL)
			}
			current = resolveRedirectURL(current, redirect)
			continue
		}

		streamURL, found, err := extractStreamURL(html)
		if found {
			return streamURL, nil
		}
		if err != nil {
			return "", streaming.Parsef("payload present on %s but deobfuscation failed: %w", current, err)
		}
		return "", streaming.NotFoundf("no stream reference on %s", pageURL)
	}
}

func (r *Resolver) maxRedirects() int {
	hops := viper.GetInt(key.NetworkMaxRedirects)
	if hops <= 0 {
		hops = 5
	}
	return hops
}

// extractRedirect finds a JavaScript relocation target in the page.
func extractRedirect(html string) (string, bool) {
	for _, re := range redirectRes {
		if match := re.FindStringSubmatch(html); match != nil {
			return match[1], true
		}
	}
	return "", false
}

// resolveRedirectURL interprets a redirect target relative to the page it
// came from.
func resolveRedirectURL(base, redirect string) string {
	if strings.HasPrefix(redirect, "//") {
		return "https:" + redirect
	}
	if strings.HasPrefix(redirect, "http") {
		return redirect
	}

	parsed, err := url.Parse(base)
	if err != nil {
		return redirect
	}
	target, err := parsed.Parse(redirect)
	if err != nil {
		return redirect
	}
	return target.String()
}

// extractStreamURL runs the pipeline over every embedded payload, skipping
// bait, then falls back to a bare media URL scan. The returned error only
// reports that payloads existed but none decoded.
func extractStreamURL(html string) (string, bool, error) {
	var lastErr error

	for _, match := range scriptRe.FindAllStringSubmatch(html, -1) {
		streamURL, err := Deobfuscate(match[1])
		if err != nil {
			lastErr = err
			continue
		}
		if isBait(streamURL) {
			continue
		}
		return streamURL, true, nil
	}

	if match := fallbackRe.FindStringSubmatch(html); match != nil && !isBait(match[1]) {
		return match[1], true, nil
	}

	return "", false, lastErr
}
