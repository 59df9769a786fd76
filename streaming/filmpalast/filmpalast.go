// Package filmpalast searches filmpalast.to for titles and extracts the VOE
// hoster link from the matched stream page.
package filmpalast

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/kinocast-cli/kinocast/internal/cache"
	"github.com/kinocast-cli/kinocast/network"
	"github.com/kinocast-cli/kinocast/streaming"
)

const defaultBaseURL = "https://filmpalast.to"

// Provider implements streaming.Provider against filmpalast.to.
type Provider struct {
	// BaseURL exists so tests can point the provider at a local server.
	BaseURL string

	client *http.Client
}

func New() *Provider {
	return &Provider{
		BaseURL: defaultBaseURL,
		client:  network.Client,
	}
}

func (p *Provider) Name() string {
	return "filmpalast"
}

// FindStreamPage searches the catalog for the queried title, picks the best
// matching result and returns the VOE hoster link from its stream page. When
// the search comes up empty, a direct slug probe is tried before giving up.
func (p *Provider) FindStreamPage(ctx context.Context, query streaming.TitleQuery) (streaming.PageRef, error) {
	candidates, err := p.search(ctx, query.Title)
	if err != nil {
		return streaming.PageRef{}, err
	}

	match, ok := streaming.BestMatch(query, candidates)
	if !ok {
		return p.probeSlug(ctx, query)
	}

	hosterURL, err := p.hosterLink(ctx, match.URL)
	if err != nil {
		return streaming.PageRef{}, err
	}

	return streaming.PageRef{Provider: p.Name(), URL: hosterURL}, nil
}

// search returns the listing for a title, served from the disk cache when a
// fresh copy exists.
func (p *Provider) search(ctx context.Context, title string) ([]streaming.Candidate, error) {
	cacheKey := cache.GenerateKey(title, p.Name())

	var candidates []streaming.Candidate
	if cache.Read(cacheKey, &candidates) {
		return candidates, nil
	}

	searchURL := p.BaseURL + "/search/title/" + url.PathEscape(title)
	body, status, err := network.Get(ctx, p.client, searchURL, nil)
	if err != nil {
		return nil, streaming.Networkf("search %s: %w", searchURL, err)
	}
	if status < 200 || status >= 300 {
		return nil, streaming.Networkf("search %s: status %d", searchURL, status)
	}

	candidates, err = p.parseListing(body)
	if err != nil {
		return nil, err
	}

	// Best effort; a failed write only costs a refetch.
	_ = cache.Write(cacheKey, candidates)

	return candidates, nil
}

// parseListing extracts search result candidates from the catalog page.
func (p *Provider) parseListing(body string) ([]streaming.Candidate, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, streaming.Parsef("search page: %w", err)
	}

	content := doc.Find("#content")
	if content.Length() == 0 {
		return nil, streaming.Parsef("search page layout changed: #content missing")
	}

	var candidates []streaming.Candidate
	content.Find("article.liste").Each(func(_ int, item *goquery.Selection) {
		link := item.Find("a[href]").First()
		href, ok := link.Attr("href")
		if !ok {
			return
		}

		title := strings.TrimSpace(link.Text())
		if title == "" {
			title = strings.TrimSpace(item.Find("h2").Text())
		}
		if title == "" {
			return
		}

		candidates = append(candidates, streaming.Candidate{
			Title: title,
			URL:   p.absolute(href),
		})
	})

	return candidates, nil
}

// probeSlug guesses the stream page URL straight from the title. Some catalog
// entries never show up in search but are reachable under their slug.
func (p *Provider) probeSlug(ctx context.Context, query streaming.TitleQuery) (streaming.PageRef, error) {
	probeURL := p.BaseURL + "/stream/" + slugify(query.Title)

	body, status, err := network.Get(ctx, p.client, probeURL, nil)
	if err != nil {
		return streaming.PageRef{}, streaming.Networkf("probe %s: %w", probeURL, err)
	}
	if status < 200 || status >= 300 {
		return streaming.PageRef{}, streaming.NotFoundf("no result for %q on %s", query.String(), p.Name())
	}

	hosterURL, ok := extractHosterLink(body)
	if !ok {
		return streaming.PageRef{}, streaming.NotFoundf("no result for %q on %s", query.String(), p.Name())
	}

	return streaming.PageRef{Provider: p.Name(), URL: hosterURL}, nil
}

// hosterLink fetches a stream page and pulls the VOE link out of it.
func (p *Provider) hosterLink(ctx context.Context, pageURL string) (string, error) {
	body, status, err := network.Get(ctx, p.client, pageURL, nil)
	if err != nil {
		return "", streaming.Networkf("stream page %s: %w", pageURL, err)
	}
	if status < 200 || status >= 300 {
		return "", streaming.Networkf("stream page %s: status %d", pageURL, status)
	}

	hosterURL, ok := extractHosterLink(body)
	if !ok {
		return "", streaming.NotFoundf("no supported hoster on %s", pageURL)
	}
	return hosterURL, nil
}

func extractHosterLink(body string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return "", false
	}

	var hosterURL string
	doc.Find("a[href]").EachWithBreak(func(_ int, link *goquery.Selection) bool {
		href, _ := link.Attr("href")
		if strings.Contains(href, "voe.") {
			hosterURL = href
			return false
		}
		return true
	})

	return hosterURL, hosterURL != ""
}

// absolute resolves a listing href against the catalog base URL.
func (p *Provider) absolute(href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	base, err := url.Parse(p.BaseURL)
	if err != nil {
		return href
	}
	target, err := base.Parse(href)
	if err != nil {
		return href
	}
	return target.String()
}

// slugify turns a title into the catalog's URL slug: alphanumerics lowered,
// everything else collapsed into single dashes.
func slugify(title string) string {
	var b strings.Builder
	dash := false

	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}

	return strings.TrimRight(b.String(), "-")
}
