// Package resolver implements the URL resolver (spec.md §4.6): indirect
// (redirect-wrapped) article URLs are resolved to the publisher's real URL
// via HTTP redirect-follow, falling back to a secondary decoded-lookup
// protocol, and finally to the original URL on any failure. Resolution never
// raises.
package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// subCallTimeout bounds every HTTP call the resolver makes on its own
// behalf, distinct from the extractor's 15s fetch timeout (spec.md §5).
const subCallTimeout = 10 * time.Second

// Resolver resolves indirect article URLs.
type Resolver struct {
	client        *http.Client
	indirectHosts map[string]bool
}

// New builds a Resolver sharing client for connection pooling (spec.md §5:
// "a single client instance shared across sources"). indirectHosts names the
// hosts treated as redirect-wrapping aggregators (e.g. "news.google.com").
func New(client *http.Client, indirectHosts []string) *Resolver {
	if client == nil {
		client = &http.Client{}
	}
	set := make(map[string]bool, len(indirectHosts))
	for _, h := range indirectHosts {
		set[strings.ToLower(h)] = true
	}
	return &Resolver{client: client, indirectHosts: set}
}

// Resolve returns the best-effort publisher URL for rawURL. It never
// returns an error; on any failure at any step it returns rawURL unchanged.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	if !r.isIndirect(parsed) {
		return rawURL
	}

	if terminal, ok := r.followRedirect(ctx, rawURL); ok {
		return terminal
	}
	if decoded, ok := r.decodedLookup(ctx, parsed); ok {
		return decoded
	}
	return rawURL
}

func (r *Resolver) isIndirect(u *url.URL) bool {
	return r.indirectHosts[strings.ToLower(u.Hostname())]
}

// followRedirect performs an HTTP GET letting the client follow redirects,
// reporting success if the terminal URL left the indirect host.
func (r *Resolver) followRedirect(ctx context.Context, rawURL string) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, subCallTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", false
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return "", false
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.Request == nil || resp.Request.URL == nil {
		return "", false
	}
	if r.indirectHosts[strings.ToLower(resp.Request.URL.Hostname())] {
		return "", false
	}
	return resp.Request.URL.String(), true
}

// decodedLookup implements the secondary protocol: GET a companion endpoint
// keyed by the URL's path, scrape a signature and timestamp token out of the
// returned HTML, then POST those to a decoder endpoint that responds with a
// JSON envelope carrying the true URL. Any deviation from this shape (a
// changed protocol on the indirect host) falls through silently.
func (r *Resolver) decodedLookup(ctx context.Context, u *url.URL) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, subCallTimeout)
	defer cancel()

	companionURL := fmt.Sprintf("https://%s/rss/articles%s", u.Hostname(), u.Path)
	sig, ts, ok := r.fetchTokens(ctx, companionURL)
	if !ok {
		return "", false
	}

	decodeURL := fmt.Sprintf("https://%s/_/DotsSplashUi/data/batchexecute", u.Hostname())
	form := url.Values{}
	form.Set("signature", sig)
	form.Set("timestamp", ts)
	form.Set("path", u.Path)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, decodeURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", false
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", false
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return "", false
	}

	var envelope struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return "", false
	}
	if envelope.URL == "" {
		return "", false
	}
	return envelope.URL, true
}

// fetchTokens scrapes a signature/timestamp pair out of the companion page's
// HTML, using goquery the way the extractor uses it for body-text scraping.
func (r *Resolver) fetchTokens(ctx context.Context, companionURL string) (sig, ts string, ok bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, companionURL, nil)
	if err != nil {
		return "", "", false
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return "", "", false
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return "", "", false
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", "", false
	}

	sig, sigOK := doc.Find("[data-sig]").First().Attr("data-sig")
	ts, tsOK := doc.Find("[data-ts]").First().Attr("data-ts")
	if !sigOK || !tsOK || sig == "" || ts == "" {
		return "", "", false
	}
	return sig, ts, true
}
