// Package dedup implements the deduplication and relevance filter
// (spec.md §4.8): URL normalization and dedup, language-bucketed title
// similarity dedup, heat-term relevance scoring, and a low-bar exclusion
// filter tuned for recall over precision.
package dedup

import (
	"net/url"
	"sort"
	"strings"
	"unicode/utf8"

	"heatnews/internal/newsmodel"
)

// trackingParams is the closed list (~20) of tracking query parameters
// stripped during URL normalization (spec.md §4.8, §9 open question: the
// precise list is left as a static set here rather than runtime config).
var trackingParams = map[string]bool{
	"utm_source": true, "utm_medium": true, "utm_campaign": true,
	"utm_term": true, "utm_content": true, "utm_id": true,
	"fbclid": true, "gclid": true, "yclid": true, "msclkid": true,
	"_ga": true, "_gl": true, "ref": true, "mc_cid": true, "mc_eid": true,
	"dclid": true, "igshid": true, "vero_id": true, "mkt_tok": true, "ncid": true, "spm": true,
}

// NormalizeURL applies spec.md §4.8's canonicalization: lowercase
// scheme/host, strip a leading "www.", drop the fragment, remove tracking
// params, sort remaining params deterministically, and strip a trailing
// slash from the path (an empty path becomes "/"). Normalization is
// idempotent.
func NormalizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	u.Fragment = ""

	q := u.Query()
	for key, vals := range q {
		if trackingParams[strings.ToLower(key)] {
			q.Del(key)
			continue
		}
		sorted := append([]string{}, vals...)
		sort.Strings(sorted)
		q[key] = sorted
	}
	// url.Values.Encode sorts by key, giving the deterministic key-sorted
	// ordering spec.md §4.8 requires.
	u.RawQuery = q.Encode()

	path := strings.TrimSuffix(u.Path, "/")
	if path == "" {
		path = "/"
	}
	u.Path = path

	return u.String()
}

// qualityScore ranks candidates within a duplicate group (spec.md §4.8).
func qualityScore(a newsmodel.Article) int {
	score := 0
	if a.FullText != nil {
		score += 100 + len(*a.FullText)
	}
	if a.District != "" {
		score += 10
	}
	if a.Source != "" && a.Source != "Unknown" {
		score += 5
	}
	return score
}

// DedupeByURL groups articles by normalized URL and keeps the
// highest-quality member of each group, preserving first-seen group order.
func DedupeByURL(articles []newsmodel.Article) []newsmodel.Article {
	best := make(map[string]newsmodel.Article, len(articles))
	order := make([]string, 0, len(articles))

	for _, a := range articles {
		key := NormalizeURL(a.URL)
		cur, exists := best[key]
		if !exists {
			best[key] = a
			order = append(order, key)
			continue
		}
		if qualityScore(a) > qualityScore(cur) {
			best[key] = a
		}
	}

	out := make([]newsmodel.Article, 0, len(order))
	for _, k := range order {
		out = append(out, best[k])
	}
	return out
}

// DedupeByTitle applies title-similarity dedup within each language bucket;
// cross-language comparison never happens (spec.md §4.8 stage 2).
func DedupeByTitle(articles []newsmodel.Article) []newsmodel.Article {
	order := make([]newsmodel.Language, 0)
	buckets := make(map[newsmodel.Language][]newsmodel.Article)
	for _, a := range articles {
		if _, ok := buckets[a.Language]; !ok {
			order = append(order, a.Language)
		}
		buckets[a.Language] = append(buckets[a.Language], a)
	}

	out := make([]newsmodel.Article, 0, len(articles))
	for _, lang := range order {
		var kept []newsmodel.Article
		for _, a := range buckets[lang] {
			normA := normalizeTitle(a.Title)
			dupIdx := -1
			for i, k := range kept {
				if similarityRatio(normA, normalizeTitle(k.Title)) >= 0.85 {
					dupIdx = i
					break
				}
			}
			if dupIdx == -1 {
				kept = append(kept, a)
			} else if qualityScore(a) > qualityScore(kept[dupIdx]) {
				kept[dupIdx] = a
			}
		}
		out = append(out, kept...)
	}
	return out
}

// normalizeTitle strips, lowercases, and drops a trailing publisher
// attribution suffix (the text after the final " - ") when the title
// exceeds 40 characters.
func normalizeTitle(title string) string {
	t := strings.ToLower(strings.TrimSpace(title))
	if utf8.RuneCountInString(t) > 40 {
		if idx := strings.LastIndex(t, " - "); idx >= 0 {
			t = t[:idx]
		}
	}
	return strings.TrimSpace(t)
}
