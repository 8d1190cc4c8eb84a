package dedup

import (
	"regexp"
	"strings"

	"heatnews/internal/catalog"
	"heatnews/internal/newsmodel"
)

// DefaultExcludeThreshold matches spec.md §4.8 stage 4's default bar.
const DefaultExcludeThreshold = 0.05

// Config bundles the tunables for FilterExclusions and Run.
type Config struct {
	ExcludeThreshold  float64
	ExclusionPatterns []*regexp.Regexp
}

// DefaultConfig loads the default exclusion patterns: irrelevant marketing,
// sports scores, horoscopes, generic weather forecasts (spec.md §4.8 stage
// 4). Patterns are compiled once, matching §9's note on frozen, process-start
// compiled exclusion patterns.
func DefaultConfig() Config {
	patterns := []string{
		`(?i)\b(buy now|limited time offer|exclusive deal|discount code)\b`,
		`(?i)\b\d+-\d+\b.*\b(wins?|defeats?|beats?)\b`,
		`(?i)\bhoroscope\b`,
		`(?i)\b(today'?s|tomorrow'?s) weather forecast\b`,
	}
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		compiled = append(compiled, regexp.MustCompile(p))
	}
	return Config{ExcludeThreshold: DefaultExcludeThreshold, ExclusionPatterns: compiled}
}

// FilterExclusions keeps an article if its relevance score already clears
// the threshold, or if no exclusion pattern matches its combined text
// (spec.md §4.8 stage 4). The bar favors recall: gating, not subtracting
// from the score.
func FilterExclusions(articles []newsmodel.Article, cfg Config) []newsmodel.Article {
	out := make([]newsmodel.Article, 0, len(articles))
	for _, a := range articles {
		if a.RelevanceScore >= cfg.ExcludeThreshold {
			out = append(out, a)
			continue
		}

		combined := strings.ToLower(a.Title)
		if a.FullText != nil {
			combined = combined + " " + strings.ToLower(*a.FullText)
		}

		excluded := false
		for _, re := range cfg.ExclusionPatterns {
			if re.MatchString(combined) {
				excluded = true
				break
			}
		}
		if !excluded {
			out = append(out, a)
		}
	}
	return out
}

// Run chains all four stages in order: URL dedup, title dedup, relevance
// scoring, exclusion filter.
func Run(articles []newsmodel.Article, dict catalog.Dictionary, cfg Config) []newsmodel.Article {
	deduped := DedupeByURL(articles)
	deduped = DedupeByTitle(deduped)
	scored := ScoreRelevance(deduped, dict)
	return FilterExclusions(scored, cfg)
}
