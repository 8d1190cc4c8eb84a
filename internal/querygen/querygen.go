// Package querygen implements the query generator (spec.md §4.1): it turns
// the geography catalog and heat-term dictionary into per-source, ordered
// sequences of newsmodel.Query, respecting each source's character limit and
// category-fanout support.
package querygen

import (
	"sort"
	"strings"

	"heatnews/internal/catalog"
	"heatnews/internal/newsmodel"
	"heatnews/internal/sourceadapter"
)

// sortedCategories returns catalog.AllCategories sorted alphabetically, so
// generation is deterministic across runs regardless of the dictionary's
// internal enumeration order.
func sortedCategories() []catalog.HeatCategory {
	cats := append([]catalog.HeatCategory{}, catalog.AllCategories...)
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })
	return cats
}

// formatTerm double-quotes multi-word terms, leaves single-word terms bare.
func formatTerm(term string) string {
	if strings.ContainsAny(term, " \t") {
		return `"` + term + `"`
	}
	return term
}

// buildORGroup renders terms as "(t1 OR \"t2 phrase\" OR t3)".
func buildORGroup(terms []string) string {
	if len(terms) == 0 {
		return ""
	}
	formatted := make([]string, len(terms))
	for i, t := range terms {
		formatted[i] = formatTerm(t)
	}
	return "(" + strings.Join(formatted, " OR ") + ")"
}

// fitTerms greedily includes terms (already priority-ordered: category order
// then intra-category order) until adding the next one would make
// buildORGroup(included) plus extraLen exceed charLimit. At least one term is
// always included when terms is non-empty, even if it alone overflows the
// limit (there is no smaller representation available).
func fitTerms(terms []string, extraLen, charLimit int) []string {
	var included []string
	for _, t := range terms {
		candidate := append(append([]string{}, included...), t)
		if len(buildORGroup(candidate))+extraLen <= charLimit || len(included) == 0 {
			included = candidate
		} else {
			break
		}
	}
	return included
}

func heatTermStrings(terms []catalog.HeatTerm) []string {
	out := make([]string, len(terms))
	for i, t := range terms {
		out[i] = t.Term
	}
	return out
}

func intersectLanguages(regionLangs []newsmodel.Language, cfg sourceadapter.Config) []newsmodel.Language {
	var out []newsmodel.Language
	for _, l := range regionLangs {
		if cfg.Supports(l) {
			out = append(out, l)
		}
	}
	return out
}

// GenerateStateQueries builds the state-level query set for every source in
// sourceConfigs, per spec.md §4.1.
func GenerateStateQueries(regions []catalog.Region, dict catalog.Dictionary, sourceConfigs map[newsmodel.SourceHint]sourceadapter.Config) map[newsmodel.SourceHint][]newsmodel.Query {
	out := make(map[newsmodel.SourceHint][]newsmodel.Query)

	for hint, cfg := range sourceConfigs {
		var queries []newsmodel.Query
		for _, region := range regions {
			langs := intersectLanguages(region.Languages, cfg)
			for _, lang := range langs {
				if cfg.SupportsCategoryFanout {
					for _, cat := range sortedCategories() {
						terms := heatTermStrings(dict.ByLanguageAndCategory(lang, cat))
						if len(terms) == 0 {
							continue
						}
						q := buildStateQuery(hint, lang, region, terms, cfg.CharLimit)
						queries = append(queries, q)
					}
				} else {
					terms := heatTermStrings(dict.ByLanguage(lang))
					if len(terms) == 0 {
						continue
					}
					q := buildStateQuery(hint, lang, region, terms, cfg.CharLimit)
					queries = append(queries, q)
				}
			}
		}
		out[hint] = queries
	}
	return out
}

func buildStateQuery(hint newsmodel.SourceHint, lang newsmodel.Language, region catalog.Region, terms []string, charLimit int) newsmodel.Query {
	suffix := " " + region.Name
	included := fitTerms(terms, len(suffix), charLimit)
	queryString := buildORGroup(included) + suffix
	return newsmodel.Query{
		QueryString: queryString,
		SourceHint:  hint,
		Language:    lang,
		StateSlug:   region.Slug,
		StateName:   region.Name,
		Level:       newsmodel.LevelState,
		PrimaryTerm: included[0],
	}
}

// GenerateDistrictQueries builds the district-level query set restricted to
// activeRegions, for sources whose budget is not exhausted (budgetOK).
func GenerateDistrictQueries(activeRegions []catalog.Region, dict catalog.Dictionary, sourceConfigs map[newsmodel.SourceHint]sourceadapter.Config, budgetOK map[newsmodel.SourceHint]bool) map[newsmodel.SourceHint][]newsmodel.Query {
	out := make(map[newsmodel.SourceHint][]newsmodel.Query)

	for hint, cfg := range sourceConfigs {
		if !budgetOK[hint] {
			continue
		}
		var queries []newsmodel.Query
		for _, region := range activeRegions {
			if len(region.Districts) == 0 {
				continue
			}
			langs := intersectLanguages(region.Languages, cfg)
			for _, lang := range langs {
				if cfg.SupportsCategoryFanout {
					for _, cat := range sortedCategories() {
						terms := heatTermStrings(dict.ByLanguageAndCategory(lang, cat))
						if len(terms) == 0 {
							continue
						}
						queries = append(queries, buildDistrictQueries(hint, lang, region, terms, cfg.CharLimit)...)
					}
				} else {
					terms := heatTermStrings(dict.ByLanguage(lang))
					if len(terms) == 0 {
						continue
					}
					queries = append(queries, buildDistrictQueries(hint, lang, region, terms, cfg.CharLimit)...)
				}
			}
		}
		out[hint] = queries
	}
	return out
}

// buildDistrictQueries produces one Query per district batch for a single
// (region, language, term set). The heat-term prefix is built from up to
// half the char limit, leaving the remainder for the district OR-batch.
func buildDistrictQueries(hint newsmodel.SourceHint, lang newsmodel.Language, region catalog.Region, terms []string, charLimit int) []newsmodel.Query {
	prefixBudget := charLimit / 2
	prefixTerms := fitTerms(terms, 0, prefixBudget)
	prefix := buildORGroup(prefixTerms)

	batches := batchDistricts(region.Districts, prefix, charLimit)

	queries := make([]newsmodel.Query, 0, len(batches))
	for _, qs := range batches {
		queries = append(queries, newsmodel.Query{
			QueryString: qs,
			SourceHint:  hint,
			Language:    lang,
			StateSlug:   region.Slug,
			StateName:   region.Name,
			Level:       newsmodel.LevelDistrict,
			PrimaryTerm: prefixTerms[0],
		})
	}
	return queries
}

// batchDistricts groups districts into OR-joined batches, each rendered as
// "prefix (d1 OR d2 OR ...)", the largest batch that keeps the total string
// within charLimit. Districts are consumed in catalog order; the final batch
// may be smaller.
func batchDistricts(districts []catalog.District, prefix string, charLimit int) []string {
	var batches []string
	var current []string

	render := func(names []string) string {
		return strings.TrimSpace(prefix + " (" + strings.Join(names, " OR ") + ")")
	}

	for _, d := range districts {
		candidate := append(append([]string{}, current...), d.Name)
		if len(render(candidate)) <= charLimit || len(current) == 0 {
			current = candidate
		} else {
			batches = append(batches, render(current))
			current = []string{d.Name}
		}
	}
	if len(current) > 0 {
		batches = append(batches, render(current))
	}
	return batches
}
