package dedup

import (
	"math"
	"strings"

	"heatnews/internal/catalog"
	"heatnews/internal/newsmodel"
)

// ScoreRelevance implements spec.md §4.8 stage 3: weighted term/category
// coverage plus a title-match bonus, with a floor for text-less articles
// whose title alone contains a matched term.
func ScoreRelevance(articles []newsmodel.Article, dict catalog.Dictionary) []newsmodel.Article {
	out := make([]newsmodel.Article, len(articles))
	for i, a := range articles {
		out[i] = scoreOne(a, dict)
	}
	return out
}

func scoreOne(a newsmodel.Article, dict catalog.Dictionary) newsmodel.Article {
	titleLower := strings.ToLower(a.Title)
	combined := titleLower
	if a.FullText != nil {
		combined = combined + " " + strings.ToLower(*a.FullText)
	}

	matchedTerms := 0
	matchedCategories := make(map[catalog.HeatCategory]bool)
	titleHasMatch := false

	for _, cat := range catalog.AllCategories {
		for _, term := range dict.ByLanguageAndCategory(a.Language, cat) {
			tl := strings.ToLower(term.Term)
			if tl == "" || !strings.Contains(combined, tl) {
				continue
			}
			matchedTerms++
			matchedCategories[cat] = true
			if strings.Contains(titleLower, tl) {
				titleHasMatch = true
			}
		}
	}

	termScore := math.Min(float64(matchedTerms)/3.0, 1.0)
	categoryScore := math.Min(float64(len(matchedCategories))/2.0, 1.0)
	titleBonus := 0.0
	if titleHasMatch {
		titleBonus = 0.2
	}

	score := termScore*0.5 + categoryScore*0.3 + titleBonus
	if a.FullText == nil && titleHasMatch && score < 0.3 {
		score = 0.3
	}

	return a.WithRelevanceScore(score)
}
