package dedup

import (
	"testing"
	"time"

	"heatnews/internal/catalog"
	"heatnews/internal/newsmodel"
)

func makeScored(title string, score float64) newsmodel.Article {
	ref, _ := newsmodel.NewArticleRef(title, "https://example.com/x", "Source", time.Now(), false, newsmodel.LangEnglish, "Karnataka", "", "")
	a := newsmodel.NewArticle(ref)
	return a.WithRelevanceScore(score)
}

func TestFilterExclusionsKeepsHighScoringArticlesRegardlessOfPattern(t *testing.T) {
	cfg := DefaultConfig()
	a := makeScored("Today's weather forecast horoscope special", 0.9)

	out := FilterExclusions([]newsmodel.Article{a}, cfg)
	if len(out) != 1 {
		t.Error("expected high relevance score to bypass exclusion patterns entirely")
	}
}

func TestFilterExclusionsDropsLowScoringPatternMatches(t *testing.T) {
	cfg := DefaultConfig()
	a := makeScored("Check your daily horoscope for today", 0.01)

	out := FilterExclusions([]newsmodel.Article{a}, cfg)
	if len(out) != 0 {
		t.Error("expected low-scoring horoscope article to be excluded")
	}
}

func TestFilterExclusionsKeepsLowScoringNonMatches(t *testing.T) {
	cfg := DefaultConfig()
	a := makeScored("A quiet local news update", 0.01)

	out := FilterExclusions([]newsmodel.Article{a}, cfg)
	if len(out) != 1 {
		t.Error("expected a low-scoring but non-matching article to survive, since the filter gates rather than subtracts")
	}
}

func TestRunChainsAllFourStages(t *testing.T) {
	dup1 := makeScored("Heatwave warning issued for Karnataka", 0)
	dup2 := dup1
	dup2.RelevanceScore = 0

	out := Run([]newsmodel.Article{dup1, dup2}, catalog.SampleDictionary(), DefaultConfig())
	if len(out) > 1 {
		t.Errorf("expected Run to at least dedupe identical articles down to 1, got %d", len(out))
	}
}
