package dedup

import (
	"testing"
	"time"

	"heatnews/internal/newsmodel"
)

func TestNormalizeURLStripsTrackingAndWWW(t *testing.T) {
	raw := "HTTPS://WWW.Example.com/news/article/?utm_source=twitter&id=5&utm_campaign=x#section"
	got := NormalizeURL(raw)
	want := "https://example.com/news/article?id=5"
	if got != want {
		t.Errorf("NormalizeURL(%q) = %q, want %q", raw, got, want)
	}
}

func TestNormalizeURLIsIdempotent(t *testing.T) {
	raw := "https://example.com/a/b/?utm_medium=social&z=1&a=2"
	once := NormalizeURL(raw)
	twice := NormalizeURL(once)
	if once != twice {
		t.Errorf("expected idempotent normalization, got %q then %q", once, twice)
	}
}

func TestNormalizeURLSortsRemainingParams(t *testing.T) {
	got := NormalizeURL("https://example.com/p?z=1&a=2&m=3")
	want := "https://example.com/p?a=2&m=3&z=1"
	if got != want {
		t.Errorf("expected sorted query params, got %q want %q", got, want)
	}
}

func makeArticle(title, url string, lang newsmodel.Language, fullText *string) newsmodel.Article {
	ref, _ := newsmodel.NewArticleRef(title, url, "Source", time.Now(), false, lang, "Karnataka", "", "")
	a := newsmodel.NewArticle(ref)
	if fullText != nil {
		a = a.WithFullText(fullText)
	}
	return a
}

func TestDedupeByURLKeepsHighestQuality(t *testing.T) {
	text := "a long body of extracted text"
	a1 := makeArticle("Heatwave hits Bengaluru", "https://example.com/a?utm_source=x", newsmodel.LangEnglish, nil)
	a2 := makeArticle("Heatwave hits Bengaluru", "https://example.com/a", newsmodel.LangEnglish, &text)

	out := DedupeByURL([]newsmodel.Article{a1, a2})
	if len(out) != 1 {
		t.Fatalf("expected 1 article after url dedup, got %d", len(out))
	}
	if out[0].FullText == nil {
		t.Error("expected the article with full text to survive dedup")
	}
}

func TestDedupeByTitleWithinLanguageBucketOnly(t *testing.T) {
	a1 := makeArticle("Severe heatwave warning issued for region", "https://example.com/1", newsmodel.LangEnglish, nil)
	a2 := makeArticle("Severe heatwave warning issued for regions", "https://example.com/2", newsmodel.LangEnglish, nil)
	a3 := makeArticle("Severe heatwave warning issued for region", "https://example.com/3", newsmodel.LangHindi, nil)

	out := DedupeByTitle([]newsmodel.Article{a1, a2, a3})
	if len(out) != 2 {
		t.Fatalf("expected near-duplicate titles collapsed within a language bucket, cross-language kept separate; got %d", len(out))
	}
}

func TestQualityScorePrefersExtractedAndSourcedArticles(t *testing.T) {
	text := "body"
	bare := makeArticle("t", "https://example.com/x", newsmodel.LangEnglish, nil)
	rich := makeArticle("t", "https://example.com/y", newsmodel.LangEnglish, &text)

	if qualityScore(rich) <= qualityScore(bare) {
		t.Error("expected article with extracted text to score higher")
	}
}
