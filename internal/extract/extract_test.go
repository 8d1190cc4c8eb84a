package extract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"heatnews/internal/newsmodel"
	"heatnews/internal/resolver"
)

func TestExtractBodyTextPrefersMainContentSelector(t *testing.T) {
	html := `<html><body>
		<nav>site nav</nav>
		<article><p>First paragraph of the real story.</p><p>Second paragraph.</p></article>
		<footer>copyright footer</footer>
	</body></html>`

	text, err := extractBodyText([]byte(html))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !contains(text, "First paragraph of the real story.") {
		t.Errorf("expected article text extracted, got %q", text)
	}
	if contains(text, "site nav") || contains(text, "copyright footer") {
		t.Errorf("expected boilerplate elements stripped, got %q", text)
	}
}

func TestExtractBodyTextErrorsOnEmptyDocument(t *testing.T) {
	_, err := extractBodyText([]byte(`<html><body></body></html>`))
	if err == nil {
		t.Error("expected an error when no text can be extracted")
	}
}

func contains(haystack, needle string) bool {
	return len(haystack) >= len(needle) && (func() bool {
		for i := 0; i+len(needle) <= len(haystack); i++ {
			if haystack[i:i+len(needle)] == needle {
				return true
			}
		}
		return false
	})()
}

func TestExtractAllEmptyInputReturnsNilWithoutHTTP(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	e := New(srv.Client(), nil, 5, nil)
	out := e.ExtractAll(context.Background(), nil)
	if out != nil {
		t.Errorf("expected nil output for empty input, got %v", out)
	}
	if called {
		t.Error("expected no HTTP activity for empty input")
	}
}

func TestExtractAllProducesNilFullTextOnFetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	ref, _ := newsmodel.NewArticleRef("t", srv.URL+"/a", "s", time.Now(), false, newsmodel.LangEnglish, "Karnataka", "", "")
	e := New(srv.Client(), resolver.New(srv.Client(), nil), 5, nil)

	out := e.ExtractAll(context.Background(), []newsmodel.ArticleRef{ref})
	if len(out) != 1 {
		t.Fatalf("expected 1 article, got %d", len(out))
	}
	if out[0].FullText != nil {
		t.Error("expected nil FullText on a fetch failure")
	}
}

func TestExtractAllPopulatesFullTextOnSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><article><p>Heatwave coverage in full.</p></article></body></html>`))
	}))
	defer srv.Close()

	ref, _ := newsmodel.NewArticleRef("t", srv.URL+"/a", "s", time.Now(), false, newsmodel.LangEnglish, "Karnataka", "", "")
	e := New(srv.Client(), resolver.New(srv.Client(), nil), 5, nil)

	out := e.ExtractAll(context.Background(), []newsmodel.ArticleRef{ref})
	if len(out) != 1 || out[0].FullText == nil {
		t.Fatalf("expected extracted full text, got %+v", out)
	}
	if !contains(*out[0].FullText, "Heatwave coverage in full.") {
		t.Errorf("unexpected full text: %q", *out[0].FullText)
	}
}
