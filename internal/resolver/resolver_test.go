package resolver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestResolveLeavesDirectURLsUnchanged(t *testing.T) {
	r := New(http.DefaultClient, []string{"news.google.com"})
	got := r.Resolve(context.Background(), "https://timesofindia.com/article/123")
	if got != "https://timesofindia.com/article/123" {
		t.Errorf("expected direct URL to pass through unchanged, got %q", got)
	}
}

func TestResolveFollowsRedirectOffIndirectHost(t *testing.T) {
	publisher := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer publisher.Close()

	indirect := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, publisher.URL+"/real-article", http.StatusFound)
	}))
	defer indirect.Close()

	// Both test servers listen on 127.0.0.1, and the resolver matches indirect
	// hosts by hostname only, so the indirect server is addressed as
	// "localhost" to keep the publisher's host outside the indirect set.
	indirectURL := strings.Replace(indirect.URL, "127.0.0.1", "localhost", 1)
	host := hostOf(t, indirectURL)
	r := New(indirect.Client(), []string{host})

	got := r.Resolve(context.Background(), indirectURL+"/rss/articles/abc")
	if got != publisher.URL+"/real-article" {
		t.Errorf("expected resolution to the publisher URL, got %q", got)
	}
}

func TestResolveFallsBackToOriginalOnTotalFailure(t *testing.T) {
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	host := hostOf(t, dead.URL)
	dead.Close()

	r := New(http.DefaultClient, []string{host})
	raw := dead.URL + "/rss/articles/does-not-resolve"
	got := r.Resolve(context.Background(), raw)
	if got != raw {
		t.Errorf("expected fallback to the original URL on failure, got %q", got)
	}
}

func TestResolveInvalidURLReturnsInputUnchanged(t *testing.T) {
	r := New(http.DefaultClient, []string{"news.google.com"})
	raw := "://not a url"
	if got := r.Resolve(context.Background(), raw); got != raw {
		t.Errorf("expected invalid URL to pass through unchanged, got %q", got)
	}
}

func hostOf(t *testing.T, rawURL string) string {
	t.Helper()
	u, err := url.Parse(rawURL)
	if err != nil {
		t.Fatalf("failed to parse test server URL: %v", err)
	}
	return u.Hostname()
}
