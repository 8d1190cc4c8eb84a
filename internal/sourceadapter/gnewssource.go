package sourceadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"heatnews/internal/newsmodel"
)

// GNewsSource adapts the gnews.io search endpoint, grounded on the region
// aware URL-building in other_examples' news-fetcher-service fetcher.go
// (NewsAPI/GNews URL formats, India-specific source handling) generalized to
// the Adapter contract. An HTTP 403 from gnews.io signals quota exhaustion,
// not an authentication failure: Search absorbs it (no error, no results) and
// sets a flag that QuotaExhausted reports, so the scheduler's budget
// accounting treats it distinctly from rate limiting.
const gnewsSearchBaseURL = "https://gnews.io/api/v4/search"

type GNewsSource struct {
	apiKey  string
	client  *http.Client
	baseURL string

	quotaExhausted bool
}

func NewGNewsSource(apiKey string, client *http.Client) *GNewsSource {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &GNewsSource{apiKey: apiKey, client: client, baseURL: gnewsSearchBaseURL}
}

func (n *GNewsSource) Name() string { return "gnews" }

// QuotaExhausted reports whether a prior call observed an HTTP 403
// quota-exceeded response; the scheduler can use this to preemptively treat
// the source's remaining budget as spent (spec.md §7).
func (n *GNewsSource) QuotaExhausted() bool { return n.quotaExhausted }

func (n *GNewsSource) Search(ctx context.Context, queryString string, lang newsmodel.Language, countryCode, state, searchTerm string) ([]newsmodel.ArticleRef, error) {
	if n.apiKey == "" {
		return nil, nil
	}
	if n.quotaExhausted {
		return nil, nil
	}

	params := url.Values{}
	params.Set("apikey", n.apiKey)
	params.Set("q", queryString)
	params.Set("lang", string(lang))
	params.Set("country", countryCode)
	params.Set("max", "10")

	fullURL := n.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, nil
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, nil
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return nil, &RateLimitError{Source: n.Name(), Err: fmt.Errorf("http %d", resp.StatusCode)}
	case http.StatusForbidden:
		n.quotaExhausted = true
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, nil
	}

	var apiResponse struct {
		Articles []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			PublishedAt string `json:"publishedAt"`
			Source      struct {
				Name string `json:"name"`
			} `json:"source"`
		} `json:"articles"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return nil, nil
	}

	refs := make([]newsmodel.ArticleRef, 0, len(apiResponse.Articles))
	for _, item := range apiResponse.Articles {
		if item.Title == "" || item.URL == "" {
			continue
		}
		date, naive := parsePubDate(item.PublishedAt)
		source := item.Source.Name
		if source == "" {
			source = extractDomain(item.URL)
		}
		ref, err := newsmodel.NewArticleRef(item.Title, item.URL, source, date, naive, lang, state, "", searchTerm)
		if err != nil {
			continue
		}
		refs = append(refs, ref)
	}
	return refs, nil
}
