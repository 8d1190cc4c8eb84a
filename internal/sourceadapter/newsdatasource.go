package sourceadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"heatnews/internal/newsmodel"
)

// NewsdataSource adapts the newsdata.io "latest news" endpoint. An empty
// apiKey degrades it to an always-empty source without HTTP traffic
// (spec.md §6, scenario 3).
type NewsdataSource struct {
	apiKey string
	client *http.Client
}

func NewNewsdataSource(apiKey string, client *http.Client) *NewsdataSource {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &NewsdataSource{apiKey: apiKey, client: client}
}

func (n *NewsdataSource) Name() string { return "newsdata" }

func (n *NewsdataSource) Search(ctx context.Context, queryString string, lang newsmodel.Language, countryCode, state, searchTerm string) ([]newsmodel.ArticleRef, error) {
	if n.apiKey == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("apikey", n.apiKey)
	params.Set("q", queryString)
	params.Set("country", strings.ToLower(countryCode))
	params.Set("language", string(lang))

	fullURL := "https://newsdata.io/api/1/latest?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, nil
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &RateLimitError{Source: n.Name(), Err: fmt.Errorf("http %d", resp.StatusCode)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, nil
	}

	var apiResponse struct {
		Status  string `json:"status"`
		Results []struct {
			Title    string `json:"title"`
			Link     string `json:"link"`
			SourceID string `json:"source_id"`
			PubDate  string `json:"pubDate"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return nil, nil
	}

	refs := make([]newsmodel.ArticleRef, 0, len(apiResponse.Results))
	for _, item := range apiResponse.Results {
		if item.Title == "" || item.Link == "" {
			continue
		}
		date, naive := parsePubDate(item.PubDate)
		source := item.SourceID
		if source == "" {
			source = extractDomain(item.Link)
		}
		ref, err := newsmodel.NewArticleRef(item.Title, item.Link, source, date, naive, lang, state, "", searchTerm)
		if err != nil {
			continue
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// parsePubDate tries the two layouts newsdata.io/gnews commonly emit; it
// never fails loudly, falling back to "now" with naive=false.
func parsePubDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Now(), false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, false
	}
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t, true
	}
	return time.Now(), false
}
