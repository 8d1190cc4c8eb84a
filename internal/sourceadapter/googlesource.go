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

// GoogleSource adapts the Google Custom Search API to the Adapter contract.
// It never raises an error except on rate-limit exhaustion.
const googleSearchBaseURL = "https://www.googleapis.com/customsearch/v1"

type GoogleSource struct {
	apiKey   string
	searchID string
	client   *http.Client
	baseURL  string
}

// NewGoogleSource builds a GoogleSource. An empty apiKey or searchID degrades
// the adapter to an always-empty source (spec.md §6): Search returns no
// results and makes no HTTP call.
func NewGoogleSource(apiKey, searchID string, client *http.Client) *GoogleSource {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &GoogleSource{apiKey: apiKey, searchID: searchID, client: client, baseURL: googleSearchBaseURL}
}

func (g *GoogleSource) Name() string { return "google" }

func (g *GoogleSource) Search(ctx context.Context, queryString string, lang newsmodel.Language, countryCode, state, searchTerm string) ([]newsmodel.ArticleRef, error) {
	if g.apiKey == "" || g.searchID == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("key", g.apiKey)
	params.Set("cx", g.searchID)
	params.Set("q", queryString)
	params.Set("num", "10")
	params.Set("gl", countryCode)
	params.Set("lr", "lang_"+string(lang))

	fullURL := g.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, nil
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &RateLimitError{Source: g.Name(), Err: fmt.Errorf("http %d", resp.StatusCode)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, nil
	}

	var apiResponse struct {
		Items []struct {
			Title   string `json:"title"`
			Link    string `json:"link"`
			Snippet string `json:"snippet"`
		} `json:"items"`
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return nil, nil
	}
	if apiResponse.Error.Code == http.StatusTooManyRequests {
		return nil, &RateLimitError{Source: g.Name(), Err: fmt.Errorf("%s", apiResponse.Error.Message)}
	}

	refs := make([]newsmodel.ArticleRef, 0, len(apiResponse.Items))
	for _, item := range apiResponse.Items {
		if item.Title == "" || item.Link == "" {
			continue
		}
		ref, err := newsmodel.NewArticleRef(item.Title, item.Link, extractDomain(item.Link), time.Now(), false, lang, state, "", searchTerm)
		if err != nil {
			continue
		}
		refs = append(refs, ref)
	}
	return refs, nil
}
