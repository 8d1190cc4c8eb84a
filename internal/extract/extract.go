// Package extract implements the article extractor (spec.md §4.7):
// bounded-concurrency HTML fetch, charset-aware decode, and boilerplate
// removal via goquery, producing Article values that never carry a raised
// error — extraction failure is always represented as a nil FullText.
package extract

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"heatnews/internal/newsmodel"
	"heatnews/internal/resolver"
)

const fetchTimeout = 15 * time.Second

// Extractor fetches and extracts body text for a batch of ArticleRef with
// bounded concurrency (default max 10 in flight).
type Extractor struct {
	client        *http.Client
	resolver      *resolver.Resolver
	maxConcurrent int
	log           *slog.Logger
}

// New builds an Extractor sharing client for connection pooling across the
// pipeline (spec.md §5).
func New(client *http.Client, res *resolver.Resolver, maxConcurrent int, log *slog.Logger) *Extractor {
	if client == nil {
		client = &http.Client{}
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 10
	}
	return &Extractor{client: client, resolver: res, maxConcurrent: maxConcurrent, log: log}
}

// ExtractAll runs the extractor over refs. The returned order is not
// guaranteed to match input order (spec.md §4.7); downstream stages do not
// require it. An empty input returns empty output without any HTTP activity.
func (e *Extractor) ExtractAll(ctx context.Context, refs []newsmodel.ArticleRef) []newsmodel.Article {
	if len(refs) == 0 {
		return nil
	}

	sem := make(chan struct{}, e.maxConcurrent)
	var wg sync.WaitGroup
	var mu sync.Mutex
	articles := make([]newsmodel.Article, 0, len(refs))

	for _, ref := range refs {
		ref := ref
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			article := e.extractOne(ctx, ref)

			mu.Lock()
			articles = append(articles, article)
			mu.Unlock()
		}()
	}

	wg.Wait()
	return articles
}

// extractOne never returns an error: any failure produces an Article with a
// nil FullText and a logged warning.
func (e *Extractor) extractOne(ctx context.Context, ref newsmodel.ArticleRef) newsmodel.Article {
	article := newsmodel.NewArticle(ref)

	resolvedURL := ref.URL
	if e.resolver != nil {
		resolvedURL = e.resolver.Resolve(ctx, ref.URL)
	}

	text, err := e.fetchAndExtract(ctx, resolvedURL)
	if err != nil {
		if e.log != nil {
			e.log.Warn("extraction failed", "url", resolvedURL, "error", err)
		}
		return article
	}
	return article.WithFullText(&text)
}

func (e *Extractor) fetchAndExtract(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching %s: status %d", url, resp.StatusCode)
	}

	// charset.NewReader negotiates the transport's declared/sniffed charset
	// so non-Latin scripts (Hindi, Tamil, ...) survive decoding.
	reader, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		reader = resp.Body
	}

	htmlBytes, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("reading body of %s: %w", url, err)
	}

	// The boilerplate-removal parse below is CPU-bound. Go's goroutine
	// scheduler already multiplexes CPU work across OS threads without
	// parking the caller the way a single-threaded async runtime would, so
	// no separate worker-pool dispatch is needed here beyond the bounded
	// concurrency semaphore already limiting in-flight extractions.
	return extractBodyText(htmlBytes)
}

var collapseNewlines = regexp.MustCompile(`\n{2,}`)

// extractBodyText removes boilerplate elements and extracts readable body
// text.
func extractBodyText(htmlBytes []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(htmlBytes)))
	if err != nil {
		return "", fmt.Errorf("parsing html: %w", err)
	}

	doc.Find("script, style, nav, footer, header, aside, form, iframe, noscript, " +
		".sidebar, #sidebar, .ad, .advertisement, .popup, .modal, .cookie-banner").Remove()

	mainSelectors := []string{
		"article", "main", ".main-content", ".entry-content", ".post-content",
		".post-body", ".article-body", "[role='main']", ".content", "#content",
	}

	var textBuilder strings.Builder
	for _, selector := range mainSelectors {
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			s.Find("p, h1, h2, h3, h4, h5, h6, li, blockquote, pre").Each(func(_ int, item *goquery.Selection) {
				textBuilder.WriteString(strings.TrimSpace(item.Text()))
				textBuilder.WriteString("\n\n")
			})
		})
		if textBuilder.Len() > 0 {
			break
		}
	}

	if textBuilder.Len() == 0 {
		doc.Find("body").Find("p, h1, h2, h3, h4, h5, h6, li, blockquote, pre").Each(func(_ int, item *goquery.Selection) {
			textBuilder.WriteString(strings.TrimSpace(item.Text()))
			textBuilder.WriteString("\n\n")
		})
	}

	cleaned := collapseNewlines.ReplaceAllString(textBuilder.String(), "\n")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return "", fmt.Errorf("no text extracted")
	}
	return cleaned, nil
}
