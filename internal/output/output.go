// Package output implements the output writer (spec.md §4.9): a
// state-partitioned JSON+CSV writer plus a single collection manifest,
// rooted in a date-stamped directory.
package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"heatnews/internal/newsmodel"
)

// StateSlug slugifies a human-readable state name the way spec.md §4.9
// specifies: lowercase, spaces to hyphens, "&" to "and". Implemented as a
// pure function rather than a lookup table (spec.md §9).
func StateSlug(state string) string {
	s := strings.ToLower(state)
	s = strings.ReplaceAll(s, "&", "and")
	s = strings.Join(strings.Fields(s), " ")
	s = strings.ReplaceAll(s, " ", "-")
	return s
}

type stateFile struct {
	State        string             `json:"state"`
	Date         string             `json:"date"`
	ArticleCount int                `json:"article_count"`
	Articles     []newsmodel.Article `json:"articles"`
}

// Write partitions articles by their State field and writes
// articles.json/articles.csv per state, plus a single _metadata.json, under
// outputRoot/<date>/. date must already be formatted as YYYY-MM-DD. States
// with zero articles still get files written with an empty article list.
func Write(outputRoot, date string, articles []newsmodel.Article, allStateNames []string, metadata newsmodel.CollectionMetadata) error {
	dateDir := filepath.Join(outputRoot, date)
	if err := os.MkdirAll(dateDir, 0o755); err != nil {
		return fmt.Errorf("output: creating date dir: %w", err)
	}

	buckets := make(map[string][]newsmodel.Article)
	for _, name := range allStateNames {
		buckets[name] = nil
	}
	for _, a := range articles {
		buckets[a.State] = append(buckets[a.State], a)
	}

	states := make([]string, 0, len(buckets))
	for state := range buckets {
		states = append(states, state)
	}
	sort.Strings(states)

	var wg sync.WaitGroup
	errs := make([]error, len(states))
	for i, state := range states {
		i, state := i, state
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = writeStateBucket(dateDir, state, buckets[state])
		}()
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}

	return writeMetadata(dateDir, metadata)
}

func writeStateBucket(dateDir, state string, articles []newsmodel.Article) error {
	slug := StateSlug(state)
	stateDir := filepath.Join(dateDir, slug)
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return fmt.Errorf("output: creating state dir %s: %w", slug, err)
	}

	date := filepath.Base(dateDir)
	if err := writeArticlesJSON(stateDir, state, date, articles); err != nil {
		return err
	}
	return writeArticlesCSV(stateDir, articles)
}

func writeArticlesJSON(stateDir, state, date string, articles []newsmodel.Article) error {
	if articles == nil {
		articles = []newsmodel.Article{}
	}
	payload := stateFile{State: state, Date: date, ArticleCount: len(articles), Articles: articles}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		return fmt.Errorf("output: encoding articles.json for %s: %w", state, err)
	}

	path := filepath.Join(stateDir, "articles.json")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("output: writing %s: %w", path, err)
	}
	return nil
}

var csvFields = []string{
	"title", "url", "source", "date", "language", "state", "district",
	"search_term", "full_text", "relevance_score",
}

func writeArticlesCSV(stateDir string, articles []newsmodel.Article) error {
	path := filepath.Join(stateDir, "articles.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("output: creating %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	if len(articles) == 0 {
		return nil
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvFields); err != nil {
		return fmt.Errorf("output: writing csv header: %w", err)
	}
	for _, a := range articles {
		fullText := ""
		if a.FullText != nil {
			fullText = *a.FullText
		}
		row := []string{
			a.Title, a.URL, a.Source, a.Date.Format("2006-01-02T15:04:05-07:00"),
			string(a.Language), a.State, a.District, a.SearchTerm, fullText,
			strconv.FormatFloat(a.RelevanceScore, 'f', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("output: writing csv row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

func writeMetadata(dateDir string, metadata newsmodel.CollectionMetadata) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(metadata); err != nil {
		return fmt.Errorf("output: encoding metadata: %w", err)
	}

	path := filepath.Join(dateDir, "_metadata.json")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("output: writing %s: %w", path, err)
	}
	return nil
}
