// Package sourceadapter defines the contract every upstream search provider
// satisfies, the per-source policy constants the generator and scheduler
// consult, and three concrete opaque-provider implementations.
package sourceadapter

import (
	"context"
	"fmt"
	"time"

	"heatnews/internal/newsmodel"
)

// Adapter is the contract a source adapter must satisfy. Implementations
// must return an empty slice (never raise) on any transport, HTTP, parse, or
// authentication failure; only RateLimitError escapes, and only when the
// upstream signals rate-limit exhaustion.
type Adapter interface {
	Search(ctx context.Context, queryString string, lang newsmodel.Language, countryCode, state, searchTerm string) ([]newsmodel.ArticleRef, error)
	Name() string
}

// RateLimitError is the one designated error kind allowed to escape an
// Adapter's Search call.
type RateLimitError struct {
	Source string
	Err    error
}

func (e *RateLimitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("sourceadapter: %s rate limited: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("sourceadapter: %s rate limited", e.Source)
}

func (e *RateLimitError) Unwrap() error { return e.Err }

// Config is the per-source policy the generator and scheduler read:
// character limit, category-fanout support, supported languages, daily
// budget, and rate-limit pacing (spec.md §6).
type Config struct {
	Hint                   newsmodel.SourceHint
	CharLimit              int
	SupportsCategoryFanout bool
	SupportedLanguages     map[newsmodel.Language]bool
	DailyBudget            int
	MinInterval            time.Duration // minimum gap between consecutive calls
	BurstLimit             int           // token-bucket burst size
}

// Supports reports whether lang is in the source's supported set.
func (c Config) Supports(lang newsmodel.Language) bool {
	return c.SupportedLanguages[lang]
}

func allLanguagesSet(langs ...newsmodel.Language) map[newsmodel.Language]bool {
	m := make(map[newsmodel.Language]bool, len(langs))
	for _, l := range langs {
		m[l] = true
	}
	return m
}

// GoogleConfig is the google-news-style source: ~600 daily budget, 1-2s
// pacing, all 14 languages, ~2KB query limit, category fanout supported.
var GoogleConfig = Config{
	Hint:                   newsmodel.SourceGoogle,
	CharLimit:              2000,
	SupportsCategoryFanout: true,
	SupportedLanguages:     allLanguagesSet(newsmodel.AllLanguages...),
	DailyBudget:            600,
	MinInterval:            1500 * time.Millisecond,
	BurstLimit:             1,
}

// NewsdataConfig is the newsdata-style source: 200 daily budget, burst
// ~30/15min, all 14 languages, 100-char limit, no category fanout.
var NewsdataConfig = Config{
	Hint:                   newsmodel.SourceNewsdata,
	CharLimit:              100,
	SupportsCategoryFanout: false,
	SupportedLanguages:     allLanguagesSet(newsmodel.AllLanguages...),
	DailyBudget:            200,
	MinInterval:            30 * time.Second, // ~30 per 15 min burst window
	BurstLimit:             30,
}

// GNewsConfig is the gnews-style source: 100 daily budget, >=1s interval,
// 8 supported languages, 200-char limit, no category fanout.
var GNewsConfig = Config{
	Hint:                   newsmodel.SourceGNews,
	CharLimit:              200,
	SupportsCategoryFanout: false,
	SupportedLanguages: allLanguagesSet(
		newsmodel.LangEnglish, newsmodel.LangHindi, newsmodel.LangBengali,
		newsmodel.LangTamil, newsmodel.LangTelugu, newsmodel.LangMarathi,
		newsmodel.LangMalayalam, newsmodel.LangPunjabi,
	),
	DailyBudget: 100,
	MinInterval: 1 * time.Second,
	BurstLimit:  1,
}
