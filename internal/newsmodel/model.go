// Package newsmodel holds the immutable value objects that flow through the
// collection pipeline: ArticleRef, Article, Query, QueryResult and the
// per-run CollectionMetadata.
package newsmodel

import (
	"fmt"
	"time"
)

// Language is one of the 14 fixed Indian-language codes the pipeline understands.
type Language string

const (
	LangEnglish   Language = "en"
	LangHindi     Language = "hi"
	LangTamil     Language = "ta"
	LangTelugu    Language = "te"
	LangBengali   Language = "bn"
	LangMarathi   Language = "mr"
	LangGujarati  Language = "gu"
	LangKannada   Language = "kn"
	LangMalayalam Language = "ml"
	LangOdia      Language = "or"
	LangPunjabi   Language = "pa"
	LangAssamese  Language = "as"
	LangUrdu      Language = "ur"
	LangNepali    Language = "ne"
)

// AllLanguages is the fixed 14-code set from spec.md §3.
var AllLanguages = []Language{
	LangEnglish, LangHindi, LangTamil, LangTelugu, LangBengali, LangMarathi,
	LangGujarati, LangKannada, LangMalayalam, LangOdia, LangPunjabi,
	LangAssamese, LangUrdu, LangNepali,
}

// IsValidLanguage reports whether code is one of the fixed 14 language codes.
func IsValidLanguage(code Language) bool {
	for _, l := range AllLanguages {
		if l == code {
			return true
		}
	}
	return false
}

// IST is Asia/Kolkata, +05:30, with no daylight-saving transitions.
var IST = time.FixedZone("IST", 5*60*60+30*60)

// NormalizeToIST converts t to Asia/Kolkata. A naive (zero-offset-ambiguous)
// timestamp produced by time.Parse without a zone is assumed to already be
// IST wall-clock time and is re-labelled rather than shifted.
func NormalizeToIST(t time.Time, wasNaive bool) time.Time {
	if wasNaive {
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), IST)
	}
	return t.In(IST)
}

// SourceHint identifies which source adapter a Query is destined for.
type SourceHint string

const (
	SourceGoogle   SourceHint = "google"
	SourceNewsdata SourceHint = "newsdata"
	SourceGNews    SourceHint = "gnews"
)

// QueryLevel is the hierarchy level a Query was generated at.
type QueryLevel string

const (
	LevelState    QueryLevel = "state"
	LevelDistrict QueryLevel = "district"
)

// ArticleRef is the metadata envelope produced by a source adapter. It never
// carries body text.
type ArticleRef struct {
	Title      string    `json:"title"`
	URL        string    `json:"url"`
	Source     string    `json:"source"`
	Date       time.Time `json:"date"`
	Language   Language  `json:"language"`
	State      string    `json:"state"`
	District   string    `json:"district,omitempty"`
	SearchTerm string    `json:"search_term"`
}

// NewArticleRef validates and constructs an ArticleRef, defaulting Source to
// "Unknown" and normalizing Date to IST.
func NewArticleRef(title, url, source string, date time.Time, dateIsNaive bool, lang Language, state, district, searchTerm string) (ArticleRef, error) {
	if title == "" {
		return ArticleRef{}, fmt.Errorf("newsmodel: article title must not be empty")
	}
	if url == "" {
		return ArticleRef{}, fmt.Errorf("newsmodel: article url must not be empty")
	}
	if !IsValidLanguage(lang) {
		return ArticleRef{}, fmt.Errorf("newsmodel: unsupported language code %q", lang)
	}
	if source == "" {
		source = "Unknown"
	}
	return ArticleRef{
		Title:      title,
		URL:        url,
		Source:     source,
		Date:       NormalizeToIST(date, dateIsNaive),
		Language:   lang,
		State:      state,
		District:   district,
		SearchTerm: searchTerm,
	}, nil
}

// Article extends ArticleRef with extracted body text and a relevance score.
type Article struct {
	ArticleRef
	FullText       *string `json:"full_text"`       // nil on extraction failure, never a blocker
	RelevanceScore float64 `json:"relevance_score"` // 0.0 default, assigned during filtering, clamped to [0,1]
}

// NewArticle builds an Article from a ref with a zero relevance score.
func NewArticle(ref ArticleRef) Article {
	return Article{ArticleRef: ref, RelevanceScore: 0.0}
}

// WithFullText returns a copy of a with FullText replaced; a never mutates.
func (a Article) WithFullText(text *string) Article {
	a.FullText = text
	return a
}

// WithRelevanceScore returns a copy of a with RelevanceScore replaced,
// clamped to [0, 1]; a never mutates. This is the only way a score is
// assigned — relevance filtering always produces a new Article.
func (a Article) WithRelevanceScore(score float64) Article {
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	a.RelevanceScore = score
	return a
}

// Query is an immutable, internal representation of one source-bound search
// request produced by the query generator.
type Query struct {
	QueryString  string
	SourceHint   SourceHint
	Language     Language
	StateSlug    string
	StateName    string // human-readable, propagated to the adapter's "state" param
	Level        QueryLevel
	DistrictSlug string // only set when Level == LevelDistrict
	PrimaryTerm  string // highest-priority term folded into QueryString; propagated as search_term
}

// QueryResult is the outcome of executing a single Query through the source
// scheduler.
type QueryResult struct {
	Query    Query
	Articles []ArticleRef
	Success  bool
	Error    string // reason when Success is true-but-skipped, or the failure kind
}

// Well-known QueryResult.Error sentinels (policy skips, not failures).
const (
	ErrBudgetExhausted     = "budget_exhausted"
	ErrCircuitBreakerOpen  = "circuit_breaker_open"
	ErrUnsupportedLanguage = "unsupported_language"
	ErrCheckpointSkip      = "checkpoint_skip"
	ErrRateLimitExhausted  = "rate_limit_exhausted"
)

// CollectionCounts summarizes a run's funnel.
type CollectionCounts struct {
	ArticlesFound     int `json:"articles_found"`
	ArticlesExtracted int `json:"articles_extracted"`
	ArticlesFiltered  int `json:"articles_filtered"`
}

// CollectionMetadata is the per-run manifest written alongside the outputs.
type CollectionMetadata struct {
	RunID               string           `json:"run_id"`
	CollectionTimestamp time.Time        `json:"collection_timestamp"`
	SourcesQueried      []string         `json:"sources_queried"`
	QueryTermsUsed      []string         `json:"query_terms_used"`
	Counts              CollectionCounts `json:"counts"`
}
