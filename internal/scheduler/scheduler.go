// Package scheduler implements the per-source scheduler: circuit-breaker
// gate, daily budget gate, language-support gate, token-bucket rate limit,
// and rate-limit-retry-wrapped invocation of a source adapter.
package scheduler

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/time/rate"

	"heatnews/internal/breaker"
	"heatnews/internal/newsmodel"
	"heatnews/internal/retry"
	"heatnews/internal/sourceadapter"
)

// BreakerThreshold is the default consecutive-failure count that trips a
// source's circuit breaker.
const (
	BreakerThreshold = 5
)

// quotaAware is satisfied by source adapters that can observe an upstream
// quota-exhaustion signal independent of HTTP-level rate limiting (e.g.
// GNewsSource after an HTTP 403).
type quotaAware interface {
	QuotaExhausted() bool
}

// Scheduler wraps one source adapter with the full policy chain. Queries
// issued to Execute are expected to be called from a single goroutine per
// source (spec.md §4.4: "within a single source, queries are executed
// sequentially"); the budget counter and breaker are not designed for
// cross-source sharing but are safe under concurrent Execute calls on the
// same Scheduler because they are internally mutex-guarded.
type Scheduler struct {
	source   sourceadapter.Adapter
	cfg      sourceadapter.Config
	breaker  *breaker.Breaker
	limiter  *rate.Limiter
	retryCfg retry.Config
	log      *slog.Logger

	mu              sync.Mutex
	budgetRemaining int
}

// New builds a Scheduler for one source. The breaker br comes from the
// caller so tests can choose its threshold and reset timeout.
func New(source sourceadapter.Adapter, cfg sourceadapter.Config, br *breaker.Breaker, log *slog.Logger) *Scheduler {
	limit := rate.Every(cfg.MinInterval)
	burst := cfg.BurstLimit
	if burst < 1 {
		burst = 1
	}
	return &Scheduler{
		source:          source,
		cfg:             cfg,
		breaker:         br,
		limiter:         rate.NewLimiter(limit, burst),
		retryCfg:        retry.DefaultConfig(),
		log:             log,
		budgetRemaining: cfg.DailyBudget,
	}
}

// BudgetRemaining reports the source's remaining daily budget.
func (s *Scheduler) BudgetRemaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.budgetRemaining
}

// ExhaustBudget preemptively zeroes the remaining budget, used when a source
// adapter observes a quota-exhausted signal from the upstream API
// (spec.md §7: "quota-style signals additionally cause the adapter to
// preemptively mark its own budget as exhausted for the remainder of the
// run").
func (s *Scheduler) ExhaustBudget() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budgetRemaining = 0
}

// Execute runs a single Query through the full gate chain.
func (s *Scheduler) Execute(ctx context.Context, q newsmodel.Query) newsmodel.QueryResult {
	if !s.breaker.Allow() {
		return newsmodel.QueryResult{Query: q, Success: true, Error: newsmodel.ErrCircuitBreakerOpen}
	}

	s.mu.Lock()
	budgetLeft := s.budgetRemaining
	s.mu.Unlock()
	if budgetLeft <= 0 {
		return newsmodel.QueryResult{Query: q, Success: true, Error: newsmodel.ErrBudgetExhausted}
	}

	if !s.cfg.Supports(q.Language) {
		return newsmodel.QueryResult{Query: q, Success: true, Error: newsmodel.ErrUnsupportedLanguage}
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return newsmodel.QueryResult{Query: q, Success: false, Error: err.Error()}
	}

	call := func(ctx context.Context) ([]newsmodel.ArticleRef, error) {
		return s.source.Search(ctx, q.QueryString, q.Language, "IN", q.StateName, q.PrimaryTerm)
	}
	wrapped := retry.WithRateLimitRetry(call, s.retryCfg, s.log)

	articles, err := wrapped(ctx)

	s.mu.Lock()
	s.budgetRemaining--
	s.mu.Unlock()

	if qa, ok := s.source.(quotaAware); ok && qa.QuotaExhausted() {
		s.ExhaustBudget()
	}

	if err != nil {
		s.breaker.RecordFailure()
		if retry.IsRateLimit(err) {
			return newsmodel.QueryResult{Query: q, Success: false, Error: newsmodel.ErrRateLimitExhausted}
		}
		return newsmodel.QueryResult{Query: q, Success: false, Error: err.Error()}
	}

	s.breaker.RecordSuccess()
	return newsmodel.QueryResult{Query: q, Articles: articles, Success: true}
}
