// Package executor implements the query executor (spec.md §4.5): the
// two-phase hierarchical run that executes state-level queries across
// sources concurrently, derives which regions produced results, then drills
// into district-level queries for only those regions, integrating the
// checkpoint store throughout.
package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"heatnews/internal/checkpoint"
	"heatnews/internal/newsmodel"
	"heatnews/internal/scheduler"
)

// CheckpointStore is the subset of checkpoint.Store the executor depends on.
// Accepting it as an interface constructor parameter, per spec.md §9's note
// on avoiding circular imports between the executor and its checkpoint
// collaborator, keeps the executor testable with a fake store.
type CheckpointStore interface {
	Contains(key string) bool
	Add(key string) error
}

// DistrictQueryFunc generates the district-level query set restricted to the
// regions that produced at least one article in the state phase, and to
// sources whose daily budget survived that phase.
type DistrictQueryFunc func(activeRegionSlugs map[string]bool, budgetOK map[newsmodel.SourceHint]bool) map[newsmodel.SourceHint][]newsmodel.Query

// Executor owns the end-to-end collection run.
type Executor struct {
	schedulers map[newsmodel.SourceHint]*scheduler.Scheduler
	checkpoint CheckpointStore
	log        *slog.Logger
}

// New builds an Executor. cp may be nil to run without checkpoint/resume
// semantics (e.g. in tests).
func New(schedulers map[newsmodel.SourceHint]*scheduler.Scheduler, cp CheckpointStore, log *slog.Logger) *Executor {
	return &Executor{schedulers: schedulers, checkpoint: cp, log: log}
}

// Run executes the full two-phase collection and returns the flat sequence
// of ArticleRef gathered from all sources and both phases.
func (e *Executor) Run(ctx context.Context, stateQueries map[newsmodel.SourceHint][]newsmodel.Query, genDistrict DistrictQueryFunc) ([]newsmodel.ArticleRef, error) {
	stateArticles, activeRegions, err := e.runPhase(ctx, stateQueries)

	budgetOK := make(map[newsmodel.SourceHint]bool, len(e.schedulers))
	for hint, sched := range e.schedulers {
		budgetOK[hint] = sched.BudgetRemaining() > 0
	}

	districtQueries := genDistrict(activeRegions, budgetOK)
	districtArticles, _, err2 := e.runPhase(ctx, districtQueries)

	all := make([]newsmodel.ArticleRef, 0, len(stateArticles)+len(districtArticles))
	all = append(all, stateArticles...)
	all = append(all, districtArticles...)

	return all, errors.Join(err, err2)
}

// runPhase fans out the given per-source query lists concurrently, each
// source processed sequentially on its own goroutine, and fans in the
// results. A failure in one source's goroutine is collected but never
// prevents other sources from completing (spec.md §5).
func (e *Executor) runPhase(ctx context.Context, bySource map[newsmodel.SourceHint][]newsmodel.Query) ([]newsmodel.ArticleRef, map[string]bool, error) {
	g, _ := errgroup.WithContext(ctx)

	var mu sync.Mutex
	var articles []newsmodel.ArticleRef
	activeRegions := make(map[string]bool)
	var phaseErr error

	for hint, queries := range bySource {
		hint, queries := hint, queries
		sched, ok := e.schedulers[hint]
		if !ok || len(queries) == 0 {
			continue
		}

		g.Go(func() error {
			results, err := e.runSequential(ctx, sched, queries)

			mu.Lock()
			for _, r := range results {
				if len(r.Articles) > 0 {
					articles = append(articles, r.Articles...)
					activeRegions[r.Query.StateSlug] = true
				}
			}
			if err != nil {
				phaseErr = errors.Join(phaseErr, fmt.Errorf("executor: source %s: %w", hint, err))
			}
			mu.Unlock()

			// Always return nil: a per-source error must not cancel sibling
			// sources still in flight. The aggregated error surfaces via
			// phaseErr after every goroutine has joined.
			return nil
		})
	}

	_ = g.Wait()
	return articles, activeRegions, phaseErr
}

// runSequential executes queries one at a time against sched, consulting and
// updating the checkpoint between calls. This is the sequential per-source
// path spec.md requires for both scheduler-policy ordering and checkpoint
// serialization.
func (e *Executor) runSequential(ctx context.Context, sched *scheduler.Scheduler, queries []newsmodel.Query) ([]newsmodel.QueryResult, error) {
	results := make([]newsmodel.QueryResult, 0, len(queries))

	for _, q := range queries {
		select {
		case <-ctx.Done():
			return results, ctx.Err()
		default:
		}

		key := checkpoint.KeyForQuery(q)
		if e.checkpoint != nil && e.checkpoint.Contains(key) {
			results = append(results, newsmodel.QueryResult{Query: q, Success: true, Error: newsmodel.ErrCheckpointSkip})
			continue
		}

		result := sched.Execute(ctx, q)
		results = append(results, result)

		if result.Success && e.checkpoint != nil {
			if err := e.checkpoint.Add(key); err != nil {
				return results, fmt.Errorf("persisting checkpoint: %w", err)
			}
		}
	}

	return results, nil
}
