package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"heatnews/internal/breaker"
	"heatnews/internal/newsmodel"
	"heatnews/internal/scheduler"
	"heatnews/internal/sourceadapter"
)

type stubAdapter struct {
	name    string
	results []newsmodel.ArticleRef
	err     error
}

func (s *stubAdapter) Search(ctx context.Context, queryString string, lang newsmodel.Language, countryCode, state, searchTerm string) ([]newsmodel.ArticleRef, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.results, nil
}

func (s *stubAdapter) Name() string { return s.name }

type fakeCheckpointStore struct {
	seen map[string]bool
}

func newFakeCheckpointStore() *fakeCheckpointStore {
	return &fakeCheckpointStore{seen: make(map[string]bool)}
}

func (f *fakeCheckpointStore) Contains(key string) bool { return f.seen[key] }
func (f *fakeCheckpointStore) Add(key string) error {
	f.seen[key] = true
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// sequenceAdapter returns results[i]/errs[i] on its i-th call, falling back
// to a generic error once exhausted.
type sequenceAdapter struct {
	name    string
	calls   int
	results [][]newsmodel.ArticleRef
	errs    []error
}

func (s *sequenceAdapter) Search(ctx context.Context, queryString string, lang newsmodel.Language, countryCode, state, searchTerm string) ([]newsmodel.ArticleRef, error) {
	i := s.calls
	s.calls++
	if i < len(s.results) {
		return s.results[i], s.errs[i]
	}
	return nil, errors.New("sequence exhausted")
}

func (s *sequenceAdapter) Name() string { return s.name }

func newTestScheduler(adapter sourceadapter.Adapter, budget int) *scheduler.Scheduler {
	cfg := sourceadapter.Config{
		SupportedLanguages: map[newsmodel.Language]bool{newsmodel.LangEnglish: true},
		DailyBudget:        budget,
		MinInterval:        time.Millisecond,
		BurstLimit:         5,
	}
	return scheduler.New(adapter, cfg, breaker.New(5, time.Hour), discardLogger())
}

func TestRunFanOutOneSourceFailureDoesNotBlockOthers(t *testing.T) {
	good := &stubAdapter{name: "good", results: []newsmodel.ArticleRef{{Title: "found", State: "Karnataka"}}}
	bad := &stubAdapter{name: "bad", err: errors.New("boom")}

	schedulers := map[newsmodel.SourceHint]*scheduler.Scheduler{
		newsmodel.SourceGoogle:   newTestScheduler(good, 5),
		newsmodel.SourceNewsdata: newTestScheduler(bad, 5),
	}

	exec := New(schedulers, newFakeCheckpointStore(), discardLogger())

	stateQueries := map[newsmodel.SourceHint][]newsmodel.Query{
		newsmodel.SourceGoogle:   {{SourceHint: newsmodel.SourceGoogle, Language: newsmodel.LangEnglish, StateSlug: "karnataka", QueryString: "q"}},
		newsmodel.SourceNewsdata: {{SourceHint: newsmodel.SourceNewsdata, Language: newsmodel.LangEnglish, StateSlug: "kerala", QueryString: "q"}},
	}

	genDistrict := func(active map[string]bool, budgetOK map[newsmodel.SourceHint]bool) map[newsmodel.SourceHint][]newsmodel.Query {
		return nil
	}

	refs, err := exec.Run(context.Background(), stateQueries, genDistrict)
	if err != nil {
		t.Errorf("expected the failing source's query failure to stay in its QueryResult, not surface from Run, got %v", err)
	}
	if len(refs) != 1 {
		t.Fatalf("expected the successful source's article to survive the other source's failure, got %d", len(refs))
	}
	if refs[0].Title != "found" {
		t.Errorf("unexpected article: %+v", refs[0])
	}
}

func TestRunDistrictPhaseOnlyCoversActiveRegions(t *testing.T) {
	// The karnataka query returns one article; the kerala query returns none.
	good := &sequenceAdapter{
		name:    "good",
		results: [][]newsmodel.ArticleRef{{{Title: "found", State: "Karnataka"}}, nil},
		errs:    []error{nil, nil},
	}
	schedulers := map[newsmodel.SourceHint]*scheduler.Scheduler{
		newsmodel.SourceGoogle: newTestScheduler(good, 5),
	}
	exec := New(schedulers, newFakeCheckpointStore(), discardLogger())

	stateQueries := map[newsmodel.SourceHint][]newsmodel.Query{
		newsmodel.SourceGoogle: {
			{SourceHint: newsmodel.SourceGoogle, Language: newsmodel.LangEnglish, StateSlug: "karnataka", QueryString: "q1"},
			{SourceHint: newsmodel.SourceGoogle, Language: newsmodel.LangEnglish, StateSlug: "kerala", QueryString: "q2"},
		},
	}

	var seenActive map[string]bool
	genDistrict := func(active map[string]bool, budgetOK map[newsmodel.SourceHint]bool) map[newsmodel.SourceHint][]newsmodel.Query {
		seenActive = active
		return nil
	}

	if _, err := exec.Run(context.Background(), stateQueries, genDistrict); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !seenActive["karnataka"] {
		t.Error("expected karnataka to be active since it produced an article")
	}
	if len(seenActive) != 1 {
		t.Errorf("expected only regions that produced articles to be active, got %v", seenActive)
	}
}

func TestRunSkipsQueriesAlreadyInCheckpoint(t *testing.T) {
	good := &stubAdapter{name: "good", results: []newsmodel.ArticleRef{{Title: "found", State: "Karnataka"}}}
	sched := newTestScheduler(good, 5)
	schedulers := map[newsmodel.SourceHint]*scheduler.Scheduler{newsmodel.SourceGoogle: sched}

	q := newsmodel.Query{SourceHint: newsmodel.SourceGoogle, Language: newsmodel.LangEnglish, StateSlug: "karnataka", QueryString: "q"}
	cp := newFakeCheckpointStore()

	exec := New(schedulers, cp, discardLogger())
	stateQueries := map[newsmodel.SourceHint][]newsmodel.Query{newsmodel.SourceGoogle: {q}}
	genDistrict := func(active map[string]bool, budgetOK map[newsmodel.SourceHint]bool) map[newsmodel.SourceHint][]newsmodel.Query {
		return nil
	}

	refs1, err := exec.Run(context.Background(), stateQueries, genDistrict)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(refs1) != 1 {
		t.Fatalf("expected 1 article on first run, got %d", len(refs1))
	}

	refs2, err := exec.Run(context.Background(), stateQueries, genDistrict)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(refs2) != 0 {
		t.Errorf("expected checkpoint to skip the already-completed query, got %d articles", len(refs2))
	}
}

// TestExecutor_BreakerTripsAfter5FailuresYields13Articles reproduces the
// two-source breaker-trip scenario: source A succeeds with 3 articles on its
// first query then fails on every query after that until its breaker opens;
// source B succeeds with 5 articles on each of 2 queries. The failing calls
// use a plain error rather than a rate-limit error so the test does not pay
// for the retry backoff a real rate-limit exhaustion would incur; the
// breaker-trip and total-article-count mechanics are identical either way.
func TestExecutor_BreakerTripsAfter5FailuresYields13Articles(t *testing.T) {
	sourceA := &sequenceAdapter{
		name: "A",
		results: [][]newsmodel.ArticleRef{
			{{Title: "a1", State: "StateA"}, {Title: "a2", State: "StateA"}, {Title: "a3", State: "StateA"}},
			nil, nil, nil, nil, nil, nil,
		},
		errs: []error{nil, errors.New("fail"), errors.New("fail"), errors.New("fail"), errors.New("fail"), errors.New("fail"), errors.New("fail")},
	}
	sourceB := &stubAdapter{name: "B", results: []newsmodel.ArticleRef{
		{Title: "b1", State: "StateB"}, {Title: "b2", State: "StateB"}, {Title: "b3", State: "StateB"}, {Title: "b4", State: "StateB"}, {Title: "b5", State: "StateB"},
	}}

	schedulers := map[newsmodel.SourceHint]*scheduler.Scheduler{
		newsmodel.SourceGoogle:   newTestScheduler(sourceA, 20),
		newsmodel.SourceNewsdata: newTestScheduler(sourceB, 20),
	}
	exec := New(schedulers, newFakeCheckpointStore(), discardLogger())

	aQueries := make([]newsmodel.Query, 7)
	for i := range aQueries {
		aQueries[i] = newsmodel.Query{
			SourceHint: newsmodel.SourceGoogle, Language: newsmodel.LangEnglish,
			StateSlug: "state-a", QueryString: fmt.Sprintf("q-a-%d", i),
		}
	}
	stateQueries := map[newsmodel.SourceHint][]newsmodel.Query{
		newsmodel.SourceGoogle: aQueries,
		newsmodel.SourceNewsdata: {
			{SourceHint: newsmodel.SourceNewsdata, Language: newsmodel.LangEnglish, StateSlug: "state-b", QueryString: "q-b-1"},
			{SourceHint: newsmodel.SourceNewsdata, Language: newsmodel.LangEnglish, StateSlug: "state-b", QueryString: "q-b-2"},
		},
	}
	genDistrict := func(active map[string]bool, budgetOK map[newsmodel.SourceHint]bool) map[newsmodel.SourceHint][]newsmodel.Query {
		return nil
	}

	refs, _ := exec.Run(context.Background(), stateQueries, genDistrict)
	if len(refs) != 13 {
		t.Fatalf("expected 3 + 5 + 5 = 13 total articles, got %d: %+v", len(refs), refs)
	}
	if sourceA.calls > 6 {
		t.Errorf("expected the breaker to short-circuit source A before all 7 queries reached the adapter, got %d calls", sourceA.calls)
	}
}
