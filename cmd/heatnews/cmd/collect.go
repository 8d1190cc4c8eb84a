package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"heatnews/internal/breaker"
	"heatnews/internal/catalog"
	"heatnews/internal/checkpoint"
	"heatnews/internal/config"
	"heatnews/internal/dedup"
	"heatnews/internal/executor"
	"heatnews/internal/extract"
	"heatnews/internal/logger"
	"heatnews/internal/newsmodel"
	"heatnews/internal/output"
	"heatnews/internal/querygen"
	"heatnews/internal/resolver"
	"heatnews/internal/scheduler"
	"heatnews/internal/sourceadapter"
)

// indirectHosts are the redirect-wrapping aggregator hosts the resolver
// unwinds before extraction (spec.md §4.6).
var indirectHosts = []string{"news.google.com"}

func newCollectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Run one end-to-end daily collection pass",
		Long: `collect generates state- and district-level search queries across the
configured geography and heat-term catalog, executes them against Google,
Newsdata, and GNews under per-source circuit breakers and rate limits,
extracts and deduplicates the results, and writes state-partitioned
output under the run's output root.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCollect(cmd.Context())
		},
	}
	return cmd
}

// collectPrimaryTerms gathers the distinct PrimaryTerm values across every
// generated query, for the run manifest's query_terms_used field.
func collectPrimaryTerms(bySource map[newsmodel.SourceHint][]newsmodel.Query) []string {
	seen := make(map[string]bool)
	var terms []string
	for _, queries := range bySource {
		for _, q := range queries {
			if q.PrimaryTerm == "" || seen[q.PrimaryTerm] {
				continue
			}
			seen[q.PrimaryTerm] = true
			terms = append(terms, q.PrimaryTerm)
		}
	}
	return terms
}

func runCollect(parentCtx context.Context) error {
	log := logger.Component("collect")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	runID := uuid.NewString()
	log.Info("starting collection run", "run_id", runID, "deadline", cfg.Run.Deadline)

	ctx, cancel := context.WithTimeout(parentCtx, cfg.Run.Deadline)
	defer cancel()

	httpClient := &http.Client{Timeout: 15 * time.Second}

	regions := catalog.SampleRegions()
	dict := catalog.SampleDictionary()

	sourceConfigs := map[newsmodel.SourceHint]sourceadapter.Config{
		newsmodel.SourceGoogle:   sourceadapter.GoogleConfig,
		newsmodel.SourceNewsdata: sourceadapter.NewsdataConfig,
		newsmodel.SourceGNews:    sourceadapter.GNewsConfig,
	}

	adapters := map[newsmodel.SourceHint]sourceadapter.Adapter{
		newsmodel.SourceGoogle:   sourceadapter.NewGoogleSource(cfg.Sources.GoogleAPIKey, cfg.Sources.GoogleSearchID, httpClient),
		newsmodel.SourceNewsdata: sourceadapter.NewNewsdataSource(cfg.Sources.NewsdataAPIKey, httpClient),
		newsmodel.SourceGNews:    sourceadapter.NewGNewsSource(cfg.Sources.GNewsAPIKey, httpClient),
	}

	schedulers := make(map[newsmodel.SourceHint]*scheduler.Scheduler, len(adapters))
	for hint, adapter := range adapters {
		br := breaker.New(cfg.Breaker.FailureThreshold, cfg.Breaker.ResetTimeout)
		schedulers[hint] = scheduler.New(adapter, sourceConfigs[hint], br, logger.Component("scheduler."+string(hint)))
	}

	cp := checkpoint.Load(cfg.Run.CheckpointPath)
	log.Info("checkpoint loaded", "completed_queries", cp.Len())

	exec := executor.New(schedulers, cp, logger.Component("executor"))

	stateQueries := querygen.GenerateStateQueries(regions, dict, sourceConfigs)
	queryTermsUsed := collectPrimaryTerms(stateQueries)

	regionBySlug := make(map[string]catalog.Region, len(regions))
	for _, r := range regions {
		regionBySlug[r.Slug] = r
	}

	genDistrict := func(activeRegionSlugs map[string]bool, budgetOK map[newsmodel.SourceHint]bool) map[newsmodel.SourceHint][]newsmodel.Query {
		var active []catalog.Region
		for slug := range activeRegionSlugs {
			if r, ok := regionBySlug[slug]; ok {
				active = append(active, r)
			}
		}
		log.Info("district phase", "active_regions", len(active))
		return querygen.GenerateDistrictQueries(active, dict, sourceConfigs, budgetOK)
	}

	refs, err := exec.Run(ctx, stateQueries, genDistrict)
	if err != nil {
		log.Warn("collection run reported partial errors", "error", err)
	}
	log.Info("collection finished", "articles_found", len(refs))

	res := resolver.New(httpClient, indirectHosts)
	extractor := extract.New(httpClient, res, cfg.Extraction.MaxConcurrent, logger.Component("extract"))
	articles := extractor.ExtractAll(ctx, refs)

	extracted := 0
	for _, a := range articles {
		if a.FullText != nil {
			extracted++
		}
	}
	log.Info("extraction finished", "articles_extracted", extracted)

	filtered := dedup.Run(articles, dict, dedup.DefaultConfig())
	log.Info("dedup/filter finished", "articles_remaining", len(filtered))

	allStateNames := make([]string, 0, len(regions))
	for _, r := range regions {
		allStateNames = append(allStateNames, r.Name)
	}

	metadata := newsmodel.CollectionMetadata{
		RunID:               runID,
		CollectionTimestamp: time.Now().In(newsmodel.IST),
		SourcesQueried:      []string{"google", "newsdata", "gnews"},
		QueryTermsUsed:      queryTermsUsed,
		Counts: newsmodel.CollectionCounts{
			ArticlesFound:     len(refs),
			ArticlesExtracted: extracted,
			ArticlesFiltered:  len(filtered),
		},
	}

	dateStr := metadata.CollectionTimestamp.Format("2006-01-02")
	if err := output.Write(cfg.Run.OutputRoot, dateStr, filtered, allStateNames, metadata); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if err := cp.Delete(); err != nil {
		log.Warn("failed to remove checkpoint after successful run", "error", err)
	}

	log.Info("collection run complete", "run_id", runID, "output_root", cfg.Run.OutputRoot)
	return nil
}
