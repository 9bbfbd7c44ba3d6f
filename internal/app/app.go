// Package app wires the pipeline together: fetch, normalize, dedupe,
// extract, tag, summarize, schedule, render.
package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/dysonx/energynews/internal/cache"
	"github.com/dysonx/energynews/internal/config"
	"github.com/dysonx/energynews/internal/feeds"
	"github.com/dysonx/energynews/internal/fetch"
	"github.com/dysonx/energynews/internal/logger"
	"github.com/dysonx/energynews/internal/metrics"
	"github.com/dysonx/energynews/internal/news"
	"github.com/dysonx/energynews/internal/ratelimit"
	"github.com/dysonx/energynews/internal/render"
	"github.com/dysonx/energynews/internal/retry"
	"github.com/dysonx/energynews/internal/schedule"
	"github.com/dysonx/energynews/internal/scrape"
	"github.com/dysonx/energynews/internal/summarize"
)

// Run executes one full aggregation pass. Only a missing feed list is
// fatal; every other failure degrades the affected record and the run
// continues.
func Run(ctx context.Context, cfg *config.Config) error {
	start := time.Now()
	logger.Info("starting aggregation run",
		"feeds_config", cfg.FeedsConfigPath,
		"items_per_page", cfg.ItemsPerPage,
		"per_source_cap", cfg.PerSourceCap)

	sources, err := feeds.Load(cfg.FeedsConfigPath)
	if err != nil {
		metrics.Global.SetError(err.Error())
		return err
	}
	log.Printf("Loaded %d feed sources", len(sources))

	fetcher := feeds.NewFetcher(cfg.RequestTimeout, cfg.PerFeedLimit, cfg.MaxTotal)
	entries := fetcher.FetchAll(ctx, sources)

	records := normalizeAll(entries)
	records = news.Dedupe(records)
	log.Printf("After dedup: %d records", len(records))

	if cfg.MaxArticles > 0 && len(records) > cfg.MaxArticles {
		records = records[:cfg.MaxArticles]
		log.Printf("Capped to %d records", len(records))
	}

	httpRetry := retry.Config{
		MaxAttempts: cfg.HTTPMaxRetries,
		BaseDelay:   cfg.HTTPBaseBackoff,
		MaxDelay:    cfg.HTTPMaxBackoff,
	}
	contentStore := cache.Open(cfg.ContentCachePath)
	client := fetch.NewClient(cfg.RequestTimeout, httpRetry)
	extractor := scrape.NewExtractor(client, contentStore, cfg.ScrapeConcurrency)
	extractor.ExtractAll(ctx, records)

	tagger := news.NewTagger()
	for _, r := range records {
		r.Tags = tagger.Tags(fmt.Sprintf("%s %s %s", r.Title, r.Preview, r.FullText), r.Source, r.Link)
	}

	summarizeAll(ctx, cfg, records)

	interleaved := schedule.Interleave(records, 1)
	pages := schedule.Paginate(interleaved, schedule.Options{
		PageSize:     cfg.ItemsPerPage,
		PerSourceCap: cfg.PerSourceCap,
	})
	log.Printf("Scheduled %d records onto %d pages", len(interleaved), len(pages))

	renderer := render.NewRenderer(cfg.PostsDir, cfg.SiteBaseURL)
	if err := renderer.WritePages(pages); err != nil {
		metrics.Global.SetError(err.Error())
		return err
	}

	metrics.Global.RecordRun(time.Since(start))
	stats := metrics.Global.GetStats()
	logger.Info("run finished",
		"duration", time.Since(start).Round(time.Millisecond).String(),
		"entries_collected", stats["entries_collected"],
		"records_dropped", stats["records_dropped"],
		"duplicates_filtered", stats["duplicates_filtered"],
		"extraction_failures", stats["extraction_failures"],
		"summaries_generated", stats["summaries_generated"],
		"summary_cache_hits", stats["summary_cache_hits"],
		"pages_written", stats["pages_written"])
	return nil
}

func normalizeAll(entries []feeds.Entry) []*news.Record {
	records := make([]*news.Record, 0, len(entries))
	for _, e := range entries {
		r, err := news.Normalize(e)
		if err != nil {
			metrics.Global.IncrementRecordsDropped()
			log.Printf("⚠️ dropped entry from %s: %v", e.Source, err)
			continue
		}
		records = append(records, r)
	}
	return records
}

func summarizeAll(ctx context.Context, cfg *config.Config, records []*news.Record) {
	budget := ratelimit.NewBudget(cfg.SummaryBudget)

	var svc summarize.Summarizer
	if cfg.GeminiAPIKey != "" {
		gemini, err := summarize.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Printf("❌ gemini client init failed, pages go out without summaries: %v", err)
		} else {
			defer gemini.Close()
			svc = gemini
		}
	} else {
		log.Printf("⚠️ GEMINI_API_KEY not set, pages go out without summaries")
	}

	summaryStore := cache.Open(cfg.SummaryCachePath)
	gateway := summarize.NewGateway(svc, summaryStore, budget, retry.Config{
		MaxAttempts: cfg.SummaryMaxRetries,
		BaseDelay:   cfg.SummaryBaseBackoff,
		MaxDelay:    cfg.HTTPMaxBackoff,
	}, cfg.GeminiModel, cfg.SummaryConcurrency)

	gateway.SummarizeAll(ctx, records)
	budget.PrintStats()
}
