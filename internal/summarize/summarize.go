// Package summarize wraps the external bilingual summarization service with
// a fingerprint cache, a per-run call budget, bounded concurrency and
// retry-with-backoff.
package summarize

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/dysonx/energynews/internal/cache"
	"github.com/dysonx/energynews/internal/metrics"
	"github.com/dysonx/energynews/internal/news"
	"github.com/dysonx/energynews/internal/ratelimit"
	"github.com/dysonx/energynews/internal/retry"
)

// How much article text participates in the cache fingerprint and the
// prompt. Changing the article body invalidates the cached summary.
const excerptRunes = 2000

// Result is a bilingual summary pair.
type Result struct {
	English string `json:"en"`
	Chinese string `json:"zh"`
}

// Summarizer is the external language-model call, stripped to its contract.
type Summarizer interface {
	Summarize(ctx context.Context, title, link, content string) (*Result, error)
}

// Gateway coordinates summarization for a batch of records.
type Gateway struct {
	svc         Summarizer
	store       *cache.Store
	budget      *ratelimit.Budget
	retrier     *retry.Retrier
	model       string
	concurrency int64
}

func NewGateway(svc Summarizer, store *cache.Store, budget *ratelimit.Budget, retryConfig retry.Config, model string, concurrency int) *Gateway {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Gateway{
		svc:         svc,
		store:       store,
		budget:      budget,
		retrier:     retry.NewRetrier(retryConfig, IsTransient),
		model:       model,
		concurrency: int64(concurrency),
	}
}

// SummarizeAll fills SummaryEN/SummaryZH on every record, at most
// `concurrency` external calls in flight. Each goroutine owns exactly one
// record and writes only that record's summary fields, so results are tied
// to their record by identity, never by completion order. A failed record
// degrades to empty summaries; it never aborts the batch.
func (g *Gateway) SummarizeAll(ctx context.Context, records []*news.Record) {
	sem := semaphore.NewWeighted(g.concurrency)
	var wg sync.WaitGroup

	for _, r := range records {
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Printf("⚠️ summarization cancelled: %v", err)
			break
		}
		wg.Add(1)
		go func(r *news.Record) {
			defer wg.Done()
			defer sem.Release(1)
			g.summarizeOne(ctx, r)
		}(r)
	}

	wg.Wait()
}

func (g *Gateway) summarizeOne(ctx context.Context, r *news.Record) {
	content := r.FullText
	if content == "" {
		content = r.Preview
	}
	key := g.cacheKey(r.Title, r.Link, content)

	if raw, ok := g.store.Get(key); ok {
		var cached Result
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			r.SummaryEN = cached.English
			r.SummaryZH = cached.Chinese
			g.budget.RecordCacheHit()
			metrics.Global.IncrementSummaryCacheHits()
			return
		}
	}

	if g.svc == nil || !g.budget.CanUse() {
		metrics.Global.IncrementSummaryFailures()
		return
	}

	var result *Result
	err := g.retrier.Do(ctx, func() error {
		res, callErr := g.svc.Summarize(ctx, r.Title, r.Link, excerpt(content))
		if callErr != nil {
			return callErr
		}
		result = res
		return nil
	})
	if err != nil {
		metrics.Global.IncrementSummaryFailures()
		log.Printf("❌ summarization failed for %q: %v", r.Title, err)
		return
	}

	if err := g.budget.Use(); err != nil {
		// Budget raced out from under us; keep the result, it is already paid for.
		log.Printf("⚠️ %v", err)
	}

	r.SummaryEN = SanitizeAIText(result.English)
	r.SummaryZH = SanitizeAIText(result.Chinese)
	metrics.Global.IncrementSummariesGenerated()

	if data, err := json.Marshal(Result{English: r.SummaryEN, Chinese: r.SummaryZH}); err == nil {
		if err := g.store.Put(key, string(data)); err != nil {
			log.Printf("⚠️ summary cache write failed: %v", err)
		}
	}
}

// cacheKey fingerprints everything that shapes the summary.
func (g *Gateway) cacheKey(title, link, content string) string {
	return cache.Fingerprint(g.model, title, link, excerpt(content))
}

func excerpt(content string) string {
	runes := []rune(content)
	if len(runes) > excerptRunes {
		return string(runes[:excerptRunes])
	}
	return content
}
