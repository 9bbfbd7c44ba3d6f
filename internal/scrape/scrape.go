// Package scrape fills records with extracted article text. It consults the
// content cache first, then downloads the page and harvests body paragraphs
// with goquery, falling back to readability when the selector pass finds
// nothing usable.
package scrape

import (
	"bytes"
	"context"
	"log"
	"net/url"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/dysonx/energynews/internal/cache"
	"github.com/dysonx/energynews/internal/fetch"
	"github.com/dysonx/energynews/internal/metrics"
	"github.com/dysonx/energynews/internal/news"
)

// Selectors tried in order when harvesting body text. The common article
// containers first, a bare paragraph sweep last.
var contentSelectors = []string{
	"article p",
	"main p",
	"[role=main] p",
	".post p",
	".entry-content p",
	".content p",
	".article p",
	"p",
}

const (
	minParagraphLen  = 40
	maxParagraphs    = 6
	maxFullTextRunes = 6000
)

type Extractor struct {
	client      *fetch.Client
	store       *cache.Store
	concurrency int
}

func NewExtractor(client *fetch.Client, store *cache.Store, concurrency int) *Extractor {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Extractor{client: client, store: store, concurrency: concurrency}
}

// ExtractAll fetches article bodies for all records using a bounded worker
// pool. Each worker writes only its own record's FullText and Preview, so
// no cross-task locking is needed. Extraction failure degrades the record
// to its feed-provided preview; it never fails the batch.
func (e *Extractor) ExtractAll(ctx context.Context, records []*news.Record) {
	var wg sync.WaitGroup
	work := make(chan *news.Record)

	for i := 0; i < e.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for r := range work {
				e.extractOne(ctx, r)
			}
		}()
	}

	for _, r := range records {
		if r.Link == "" {
			continue
		}
		work <- r
	}
	close(work)
	wg.Wait()
}

func (e *Extractor) extractOne(ctx context.Context, r *news.Record) {
	if text, ok := e.store.Get(r.Link); ok && text != "" {
		r.FullText = text
		r.Preview = news.MakePreview(text, r.Preview)
		return
	}

	text, err := e.extractText(ctx, r.Link)
	if err != nil || text == "" {
		metrics.Global.IncrementExtractionFailures()
		log.Printf("⚠️ extraction failed for %s, keeping feed summary: %v", r.Link, err)
		return
	}

	r.FullText = text
	r.Preview = news.MakePreview(text, r.Preview)

	if err := e.store.Put(r.Link, text); err != nil {
		log.Printf("⚠️ content cache write failed for %s: %v", r.Link, err)
	}
}

func (e *Extractor) extractText(ctx context.Context, url string) (string, error) {
	body, err := e.client.Get(ctx, url)
	if err != nil {
		return "", err
	}

	if text := harvestParagraphs(body); text != "" {
		return text, nil
	}

	// Selector pass found nothing; let readability take the whole page apart.
	article, err := readability.FromReader(bytes.NewReader(body), mustParseURL(url))
	if err != nil {
		return "", err
	}
	return clampText(article.TextContent), nil
}

// harvestParagraphs collects the first substantial paragraphs under common
// article containers.
func harvestParagraphs(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}

	var paragraphs []string
	for _, selector := range contentSelectors {
		doc.Find(selector).EachWithBreak(func(i int, s *goquery.Selection) bool {
			text := strings.Join(strings.Fields(s.Text()), " ")
			if len(text) >= minParagraphLen {
				paragraphs = append(paragraphs, text)
			}
			return len(paragraphs) < maxParagraphs
		})
		if len(paragraphs) > 0 {
			break
		}
	}

	return clampText(strings.Join(paragraphs, "\n\n"))
}

func mustParseURL(raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil {
		return &url.URL{}
	}
	return u
}

func clampText(text string) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) > maxFullTextRunes {
		text = string(runes[:maxFullTextRunes])
	}
	return text
}
