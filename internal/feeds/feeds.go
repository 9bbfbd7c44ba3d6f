package feeds

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/mmcdole/gofeed"
	"gopkg.in/yaml.v3"

	"github.com/dysonx/energynews/internal/fetch"
	"github.com/dysonx/energynews/internal/metrics"
)

// Source is one configured feed. Name is optional; the feed's own title
// wins when present.
type Source struct {
	URL  string `yaml:"url"`
	Name string `yaml:"name,omitempty"`
}

// UnmarshalYAML accepts both the object form ({url, name}) and a bare URL
// string, so older feed lists keep working.
func (s *Source) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		s.URL = value.Value
		return nil
	}
	type plain Source
	return value.Decode((*plain)(s))
}

type feedsConfig struct {
	Feeds []Source `yaml:"feeds"`
}

// Load reads the feed list from a YAML file. This is the only fatal
// configuration in the pipeline: without it there is nothing to process.
func Load(path string) ([]Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open feeds config: %w", err)
	}
	defer f.Close()

	var cfg feedsConfig
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse feeds config %s: %w", path, err)
	}

	sources := make([]Source, 0, len(cfg.Feeds))
	for _, src := range cfg.Feeds {
		if src.URL == "" {
			continue
		}
		sources = append(sources, src)
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("feeds config %s lists no feeds", path)
	}
	return sources, nil
}

// Entry is the raw, ephemeral form of one feed item before normalization.
type Entry struct {
	Title       string
	Link        string
	GUID        string
	Summary     string
	Published   string
	Updated     string
	PublishedAt *time.Time
	UpdatedAt   *time.Time
	Source      string
}

// Fetcher downloads and parses feeds with per-feed and global caps.
type Fetcher struct {
	parser   *gofeed.Parser
	perFeed  int
	maxTotal int
}

func NewFetcher(timeout time.Duration, perFeed, maxTotal int) *Fetcher {
	parser := gofeed.NewParser()
	parser.UserAgent = fetch.BrowserUA
	parser.Client = &http.Client{Timeout: timeout}
	return &Fetcher{parser: parser, perFeed: perFeed, maxTotal: maxTotal}
}

// FetchAll collects entries from every source. A failing feed is logged and
// skipped; it never blocks the others.
func (f *Fetcher) FetchAll(ctx context.Context, sources []Source) []Entry {
	var collected []Entry
	okCount := 0

	for _, src := range sources {
		if f.maxTotal > 0 && len(collected) >= f.maxTotal {
			break
		}

		feed, err := f.parser.ParseURLWithContext(src.URL, ctx)
		if err != nil {
			log.Printf("⚠️ feed parse failed: %s -> %v", src.URL, err)
			continue
		}
		okCount++

		sourceName := feed.Title
		if sourceName == "" {
			sourceName = src.Name
		}
		if sourceName == "" {
			sourceName = "Unknown Source"
		}

		taken := 0
		for _, item := range feed.Items {
			if f.perFeed > 0 && taken >= f.perFeed {
				break
			}
			if f.maxTotal > 0 && len(collected) >= f.maxTotal {
				break
			}
			collected = append(collected, entryFromItem(item, sourceName))
			taken++
		}
		log.Printf("Loaded %d/%d entries from %s", taken, len(feed.Items), src.URL)
	}

	metrics.Global.AddEntriesCollected(int64(len(collected)))
	log.Printf("Processed feeds: %d/%d ok, %d entries", okCount, len(sources), len(collected))
	return collected
}

func entryFromItem(item *gofeed.Item, sourceName string) Entry {
	return Entry{
		Title:       item.Title,
		Link:        item.Link,
		GUID:        item.GUID,
		Summary:     item.Description,
		Published:   item.Published,
		Updated:     item.Updated,
		PublishedAt: item.PublishedParsed,
		UpdatedAt:   item.UpdatedParsed,
		Source:      sourceName,
	}
}
