// Package news holds the canonical article record and the normalization,
// deduplication and tagging steps that turn raw feed entries into it.
package news

import "strings"

// Record is the canonical representation of one article. It is created by
// Normalize, possibly discarded by Dedupe, then enriched in place by the
// extractor, tagger and summarization gateway. Later stages read it only.
type Record struct {
	Title        string
	Link         string // original link, for display
	LinkKey      string // normalized link, dedup and per-page cap key
	Source       string
	PublishedRaw string // human-readable, for display
	SortTS       int64  // unix seconds; 0 when no timestamp parsed
	GUID         string

	Preview  string // <=400 chars, from article text or feed summary
	FullText string // extracted article body, optional

	SummaryEN string
	SummaryZH string
	Tags      []string
}

// IdentityKey is the dedup identity: feed GUID when present, else the
// normalized link, else the lowercased trimmed title.
func (r *Record) IdentityKey() string {
	if r.GUID != "" {
		return "guid:" + r.GUID
	}
	if r.LinkKey != "" {
		return "link:" + r.LinkKey
	}
	return "title:" + strings.ToLower(strings.TrimSpace(r.Title))
}

// PageKey is the per-page uniqueness key used by the scheduler.
func (r *Record) PageKey() string {
	if r.LinkKey != "" {
		return r.LinkKey
	}
	return r.IdentityKey()
}
