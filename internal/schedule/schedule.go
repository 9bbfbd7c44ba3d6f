// Package schedule produces the final page layout: a source-fair ordering
// of records followed by cap-aware pagination.
package schedule

import (
	"github.com/dysonx/energynews/internal/news"
)

// Options tunes pagination.
type Options struct {
	PageSize     int // records per page
	PerSourceCap int // max records from one source per page (pass 1 only)
	PerRound     int // records taken per source per interleave round, normally 1
}

// Interleave reorders records round-robin across sources, preserving each
// source's own relative order. While a source still has items, it cannot
// appear twice within a window smaller than the number of active sources;
// that is the fairness guarantee.
func Interleave(records []*news.Record, perRound int) []*news.Record {
	if perRound < 1 {
		perRound = 1
	}

	queues := make(map[string][]*news.Record)
	var rotation []string
	for _, r := range records {
		if _, seen := queues[r.Source]; !seen {
			rotation = append(rotation, r.Source)
		}
		queues[r.Source] = append(queues[r.Source], r)
	}

	out := make([]*news.Record, 0, len(records))
	for len(rotation) > 0 {
		source := rotation[0]
		rotation = rotation[1:]

		queue := queues[source]
		take := perRound
		if take > len(queue) {
			take = len(queue)
		}
		out = append(out, queue[:take]...)
		queues[source] = queue[take:]

		if len(queues[source]) > 0 {
			rotation = append(rotation, source)
		}
	}
	return out
}

// Paginate slices the interleaved sequence into pages of at most PageSize
// records. Each page is built in two passes over a forward scan window:
//
//  1. admit items while respecting the per-source cap and per-page
//     link-key uniqueness (diversity pass);
//  2. if the page is still short, rescan the same window and admit any
//     remaining non-duplicate item regardless of the source cap (backfill
//     pass), so no page comes out short while input remains.
//
// The cursor then advances past every item examined, admitted or not, which
// guarantees forward progress and that no later page revisits the range.
// Zero input produces zero pages.
func Paginate(records []*news.Record, opts Options) [][]*news.Record {
	if opts.PageSize < 1 {
		opts.PageSize = 50
	}

	var pages [][]*news.Record
	cursor := 0
	for cursor < len(records) {
		page, consumed := buildPage(records[cursor:], opts)
		cursor += consumed
		if len(page) > 0 {
			pages = append(pages, page)
		}
		if consumed == 0 {
			break
		}
	}
	return pages
}

func buildPage(window []*news.Record, opts Options) ([]*news.Record, int) {
	page := make([]*news.Record, 0, opts.PageSize)
	admitted := make([]bool, len(window))
	seenKeys := make(map[string]bool)
	perSource := make(map[string]int)
	scanned := 0

	// Pass 1: diversity. Honor the per-source cap.
	for i, r := range window {
		if len(page) >= opts.PageSize {
			break
		}
		scanned = i + 1

		key := r.PageKey()
		if seenKeys[key] {
			continue
		}
		if opts.PerSourceCap > 0 && perSource[r.Source] >= opts.PerSourceCap {
			continue
		}

		admitted[i] = true
		seenKeys[key] = true
		perSource[r.Source]++
		page = append(page, r)
	}

	// Pass 2: backfill. Relax the cap so the page is not left short.
	if len(page) < opts.PageSize {
		for i, r := range window {
			if len(page) >= opts.PageSize {
				break
			}
			if i+1 > scanned {
				scanned = i + 1
			}
			if admitted[i] {
				continue
			}

			key := r.PageKey()
			if seenKeys[key] {
				continue
			}

			admitted[i] = true
			seenKeys[key] = true
			page = append(page, r)
		}
	}

	return page, scanned
}
