package news

import (
	"log"

	"github.com/dysonx/energynews/internal/metrics"
)

// Dedupe collapses records that refer to the same article, keeping at most
// one per identity key. When two records collide, the one with the strictly
// greater sort timestamp wins; ties keep the first-seen record, so the
// result is stable and Dedupe is idempotent. This runs before tagging and
// summarization so no external call is wasted on a discarded duplicate.
func Dedupe(records []*Record) []*Record {
	byKey := make(map[string]int, len(records))
	out := make([]*Record, 0, len(records))

	for _, r := range records {
		key := r.IdentityKey()
		idx, seen := byKey[key]
		if !seen {
			byKey[key] = len(out)
			out = append(out, r)
			continue
		}

		metrics.Global.IncrementDuplicatesFiltered()
		if r.SortTS > out[idx].SortTS {
			log.Printf("🔗 duplicate, keeping newer version: %s", r.Title)
			out[idx] = r
		}
	}

	return out
}
