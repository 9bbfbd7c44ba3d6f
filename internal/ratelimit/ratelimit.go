package ratelimit

import (
	"fmt"
	"log"
	"sync"
)

// Budget caps the number of external summarization calls per run and tracks
// how much work the summary cache saved. A zero or negative max means
// unlimited.
type Budget struct {
	mu          sync.Mutex
	used        int
	max         int
	cacheHits   int
	cacheMisses int
}

func NewBudget(max int) *Budget {
	return &Budget{max: max}
}

// CanUse reports whether another external call fits the budget.
func (b *Budget) CanUse() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.max > 0 && b.used >= b.max {
		log.Printf("⚠️ summarization budget reached (%d/%d)", b.used, b.max)
		return false
	}
	return true
}

// Use consumes one call from the budget.
func (b *Budget) Use() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.max > 0 && b.used >= b.max {
		return fmt.Errorf("summarization budget exceeded (%d/%d)", b.used, b.max)
	}
	b.used++
	b.cacheMisses++
	return nil
}

// RecordCacheHit notes that a cached summary was reused instead of calling
// the external service.
func (b *Budget) RecordCacheHit() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cacheHits++
}

func (b *Budget) HitRate() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hitRateLocked()
}

func (b *Budget) hitRateLocked() float64 {
	total := b.cacheHits + b.cacheMisses
	if total == 0 {
		return 0
	}
	return float64(b.cacheHits) / float64(total) * 100
}

// PrintStats logs budget usage at end of run.
func (b *Budget) PrintStats() {
	b.mu.Lock()
	defer b.mu.Unlock()

	limit := "unlimited"
	if b.max > 0 {
		limit = fmt.Sprintf("%d", b.max)
	}
	log.Printf("📊 summarization: %d/%s calls, %d cache hits, %d misses (%.1f%% hit rate)",
		b.used, limit, b.cacheHits, b.cacheMisses, b.hitRateLocked())
}
