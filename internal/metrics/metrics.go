package metrics

import (
	"sync"
	"time"
)

// Metrics collects run counters for the aggregation pipeline. Exposed as
// JSON by the optional monitoring endpoints and logged at end of run.
type Metrics struct {
	mu sync.RWMutex

	// Counters
	EntriesCollected   int64
	RecordsDropped     int64
	DuplicatesFiltered int64
	ExtractionFailures int64
	SummariesGenerated int64
	SummaryFailures    int64
	SummaryCacheHits   int64
	PagesWritten       int64

	// Timings
	LastRunDuration time.Duration

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) AddEntriesCollected(n int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EntriesCollected += n
}

func (m *Metrics) IncrementRecordsDropped() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RecordsDropped++
}

func (m *Metrics) IncrementDuplicatesFiltered() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuplicatesFiltered++
}

func (m *Metrics) IncrementExtractionFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ExtractionFailures++
}

func (m *Metrics) IncrementSummariesGenerated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SummariesGenerated++
}

func (m *Metrics) IncrementSummaryFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SummaryFailures++
}

func (m *Metrics) IncrementSummaryCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SummaryCacheHits++
}

func (m *Metrics) SetPagesWritten(n int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PagesWritten = n
}

func (m *Metrics) RecordRun(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunDuration = duration
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"entries_collected":    m.EntriesCollected,
		"records_dropped":      m.RecordsDropped,
		"duplicates_filtered":  m.DuplicatesFiltered,
		"extraction_failures":  m.ExtractionFailures,
		"summaries_generated":  m.SummariesGenerated,
		"summary_failures":     m.SummaryFailures,
		"summary_cache_hits":   m.SummaryCacheHits,
		"pages_written":        m.PagesWritten,
		"last_run_duration_ms": m.LastRunDuration.Milliseconds(),
		"last_run_time":        m.LastRunTime.Format(time.RFC3339),
		"last_error_time":      m.LastErrorTime.Format(time.RFC3339),
		"last_error":           m.LastError,
		"is_healthy":           m.IsHealthy,
	}
}
