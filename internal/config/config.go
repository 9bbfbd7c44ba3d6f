// Package config loads all tunables from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Feed settings
	FeedsConfigPath string
	PerFeedLimit    int // entries kept per feed
	MaxTotal        int // entries kept across all feeds
	MaxArticles     int // hard cap on records processed per run (0 = unlimited)

	// Page layout
	PostsDir     string
	ItemsPerPage int
	PerSourceCap int // max posts from one source per page
	SiteBaseURL  string

	// Scraper settings
	ScrapeConcurrency int

	// Gemini settings
	GeminiAPIKey       string
	GeminiModel        string
	SummaryConcurrency int
	SummaryBudget      int // max model calls per run (0 = unlimited)

	// Retry/backoff
	HTTPMaxRetries     int
	HTTPBaseBackoff    time.Duration
	HTTPMaxBackoff     time.Duration
	SummaryMaxRetries  int
	SummaryBaseBackoff time.Duration
	RequestTimeout     time.Duration

	// Cache settings
	ContentCachePath string
	SummaryCachePath string

	// App settings
	Debug                bool
	EnableHTTPMonitoring bool
	MonitoringPort       string
}

func Load() (*Config, error) {
	cfg := &Config{
		FeedsConfigPath:    getEnvOrDefault("FEEDS_CONFIG_PATH", "configs/feeds.yaml"),
		PerFeedLimit:       getEnvIntOrDefault("PER_FEED_LIMIT", 15),
		MaxTotal:           getEnvIntOrDefault("MAX_TOTAL", 300),
		MaxArticles:        getEnvIntOrDefault("MAX_ARTICLES", 0),
		PostsDir:           getEnvOrDefault("POSTS_DIR", "posts"),
		ItemsPerPage:       getEnvIntOrDefault("ITEMS_PER_PAGE", 30),
		PerSourceCap:       getEnvIntOrDefault("PER_PAGE_SOURCE_CAP", 5),
		SiteBaseURL:        os.Getenv("SITE_BASE_URL"),
		ScrapeConcurrency:  getEnvIntOrDefault("SCRAPE_CONCURRENCY", 8),
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		GeminiModel:        getEnvOrDefault("GEMINI_MODEL", "gemini-1.5-flash"),
		SummaryConcurrency: getEnvIntOrDefault("SUMMARY_CONCURRENCY", 4),
		SummaryBudget:      getEnvIntOrDefault("SUMMARY_BUDGET", 0),
		HTTPMaxRetries:     getEnvIntOrDefault("HTTP_MAX_RETRIES", 3),
		HTTPBaseBackoff:    getEnvDurationMs("HTTP_BASE_BACKOFF_MS", 500*time.Millisecond),
		HTTPMaxBackoff:     getEnvDurationMs("HTTP_MAX_BACKOFF_MS", 8*time.Second),
		SummaryMaxRetries:  getEnvIntOrDefault("SUMMARY_MAX_RETRIES", 4),
		SummaryBaseBackoff: getEnvDurationMs("SUMMARY_BASE_BACKOFF_MS", time.Second),
		RequestTimeout:     time.Duration(getEnvIntOrDefault("REQUEST_TIMEOUT_SEC", 20)) * time.Second,
		ContentCachePath:   getEnvOrDefault("CONTENT_CACHE_PATH", "cache/content.jsonl"),
		SummaryCachePath:   getEnvOrDefault("SUMMARY_CACHE_PATH", "cache/summaries.jsonl"),
		MonitoringPort:     getEnvOrDefault("MONITORING_PORT", "8080"),
	}

	if os.Getenv("DEBUG") == "true" {
		cfg.Debug = true
	}
	if os.Getenv("ENABLE_HTTP_MONITORING") == "true" {
		cfg.EnableHTTPMonitoring = true
	}

	return cfg, cfg.Validate()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDurationMs(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if ms, err := strconv.Atoi(value); err == nil && ms > 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return defaultValue
}

// Validate checks only what the run cannot proceed without. A missing
// Gemini key is allowed: the pipeline still builds pages, records just go
// out without summaries.
func (c *Config) Validate() error {
	if c.FeedsConfigPath == "" {
		return fmt.Errorf("FEEDS_CONFIG_PATH is required")
	}
	if c.ItemsPerPage < 1 {
		return fmt.Errorf("ITEMS_PER_PAGE must be positive")
	}
	if c.PerSourceCap < 1 {
		return fmt.Errorf("PER_PAGE_SOURCE_CAP must be positive")
	}
	return nil
}
