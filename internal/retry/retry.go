package retry

import (
	"context"
	"fmt"
	"log"
	"math"
	"math/rand"
	"time"
)

// Config controls the backoff schedule shared by every network-facing call
// site (HTTP fetches and summarization requests).
type Config struct {
	MaxAttempts   int           // total attempts, including the first one
	BaseDelay     time.Duration // delay before the second attempt
	MaxDelay      time.Duration // ceiling for the computed delay
	JitterFactor  float64       // fraction of the delay randomized (0 disables jitter)
	BackoffFactor float64       // multiplier per attempt; 2.0 when zero
}

// Classifier reports whether an error is transient and worth retrying.
type Classifier func(error) bool

// Retrier runs an operation with exponential backoff until it succeeds,
// exhausts its attempts, or hits a non-transient error.
type Retrier struct {
	config      Config
	isTransient Classifier
}

func NewRetrier(config Config, classifier Classifier) *Retrier {
	if config.MaxAttempts < 1 {
		config.MaxAttempts = 1
	}
	if config.BackoffFactor <= 0 {
		config.BackoffFactor = 2.0
	}
	return &Retrier{config: config, isTransient: classifier}
}

// Do executes operation. Non-transient errors fail immediately; transient
// ones are retried after a backoff wait that the context can cut short.
func (r *Retrier) Do(ctx context.Context, operation func() error) error {
	var lastErr error

	for attempt := 1; attempt <= r.config.MaxAttempts; attempt++ {
		lastErr = operation()
		if lastErr == nil {
			return nil
		}

		if r.isTransient != nil && !r.isTransient(lastErr) {
			return lastErr
		}
		if attempt == r.config.MaxAttempts {
			break
		}

		delay := r.calculateDelay(attempt)
		log.Printf("⚠️ attempt %d/%d failed (%v), retrying in %s", attempt, r.config.MaxAttempts, lastErr, delay)

		select {
		case <-ctx.Done():
			return fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-time.After(delay):
		}
	}

	return fmt.Errorf("failed after %d attempts: %w", r.config.MaxAttempts, lastErr)
}

// calculateDelay returns BaseDelay * factor^(attempt-1), capped at MaxDelay,
// with a small random jitter so many concurrent retries do not fire at once.
func (r *Retrier) calculateDelay(attempt int) time.Duration {
	delay := float64(r.config.BaseDelay) * math.Pow(r.config.BackoffFactor, float64(attempt-1))

	if r.config.MaxDelay > 0 && delay > float64(r.config.MaxDelay) {
		delay = float64(r.config.MaxDelay)
	}

	if r.config.JitterFactor > 0 {
		delay *= 1.0 + (rand.Float64()-0.5)*r.config.JitterFactor
	}

	return time.Duration(delay)
}
