package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetrier_Do(t *testing.T) {
	tests := map[string]struct {
		operation     func() func() error
		expectedCalls int
		wantErr       bool
	}{
		"success on first attempt": {
			operation: func() func() error {
				return func() error { return nil }
			},
			expectedCalls: 1,
		},
		"success by fourth attempt after three transient failures": {
			operation: func() func() error {
				attempt := 0
				return func() error {
					attempt++
					if attempt <= 3 {
						return errors.New("temporary error")
					}
					return nil
				}
			},
			expectedCalls: 4,
		},
		"failure after max attempts": {
			operation: func() func() error {
				return func() error { return errors.New("temporary error") }
			},
			expectedCalls: 4,
			wantErr:       true,
		},
		"non-transient error fails immediately": {
			operation: func() func() error {
				return func() error { return errors.New("permanent error") }
			},
			expectedCalls: 1,
			wantErr:       true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			config := Config{
				MaxAttempts:  4,
				BaseDelay:    time.Millisecond,
				MaxDelay:     10 * time.Millisecond,
				JitterFactor: 0.1,
			}

			calls := 0
			op := tc.operation()
			wrapped := func() error {
				calls++
				return op()
			}

			classifier := func(err error) bool {
				return err.Error() == "temporary error"
			}

			err := NewRetrier(config, classifier).Do(context.Background(), wrapped)

			assert.Equal(t, tc.expectedCalls, calls)
			if tc.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestRetrier_CalculateDelay_NonDecreasingAndCapped(t *testing.T) {
	r := NewRetrier(Config{
		MaxAttempts: 6,
		BaseDelay:   100 * time.Millisecond,
		MaxDelay:    time.Second,
	}, nil)

	var prev time.Duration
	for attempt := 1; attempt <= 6; attempt++ {
		delay := r.calculateDelay(attempt)
		assert.GreaterOrEqual(t, delay, prev, "delay shrank at attempt %d", attempt)
		assert.LessOrEqual(t, delay, time.Second, "delay exceeded cap at attempt %d", attempt)
		prev = delay
	}

	// 100ms doubling: 100, 200, 400, 800, then pinned at the 1s ceiling.
	assert.Equal(t, 100*time.Millisecond, r.calculateDelay(1))
	assert.Equal(t, 800*time.Millisecond, r.calculateDelay(4))
	assert.Equal(t, time.Second, r.calculateDelay(5))
	assert.Equal(t, time.Second, r.calculateDelay(6))
}

func TestRetrier_CalculateDelay_Jitter(t *testing.T) {
	r := NewRetrier(Config{
		MaxAttempts:  3,
		BaseDelay:    100 * time.Millisecond,
		MaxDelay:     time.Second,
		JitterFactor: 0.1,
	}, nil)

	for i := 0; i < 50; i++ {
		delay := r.calculateDelay(2)
		assert.GreaterOrEqual(t, delay, 180*time.Millisecond)
		assert.LessOrEqual(t, delay, 220*time.Millisecond)
	}
}

func TestRetrier_Do_ContextCancellation(t *testing.T) {
	config := Config{
		MaxAttempts: 5,
		BaseDelay:   100 * time.Millisecond,
		MaxDelay:    time.Second,
	}

	calls := 0
	operation := func() error {
		calls++
		return errors.New("temporary error")
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	err := NewRetrier(config, func(error) bool { return true }).Do(ctx, operation)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "retry cancelled")
	assert.GreaterOrEqual(t, calls, 1)
	assert.Less(t, calls, 5)
}
