package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/dysonx/energynews/internal/retry"
)

// Browser User-Agent. Many news sites answer 403 to obvious bot agents.
const BrowserUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// StatusError is returned for non-2xx responses so callers and the retry
// classifier can distinguish rate limits and server errors from hard 4xx.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: status %d", e.URL, e.Code)
}

// IsTransient classifies fetch errors: timeouts, connection problems,
// 429 and 5xx are retryable; other HTTP statuses and bad URLs are not.
func IsTransient(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code == http.StatusTooManyRequests || statusErr.Code >= 500
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return false
}

// Client performs HTTP GETs with a fixed timeout and retry-with-backoff.
type Client struct {
	http    *http.Client
	retrier *retry.Retrier
	maxBody int64
}

func NewClient(timeout time.Duration, retryConfig retry.Config) *Client {
	return &Client{
		http:    &http.Client{Timeout: timeout},
		retrier: retry.NewRetrier(retryConfig, IsTransient),
		maxBody: 4 << 20,
	}
}

// Get downloads url, retrying transient failures. A malformed URL fails
// immediately without touching the network.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", url, err)
	}
	req.Header.Set("User-Agent", BrowserUA)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	var body []byte
	err = c.retrier.Do(ctx, func() error {
		resp, reqErr := c.http.Do(req)
		if reqErr != nil {
			return reqErr
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &StatusError{Code: resp.StatusCode, URL: url}
		}

		data, readErr := io.ReadAll(io.LimitReader(resp.Body, c.maxBody))
		if readErr != nil {
			return readErr
		}
		body = data
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}
