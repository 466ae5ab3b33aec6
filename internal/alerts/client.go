// Package alerts pushes rental-expiry notifications to an ntfy topic.
package alerts

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

type Client struct {
	httpClient *http.Client
	baseURL    string
	topic      string
	enabled    bool
	priority   string
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration

	// Circuit breaker state
	mutex       sync.Mutex
	failures    int
	lastFailure time.Time
	circuitOpen bool

	// Metrics
	totalSent   int64
	totalFailed int64
}

type PushError struct {
	StatusCode int
	Attempt    int
	Underlying error
}

func (e *PushError) Error() string {
	return fmt.Sprintf("alert push failed (attempt %d): %v", e.Attempt, e.Underlying)
}

// IsRetryable reports whether another attempt could plausibly succeed.
func (e *PushError) IsRetryable() bool {
	if e.StatusCode == 0 || e.StatusCode == http.StatusTooManyRequests {
		return true
	}
	return e.StatusCode >= 500
}

func NewClient(baseURL, topic string, enabled bool, priority string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:    baseURL,
		topic:      topic,
		enabled:    enabled,
		priority:   priority,
		maxRetries: 3,
		baseDelay:  500 * time.Millisecond,
		maxDelay:   10 * time.Second,
	}
}

// Push sends one message, retrying retryable failures with exponential
// backoff. A disabled client and an open circuit breaker are both silent
// no-ops from the caller's point of view.
func (c *Client) Push(ctx context.Context, message string) error {
	if !c.enabled {
		log.Debug().Msg("Alerts disabled, skipping")
		return nil
	}
	if c.circuitIsOpen() {
		log.Warn().Msg("Alert circuit breaker open, dropping message")
		return nil
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries+1; attempt++ {
		if attempt > 1 {
			select {
			case <-time.After(c.backoff(attempt - 1)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		err := c.send(ctx, message, attempt)
		if err == nil {
			c.recordSuccess()
			return nil
		}
		lastErr = err

		if pushErr, ok := err.(*PushError); ok && !pushErr.IsRetryable() {
			break
		}
		log.Warn().Err(err).Int("attempt", attempt).Msg("Alert push attempt failed")
	}

	c.recordFailure()
	return lastErr
}

// PushAsync fires Push on its own goroutine; failures are logged only.
func (c *Client) PushAsync(ctx context.Context, message string) {
	go func() {
		if err := c.Push(ctx, message); err != nil {
			log.Warn().Err(err).Msg("Async alert push failed")
		}
	}()
}

// RentalExpired pushes a single expiry alert for an account whose countdown
// reached zero.
func (c *Client) RentalExpired(ctx context.Context, accountName, buyer string) {
	if !c.enabled {
		return
	}
	message := fmt.Sprintf("Rental expired: %s", accountName)
	if buyer != "" {
		message += fmt.Sprintf(" (rented by %s)", buyer)
	}
	log.Info().Str("account", accountName).Str("buyer", buyer).Msg("Sending rental expiry alert")
	c.PushAsync(ctx, message)
}

// Metrics returns the lifetime sent/failed counters.
func (c *Client) Metrics() (sent, failed int64) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.totalSent, c.totalFailed
}

func (c *Client) send(ctx context.Context, message string, attempt int) error {
	url := fmt.Sprintf("%s/%s", c.baseURL, c.topic)

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBufferString(message))
	if err != nil {
		return &PushError{Attempt: attempt, Underlying: err}
	}
	req.Header.Set("Content-Type", "text/plain")
	if c.priority != "" {
		req.Header.Set("Priority", c.priority)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &PushError{Attempt: attempt, Underlying: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return &PushError{
			StatusCode: resp.StatusCode,
			Attempt:    attempt,
			Underlying: fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status),
		}
	}
	return nil
}

func (c *Client) circuitIsOpen() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.circuitOpen && time.Since(c.lastFailure) > 30*time.Second {
		// Half-open: let the next push probe the endpoint.
		c.circuitOpen = false
		c.failures = 0
	}
	return c.circuitOpen
}

func (c *Client) recordSuccess() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.totalSent++
	c.failures = 0
	c.circuitOpen = false
}

func (c *Client) recordFailure() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.totalFailed++
	c.failures++
	c.lastFailure = time.Now()
	if c.failures >= 5 && !c.circuitOpen {
		c.circuitOpen = true
		log.Warn().Int("failures", c.failures).Msg("Alert circuit breaker opened")
	}
}

func (c *Client) backoff(attempt int) time.Duration {
	backoff := float64(c.baseDelay) * math.Pow(2, float64(attempt-1))

	// Jitter between 0.75x and 1.25x
	backoff *= 1 + (rand.Float64()*0.5 - 0.25)

	if backoff > float64(c.maxDelay) {
		backoff = float64(c.maxDelay)
	}
	return time.Duration(backoff)
}
