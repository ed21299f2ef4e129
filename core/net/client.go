// Package net provides HTTP client functionality with retry, timeout, and
// circuit breaker patterns for calling external payment services.
//
// The Client struct offers configurable timeout, retry attempts, and
// exponential backoff, plus JSON convenience helpers. A simple circuit
// breaker prevents cascading failures when a service is down.
//
// Example usage:
//
//	client := net.NewClient(
//	    net.WithTimeout(20*time.Second),
//	    net.WithMaxRetries(5),
//	    net.WithRetryBackoff(2*time.Second),
//	)
//	err := client.PostJSON(ctx, url, headers, payload, &result)
package net

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/stellar-pay/sdk-go/errors"
)

// Default configuration values
const (
	defaultTimeout      = 30 * time.Second
	defaultMaxRetries   = 3
	defaultBackoff      = 1 * time.Second
	defaultFailureLimit = 5
	defaultResetTimeout = 60 * time.Second
)

// Client is an HTTP client with retry, timeout, and circuit breaker
// capabilities.
type Client struct {
	httpClient     *http.Client
	maxRetries     int
	retryBackoff   time.Duration
	circuitBreaker *circuitBreaker
}

// ClientOption is a function that configures a Client.
type ClientOption func(*Client)

// WithTimeout sets the HTTP client timeout (default: 30s).
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithMaxRetries sets the maximum number of retry attempts (default: 3).
func WithMaxRetries(n int) ClientOption {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// WithRetryBackoff sets the base duration for exponential backoff (default: 1s).
func WithRetryBackoff(d time.Duration) ClientOption {
	return func(c *Client) {
		c.retryBackoff = d
	}
}

// NewClient creates a new HTTP client with the given options.
func NewClient(opts ...ClientOption) *Client {
	client := &Client{
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		maxRetries:   defaultMaxRetries,
		retryBackoff: defaultBackoff,
		circuitBreaker: &circuitBreaker{
			failureLimit: defaultFailureLimit,
			resetTimeout: defaultResetTimeout,
		},
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// StatusError is returned by the JSON helpers when the service answers with
// a non-2xx status. Body carries the raw response text unmodified.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// PostJSON performs a POST with a JSON body and decodes a JSON response into
// result. Server errors (5xx) and transport failures are retried with
// exponential backoff; client errors (4xx) surface as a StatusError wrapped
// in a NETWORK_ERROR without retrying.
func (c *Client) PostJSON(ctx context.Context, url string, headers map[string]string, body any, result any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return errors.NewCoreError(errors.NETWORK_ERROR, "failed to marshal request body", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return errors.NewCoreError(errors.NETWORK_ERROR, "failed to create POST request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return c.doJSON(req, result)
}

// GetJSON performs a GET and decodes a JSON response into result, with the
// same retry semantics as PostJSON.
func (c *Client) GetJSON(ctx context.Context, url string, headers map[string]string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.NewCoreError(errors.NETWORK_ERROR, "failed to create GET request", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return c.doJSON(req, result)
}

// doJSON executes the request through the retry/breaker path and decodes the
// response body.
func (c *Client) doJSON(req *http.Request, result any) error {
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.NewCoreError(errors.NETWORK_ERROR, "failed to read response body", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.NewCoreError(
			errors.NETWORK_ERROR,
			fmt.Sprintf("request to %s failed with status %d", req.URL.Path, resp.StatusCode),
			&StatusError{StatusCode: resp.StatusCode, Body: string(respBody)},
		)
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return errors.NewCoreError(errors.NETWORK_ERROR, "failed to decode response JSON", err)
		}
	}
	return nil
}

// do executes the HTTP request with retry logic and circuit breaker.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	// Check circuit breaker
	if !c.circuitBreaker.allowRequest() {
		return nil, errors.NewCoreError(
			errors.NETWORK_ERROR,
			"circuit breaker is open",
			nil,
		)
	}

	// Buffer the request body so it can be replayed on retries
	var bodyBytes []byte
	if req.Body != nil {
		var err error
		bodyBytes, err = io.ReadAll(req.Body)
		if err != nil {
			return nil, errors.NewCoreError(errors.NETWORK_ERROR, "failed to read request body", err)
		}
		req.Body.Close()
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		// Check context cancellation
		select {
		case <-req.Context().Done():
			return nil, errors.NewCoreError(
				errors.NETWORK_ERROR,
				"request cancelled",
				req.Context().Err(),
			)
		default:
		}

		// Reset body for each attempt
		if bodyBytes != nil {
			req.Body = io.NopCloser(bytes.NewReader(bodyBytes))
			req.ContentLength = int64(len(bodyBytes))
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			if attempt < c.maxRetries {
				c.backoff(attempt)
				continue
			}
			c.circuitBreaker.recordFailure()
			return nil, errors.NewCoreError(
				errors.NETWORK_ERROR,
				fmt.Sprintf("request failed after %d attempts", attempt+1),
				err,
			)
		}

		if resp.StatusCode >= 500 {
			// Server error - retry
			resp.Body.Close()
			lastErr = fmt.Errorf("server error: %d %s", resp.StatusCode, resp.Status)
			if attempt < c.maxRetries {
				c.backoff(attempt)
				continue
			}
			c.circuitBreaker.recordFailure()
			return nil, errors.NewCoreError(
				errors.NETWORK_ERROR,
				fmt.Sprintf("server error after %d attempts: %s", attempt+1, resp.Status),
				lastErr,
			)
		}

		// 4xx passes through to the caller; not a service health signal
		c.circuitBreaker.recordSuccess()
		return resp, nil
	}

	return nil, errors.NewCoreError(
		errors.NETWORK_ERROR,
		"unexpected retry exhaustion",
		lastErr,
	)
}

// backoff implements exponential backoff with the formula: backoff * 2^attempt
func (c *Client) backoff(attempt int) {
	duration := c.retryBackoff * (1 << uint(attempt)) // 2^attempt
	time.Sleep(duration)
}

// circuitBreaker implements a simple circuit breaker pattern.
type circuitBreaker struct {
	mu           sync.RWMutex
	failures     int
	lastFailTime time.Time
	failureLimit int
	resetTimeout time.Duration
	state        circuitState
}

type circuitState int

const (
	stateClosed circuitState = iota
	stateOpen
)

// allowRequest checks if the circuit breaker allows the request to proceed.
func (cb *circuitBreaker) allowRequest() bool {
	cb.mu.RLock()
	defer cb.mu.RUnlock()

	if cb.state == stateClosed {
		return true
	}

	// Half-open once the reset timeout has elapsed
	if time.Since(cb.lastFailTime) > cb.resetTimeout {
		return true
	}

	return false
}

// recordSuccess records a successful request and may close the circuit.
func (cb *circuitBreaker) recordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures = 0
	cb.state = stateClosed
}

// recordFailure records a failed request and may open the circuit.
func (cb *circuitBreaker) recordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures++
	cb.lastFailTime = time.Now()

	if cb.failures >= cb.failureLimit {
		cb.state = stateOpen
	}
}
