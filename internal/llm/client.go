package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"qa-history/internal/contextutil"
	"qa-history/internal/observability"
)

// ErrModelLoading is recorded when the remote model is still initializing.
var ErrModelLoading = errors.New("model is loading, please try again shortly")

// Client is a client for a hosted text-generation inference endpoint.
type Client struct {
	URL         string
	APIKey      string
	Params      GenerationParams
	MaxAttempts int
	RetryDelay  time.Duration

	client  *http.Client
	sleep   func(ctx context.Context, d time.Duration) error
	metrics *observability.Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// WithSleeper replaces the wait used between attempts.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Client) {
		c.sleep = sleep
	}
}

// WithMetrics records attempt outcomes.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient creates a new inference client.
func NewClient(url, apiKey string, opts ...Option) *Client {
	c := &Client{
		URL:         url,
		APIKey:      apiKey,
		Params:      DefaultParams(),
		MaxAttempts: DefaultMaxAttempts,
		RetryDelay:  DefaultRetryDelay,
		client:      http.DefaultClient,
		sleep:       sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type attemptOutcome int

const (
	outcomeSuccess attemptOutcome = iota
	outcomeLoading
	outcomeFailed
)

func (o attemptOutcome) String() string {
	switch o {
	case outcomeSuccess:
		return "success"
	case outcomeLoading:
		return "loading"
	default:
		return "failed"
	}
}

// attemptResult is the outcome of a single call to the endpoint.
type attemptResult struct {
	outcome attemptOutcome
	answer  string
	wait    time.Duration
	err     error
}

// Answer asks the endpoint for an answer to question.
// It makes at most MaxAttempts calls. A loading model is waited on for its
// estimated time capped at RetryDelay; any other failure waits RetryDelay.
// No wait follows the final attempt.
func (c *Client) Answer(ctx context.Context, question string) (string, error) {
	logger := contextutil.LoggerFromContext(ctx)

	var lastErr error
	for attempt := 1; attempt <= c.MaxAttempts; attempt++ {
		res := c.attempt(ctx, question)
		c.metrics.ObserveInferenceAttempt(res.outcome.String())

		var delay time.Duration
		switch res.outcome {
		case outcomeSuccess:
			return res.answer, nil
		case outcomeLoading:
			lastErr = ErrModelLoading
			delay = res.wait
			logger.InfoContext(ctx, "model is loading", "attempt", attempt, "wait", delay)
		default:
			lastErr = res.err
			delay = c.RetryDelay
			logger.WarnContext(ctx, "inference attempt failed", "attempt", attempt, "max_attempts", c.MaxAttempts, "error", res.err)
		}

		if attempt == c.MaxAttempts {
			break
		}
		if err := c.sleep(ctx, delay); err != nil {
			return "", &InferenceError{Attempts: attempt, Err: err}
		}
	}

	logger.ErrorContext(ctx, "inference failed after all attempts", "attempts", c.MaxAttempts, "error", lastErr)
	return "", &InferenceError{Attempts: c.MaxAttempts, Err: lastErr}
}

// attempt performs one call and classifies the response.
func (c *Client) attempt(ctx context.Context, question string) attemptResult {
	payload := InferenceRequest{
		Inputs:     question,
		Parameters: c.Params,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return failed(fmt.Errorf("failed to marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewBuffer(body))
	if err != nil {
		return failed(fmt.Errorf("failed to create request: %w", err))
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.APIKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return failed(fmt.Errorf("failed to send request: %w", err))
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return failed(fmt.Errorf("failed to read response: %w", err))
	}

	switch resp.StatusCode {
	case http.StatusOK:
		answer, err := parseAnswer(raw)
		if err != nil {
			return failed(err)
		}
		return attemptResult{outcome: outcomeSuccess, answer: answer}
	case http.StatusServiceUnavailable:
		return attemptResult{outcome: outcomeLoading, wait: c.loadingWait(raw)}
	default:
		return failed(fmt.Errorf("bad status %d: %s", resp.StatusCode, string(raw)))
	}
}

// loadingWait reads estimated_time from a loading response, defaulting to
// RetryDelay, and caps it at RetryDelay.
func (c *Client) loadingWait(raw []byte) time.Duration {
	wait := c.RetryDelay

	var loading LoadingResponse
	if err := json.Unmarshal(raw, &loading); err == nil && loading.EstimatedTime != nil {
		secs := *loading.EstimatedTime
		if math.IsNaN(secs) || secs < 0 {
			secs = 0
		}
		// Compare in seconds; huge estimates overflow time.Duration.
		if secs < wait.Seconds() {
			wait = time.Duration(secs * float64(time.Second))
		}
	}

	return wait
}

// parseAnswer extracts generated_text from either an object or a list of
// objects, falling back to FallbackAnswer when the field is missing or empty.
func parseAnswer(raw []byte) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var results []InferenceResponse
		if err := json.Unmarshal(trimmed, &results); err != nil {
			return "", fmt.Errorf("failed to decode response: %w", err)
		}
		if len(results) == 0 || results[0].GeneratedText == "" {
			return FallbackAnswer, nil
		}
		return results[0].GeneratedText, nil
	}

	var result InferenceResponse
	if err := json.Unmarshal(trimmed, &result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if result.GeneratedText == "" {
		return FallbackAnswer, nil
	}
	return result.GeneratedText, nil
}

func failed(err error) attemptResult {
	return attemptResult{outcome: outcomeFailed, err: err}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
