package whisperapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"lyricsync/internal/logging"
	"lyricsync/internal/services"
)

type httpStatusError struct {
	StatusCode int
	Code       string
	Type       string
	Message    string
	RetryAfter time.Duration
}

func newHTTPStatusError(status int, body []byte, retryAfter time.Duration) *httpStatusError {
	statusErr := &httpStatusError{StatusCode: status, RetryAfter: retryAfter}
	var envelope struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
			Code    any    `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		statusErr.Message = strings.TrimSpace(envelope.Error.Message)
		statusErr.Type = strings.TrimSpace(envelope.Error.Type)
		if code, ok := envelope.Error.Code.(string); ok {
			statusErr.Code = strings.TrimSpace(code)
		}
	} else {
		statusErr.Message = summarizeSnippet(string(body))
	}
	return statusErr
}

func (e *httpStatusError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("http %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("http %d: %s", e.StatusCode, e.Message)
}

func (e *httpStatusError) quotaExhausted() bool {
	return e.StatusCode == http.StatusTooManyRequests &&
		(e.Code == "insufficient_quota" || e.Type == "insufficient_quota")
}

func (e *httpStatusError) retryable() bool {
	if e.quotaExhausted() {
		return false
	}
	return e.StatusCode == http.StatusRequestTimeout ||
		e.StatusCode == http.StatusTooManyRequests ||
		e.StatusCode >= http.StatusInternalServerError
}

type malformedResponseError struct {
	err     error
	snippet string
}

func (e *malformedResponseError) Error() string {
	return fmt.Sprintf("decode response: %v (response_snippet=%s)", e.err, e.snippet)
}

func (e *malformedResponseError) Unwrap() error {
	return e.err
}

type retriesExhaustedError struct {
	attempts int
	err      error
}

func (e *retriesExhaustedError) Error() string {
	return fmt.Sprintf("failed after %d attempts: %v", e.attempts, e.err)
}

func (e *retriesExhaustedError) Unwrap() error {
	return e.err
}

func (c *Client) sendWithRetry(ctx context.Context, body []byte, contentType string) (verboseResponse, error) {
	attempts := c.retryAttempts()
	logger := logging.WithContext(ctx, c.logger)

	for attempt := 1; ; attempt++ {
		payload, err := c.sendOnce(ctx, body, contentType)
		if err == nil {
			return payload, nil
		}
		delay, retry := c.retryDelay(ctx, err, attempt, attempts)
		if !retry {
			if attempt > 1 && isTransient(err) {
				return payload, &retriesExhaustedError{attempts: attempt, err: err}
			}
			return payload, err
		}
		logging.WarnWithContext(logger, "transcription request failed; retrying", "remote_retry",
			logging.Int("attempt", attempt),
			logging.Duration("delay", delay),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "transient endpoint failure"),
			logging.String(logging.FieldImpact, "transcription delayed"),
		)
		if err := c.sleep(ctx, delay); err != nil {
			return payload, err
		}
	}
}

func (c *Client) retryAttempts() int {
	if c.retryMaxAttempts <= 0 {
		return 1
	}
	return c.retryMaxAttempts
}

func (c *Client) retryDelay(ctx context.Context, err error, attempt, maxAttempts int) (time.Duration, bool) {
	if attempt >= maxAttempts || err == nil || ctx.Err() != nil {
		return 0, false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return 0, false
	}

	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		if !statusErr.retryable() {
			return 0, false
		}
		if statusErr.RetryAfter > 0 {
			return c.capDelay(statusErr.RetryAfter), true
		}
		return c.backoffDelay(attempt), true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return c.backoffDelay(attempt), true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		// Connection refused and resets surface as url.Error without a timeout.
		return c.backoffDelay(attempt), true
	}
	return 0, false
}

func isTransient(err error) bool {
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		return statusErr.retryable()
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

func (c *Client) backoffDelay(attempt int) time.Duration {
	base := c.retryBaseDelay
	if base <= 0 {
		return 0
	}
	maxDelay := c.retryMaxDelay
	if maxDelay <= 0 {
		maxDelay = defaultRetryMaxDelay
	}
	// attempt 1 -> base, attempt 2 -> base*2, attempt 3 -> base*4, ...
	delay := base
	for i := 1; i < attempt; i++ {
		if delay > maxDelay/2 {
			delay = maxDelay
			break
		}
		delay *= 2
	}
	return c.capDelay(delay)
}

func (c *Client) capDelay(delay time.Duration) time.Duration {
	if delay < 0 {
		return 0
	}
	maxDelay := c.retryMaxDelay
	if maxDelay <= 0 {
		maxDelay = defaultRetryMaxDelay
	}
	if delay > maxDelay {
		return maxDelay
	}
	return delay
}

func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	if c.sleeper != nil {
		c.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// classify translates transport and HTTP failures into the services markers.
func (c *Client) classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return services.Wrap(services.ErrProviderUnavailable, component, "transcribe", "timed out", err)
	}
	if errors.Is(err, context.Canceled) {
		return services.Wrap(services.ErrProviderUnavailable, component, "transcribe", "canceled", err)
	}

	var statusErr *httpStatusError
	if !errors.As(err, &statusErr) {
		var malformed *malformedResponseError
		if errors.As(err, &malformed) {
			return services.Wrap(services.ErrProviderUnavailable, component, "transcribe", "malformed response", err)
		}
		return services.Wrap(services.ErrProviderUnavailable, component, "transcribe", "endpoint unreachable", err)
	}

	switch {
	case statusErr.StatusCode == http.StatusTooManyRequests:
		return services.Wrap(services.ErrQuotaExceeded, component, "transcribe", "rate limit or quota reached", err)
	case statusErr.StatusCode == http.StatusRequestEntityTooLarge:
		return services.Wrap(services.ErrInvalidInput, component, "transcribe", "audio too large", err)
	case statusErr.StatusCode == http.StatusUnsupportedMediaType:
		return services.Wrap(services.ErrUnsupportedMedia, component, "transcribe", "format rejected", err)
	case statusErr.StatusCode == http.StatusBadRequest:
		if mentionsFormat(statusErr.Message) {
			return services.Wrap(services.ErrUnsupportedMedia, component, "transcribe", "format rejected", err)
		}
		return services.Wrap(services.ErrDecodeFailure, component, "transcribe", "audio could not be decoded", err)
	case statusErr.StatusCode == http.StatusUnauthorized, statusErr.StatusCode == http.StatusForbidden:
		return services.Wrap(services.ErrProviderUnavailable, component, "transcribe", "credentials rejected", err)
	default:
		return services.Wrap(services.ErrProviderUnavailable, component, "transcribe", "endpoint failure", err)
	}
}

func mentionsFormat(message string) bool {
	lower := strings.ToLower(message)
	return strings.Contains(lower, "invalid file format") || strings.Contains(lower, "supported formats")
}

func parseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}
	if when, err := http.ParseTime(value); err == nil {
		delay := time.Until(when)
		if delay < 0 {
			return 0, false
		}
		return delay, true
	}
	return 0, false
}

func summarizeSnippet(content string) string {
	clean := strings.Join(strings.Fields(content), " ")
	if clean == "" {
		return "<empty>"
	}
	const limit = 160
	if runes := []rune(clean); len(runes) > limit {
		clean = string(runes[:limit]) + "..."
	}
	return clean
}
