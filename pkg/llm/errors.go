package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Sentinel errors for client outcomes.
var (
	// ErrFatal marks a non-retryable rejection (authentication or
	// malformed request). The caller must not retry the batch.
	ErrFatal = errors.New("classification request rejected")
	// ErrExhausted marks a transient failure that survived every
	// configured attempt.
	ErrExhausted = errors.New("retry attempts exhausted")
	// ErrEmptyResponse indicates the service returned no choices.
	ErrEmptyResponse = errors.New("empty completion response")
)

// StatusError carries an upstream HTTP status and response detail.
type StatusError struct {
	Status     int
	Detail     string
	RetryAfter int // seconds, from the Retry-After header; 0 when absent
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream %d: %s", e.Status, e.Detail)
}

// Transient reports whether the status is worth retrying: request
// timeout, rate limiting, or server-side failure.
func (e *StatusError) Transient() bool {
	return e.Status == http.StatusRequestTimeout ||
		e.Status == http.StatusTooManyRequests ||
		e.Status/100 == 5
}

// Fatal reports whether err is a non-retryable client failure.
func Fatal(err error) bool {
	return errors.Is(err, ErrFatal)
}

// Timeout reports whether err stems from a timed-out attempt.
func Timeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.Status == http.StatusRequestTimeout
}

// transient reports whether err warrants another attempt. Anything that
// is not an explicit fatal rejection is treated as transient: network
// errors, timeouts, and upstream 408/429/5xx.
func transient(err error) bool {
	if Fatal(err) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Transient()
	}
	return true
}

// retryAfter extracts a service-provided wait hint in seconds, if any.
func retryAfter(err error) int {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.RetryAfter
	}
	return 0
}
