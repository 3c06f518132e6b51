package channel

import (
	"fmt"
	"time"
)

// ErrorKind classifies outbound send failures into the three caller-visible
// categories. Callers decide retry policy from the kind alone.
type ErrorKind string

const (
	// ErrorRateLimited means the provider throttled the call. Retryable
	// after RetryAfter (when the provider supplied a hint).
	ErrorRateLimited ErrorKind = "rate_limited"
	// ErrorRejected means the request itself was invalid (structure,
	// content, recipient). Not retryable.
	ErrorRejected ErrorKind = "rejected"
	// ErrorTransient covers network failures, timeouts, and provider 5xx.
	// Retryable.
	ErrorTransient ErrorKind = "transient"
)

// SendError is the structured failure returned by every outbound send.
type SendError struct {
	Kind       ErrorKind
	StatusCode int           // HTTP status, 0 for network-level failures
	Message    string        // provider error detail, when available
	RetryAfter time.Duration // rate-limit hint, zero when absent
}

func (e *SendError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("channel: send failed (%s, http %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("channel: send failed (%s): %s", e.Kind, e.Message)
}

// Retryable reports whether a caller may retry the send.
func (e *SendError) Retryable() bool {
	return e.Kind != ErrorRejected
}
