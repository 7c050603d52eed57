// Package kinderror defines the error taxonomy shared by the router,
// adapters, breaker, and retry policy. Every failure that crosses a
// component boundary carries a Kind so callers can classify it without
// string matching.
package kinderror

import "fmt"

// Kind identifies the category of a failure.
type Kind string

const (
	// Validation marks a malformed request: empty query and no vector,
	// out-of-range options. Surfaced to the caller; never retried.
	Validation Kind = "validation_error"
	// Unsupported marks an operation a provider cannot perform.
	// Surfaced per-provider; other providers continue.
	Unsupported Kind = "unsupported"
	// RateLimited marks a local bucket rejection or an upstream 429.
	// Retried up to policy; if still limited, recorded as a provider failure.
	RateLimited Kind = "rate_limited"
	// CircuitOpen marks a synthetic rejection from an open breaker.
	// Recorded as a provider failure; never retried within the same request.
	CircuitOpen Kind = "circuit_open"
	// Timeout marks a request deadline that elapsed before completion.
	Timeout Kind = "timeout"
	// Upstream marks a 5xx or connection-level failure. Retried per policy.
	Upstream Kind = "upstream"
	// AuthError marks a 401/403. Never retried; the provider is demoted to
	// unhealthy at the next health check.
	AuthError Kind = "auth_error"
	// NoProvidersAvailable marks a request for which no provider passed
	// selection.
	NoProvidersAvailable Kind = "no_providers_available"
	// Internal marks an unexpected bug.
	Internal Kind = "internal_error"
)

// KindError pairs a Kind with a human message and, optionally, the
// underlying cause.
type KindError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *KindError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *KindError) Unwrap() error { return e.Err }

// New builds a KindError with no wrapped cause.
func New(kind Kind, message string) *KindError {
	return &KindError{Kind: kind, Message: message}
}

// Wrap builds a KindError around an existing error.
func Wrap(kind Kind, message string, err error) *KindError {
	return &KindError{Kind: kind, Message: message, Err: err}
}

// Is reports whether err is a *KindError of the given kind.
func Is(err error, kind Kind) bool {
	ke, ok := err.(*KindError)
	if !ok {
		return false
	}
	return ke.Kind == kind
}

// KindOf extracts err's Kind, or Internal if err isn't a *KindError.
func KindOf(err error) Kind {
	ke, ok := err.(*KindError)
	if !ok {
		return Internal
	}
	return ke.Kind
}

// Retryable reports whether the taxonomy allows retrying an error of this
// kind: upstream 5xx/connection failures and local rate limiting are
// retryable, everything else (validation, auth, circuit-open, unsupported,
// timeout, no-providers, internal) is not.
func Retryable(err error) bool {
	ke, ok := err.(*KindError)
	if !ok {
		return false
	}
	switch ke.Kind {
	case Upstream, RateLimited:
		return true
	default:
		return false
	}
}
