// Package circuitbreaker implements the three-state breaker guarding each
// provider adapter. One breaker instance serves every concurrent request
// hitting that adapter; mutations are serialized under its mutex but the
// wrapped call itself always runs outside the lock.
//
// State transitions:
//
//	Closed   → Open      when counted consecutive failures ≥ FailureThreshold
//	Open     → HalfOpen  once now - openedAt ≥ RecoveryTimeout
//	HalfOpen → Closed    when consecutive successes ≥ HalfOpenMaxCalls
//	HalfOpen → Open      on any counted failure
package circuitbreaker

import (
	"sync"
	"time"

	"github.com/briefcasebrain/uir-gateway/kinderror"
)

// State represents the circuit breaker's current state.
type State int

const (
	// StateClosed — normal operation; requests pass through.
	StateClosed State = iota
	// StateOpen — provider is considered failing; requests are rejected immediately.
	StateOpen
	// StateHalfOpen — circuit is testing recovery with a limited number of requests.
	StateHalfOpen
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// Countable decides whether an error returned by the wrapped call counts
// against the breaker. Defaults to DefaultCountable, which follows the
// §7 taxonomy: upstream and timeout failures count, validation/auth/
// unsupported/circuit-open do not (an already-rejected call must not
// itself count as a new failure).
type Countable func(error) bool

// DefaultCountable counts Upstream and Timeout kinderrors, plus any error
// that isn't a *kinderror.KindError at all (treated conservatively as a
// real failure).
func DefaultCountable(err error) bool {
	if err == nil {
		return false
	}
	if kinderror.Is(err, kinderror.Upstream) || kinderror.Is(err, kinderror.Timeout) {
		return true
	}
	switch err.(type) {
	case *kinderror.KindError:
		return false
	default:
		return true
	}
}

// CircuitBreaker guards a single downstream provider.
type CircuitBreaker struct {
	mu               sync.Mutex
	state            State
	failureCount     int
	halfOpenSuccess  int
	failureThreshold int
	recoveryTimeout  time.Duration
	halfOpenMaxCalls int
	openedAt         time.Time
	countable        Countable
}

// New creates a CircuitBreaker with the given thresholds and recovery
// timeout. Defaults are applied for zero/negative values:
// failureThreshold=5, halfOpenMaxCalls=3, recoveryTimeout=60s.
func New(failureThreshold, halfOpenMaxCalls int, recoveryTimeout time.Duration) *CircuitBreaker {
	return NewWithCountable(failureThreshold, halfOpenMaxCalls, recoveryTimeout, DefaultCountable)
}

// NewWithCountable is New with an explicit failure predicate.
func NewWithCountable(failureThreshold, halfOpenMaxCalls int, recoveryTimeout time.Duration, countable Countable) *CircuitBreaker {
	if failureThreshold <= 0 {
		failureThreshold = 5
	}
	if halfOpenMaxCalls <= 0 {
		halfOpenMaxCalls = 3
	}
	if recoveryTimeout <= 0 {
		recoveryTimeout = 60 * time.Second
	}
	if countable == nil {
		countable = DefaultCountable
	}
	return &CircuitBreaker{
		state:            StateClosed,
		failureThreshold: failureThreshold,
		halfOpenMaxCalls: halfOpenMaxCalls,
		recoveryTimeout:  recoveryTimeout,
		countable:        countable,
	}
}

// State returns the current state, resolving Open→HalfOpen if the
// recovery timeout has elapsed.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.resolveState()
}

// resolveState must be called with cb.mu held.
func (cb *CircuitBreaker) resolveState() State {
	if cb.state == StateOpen && time.Since(cb.openedAt) >= cb.recoveryTimeout {
		cb.state = StateHalfOpen
		cb.halfOpenSuccess = 0
	}
	return cb.state
}

// Allow returns true if the request should proceed (circuit is Closed or
// HalfOpen), false if it should be rejected (circuit is Open).
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.resolveState() != StateOpen
}

// RecordSuccess notifies the breaker that a call succeeded.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	switch cb.state {
	case StateHalfOpen:
		cb.halfOpenSuccess++
		if cb.halfOpenSuccess >= cb.halfOpenMaxCalls {
			cb.state = StateClosed
			cb.failureCount = 0
			cb.halfOpenSuccess = 0
		}
	case StateClosed:
		cb.failureCount = 0
	}
}

// RecordFailure notifies the breaker that a call failed.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	switch cb.state {
	case StateClosed:
		cb.failureCount++
		if cb.failureCount >= cb.failureThreshold {
			cb.state = StateOpen
			cb.openedAt = time.Now()
		}
	case StateHalfOpen:
		cb.state = StateOpen
		cb.openedAt = time.Now()
		cb.halfOpenSuccess = 0
	}
}

// Call runs fn under breaker protection: rejects synthetically with a
// CircuitOpen kinderror if the breaker is open, otherwise invokes fn
// outside the lock and records the outcome through the Countable
// predicate.
func (cb *CircuitBreaker) Call(fn func() error) error {
	if !cb.Allow() {
		return kinderror.New(kinderror.CircuitOpen, "circuit breaker is open")
	}
	err := fn()
	if err == nil {
		cb.RecordSuccess()
		return nil
	}
	// A non-counted error (e.g. Validation, Unsupported) neither opens nor
	// resets the breaker - it is the caller's fault, not the provider's.
	if cb.countable(err) {
		cb.RecordFailure()
	}
	return err
}

// Reset forces the breaker back to Closed with zero counters.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.state = StateClosed
	cb.failureCount = 0
	cb.halfOpenSuccess = 0
	cb.openedAt = time.Time{}
}
