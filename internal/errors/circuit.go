package errors

import (
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned when the circuit breaker is open.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// State represents the circuit breaker state.
type State int

const (
	// StateClosed is the normal state where requests are allowed.
	StateClosed State = iota
	// StateOpen is when the circuit is tripped and requests are blocked.
	StateOpen
	// StateHalfOpen lets a single trial call through after the reset timeout.
	StateHalfOpen
)

// String returns a string representation of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreaker fails fast once a dependency has failed maxFailures times
// in a row. The Ollama client uses one so that a stopped model server costs
// each research request a single timeout, not three.
type CircuitBreaker struct {
	name         string
	maxFailures  int
	resetTimeout time.Duration
	onChange     func(name string, s State)
	counts       func(error) bool

	mu          sync.Mutex
	state       State
	failures    int
	lastFailure time.Time
	now         func() time.Time
}

// CircuitBreakerOption configures a CircuitBreaker.
type CircuitBreakerOption func(*CircuitBreaker)

// WithMaxFailures sets the number of consecutive failures before opening.
func WithMaxFailures(n int) CircuitBreakerOption {
	return func(cb *CircuitBreaker) {
		if n > 0 {
			cb.maxFailures = n
		}
	}
}

// WithResetTimeout sets the time to wait before trying again.
func WithResetTimeout(d time.Duration) CircuitBreakerOption {
	return func(cb *CircuitBreaker) {
		cb.resetTimeout = d
	}
}

// WithStateChange registers a callback invoked on every state transition.
func WithStateChange(fn func(name string, s State)) CircuitBreakerOption {
	return func(cb *CircuitBreaker) {
		cb.onChange = fn
	}
}

// WithFailureFilter limits which errors count as failures. Errors for which
// fn returns false pass through without touching the breaker state.
func WithFailureFilter(fn func(error) bool) CircuitBreakerOption {
	return func(cb *CircuitBreaker) {
		cb.counts = fn
	}
}

// NewCircuitBreaker creates a new circuit breaker with the given name.
// Default: 3 failures, 30 second reset timeout.
func NewCircuitBreaker(name string, opts ...CircuitBreakerOption) *CircuitBreaker {
	cb := &CircuitBreaker{
		name:         name,
		maxFailures:  3,
		resetTimeout: 30 * time.Second,
		state:        StateClosed,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(cb)
	}
	return cb
}

// Name returns the circuit breaker name.
func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// State returns the current circuit breaker state.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.currentState()
}

// currentState must be called with mu held.
func (cb *CircuitBreaker) currentState() State {
	if cb.state == StateOpen && cb.now().Sub(cb.lastFailure) > cb.resetTimeout {
		return StateHalfOpen
	}
	return cb.state
}

// Allow reports whether a call may proceed.
func (cb *CircuitBreaker) Allow() bool {
	return cb.State() != StateOpen
}

// RecordSuccess closes the circuit.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	prev := cb.state
	cb.failures = 0
	cb.state = StateClosed
	cb.mu.Unlock()

	if prev != StateClosed {
		cb.notify(StateClosed)
	}
}

// RecordFailure counts a failure and opens the circuit at the threshold.
// A failed half-open trial call reopens immediately.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	trial := cb.currentState() == StateHalfOpen
	cb.failures++
	cb.lastFailure = cb.now()
	opened := false
	if (trial || cb.failures >= cb.maxFailures) && cb.state != StateOpen {
		opened = true
	}
	if trial || cb.failures >= cb.maxFailures {
		cb.state = StateOpen
	}
	cb.mu.Unlock()

	if opened {
		cb.notify(StateOpen)
	}
}

func (cb *CircuitBreaker) notify(s State) {
	if cb.onChange != nil {
		cb.onChange(cb.name, s)
	}
}

// Execute runs fn through the breaker.
// Returns ErrCircuitOpen without calling fn while the circuit is open.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	_, err := CircuitDo(cb, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// CircuitDo runs fn through cb and returns its result.
func CircuitDo[T any](cb *CircuitBreaker, fn func() (T, error)) (T, error) {
	var zero T
	if !cb.Allow() {
		return zero, ErrCircuitOpen
	}

	result, err := fn()
	if err != nil {
		if cb.counts == nil || cb.counts(err) {
			cb.RecordFailure()
		}
		return zero, err
	}
	cb.RecordSuccess()
	return result, nil
}
