package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned when the circuit is open and the cooldown has not yet
// elapsed. Callers should treat it as an upstream failure without dialing.
var ErrOpen = errors.New("circuit breaker open")

// State is the circuit breaker state (Closed, Open, HalfOpen).
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

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

// CircuitBreaker protects an upstream by opening after repeated failures and
// letting probe requests through in half-open state.
type CircuitBreaker struct {
	mu              sync.Mutex
	state           State
	failures        int
	successes       int
	lastFailureTime time.Time

	failureThreshold int
	successThreshold int
	cooldown         time.Duration
	onStateChange    func(from, to State)
}

// Config holds circuit breaker parameters. Zero values fall back to defaults
// (5 failures to open, 2 successes to close, 30s cooldown).
type Config struct {
	FailureThreshold int
	SuccessThreshold int
	Cooldown         time.Duration
	OnStateChange    func(from, to State)
}

// New creates a CircuitBreaker with the given config.
func New(cfg Config) *CircuitBreaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = 2
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 30 * time.Second
	}
	return &CircuitBreaker{
		state:            StateClosed,
		failureThreshold: cfg.FailureThreshold,
		successThreshold: cfg.SuccessThreshold,
		cooldown:         cfg.Cooldown,
		onStateChange:    cfg.OnStateChange,
	}
}

// Call runs fn when the circuit allows it. When open, Call returns ErrOpen
// until the cooldown elapses, then transitions to half-open and probes.
// Failures and successes move the circuit between states.
func (cb *CircuitBreaker) Call(ctx context.Context, fn func() error) error {
	if err := cb.beforeCall(); err != nil {
		return err
	}

	err := fn()
	cb.afterCall(err)
	return err
}

func (cb *CircuitBreaker) beforeCall() error {
	cb.mu.Lock()
	if cb.state != StateOpen {
		cb.mu.Unlock()
		return nil
	}
	if time.Since(cb.lastFailureTime) < cb.cooldown {
		cb.mu.Unlock()
		return ErrOpen
	}
	cb.transition(StateHalfOpen)
	cb.successes = 0
	cb.mu.Unlock()
	return nil
}

func (cb *CircuitBreaker) afterCall(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err != nil {
		cb.failures++
		cb.lastFailureTime = time.Now()
		if cb.state == StateHalfOpen || cb.failures >= cb.failureThreshold {
			cb.transition(StateOpen)
			cb.failures = 0
		}
		return
	}

	cb.successes++
	cb.failures = 0
	if cb.state == StateHalfOpen && cb.successes >= cb.successThreshold {
		cb.transition(StateClosed)
		cb.successes = 0
	}
}

// transition moves to a new state and fires the hook. Caller holds cb.mu.
func (cb *CircuitBreaker) transition(to State) {
	from := cb.state
	if from == to {
		return
	}
	cb.state = to
	if cb.onStateChange != nil {
		// Hook runs under the lock; keep it cheap (metrics only).
		cb.onStateChange(from, to)
	}
}

// State returns the current state (for metrics).
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}
