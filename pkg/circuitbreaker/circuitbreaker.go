// Package circuitbreaker stops a degraded dependency from dragging the
// request path down with it. The server fronts the assessment cache
// with a breaker so a dead redis degrades to database reads instead of
// paying a connection timeout on every request.
package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// STATES AND ERRORS
// ══════════════════════════════════════════════════════════════════════════════

// State is the breaker's current mode.
type State int

const (
	// StateClosed passes calls through; failures are counted.
	StateClosed State = iota
	// StateOpen rejects calls until the open window elapses.
	StateOpen
	// StateHalfOpen lets a bounded number of probe calls through.
	StateHalfOpen
)

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

var (
	// ErrCircuitOpen is returned without invoking the call while the
	// breaker is open.
	ErrCircuitOpen = errors.New("circuit breaker is open")

	// ErrTooManyRequests is returned when the half-open probe budget is
	// already in flight.
	ErrTooManyRequests = errors.New("circuit breaker half-open probe limit reached")
)

// ══════════════════════════════════════════════════════════════════════════════
// BREAKER
// ══════════════════════════════════════════════════════════════════════════════

// Config tunes a breaker. Zero fields take the documented defaults.
type Config struct {
	// Name identifies the breaker in state-change callbacks.
	Name string

	// FailureThreshold is how many consecutive failures open the
	// circuit. Default 5.
	FailureThreshold int

	// SuccessThreshold is how many consecutive probe successes close it
	// again. Default 2.
	SuccessThreshold int

	// OpenTimeout is how long the circuit stays open before allowing
	// probes. Default 30s.
	OpenTimeout time.Duration

	// HalfOpenLimit caps concurrent probes while half-open. Default 1.
	HalfOpenLimit int

	// OnStateChange, when set, observes every transition.
	OnStateChange func(name string, from, to State)
}

func (c *Config) applyDefaults() {
	if c.FailureThreshold <= 0 {
		c.FailureThreshold = 5
	}
	if c.SuccessThreshold <= 0 {
		c.SuccessThreshold = 2
	}
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = 30 * time.Second
	}
	if c.HalfOpenLimit <= 0 {
		c.HalfOpenLimit = 1
	}
}

// CircuitBreaker guards calls to a single dependency.
type CircuitBreaker struct {
	cfg Config

	mu        sync.Mutex
	state     State
	failures  int
	successes int
	openUntil time.Time
	probes    int
}

// New creates a closed breaker.
func New(cfg Config) *CircuitBreaker {
	cfg.applyDefaults()
	return &CircuitBreaker{cfg: cfg, state: StateClosed}
}

// Execute runs fn when the breaker allows it and records the outcome.
// When the breaker rejects the call, fn is never invoked and the error
// is ErrCircuitOpen or ErrTooManyRequests.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func(context.Context) error) error {
	if err := cb.admit(); err != nil {
		return err
	}

	err := fn(ctx)
	cb.record(err)
	return err
}

// State reports the current state.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Name reports the configured name.
func (cb *CircuitBreaker) Name() string {
	return cb.cfg.Name
}

// admit decides whether a call may proceed, transitioning open →
// half-open when the open window has elapsed.
func (cb *CircuitBreaker) admit() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return nil

	case StateOpen:
		if time.Now().Before(cb.openUntil) {
			return ErrCircuitOpen
		}
		cb.transition(StateHalfOpen)
		cb.probes = 1
		return nil

	default: // StateHalfOpen
		if cb.probes >= cb.cfg.HalfOpenLimit {
			return ErrTooManyRequests
		}
		cb.probes++
		return nil
	}
}

// record applies a call outcome to the state machine.
func (cb *CircuitBreaker) record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateHalfOpen {
		cb.probes--
	}

	if err != nil {
		cb.failures++
		cb.successes = 0
		// A failed probe reopens immediately.
		if cb.state == StateHalfOpen || cb.failures >= cb.cfg.FailureThreshold {
			cb.trip()
		}
		return
	}

	cb.successes++
	cb.failures = 0
	if cb.state == StateHalfOpen && cb.successes >= cb.cfg.SuccessThreshold {
		cb.transition(StateClosed)
	}
}

// trip opens the circuit and starts the open window.
func (cb *CircuitBreaker) trip() {
	cb.openUntil = time.Now().Add(cb.cfg.OpenTimeout)
	cb.transition(StateOpen)
}

// transition must be called with the lock held.
func (cb *CircuitBreaker) transition(to State) {
	if cb.state == to {
		return
	}
	from := cb.state
	cb.state = to
	cb.failures = 0
	cb.successes = 0
	cb.probes = 0

	if cb.cfg.OnStateChange != nil {
		cb.cfg.OnStateChange(cb.cfg.Name, from, to)
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// PRESETS
// ══════════════════════════════════════════════════════════════════════════════

// CacheBreaker is tuned for the redis assessment cache: trip fast,
// recover fast, reads fall back to postgres while open.
func CacheBreaker(onStateChange func(name string, from, to State)) *CircuitBreaker {
	return New(Config{
		Name:             "cache",
		FailureThreshold: 3,
		SuccessThreshold: 1,
		OpenTimeout:      15 * time.Second,
		HalfOpenLimit:    2,
		OnStateChange:    onStateChange,
	})
}

// DatabaseBreaker is tuned for postgres, where there is no fallback and
// the point is only to shed load while the pool recovers.
func DatabaseBreaker(onStateChange func(name string, from, to State)) *CircuitBreaker {
	return New(Config{
		Name:             "database",
		FailureThreshold: 3,
		SuccessThreshold: 1,
		OpenTimeout:      10 * time.Second,
		HalfOpenLimit:    1,
		OnStateChange:    onStateChange,
	})
}
