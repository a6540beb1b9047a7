// Package resilience keeps persona generation alive when a generative
// backend degrades. A [CircuitBreaker] guards each backend so that a dead or
// misconfigured one stops eating a full completion timeout on every trainee
// turn, and [FallbackGroup] chains backends so the next one is tried before
// the caller gives up and falls back to deterministic replies.
//
// All types are safe for concurrent use.
package resilience

import (
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrCircuitOpen is returned by [CircuitBreaker.Execute] while the breaker is
// cooling down after tripping.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// State is the operating mode of a [CircuitBreaker].
type State int

const (
	// StateClosed forwards every call. Normal operation.
	StateClosed State = iota

	// StateOpen rejects every call with [ErrCircuitOpen] until the cooldown
	// elapses.
	StateOpen

	// StateHalfOpen lets a small probe budget through to test whether the
	// backend has recovered.
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

// CircuitBreakerConfig tunes a [CircuitBreaker]. The defaults assume the
// guarded call is a chat-completion request: such calls fail identically on
// repeat (expired key, deleted model, exhausted quota), and each trainee turn
// pays the full attempt before the rule engine can answer instead.
type CircuitBreakerConfig struct {
	// Name labels the breaker in log output, typically the backend name
	// ("openai", "ollama").
	Name string

	// MaxFailures is the consecutive-failure run that trips the breaker.
	// Default: 3 — a backend that rejects three turns in a row is not going
	// to accept the fourth.
	MaxFailures int

	// ResetTimeout is the cooldown before probing again. Default: 20s,
	// shorter than the pause between most conversation turns, so a recovered
	// backend picks up the next turn rather than several turns later.
	ResetTimeout time.Duration

	// HalfOpenMax is how many consecutive probe successes close the breaker
	// again, and also the ceiling on concurrent probes. Default: 2.
	HalfOpenMax int
}

// CircuitBreaker trips after a run of consecutive failures and rejects calls
// until a cooldown and a successful probe sequence pass. Safe for concurrent
// use.
type CircuitBreaker struct {
	name     string
	tripAt   int
	cooldown time.Duration
	probeMax int

	mu         sync.Mutex
	state      State
	failureRun int
	trippedAt  time.Time
	probesUsed int
	probeRun   int
}

// NewCircuitBreaker creates a breaker in the closed state. Zero-value config
// fields take the documented defaults.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 3
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = 20 * time.Second
	}
	if cfg.HalfOpenMax <= 0 {
		cfg.HalfOpenMax = 2
	}
	return &CircuitBreaker{
		name:     cfg.Name,
		tripAt:   cfg.MaxFailures,
		cooldown: cfg.ResetTimeout,
		probeMax: cfg.HalfOpenMax,
	}
}

// Execute runs fn unless the breaker is cooling down, in which case it
// returns [ErrCircuitOpen] without calling fn. fn's error is returned
// unchanged so the caller's error classification still works.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	probing, err := cb.admit()
	if err != nil {
		return err
	}

	err = fn()
	cb.observe(err, probing)
	return err
}

// admit decides whether a call may proceed, reporting whether it counts
// against the half-open probe budget.
func (cb *CircuitBreaker) admit() (probing bool, err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateOpen:
		if time.Since(cb.trippedAt) < cb.cooldown {
			return false, ErrCircuitOpen
		}
		cb.state = StateHalfOpen
		cb.probesUsed = 0
		cb.probeRun = 0
		slog.Info("backend breaker probing after cooldown", "backend", cb.name)

	case StateHalfOpen:
		if cb.probesUsed >= cb.probeMax {
			return false, ErrCircuitOpen
		}
	}

	if cb.state == StateHalfOpen {
		cb.probesUsed++
		return true, nil
	}
	return false, nil
}

// observe folds a call outcome into the breaker state.
func (cb *CircuitBreaker) observe(callErr error, probing bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if callErr != nil {
		cb.trippedAt = time.Now()
		if probing {
			// One failed probe is enough; the backend is still down.
			cb.state = StateOpen
			cb.failureRun = cb.tripAt
			slog.Warn("backend breaker re-opened, probe failed", "backend", cb.name)
			return
		}
		cb.failureRun++
		if cb.failureRun >= cb.tripAt {
			cb.state = StateOpen
			slog.Warn("backend breaker opened",
				"backend", cb.name, "consecutive_failures", cb.failureRun)
		}
		return
	}

	if probing {
		cb.probeRun++
		if cb.probeRun >= cb.probeMax {
			cb.state = StateClosed
			cb.failureRun = 0
			cb.probesUsed = 0
			cb.probeRun = 0
			slog.Info("backend breaker closed, backend recovered", "backend", cb.name)
		}
		return
	}
	cb.failureRun = 0
}

// State reports the breaker's mode. An open breaker whose cooldown has
// elapsed reports [StateHalfOpen]; the stored transition happens on the next
// [CircuitBreaker.Execute].
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateOpen && time.Since(cb.trippedAt) >= cb.cooldown {
		return StateHalfOpen
	}
	return cb.state
}

// Reset forces the breaker closed and clears all counters. Used when an
// operator knows the backend is healthy again (rotated key, restarted
// server) and does not want to wait out the cooldown.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.state = StateClosed
	cb.failureRun = 0
	cb.probesUsed = 0
	cb.probeRun = 0
	slog.Info("backend breaker manually reset", "backend", cb.name)
}
