// Copyright 2025 LazyUncle Project
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package resilience

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// CircuitState represents the state of a circuit breaker
type CircuitState int

const (
	// CircuitClosed means the circuit breaker is closed (normal operation)
	CircuitClosed CircuitState = iota
	// CircuitOpen means the circuit breaker is open (failing fast)
	CircuitOpen
	// CircuitHalfOpen means the circuit breaker is half-open (testing recovery)
	CircuitHalfOpen
)

// String returns the string representation of the circuit state
func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrCircuitBreakerOpen is returned when the circuit breaker forbids a call
var ErrCircuitBreakerOpen = errors.New("circuit breaker is open")

// CircuitBreakerConfig holds configuration for circuit breaker behavior
type CircuitBreakerConfig struct {
	Name          string
	MaxFailures   int
	ResetTimeout  time.Duration
	OnStateChange func(CircuitState, CircuitState)
}

// DefaultCircuitBreakerConfig returns the default configuration: the
// circuit opens after 3 consecutive failures and cools down for 60s
// before permitting a single trial call.
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:         name,
		MaxFailures:  3,
		ResetTimeout: 60 * time.Second,
	}
}

// CircuitBreakerStats holds a snapshot of circuit breaker counters
type CircuitBreakerStats struct {
	Name            string       `json:"name"`
	State           CircuitState `json:"state"`
	Failures        int          `json:"failures"`
	SuccessfulReqs  int          `json:"successful_requests"`
	FailedReqs      int          `json:"failed_requests"`
	LastFailureTime time.Time    `json:"last_failure_time"`
	StateChanged    time.Time    `json:"state_changed"`
}

// CircuitBreaker guards calls to the external recommendation provider.
// One breaker is shared by all requests served by a process instance;
// all transitions happen under the mutex so concurrent requests cannot
// lose failure counts.
type CircuitBreaker struct {
	config          CircuitBreakerConfig
	state           CircuitState
	failures        int
	successfulReqs  int
	failedReqs      int
	trialInFlight   bool
	lastFailureTime time.Time
	stateChanged    time.Time
	mu              sync.Mutex
	logger          *zap.Logger
	now             func() time.Time
}

// NewCircuitBreaker creates a new circuit breaker with the given configuration
func NewCircuitBreaker(config CircuitBreakerConfig, logger *zap.Logger) *CircuitBreaker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.MaxFailures <= 0 {
		config.MaxFailures = 3
	}
	if config.ResetTimeout <= 0 {
		config.ResetTimeout = 60 * time.Second
	}

	cb := &CircuitBreaker{
		config:       config,
		state:        CircuitClosed,
		stateChanged: time.Now(),
		logger:       logger,
		now:          time.Now,
	}

	logger.Info("Circuit breaker created",
		zap.String("name", config.Name),
		zap.Int("max_failures", config.MaxFailures),
		zap.Duration("reset_timeout", config.ResetTimeout))

	return cb
}

// Allow reports whether a call to the guarded dependency may be
// attempted. An open circuit whose cooldown has elapsed transitions to
// half-open and permits exactly one trial call.
func (cb *CircuitBreaker) Allow() bool {
	if cb == nil {
		return false
	}
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitClosed:
		return true
	case CircuitOpen:
		if cb.now().Sub(cb.lastFailureTime) > cb.config.ResetTimeout {
			cb.setState(CircuitHalfOpen)
			cb.trialInFlight = true
			return true
		}
		return false
	case CircuitHalfOpen:
		if cb.trialInFlight {
			return false
		}
		cb.trialInFlight = true
		return true
	default:
		return false
	}
}

// RecordSuccess records a successful terminal outcome
func (cb *CircuitBreaker) RecordSuccess() {
	if cb == nil {
		return
	}
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.successfulReqs++
	cb.trialInFlight = false
	cb.failures = 0

	cb.logger.Debug("Circuit breaker recorded success",
		zap.String("name", cb.config.Name),
		zap.Int("successful_requests", cb.successfulReqs),
		zap.String("state", cb.state.String()))

	if cb.state != CircuitClosed {
		cb.setState(CircuitClosed)
	}
}

// RecordFailure records a failed terminal outcome. Reaching the failure
// threshold from closed, or any failure from half-open, opens the
// circuit.
func (cb *CircuitBreaker) RecordFailure() {
	if cb == nil {
		return
	}
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures++
	cb.failedReqs++
	cb.trialInFlight = false
	cb.lastFailureTime = cb.now()

	cb.logger.Debug("Circuit breaker recorded failure",
		zap.String("name", cb.config.Name),
		zap.Int("failures", cb.failures),
		zap.String("state", cb.state.String()))

	if cb.state == CircuitHalfOpen {
		cb.setState(CircuitOpen)
	} else if cb.state == CircuitClosed && cb.failures >= cb.config.MaxFailures {
		cb.setState(CircuitOpen)
	}
}

// setState changes the circuit breaker state; callers hold the mutex
func (cb *CircuitBreaker) setState(newState CircuitState) {
	oldState := cb.state
	cb.state = newState
	cb.stateChanged = cb.now()

	cb.logger.Info("Circuit breaker state changed",
		zap.String("name", cb.config.Name),
		zap.String("from", oldState.String()),
		zap.String("to", newState.String()),
		zap.Int("failures", cb.failures))

	if cb.config.OnStateChange != nil {
		go cb.config.OnStateChange(oldState, newState)
	}
}

// State returns the current state of the circuit breaker
func (cb *CircuitBreaker) State() CircuitState {
	if cb == nil {
		return CircuitClosed
	}
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Stats returns a snapshot of the circuit breaker counters
func (cb *CircuitBreaker) Stats() CircuitBreakerStats {
	if cb == nil {
		return CircuitBreakerStats{Name: "unknown", State: CircuitClosed}
	}
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return CircuitBreakerStats{
		Name:            cb.config.Name,
		State:           cb.state,
		Failures:        cb.failures,
		SuccessfulReqs:  cb.successfulReqs,
		FailedReqs:      cb.failedReqs,
		LastFailureTime: cb.lastFailureTime,
		StateChanged:    cb.stateChanged,
	}
}

// Reset manually resets the circuit breaker to closed state
func (cb *CircuitBreaker) Reset() {
	if cb == nil {
		return
	}
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.logger.Info("Circuit breaker manually reset", zap.String("name", cb.config.Name))
	cb.failures = 0
	cb.trialInFlight = false
	if cb.state != CircuitClosed {
		cb.setState(CircuitClosed)
	}
}

// setClock overrides the breaker's time source for tests
func (cb *CircuitBreaker) setClock(now func() time.Time) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.now = now
}
