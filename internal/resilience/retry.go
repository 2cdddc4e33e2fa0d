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

// Package resilience provides the circuit breaker, retry, and timeout
// machinery guarding calls to the external recommendation provider.
package resilience

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
)

// RetryConfig holds configuration for the resilient request executor
type RetryConfig struct {
	MaxRetries        int
	BaseDelay         time.Duration
	MaxDelay          time.Duration
	PerAttemptTimeout time.Duration
	RetryOnFunc       func(error) bool
}

// DefaultRetryConfig returns the executor defaults: a 12s per-attempt
// timeout and up to 2 additional attempts with delays of
// min(1s * 2^attempt, 5s).
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:        2,
		BaseDelay:         1 * time.Second,
		MaxDelay:          5 * time.Second,
		PerAttemptTimeout: 12 * time.Second,
		RetryOnFunc:       DefaultRetryOnFunc,
	}
}

// DefaultRetryOnFunc determines if an error should trigger a retry
func DefaultRetryOnFunc(err error) bool {
	if err == nil {
		return false
	}

	// Don't retry on caller cancellation
	if err == context.Canceled {
		return false
	}

	return true
}

// Operation is a single attempt against the guarded dependency
type Operation func(ctx context.Context) error

// Executor issues calls to the external provider with a per-attempt
// timeout, retries retryable failures with exponential backoff, and
// records terminal outcomes on the circuit breaker. Only the terminal
// outcome of a call is recorded; intermediate retried failures are not.
type Executor struct {
	config  RetryConfig
	breaker *CircuitBreaker
	logger  *zap.Logger
}

// NewExecutor creates an executor recording outcomes on the given breaker
func NewExecutor(config RetryConfig, breaker *CircuitBreaker, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.RetryOnFunc == nil {
		config.RetryOnFunc = DefaultRetryOnFunc
	}
	return &Executor{
		config:  config,
		breaker: breaker,
		logger:  logger,
	}
}

// Do executes the operation through the circuit breaker and retry
// policy. A circuit-open rejection is returned as ErrCircuitBreakerOpen
// and does not count as an additional provider failure.
func (e *Executor) Do(ctx context.Context, op Operation) error {
	if e.breaker != nil && !e.breaker.Allow() {
		e.logger.Warn("Provider call blocked by open circuit breaker")
		return ErrCircuitBreakerOpen
	}

	var lastErr error

	for attempt := 0; attempt <= e.config.MaxRetries; attempt++ {
		err := e.attempt(ctx, op)
		if err == nil {
			if attempt > 0 {
				e.logger.Info("Provider call succeeded after retry",
					zap.Int("attempt", attempt+1),
					zap.Int("total_attempts", e.config.MaxRetries+1))
			}
			e.breaker.RecordSuccess()
			return nil
		}

		lastErr = err

		if !e.config.RetryOnFunc(err) {
			e.logger.Debug("Error is not retryable, stopping attempts",
				zap.Error(err),
				zap.Int("attempt", attempt+1))
			e.breaker.RecordFailure()
			return err
		}

		// Don't sleep on the last attempt
		if attempt == e.config.MaxRetries {
			break
		}

		delay := e.delayFor(attempt)
		e.logger.Debug("Retrying provider call after delay",
			zap.Error(err),
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.Int("max_retries", e.config.MaxRetries))

		select {
		case <-ctx.Done():
			e.breaker.RecordFailure()
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	e.logger.Error("All provider call attempts exhausted",
		zap.Error(lastErr),
		zap.Int("total_attempts", e.config.MaxRetries+1))

	e.breaker.RecordFailure()
	return fmt.Errorf("provider call failed after %d attempts: %w", e.config.MaxRetries+1, lastErr)
}

// attempt runs one call bounded by the per-attempt timeout
func (e *Executor) attempt(ctx context.Context, op Operation) error {
	if e.config.PerAttemptTimeout <= 0 {
		return op(ctx)
	}
	return WithTimeout(ctx, e.config.PerAttemptTimeout, e.logger, TimeoutFunc(op))
}

// delayFor computes the backoff delay for the given attempt index
func (e *Executor) delayFor(attempt int) time.Duration {
	delay := time.Duration(float64(e.config.BaseDelay) * math.Pow(2, float64(attempt)))
	if delay > e.config.MaxDelay {
		delay = e.config.MaxDelay
	}
	return delay
}
