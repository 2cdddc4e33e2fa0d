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
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestNewCircuitBreaker(t *testing.T) {
	config := DefaultCircuitBreakerConfig("test")
	logger := zap.NewNop()

	cb := NewCircuitBreaker(config, logger)

	if cb == nil {
		t.Fatal("Expected circuit breaker to be created")
	}

	if cb.State() != CircuitClosed {
		t.Errorf("Expected initial state to be closed, got %v", cb.State())
	}

	stats := cb.Stats()
	if stats.Name != "test" {
		t.Errorf("Expected name 'test', got %s", stats.Name)
	}
	if stats.Failures != 0 {
		t.Errorf("Expected 0 failures initially, got %d", stats.Failures)
	}
}

func TestCircuitBreakerOpensAfterThreshold(t *testing.T) {
	config := DefaultCircuitBreakerConfig("test")
	cb := NewCircuitBreaker(config, zap.NewNop())

	// First two failures keep the circuit closed
	cb.RecordFailure()
	cb.RecordFailure()
	if cb.State() != CircuitClosed {
		t.Errorf("Expected state closed after 2 failures, got %v", cb.State())
	}
	if !cb.Allow() {
		t.Error("Expected calls to be permitted while closed")
	}

	// Third failure opens the circuit
	cb.RecordFailure()
	if cb.State() != CircuitOpen {
		t.Errorf("Expected state open after 3 failures, got %v", cb.State())
	}
	if cb.Allow() {
		t.Error("Expected calls to be blocked while open")
	}
}

func TestCircuitBreakerHalfOpenAfterCooldown(t *testing.T) {
	config := DefaultCircuitBreakerConfig("test")
	cb := NewCircuitBreaker(config, zap.NewNop())

	now := time.Now()
	cb.setClock(func() time.Time { return now })

	cb.RecordFailure()
	cb.RecordFailure()
	cb.RecordFailure()
	if cb.State() != CircuitOpen {
		t.Fatalf("Expected state open, got %v", cb.State())
	}

	// Still within the cooldown window
	now = now.Add(30 * time.Second)
	if cb.Allow() {
		t.Error("Expected calls to be blocked during cooldown")
	}

	// Past the cooldown window the next permission check transitions
	// to half-open
	now = now.Add(31 * time.Second)
	if !cb.Allow() {
		t.Error("Expected a trial call to be permitted after cooldown")
	}
	if cb.State() != CircuitHalfOpen {
		t.Errorf("Expected state half-open, got %v", cb.State())
	}

	// Only one trial call is permitted
	if cb.Allow() {
		t.Error("Expected second call to be blocked while trial is in flight")
	}

	// Trial success closes the circuit and resets the failure count
	cb.RecordSuccess()
	if cb.State() != CircuitClosed {
		t.Errorf("Expected state closed after trial success, got %v", cb.State())
	}
	if stats := cb.Stats(); stats.Failures != 0 {
		t.Errorf("Expected failures reset to 0, got %d", stats.Failures)
	}
	if !cb.Allow() {
		t.Error("Expected calls to be permitted after recovery")
	}
}

func TestCircuitBreakerHalfOpenFailureReopens(t *testing.T) {
	config := DefaultCircuitBreakerConfig("test")
	cb := NewCircuitBreaker(config, zap.NewNop())

	now := time.Now()
	cb.setClock(func() time.Time { return now })

	cb.RecordFailure()
	cb.RecordFailure()
	cb.RecordFailure()

	now = now.Add(61 * time.Second)
	if !cb.Allow() {
		t.Fatal("Expected trial call after cooldown")
	}

	cb.RecordFailure()
	if cb.State() != CircuitOpen {
		t.Errorf("Expected state open after trial failure, got %v", cb.State())
	}
	if cb.Allow() {
		t.Error("Expected calls to be blocked after re-opening")
	}
}

func TestCircuitBreakerSuccessResetsFailures(t *testing.T) {
	config := DefaultCircuitBreakerConfig("test")
	cb := NewCircuitBreaker(config, zap.NewNop())

	cb.RecordFailure()
	cb.RecordFailure()
	cb.RecordSuccess()

	if stats := cb.Stats(); stats.Failures != 0 {
		t.Errorf("Expected failures reset to 0 after success, got %d", stats.Failures)
	}

	// The threshold count starts over
	cb.RecordFailure()
	cb.RecordFailure()
	if cb.State() != CircuitClosed {
		t.Errorf("Expected state closed, got %v", cb.State())
	}
}

func TestCircuitBreakerReset(t *testing.T) {
	config := DefaultCircuitBreakerConfig("test")
	cb := NewCircuitBreaker(config, zap.NewNop())

	cb.RecordFailure()
	cb.RecordFailure()
	cb.RecordFailure()
	if cb.State() != CircuitOpen {
		t.Fatalf("Expected state open, got %v", cb.State())
	}

	cb.Reset()
	if cb.State() != CircuitClosed {
		t.Errorf("Expected state closed after reset, got %v", cb.State())
	}
	if !cb.Allow() {
		t.Error("Expected calls to be permitted after reset")
	}
}

func TestCircuitBreakerNilSafety(t *testing.T) {
	var cb *CircuitBreaker

	if cb.Allow() {
		t.Error("Expected nil breaker to block calls")
	}
	cb.RecordSuccess()
	cb.RecordFailure()
	cb.Reset()

	if cb.State() != CircuitClosed {
		t.Errorf("Expected nil breaker state to read closed, got %v", cb.State())
	}
}

func TestCircuitStateString(t *testing.T) {
	cases := []struct {
		state    CircuitState
		expected string
	}{
		{CircuitClosed, "closed"},
		{CircuitOpen, "open"},
		{CircuitHalfOpen, "half-open"},
		{CircuitState(99), "unknown"},
	}

	for _, tc := range cases {
		if got := tc.state.String(); got != tc.expected {
			t.Errorf("Expected %q, got %q", tc.expected, got)
		}
	}
}
