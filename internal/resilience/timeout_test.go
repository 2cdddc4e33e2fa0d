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
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestWithTimeoutCompletes(t *testing.T) {
	err := WithTimeout(context.Background(), 100*time.Millisecond, zap.NewNop(), func(ctx context.Context) error {
		return nil
	})
	if err != nil {
		t.Fatalf("Expected success, got: %v", err)
	}
}

func TestWithTimeoutPropagatesError(t *testing.T) {
	cause := errors.New("boom")
	err := WithTimeout(context.Background(), 100*time.Millisecond, zap.NewNop(), func(ctx context.Context) error {
		return cause
	})
	if !errors.Is(err, cause) {
		t.Fatalf("Expected original error, got: %v", err)
	}
}

func TestWithTimeoutExpires(t *testing.T) {
	start := time.Now()
	err := WithTimeout(context.Background(), 20*time.Millisecond, zap.NewNop(), func(ctx context.Context) error {
		select {
		case <-time.After(1 * time.Second):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	if err == nil {
		t.Fatal("Expected timeout error")
	}
	if !IsTimeout(err) {
		t.Errorf("Expected timeout classification, got: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("Expected prompt timeout, took %v", elapsed)
	}
}

func TestWithTimeoutRespectsParentCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WithTimeout(ctx, 1*time.Second, zap.NewNop(), func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	if err == nil {
		t.Fatal("Expected error from cancelled parent context")
	}
}
