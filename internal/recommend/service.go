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

package recommend

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/your-org/lazyuncle/internal/catalog"
	"github.com/your-org/lazyuncle/internal/resilience"
)

// ProviderClient is the outbound dependency: an opaque text-in/text-out
// recommendation provider
type ProviderClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Model() string
}

// CatalogSearcher looks up purchasable products matching a query within
// a budget
type CatalogSearcher interface {
	Search(ctx context.Context, query string, budget float64) ([]catalog.Product, error)
}

// Service runs the recommendation pipeline. Every failure below the
// catastrophic level degrades to fallback suggestions; Recommend always
// returns a Result with exactly SuggestionCount suggestions.
type Service struct {
	provider   ProviderClient
	executor   *resilience.Executor
	breaker    *resilience.CircuitBreaker
	normalizer *Normalizer
	fallback   *Generator
	catalog    CatalogSearcher
	logger     *zap.Logger
}

// NewService wires the pipeline. The catalog searcher may be nil, in
// which case suggestions are not enriched with purchasable products.
func NewService(
	provider ProviderClient,
	executor *resilience.Executor,
	breaker *resilience.CircuitBreaker,
	normalizer *Normalizer,
	fallback *Generator,
	searcher CatalogSearcher,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		provider:   provider,
		executor:   executor,
		breaker:    breaker,
		normalizer: normalizer,
		fallback:   fallback,
		catalog:    searcher,
		logger:     logger,
	}
}

// BreakerState returns the circuit breaker state for response metadata
func (s *Service) BreakerState() string {
	return s.breaker.State().String()
}

// Recommend produces suggestions for the request. It never returns an
// error: any failure along the way is converted into fallback
// suggestions with a captured reason.
func (s *Service) Recommend(ctx context.Context, req Request) Result {
	if !req.Valid() {
		reason := "recipient name and a positive budget are required"
		s.logger.Info("Invalid recommendation request, using fallback",
			zap.String("reason", reason))
		return s.fallbackResult(req, reason)
	}

	req = req.Sanitized()
	prompt := BuildPrompt(req)

	var rawText string
	err := s.executor.Do(ctx, func(ctx context.Context) error {
		text, callErr := s.provider.Complete(ctx, prompt)
		if callErr != nil {
			return callErr
		}
		rawText = text
		return nil
	})
	if err != nil {
		reason := fmt.Sprintf("provider unavailable: %v", err)
		if errors.Is(err, resilience.ErrCircuitBreakerOpen) {
			reason = "circuit breaker open"
		}
		s.logger.Warn("Provider call failed, using fallback",
			zap.Error(err),
			zap.String("recipient", req.Recipient.Name))
		return s.fallbackResult(req, reason)
	}

	suggestions, err := s.normalizer.Normalize(rawText, req.Budget)
	if err != nil {
		s.logger.Warn("Provider response unusable, using fallback",
			zap.Error(err),
			zap.Int("response_length", len(rawText)))
		return s.fallbackResult(req, fmt.Sprintf("unusable provider response: %v", err))
	}

	s.enrich(ctx, suggestions, req.Budget)

	return Result{
		Suggestions: suggestions,
		Model:       s.provider.Model(),
	}
}

// Fallback produces a fallback result directly, bypassing the
// provider. Used by the handler when the request body itself cannot be
// parsed.
func (s *Service) Fallback(req Request, reason string) Result {
	return s.fallbackResult(req, reason)
}

// fallbackResult builds a fallback-backed result, always succeeding
func (s *Service) fallbackResult(req Request, reason string) Result {
	return Result{
		Suggestions:    s.fallback.Generate(req),
		Model:          FallbackModel,
		FallbackUsed:   true,
		FallbackReason: reason,
	}
}

// enrich attaches purchasable catalog products to suggestions that
// match by category. Best effort: lookup failures are logged and
// skipped.
func (s *Service) enrich(ctx context.Context, suggestions []GiftSuggestion, budget float64) {
	if s.catalog == nil {
		return
	}

	for i := range suggestions {
		products, err := s.catalog.Search(ctx, suggestions[i].Category, budget)
		if err != nil {
			s.logger.Debug("Catalog lookup failed",
				zap.Error(err),
				zap.String("category", suggestions[i].Category))
			continue
		}
		if len(products) == 0 {
			continue
		}

		product := products[0]
		suggestions[i].ProductID = product.ID
		if suggestions[i].ImageURL == "" {
			suggestions[i].ImageURL = product.ImageURL
		}
	}
}
