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
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrUnparseable is returned when no parse strategy recovers a
// suggestion array from the provider text
var ErrUnparseable = errors.New("provider response could not be parsed")

// ErrEmptyResponse is returned when the provider text parses to an
// empty array
var ErrEmptyResponse = errors.New("provider response contained no suggestions")

// arrayPattern matches the first bracket-delimited array substring
var arrayPattern = regexp.MustCompile(`(?s)\[.*\]`)

// rawSuggestion mirrors the field shape the prompt asks the provider
// for; every field is optional because the provider cannot be trusted
type rawSuggestion struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Price       float64  `json:"price"`
	Reasoning   string   `json:"reasoning"`
	Confidence  float64  `json:"confidence"`
	Tags        []string `json:"tags"`
	ImageURL    string   `json:"image_url"`
}

// Normalizer turns free-text provider responses into exactly
// SuggestionCount validated suggestions
type Normalizer struct {
	logger *zap.Logger
	rng    *rand.Rand
}

// NewNormalizer creates a normalizer. A nil rng gets a time-seeded one;
// tests pass a seeded source for reproducible filler prices.
func NewNormalizer(logger *zap.Logger, rng *rand.Rand) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Normalizer{logger: logger, rng: rng}
}

// Normalize parses the provider text and repairs it into exactly
// SuggestionCount suggestions, each priced in (0, budget]
func (n *Normalizer) Normalize(text string, budget float64) ([]GiftSuggestion, error) {
	raw, err := n.parse(text)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, ErrEmptyResponse
	}

	suggestions := make([]GiftSuggestion, 0, SuggestionCount)
	dropped := 0
	for _, r := range raw {
		s := repairSuggestion(r, budget)
		if s.Price <= 0 || s.Price > budget {
			dropped++
			continue
		}
		suggestions = append(suggestions, s)
		if len(suggestions) == SuggestionCount {
			break
		}
	}

	if dropped > 0 {
		n.logger.Debug("Dropped suggestions with out-of-budget prices",
			zap.Int("dropped", dropped),
			zap.Float64("budget", budget))
	}

	for i := len(suggestions); i < SuggestionCount; i++ {
		suggestions = append(suggestions, n.fillerSuggestion(i, budget))
	}

	return suggestions, nil
}

// parse attempts the layered parsing strategies in order: the raw text,
// the text with fences and surrounding prose stripped, then the first
// bracket-delimited substring
func (n *Normalizer) parse(text string) ([]rawSuggestion, error) {
	candidates := []string{
		text,
		stripWrapping(text),
	}
	if match := arrayPattern.FindString(text); match != "" {
		candidates = append(candidates, match)
	}

	for i, candidate := range candidates {
		raw, err := decodeSuggestions(candidate)
		if err == nil {
			if i > 0 {
				n.logger.Debug("Provider response parsed by fallback strategy",
					zap.Int("strategy", i+1))
			}
			return raw, nil
		}
	}

	n.logger.Warn("All parse strategies failed for provider response",
		zap.Int("response_length", len(text)))
	return nil, ErrUnparseable
}

// decodeSuggestions decodes a JSON array, wrapping a bare object into a
// single-element array
func decodeSuggestions(text string) ([]rawSuggestion, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, fmt.Errorf("empty text")
	}

	var arr []rawSuggestion
	if err := json.Unmarshal([]byte(trimmed), &arr); err == nil {
		return arr, nil
	}

	var single rawSuggestion
	if err := json.Unmarshal([]byte(trimmed), &single); err == nil {
		return []rawSuggestion{single}, nil
	}

	return nil, fmt.Errorf("not a JSON array or object")
}

// stripWrapping removes markdown code fences and any prose outside the
// outermost array brackets
func stripWrapping(text string) string {
	s := strings.ReplaceAll(text, "```json", "")
	s = strings.ReplaceAll(s, "```", "")

	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start >= 0 && end > start {
		s = s[start : end+1]
	}
	return strings.TrimSpace(s)
}

// repairSuggestion populates defaults for missing fields and clamps the
// price to the budget
func repairSuggestion(r rawSuggestion, budget float64) GiftSuggestion {
	s := GiftSuggestion{
		ID:          r.ID,
		Name:        strings.TrimSpace(r.Name),
		Description: strings.TrimSpace(r.Description),
		Category:    strings.TrimSpace(r.Category),
		Price:       r.Price,
		Reasoning:   strings.TrimSpace(r.Reasoning),
		Confidence:  r.Confidence,
		Tags:        r.Tags,
		ImageURL:    strings.TrimSpace(r.ImageURL),
	}

	if s.ID == "" {
		s.ID = "ai-" + uuid.NewString()
	}
	if s.Name == "" {
		s.Name = "Gift Suggestion"
	}
	if s.Description == "" {
		s.Description = "A thoughtful gift idea"
	}
	if s.Category == "" {
		s.Category = "general"
	}
	if s.Reasoning == "" {
		s.Reasoning = "Recommended for this recipient and occasion"
	}
	if s.Confidence <= 0 || s.Confidence > 1 {
		s.Confidence = DefaultConfidence
	}
	if len(s.Tags) == 0 {
		s.Tags = []string{"ai-recommended"}
	}
	if s.Price > budget {
		s.Price = budget
	}

	return s
}

// curated filler used when the provider returns fewer than
// SuggestionCount usable suggestions
var fillerNames = []string{
	"Cozy Throw Blanket",
	"Artisan Chocolate Box",
	"Scented Soy Candle",
	"Ceramic Mug Set",
	"Mini Succulent Trio",
}

// fillerSuggestion synthesizes a curated suggestion priced uniformly in
// [0.5*budget, 0.9*budget]
func (n *Normalizer) fillerSuggestion(index int, budget float64) GiftSuggestion {
	name := fillerNames[index%len(fillerNames)]

	return GiftSuggestion{
		ID:          "curated-" + uuid.NewString(),
		Name:        name,
		Description: fmt.Sprintf("%s, a crowd-pleasing pick within budget", name),
		Category:    "curated",
		Price:       fillerPrice(n.rng, budget),
		Reasoning:   "Curated filler to round out the suggestion list",
		Confidence:  DefaultConfidence,
		Tags:        []string{"curated"},
		ImageURL:    placeholderImage("curated"),
	}
}

// fillerPrice picks a price uniformly in [0.5*budget, 0.9*budget] and
// rounds it to cents. Rounding can push a sub-cent budget's price to
// zero or past the budget, so the result is clamped back into
// (0, budget].
func fillerPrice(rng *rand.Rand, budget float64) float64 {
	price := roundPrice(budget * (0.5 + 0.4*rng.Float64()))
	if price <= 0 || price > budget {
		price = budget
	}
	return price
}

// roundPrice rounds to cents
func roundPrice(p float64) float64 {
	return float64(int(p*100+0.5)) / 100
}
