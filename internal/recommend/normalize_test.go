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
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestNormalizer() *Normalizer {
	return NewNormalizer(zap.NewNop(), rand.New(rand.NewSource(1)))
}

// assertNormalized checks the invariants every normalized list carries
func assertNormalized(t *testing.T, suggestions []GiftSuggestion, budget float64) {
	t.Helper()
	require.Len(t, suggestions, SuggestionCount)
	for i, s := range suggestions {
		assert.NotEmpty(t, s.ID, "suggestion %d missing id", i)
		assert.NotEmpty(t, s.Name, "suggestion %d missing name", i)
		assert.NotEmpty(t, s.Category, "suggestion %d missing category", i)
		assert.Greater(t, s.Price, 0.0, "suggestion %d price not positive", i)
		assert.LessOrEqual(t, s.Price, budget, "suggestion %d price over budget", i)
		assert.NotEmpty(t, s.Tags, "suggestion %d missing tags", i)
		assert.Greater(t, s.Confidence, 0.0, "suggestion %d missing confidence", i)
	}
}

func TestNormalizeCleanArray(t *testing.T) {
	n := newTestNormalizer()
	text := `[
		{"name": "Chess Set", "description": "A wooden chess set", "category": "games", "price": 35, "reasoning": "They love strategy", "confidence": 0.9, "tags": ["games"]},
		{"name": "Puzzle", "description": "A 1000-piece puzzle", "category": "games", "price": 20, "reasoning": "Relaxing", "confidence": 0.8, "tags": ["games"]},
		{"name": "Board Game", "description": "A party game", "category": "games", "price": 30, "reasoning": "Fun with friends", "confidence": 0.85, "tags": ["games"]},
		{"name": "Card Game", "description": "A fast card game", "category": "games", "price": 15, "reasoning": "Portable", "confidence": 0.8, "tags": ["games"]},
		{"name": "Dice Set", "description": "Metal dice", "category": "games", "price": 25, "reasoning": "Collectible", "confidence": 0.75, "tags": ["games"]}
	]`

	suggestions, err := n.Normalize(text, 40)
	require.NoError(t, err)
	assertNormalized(t, suggestions, 40)
	assert.Equal(t, "Chess Set", suggestions[0].Name)
}

func TestNormalizeFencedAndProseWrapped(t *testing.T) {
	n := newTestNormalizer()
	text := "Sure! Here's your list: ```json [ { \"name\": \"Mug\", \"price\": 10 } ] ``` Hope this helps!"

	suggestions, err := n.Normalize(text, 40)
	require.NoError(t, err)
	assertNormalized(t, suggestions, 40)

	assert.Equal(t, "Mug", suggestions[0].Name)
	assert.Equal(t, 10.0, suggestions[0].Price)
	// The remaining four are curated fillers
	for _, s := range suggestions[1:] {
		assert.True(t, s.HasTag("curated"), "expected curated filler, got %q", s.Name)
		assert.GreaterOrEqual(t, s.Price, 0.5*40)
		assert.LessOrEqual(t, s.Price, 0.9*40)
	}
}

func TestNormalizeBareObject(t *testing.T) {
	n := newTestNormalizer()
	text := `{"name": "Scarf", "price": 22, "category": "clothing"}`

	suggestions, err := n.Normalize(text, 40)
	require.NoError(t, err)
	assertNormalized(t, suggestions, 40)
	assert.Equal(t, "Scarf", suggestions[0].Name)
}

func TestNormalizeRepairsMissingFields(t *testing.T) {
	n := newTestNormalizer()
	text := `[{"price": 12}]`

	suggestions, err := n.Normalize(text, 40)
	require.NoError(t, err)
	assertNormalized(t, suggestions, 40)

	first := suggestions[0]
	assert.Equal(t, "Gift Suggestion", first.Name)
	assert.Equal(t, "general", first.Category)
	assert.Equal(t, DefaultConfidence, first.Confidence)
	assert.True(t, first.HasTag("ai-recommended"))
}

func TestNormalizeClampsPricesToBudget(t *testing.T) {
	n := newTestNormalizer()
	text := `[{"name": "Watch", "price": 250}]`

	suggestions, err := n.Normalize(text, 40)
	require.NoError(t, err)
	assertNormalized(t, suggestions, 40)
	assert.Equal(t, 40.0, suggestions[0].Price)
}

func TestNormalizeDropsNonPositivePrices(t *testing.T) {
	n := newTestNormalizer()
	text := `[
		{"name": "Freebie", "price": 0},
		{"name": "Refund", "price": -5},
		{"name": "Socks", "price": 8}
	]`

	suggestions, err := n.Normalize(text, 40)
	require.NoError(t, err)
	assertNormalized(t, suggestions, 40)
	assert.Equal(t, "Socks", suggestions[0].Name)
	for _, s := range suggestions {
		assert.NotEqual(t, "Freebie", s.Name)
		assert.NotEqual(t, "Refund", s.Name)
	}
}

func TestNormalizeTruncatesLongArrays(t *testing.T) {
	n := newTestNormalizer()
	text := `[
		{"name": "A", "price": 1}, {"name": "B", "price": 2}, {"name": "C", "price": 3},
		{"name": "D", "price": 4}, {"name": "E", "price": 5}, {"name": "F", "price": 6},
		{"name": "G", "price": 7}
	]`

	suggestions, err := n.Normalize(text, 40)
	require.NoError(t, err)
	require.Len(t, suggestions, SuggestionCount)
	assert.Equal(t, "A", suggestions[0].Name)
	assert.Equal(t, "E", suggestions[4].Name)
}

func TestNormalizeFillerSubCentBudget(t *testing.T) {
	n := newTestNormalizer()

	// Filler prices are rounded to cents; for a sub-cent budget the
	// rounded value must be clamped back into (0, budget]
	suggestions, err := n.Normalize(`[{"name": "Mug", "price": 0.008}]`, 0.008)
	require.NoError(t, err)
	require.Len(t, suggestions, SuggestionCount)
	for i, s := range suggestions {
		assert.Greater(t, s.Price, 0.0, "suggestion %d", i)
		assert.LessOrEqual(t, s.Price, 0.008, "suggestion %d", i)
	}
}

func TestFillerPriceBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for _, budget := range []float64{0.004, 0.008, 0.01, 1, 40} {
		for i := 0; i < 50; i++ {
			price := fillerPrice(rng, budget)
			assert.Greater(t, price, 0.0, "budget %v", budget)
			assert.LessOrEqual(t, price, budget, "budget %v", budget)
		}
	}
}

func TestNormalizeUnparseable(t *testing.T) {
	n := newTestNormalizer()

	_, err := n.Normalize("I'm sorry, I can't help with that.", 40)
	assert.ErrorIs(t, err, ErrUnparseable)
}

func TestNormalizeEmptyArray(t *testing.T) {
	n := newTestNormalizer()

	_, err := n.Normalize("[]", 40)
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestStripWrapping(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{"fenced", "```json\n[1]\n```", "[1]"},
		{"prose around", "here you go: [1] enjoy", "[1]"},
		{"no brackets", "nothing here", "nothing here"},
		{"nested brackets", "x [ [1], [2] ] y", "[ [1], [2] ]"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, stripWrapping(tc.input))
		})
	}
}
