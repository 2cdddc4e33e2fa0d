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
	"fmt"
	"math/rand"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FallbackModel identifies locally generated suggestions in response metadata
const FallbackModel = "lazyuncle-fallback"

// baseGift is a template priced as a fraction of the budget capped at a
// fixed dollar ceiling
type baseGift struct {
	name        string
	description string
	category    string
	fraction    float64
	ceiling     float64
	reasoning   string
	tags        []string
}

// baseGifts are the generic suggestions offered regardless of interests
var baseGifts = []baseGift{
	{
		name:        "Gift Card",
		description: "A flexible gift card they can spend anywhere",
		category:    "gift-card",
		fraction:    0.8, ceiling: 50,
		reasoning: "A safe choice when you want to let them pick",
		tags:      []string{"fallback", "flexible"},
	},
	{
		name:        "Scented Candle Set",
		description: "A set of seasonal scented candles",
		category:    "home",
		fraction:    0.5, ceiling: 35,
		reasoning: "Cozy and universally appreciated",
		tags:      []string{"fallback", "home"},
	},
	{
		name:        "Gourmet Coffee and Tea Set",
		description: "A sampler of specialty coffees and loose-leaf teas",
		category:    "food-drink",
		fraction:    0.6, ceiling: 40,
		reasoning: "A small daily luxury most people enjoy",
		tags:      []string{"fallback", "food"},
	},
	{
		name:        "Hand Cream Collection",
		description: "A collection of nourishing hand creams",
		category:    "self-care",
		fraction:    0.4, ceiling: 25,
		reasoning: "A practical self-care treat",
		tags:      []string{"fallback", "self-care"},
	},
	{
		name:        "Personalized Photo Frame",
		description: "A frame engraved with their name or a date",
		category:    "personalized",
		fraction:    0.55, ceiling: 30,
		reasoning: "Personalized gifts feel thoughtful at any budget",
		tags:      []string{"fallback", "personalized"},
	},
}

// interestGifts maps a lowercase interest keyword to themed suggestions
var interestGifts = map[string][]baseGift{
	"gaming": {
		{name: "Gaming Headset Stand", description: "An RGB stand to keep their headset on display", category: "gaming", fraction: 0.7, ceiling: 35, reasoning: "Fits their gaming setup", tags: []string{"fallback", "gaming"}},
		{name: "Arcade-Style Mug", description: "A retro arcade mug for marathon sessions", category: "gaming", fraction: 0.3, ceiling: 18, reasoning: "A playful nod to their hobby", tags: []string{"fallback", "gaming"}},
	},
	"cooking": {
		{name: "Spice Sampler Set", description: "A boxed set of global spice blends", category: "cooking", fraction: 0.5, ceiling: 30, reasoning: "New flavors for a home cook", tags: []string{"fallback", "cooking"}},
		{name: "Bamboo Cutting Board", description: "A sturdy bamboo board with a juice groove", category: "cooking", fraction: 0.45, ceiling: 28, reasoning: "A kitchen staple worth upgrading", tags: []string{"fallback", "cooking"}},
	},
	"reading": {
		{name: "Clip-On Book Light", description: "A warm rechargeable reading light", category: "reading", fraction: 0.35, ceiling: 20, reasoning: "For late-night chapters", tags: []string{"fallback", "reading"}},
		{name: "Literary Scented Candle", description: "A candle inspired by old libraries", category: "reading", fraction: 0.4, ceiling: 24, reasoning: "Sets the mood for reading", tags: []string{"fallback", "reading"}},
	},
	"fitness": {
		{name: "Workout Towel Set", description: "Quick-dry towels for the gym bag", category: "fitness", fraction: 0.4, ceiling: 22, reasoning: "Useful on every gym day", tags: []string{"fallback", "fitness"}},
		{name: "Foam Roller", description: "A textured roller for recovery days", category: "fitness", fraction: 0.55, ceiling: 30, reasoning: "Supports their training routine", tags: []string{"fallback", "fitness"}},
	},
	"music": {
		{name: "Vinyl Record Coasters", description: "Coasters pressed to look like minis of classic records", category: "music", fraction: 0.35, ceiling: 20, reasoning: "For the music lover's coffee table", tags: []string{"fallback", "music"}},
		{name: "Compact Bluetooth Speaker", description: "A palm-size speaker with surprising sound", category: "music", fraction: 0.8, ceiling: 45, reasoning: "Music everywhere they go", tags: []string{"fallback", "music"}},
	},
	"travel": {
		{name: "Packing Cube Set", description: "Lightweight cubes that tame any suitcase", category: "travel", fraction: 0.45, ceiling: 28, reasoning: "Makes every trip easier", tags: []string{"fallback", "travel"}},
		{name: "Scratch-Off World Map", description: "A map to track countries they have visited", category: "travel", fraction: 0.5, ceiling: 30, reasoning: "Celebrates their adventures", tags: []string{"fallback", "travel"}},
	},
	"gardening": {
		{name: "Herb Garden Starter Kit", description: "Seeds, soil, and pots for a windowsill garden", category: "gardening", fraction: 0.5, ceiling: 30, reasoning: "Fresh herbs all year", tags: []string{"fallback", "gardening"}},
		{name: "Garden Tool Set", description: "A compact set of hand tools with a carry tote", category: "gardening", fraction: 0.6, ceiling: 35, reasoning: "Quality tools for their beds", tags: []string{"fallback", "gardening"}},
	},
	"art": {
		{name: "Sketchbook and Pencil Set", description: "A hardcover sketchbook with graded pencils", category: "art", fraction: 0.4, ceiling: 25, reasoning: "Supplies every artist burns through", tags: []string{"fallback", "art"}},
		{name: "Watercolor Starter Kit", description: "A travel-friendly watercolor palette and brushes", category: "art", fraction: 0.55, ceiling: 32, reasoning: "Invites them to try a new medium", tags: []string{"fallback", "art"}},
	},
}

// maxInterestGifts bounds how many interest-matched items join the list
const maxInterestGifts = 2

// Generator produces suggestions without calling the external provider.
// It is the last line of defense and never fails.
type Generator struct {
	logger *zap.Logger
	rng    *rand.Rand
}

// NewGenerator creates a fallback generator. A nil rng gets a
// time-seeded one.
func NewGenerator(logger *zap.Logger, rng *rand.Rand) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{logger: logger, rng: rng}
}

// Generate produces exactly SuggestionCount suggestions derived from
// the request's budget, interests, relationship, and occasion. The
// request may be partial; defaults are applied first.
func (g *Generator) Generate(req Request) []GiftSuggestion {
	req = req.Sanitized()
	budget := req.Budget

	// Interest-matched items come first so truncation keeps them
	candidates := g.interestMatches(req.Recipient.Interests, budget)
	for _, base := range baseGifts {
		candidates = append(candidates, g.materialize(base, req, budget))
	}

	suggestions := make([]GiftSuggestion, 0, SuggestionCount)
	for _, s := range candidates {
		if s.Price <= 0 || s.Price > budget {
			continue
		}
		suggestions = append(suggestions, s)
		if len(suggestions) == SuggestionCount {
			break
		}
	}

	for len(suggestions) < SuggestionCount {
		suggestions = append(suggestions, g.genericFiller(len(suggestions), req))
	}

	g.logger.Debug("Generated fallback suggestions",
		zap.String("recipient", req.Recipient.Name),
		zap.String("occasion", req.Occasion),
		zap.Float64("budget", budget))

	return suggestions
}

// interestMatches returns up to maxInterestGifts suggestions keyed by
// the recipient's interests
func (g *Generator) interestMatches(interests []string, budget float64) []GiftSuggestion {
	var matched []GiftSuggestion
	for _, interest := range interests {
		key := strings.ToLower(strings.TrimSpace(interest))
		for _, base := range interestGifts[key] {
			if len(matched) == maxInterestGifts {
				return matched
			}
			matched = append(matched, g.materialize(base, Request{Budget: budget}, budget))
		}
		if len(matched) == maxInterestGifts {
			break
		}
	}
	return matched
}

// materialize turns a template into a priced suggestion
func (g *Generator) materialize(base baseGift, req Request, budget float64) GiftSuggestion {
	price := budget * base.fraction
	if price > base.ceiling {
		price = base.ceiling
	}

	return GiftSuggestion{
		ID:          "fallback-" + uuid.NewString(),
		Name:        base.name,
		Description: base.description,
		Category:    base.category,
		Price:       roundPrice(price),
		Reasoning:   base.reasoning,
		Confidence:  0.7,
		Tags:        base.tags,
		ImageURL:    placeholderImage(base.category),
	}
}

// genericFiller pads the list when too few candidates fit the budget
func (g *Generator) genericFiller(index int, req Request) GiftSuggestion {
	return GiftSuggestion{
		ID:          "fallback-" + uuid.NewString(),
		Name:        fmt.Sprintf("Surprise Gift Box #%d", index+1),
		Description: fmt.Sprintf("A curated surprise box for a %s", req.Occasion),
		Category:    "surprise",
		Price:       fillerPrice(g.rng, req.Budget),
		Reasoning:   fmt.Sprintf("A safe pick for your %s", req.Recipient.Relationship),
		Confidence:  0.6,
		Tags:        []string{"fallback", "surprise"},
		ImageURL:    placeholderImage("surprise"),
	}
}

// placeholderImage returns a category-keyed placeholder image URL
func placeholderImage(category string) string {
	label := strings.ReplaceAll(strings.TrimSpace(category), " ", "-")
	if label == "" {
		label = "gift"
	}
	return "https://placehold.co/400x300?text=" + url.QueryEscape(label)
}
