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

// Package recommend implements the gift recommendation pipeline: prompt
// construction, provider response normalization, and fallback
// suggestion generation.
package recommend

import "strings"

const (
	// SuggestionCount is the number of suggestions every response carries
	SuggestionCount = 5
	// DefaultBudget is applied when a request omits or mangles the budget
	DefaultBudget = 50
	// DefaultRelationship is applied when a request omits the relationship
	DefaultRelationship = "friend"
	// DefaultConfidence is assigned to suggestions missing a confidence score
	DefaultConfidence = 0.8
)

// RecipientProfile describes who the gift is for
type RecipientProfile struct {
	Name         string   `json:"name"`
	Interests    []string `json:"interests,omitempty"`
	Relationship string   `json:"relationship,omitempty"`
	Age          int      `json:"age,omitempty"`
	Gender       string   `json:"gender,omitempty"`
}

// Request is one gift recommendation request
type Request struct {
	Recipient RecipientProfile `json:"recipient"`
	Budget    float64          `json:"budget"`
	Occasion  string           `json:"occasion"`
}

// Valid reports whether the request satisfies the outer contract:
// a non-empty recipient name and a positive budget
func (r Request) Valid() bool {
	return strings.TrimSpace(r.Recipient.Name) != "" && r.Budget > 0
}

// Sanitized returns a copy of the request with defaults applied for
// missing or invalid fields, so the fallback path always has something
// to work with
func (r Request) Sanitized() Request {
	out := r
	if strings.TrimSpace(out.Recipient.Name) == "" {
		out.Recipient.Name = "your recipient"
	}
	if out.Budget <= 0 {
		out.Budget = DefaultBudget
	}
	if strings.TrimSpace(out.Recipient.Relationship) == "" {
		out.Recipient.Relationship = DefaultRelationship
	}
	if strings.TrimSpace(out.Occasion) == "" {
		out.Occasion = "special occasion"
	}
	return out
}

// GiftSuggestion is one recommended gift. A response always contains
// exactly SuggestionCount of these, each with 0 < price <= budget.
type GiftSuggestion struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Price       float64  `json:"price"`
	Reasoning   string   `json:"reasoning"`
	Confidence  float64  `json:"confidence"`
	Tags        []string `json:"tags"`
	ImageURL    string   `json:"image_url,omitempty"`
	ProductID   string   `json:"product_id,omitempty"`
}

// HasTag reports whether the suggestion carries the given tag
func (g GiftSuggestion) HasTag(tag string) bool {
	for _, t := range g.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// Result is the outcome of one pass through the recommendation
// pipeline. FallbackUsed distinguishes provider-backed suggestions from
// locally generated ones; the shape is identical either way.
type Result struct {
	Suggestions    []GiftSuggestion
	Model          string
	FallbackUsed   bool
	FallbackReason string
}
