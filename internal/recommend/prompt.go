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
	"strings"
)

// BuildPrompt turns a recommendation request into the instruction
// string sent to the provider. Pure string construction; the request is
// assumed to be sanitized.
func BuildPrompt(req Request) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Suggest %d gift ideas for %s", SuggestionCount, req.Recipient.Name))
	if req.Recipient.Age > 0 {
		b.WriteString(fmt.Sprintf(", age %d", req.Recipient.Age))
	}
	b.WriteString(fmt.Sprintf(", my %s", req.Recipient.Relationship))
	b.WriteString(fmt.Sprintf(", for the occasion: %s.\n", req.Occasion))

	if len(req.Recipient.Interests) > 0 {
		b.WriteString(fmt.Sprintf("Their interests: %s.\n", strings.Join(req.Recipient.Interests, ", ")))
	} else {
		b.WriteString("No specific interests are known.\n")
	}

	b.WriteString(fmt.Sprintf("Every gift must cost at most $%.2f.\n\n", req.Budget))

	b.WriteString(fmt.Sprintf(`Respond with a JSON array of exactly %d objects. Each object must have these fields:
- "name": short gift name (string)
- "description": one-sentence description (string)
- "category": gift category (string)
- "price": estimated price in USD, at most %.2f (number)
- "reasoning": why this fits the recipient (string)
- "confidence": how confident you are, 0 to 1 (number)
- "tags": list of short lowercase tags (array of strings)

Return ONLY the JSON array. No prose, no explanations, no markdown fences.`, SuggestionCount, req.Budget))

	return b.String()
}
