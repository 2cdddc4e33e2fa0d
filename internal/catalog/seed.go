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

package catalog

import "context"

// seedProducts is the starter catalog loaded by Seed
var seedProducts = []Product{
	{ID: "cat-giftcard-25", Name: "Universal Gift Card $25", Description: "A $25 gift card accepted at major retailers", Category: "gift-card", Price: 25, ImageURL: "https://placehold.co/400x300?text=gift-card", Tags: "gift-card,flexible"},
	{ID: "cat-giftcard-50", Name: "Universal Gift Card $50", Description: "A $50 gift card accepted at major retailers", Category: "gift-card", Price: 50, ImageURL: "https://placehold.co/400x300?text=gift-card", Tags: "gift-card,flexible"},
	{ID: "cat-candle-trio", Name: "Seasonal Candle Trio", Description: "Three hand-poured soy candles", Category: "home", Price: 32, ImageURL: "https://placehold.co/400x300?text=home", Tags: "home,candle,cozy"},
	{ID: "cat-coffee-sampler", Name: "Single-Origin Coffee Sampler", Description: "Four single-origin roasts in a gift box", Category: "food-drink", Price: 38, ImageURL: "https://placehold.co/400x300?text=food-drink", Tags: "food,coffee"},
	{ID: "cat-tea-chest", Name: "Loose-Leaf Tea Chest", Description: "A wooden chest of eight loose-leaf teas", Category: "food-drink", Price: 29, ImageURL: "https://placehold.co/400x300?text=food-drink", Tags: "food,tea"},
	{ID: "cat-handcream-set", Name: "Shea Hand Cream Set", Description: "Five travel-size shea hand creams", Category: "self-care", Price: 22, ImageURL: "https://placehold.co/400x300?text=self-care", Tags: "self-care,skincare"},
	{ID: "cat-photo-frame", Name: "Engraved Walnut Photo Frame", Description: "A walnut frame with custom engraving", Category: "personalized", Price: 28, ImageURL: "https://placehold.co/400x300?text=personalized", Tags: "personalized,keepsake"},
	{ID: "cat-headset-stand", Name: "RGB Headset Stand", Description: "An aluminium headset stand with USB hub", Category: "gaming", Price: 34, ImageURL: "https://placehold.co/400x300?text=gaming", Tags: "gaming,desk"},
	{ID: "cat-arcade-mug", Name: "Retro Arcade Mug", Description: "A heat-changing mug with arcade art", Category: "gaming", Price: 16, ImageURL: "https://placehold.co/400x300?text=gaming", Tags: "gaming,mug"},
	{ID: "cat-spice-box", Name: "World Spice Box", Description: "Twelve global spice blends in glass jars", Category: "cooking", Price: 27, ImageURL: "https://placehold.co/400x300?text=cooking", Tags: "cooking,spices"},
	{ID: "cat-book-light", Name: "Rechargeable Book Light", Description: "A warm clip-on light with three brightness levels", Category: "reading", Price: 18, ImageURL: "https://placehold.co/400x300?text=reading", Tags: "reading,light"},
	{ID: "cat-foam-roller", Name: "Textured Foam Roller", Description: "A medium-density roller for recovery", Category: "fitness", Price: 26, ImageURL: "https://placehold.co/400x300?text=fitness", Tags: "fitness,recovery"},
	{ID: "cat-bt-speaker", Name: "Pocket Bluetooth Speaker", Description: "A water-resistant palm-size speaker", Category: "music", Price: 42, ImageURL: "https://placehold.co/400x300?text=music", Tags: "music,speaker"},
	{ID: "cat-packing-cubes", Name: "Packing Cube Set", Description: "Six lightweight packing cubes", Category: "travel", Price: 24, ImageURL: "https://placehold.co/400x300?text=travel", Tags: "travel,organizer"},
	{ID: "cat-herb-kit", Name: "Windowsill Herb Kit", Description: "Basil, mint, and parsley starter kit", Category: "gardening", Price: 25, ImageURL: "https://placehold.co/400x300?text=gardening", Tags: "gardening,herbs"},
	{ID: "cat-sketch-set", Name: "Sketchbook and Pencil Set", Description: "A hardcover sketchbook with graded pencils", Category: "art", Price: 21, ImageURL: "https://placehold.co/400x300?text=art", Tags: "art,drawing"},
}

// Seed loads the starter catalog. Existing products with the same ids
// are replaced, so seeding is idempotent.
func (s *Store) Seed(ctx context.Context) (int, error) {
	for _, p := range seedProducts {
		if err := s.Add(ctx, p); err != nil {
			return 0, err
		}
	}
	return len(seedProducts), nil
}
