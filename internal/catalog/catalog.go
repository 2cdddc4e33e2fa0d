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

// Package catalog implements the curated product catalog used to attach
// purchasable items to gift suggestions.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	// sqlite driver
	_ "github.com/mattn/go-sqlite3"
)

// Product is one purchasable catalog item
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"image_url"`
	Tags        string  `json:"tags"`
}

// Store is a SQLite-backed product catalog
type Store struct {
	db *sql.DB
}

// NewStore opens (creating if needed) the catalog database
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}

	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database is reachable
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// initSchema creates the products table if it doesn't exist
func (s *Store) initSchema() error {
	query := `
		CREATE TABLE IF NOT EXISTS products (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT,
			category TEXT,
			price REAL NOT NULL,
			image_url TEXT,
			tags TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`

	_, err := s.db.Exec(query)
	return err
}

// Add inserts or replaces a product
func (s *Store) Add(ctx context.Context, p Product) error {
	query := `
		INSERT OR REPLACE INTO products (id, name, description, category, price, image_url, tags)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query, p.ID, p.Name, p.Description, p.Category, p.Price, p.ImageURL, p.Tags)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}

	return nil
}

// Search returns products matching the query (against category, name,
// or tags) priced within the budget, priciest-fitting first
func (s *Store) Search(ctx context.Context, query string, budget float64) ([]Product, error) {
	q := strings.TrimSpace(strings.ToLower(query))
	if q == "" {
		return nil, nil
	}

	stmt := `
		SELECT id, name, description, category, price, image_url, tags
		FROM products
		WHERE price > 0 AND price <= ?
		  AND (LOWER(category) = ? OR LOWER(name) LIKE ? OR LOWER(tags) LIKE ?)
		ORDER BY price DESC
		LIMIT 10
	`

	rows, err := s.db.QueryContext(ctx, stmt, budget, q, "%"+q+"%", "%"+q+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.Price, &p.ImageURL, &p.Tags); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	return products, rows.Err()
}

// Count returns the number of products in the catalog
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}
