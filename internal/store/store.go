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

// Package store persists recipients and their gifts.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	// sqlite driver
	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a recipient or gift does not exist
var ErrNotFound = errors.New("not found")

// Recipient is one person the user buys gifts for
type Recipient struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Relationship string    `json:"relationship"`
	Interests    []string  `json:"interests"`
	Birthdate    string    `json:"birthdate,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Gift is one planned or purchased gift for a recipient
type Gift struct {
	ID          string    `json:"id"`
	RecipientID string    `json:"recipient_id"`
	Occasion    string    `json:"occasion"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// Gift statuses
const (
	GiftStatusPlanned   = "planned"
	GiftStatusOrdered   = "ordered"
	GiftStatusDelivered = "delivered"
)

// Store is the SQLite-backed persistence layer for recipients and gifts
type Store struct {
	db *sql.DB
}

// NewStore opens (creating if needed) the application database
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

func (s *Store) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS recipients (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			relationship TEXT,
			interests TEXT,
			birthdate TEXT,
			notes TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS gifts (
			id TEXT PRIMARY KEY,
			recipient_id TEXT NOT NULL,
			occasion TEXT,
			name TEXT NOT NULL,
			price REAL,
			status TEXT NOT NULL DEFAULT 'planned',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (recipient_id) REFERENCES recipients(id)
		)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return err
		}
	}
	return nil
}

// CreateRecipient inserts a recipient, assigning an id if absent
func (s *Store) CreateRecipient(ctx context.Context, r Recipient) (Recipient, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	r.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO recipients (id, name, relationship, interests, birthdate, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		r.ID, r.Name, r.Relationship, strings.Join(r.Interests, ","), r.Birthdate, r.Notes, r.CreatedAt)
	if err != nil {
		return Recipient{}, fmt.Errorf("failed to insert recipient: %w", err)
	}

	return r, nil
}

// GetRecipient fetches one recipient by id
func (s *Store) GetRecipient(ctx context.Context, id string) (Recipient, error) {
	query := `
		SELECT id, name, relationship, interests, birthdate, notes, created_at
		FROM recipients WHERE id = ?
	`

	var r Recipient
	var interests string
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&r.ID, &r.Name, &r.Relationship, &interests, &r.Birthdate, &r.Notes, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Recipient{}, ErrNotFound
	}
	if err != nil {
		return Recipient{}, fmt.Errorf("failed to fetch recipient: %w", err)
	}

	r.Interests = splitInterests(interests)
	return r, nil
}

// ListRecipients returns all recipients ordered by name
func (s *Store) ListRecipients(ctx context.Context) ([]Recipient, error) {
	query := `
		SELECT id, name, relationship, interests, birthdate, notes, created_at
		FROM recipients ORDER BY name
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipients: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var recipients []Recipient
	for rows.Next() {
		var r Recipient
		var interests string
		if err := rows.Scan(&r.ID, &r.Name, &r.Relationship, &interests, &r.Birthdate, &r.Notes, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan recipient: %w", err)
		}
		r.Interests = splitInterests(interests)
		recipients = append(recipients, r)
	}

	return recipients, rows.Err()
}

// UpdateRecipient replaces the stored fields of a recipient
func (s *Store) UpdateRecipient(ctx context.Context, r Recipient) error {
	query := `
		UPDATE recipients
		SET name = ?, relationship = ?, interests = ?, birthdate = ?, notes = ?
		WHERE id = ?
	`

	res, err := s.db.ExecContext(ctx, query,
		r.Name, r.Relationship, strings.Join(r.Interests, ","), r.Birthdate, r.Notes, r.ID)
	if err != nil {
		return fmt.Errorf("failed to update recipient: %w", err)
	}

	return requireRowAffected(res)
}

// DeleteRecipient removes a recipient and their gifts
func (s *Store) DeleteRecipient(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM gifts WHERE recipient_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete gifts: %w", err)
	}

	res, err := s.db.ExecContext(ctx, "DELETE FROM recipients WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete recipient: %w", err)
	}

	return requireRowAffected(res)
}

// SaveGift inserts a gift, assigning an id and default status if absent
func (s *Store) SaveGift(ctx context.Context, g Gift) (Gift, error) {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if g.Status == "" {
		g.Status = GiftStatusPlanned
	}
	g.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO gifts (id, recipient_id, occasion, name, price, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		g.ID, g.RecipientID, g.Occasion, g.Name, g.Price, g.Status, g.CreatedAt)
	if err != nil {
		return Gift{}, fmt.Errorf("failed to insert gift: %w", err)
	}

	return g, nil
}

// ListGifts returns the gifts for one recipient, newest first
func (s *Store) ListGifts(ctx context.Context, recipientID string) ([]Gift, error) {
	query := `
		SELECT id, recipient_id, occasion, name, price, status, created_at
		FROM gifts WHERE recipient_id = ? ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, recipientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list gifts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var gifts []Gift
	for rows.Next() {
		var g Gift
		if err := rows.Scan(&g.ID, &g.RecipientID, &g.Occasion, &g.Name, &g.Price, &g.Status, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan gift: %w", err)
		}
		gifts = append(gifts, g)
	}

	return gifts, rows.Err()
}

// UpdateGiftStatus moves a gift through its lifecycle
func (s *Store) UpdateGiftStatus(ctx context.Context, id, status string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE gifts SET status = ? WHERE id = ?", status, id)
	if err != nil {
		return fmt.Errorf("failed to update gift status: %w", err)
	}

	return requireRowAffected(res)
}

// DeleteGift removes a gift
func (s *Store) DeleteGift(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM gifts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete gift: %w", err)
	}

	return requireRowAffected(res)
}

func requireRowAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func splitInterests(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
