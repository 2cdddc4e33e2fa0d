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

package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRecipientLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.CreateRecipient(ctx, Recipient{
		Name:         "Maya",
		Relationship: "sister",
		Interests:    []string{"gaming", "cooking"},
		Birthdate:    "1992-04-18",
		Notes:        "prefers handmade things",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	fetched, err := s.GetRecipient(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Maya", fetched.Name)
	assert.Equal(t, []string{"gaming", "cooking"}, fetched.Interests)
	assert.Equal(t, "1992-04-18", fetched.Birthdate)

	fetched.Relationship = "best friend"
	fetched.Interests = []string{"travel"}
	require.NoError(t, s.UpdateRecipient(ctx, fetched))

	updated, err := s.GetRecipient(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "best friend", updated.Relationship)
	assert.Equal(t, []string{"travel"}, updated.Interests)

	require.NoError(t, s.DeleteRecipient(ctx, created.ID))

	_, err = s.GetRecipient(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListRecipientsOrdered(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"Zoe", "Alex", "Maya"} {
		_, err := s.CreateRecipient(ctx, Recipient{Name: name})
		require.NoError(t, err)
	}

	recipients, err := s.ListRecipients(ctx)
	require.NoError(t, err)
	require.Len(t, recipients, 3)
	assert.Equal(t, "Alex", recipients[0].Name)
	assert.Equal(t, "Maya", recipients[1].Name)
	assert.Equal(t, "Zoe", recipients[2].Name)
}

func TestRecipientNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetRecipient(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.UpdateRecipient(ctx, Recipient{ID: "missing", Name: "x"}), ErrNotFound)
	assert.ErrorIs(t, s.DeleteRecipient(ctx, "missing"), ErrNotFound)
}

func TestGiftLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	recipient, err := s.CreateRecipient(ctx, Recipient{Name: "Maya"})
	require.NoError(t, err)

	gift, err := s.SaveGift(ctx, Gift{
		RecipientID: recipient.ID,
		Occasion:    "birthday",
		Name:        "Chess Set",
		Price:       35,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, gift.ID)
	assert.Equal(t, GiftStatusPlanned, gift.Status)

	gifts, err := s.ListGifts(ctx, recipient.ID)
	require.NoError(t, err)
	require.Len(t, gifts, 1)
	assert.Equal(t, "Chess Set", gifts[0].Name)

	require.NoError(t, s.UpdateGiftStatus(ctx, gift.ID, GiftStatusOrdered))

	gifts, err = s.ListGifts(ctx, recipient.ID)
	require.NoError(t, err)
	assert.Equal(t, GiftStatusOrdered, gifts[0].Status)

	require.NoError(t, s.DeleteGift(ctx, gift.ID))

	gifts, err = s.ListGifts(ctx, recipient.ID)
	require.NoError(t, err)
	assert.Empty(t, gifts)
}

func TestDeleteRecipientRemovesGifts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	recipient, err := s.CreateRecipient(ctx, Recipient{Name: "Maya"})
	require.NoError(t, err)

	_, err = s.SaveGift(ctx, Gift{RecipientID: recipient.ID, Name: "Chess Set", Price: 35})
	require.NoError(t, err)

	require.NoError(t, s.DeleteRecipient(ctx, recipient.ID))

	gifts, err := s.ListGifts(ctx, recipient.ID)
	require.NoError(t, err)
	assert.Empty(t, gifts)
}

func TestGiftStatusNotFound(t *testing.T) {
	s := newTestStore(t)

	assert.ErrorIs(t, s.UpdateGiftStatus(context.Background(), "missing", GiftStatusOrdered), ErrNotFound)
	assert.ErrorIs(t, s.DeleteGift(context.Background(), "missing"), ErrNotFound)
}

func TestSplitInterests(t *testing.T) {
	assert.Nil(t, splitInterests(""))
	assert.Nil(t, splitInterests("  "))
	assert.Equal(t, []string{"a", "b"}, splitInterests("a,b"))
	assert.Equal(t, []string{"a", "b"}, splitInterests(" a , b "))
	assert.Equal(t, []string{"a"}, splitInterests("a,,"))
}

func TestPing(t *testing.T) {
	s := newTestStore(t)
	assert.NoError(t, s.Ping(context.Background()))
}
