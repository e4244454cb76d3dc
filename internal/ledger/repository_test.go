package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kioku-srs/kioku/internal/card"
	"github.com/kioku-srs/kioku/internal/ledger"
	"github.com/kioku-srs/kioku/internal/testutil"
)

func TestDBCardRepository(t *testing.T) {
	ctx := context.Background()
	db := testutil.OpenTestDB(t)
	repo := ledger.NewDBCardRepository(db)

	t.Run("create and find by id", func(t *testing.T) {
		c := testutil.NewCard(t, "What is the retention target?")
		require.NoError(t, repo.Create(ctx, &c))

		got, err := repo.FindByID(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, c.Question, got.Question)
		assert.Equal(t, c.Answer, got.Answer)
		assert.Equal(t, card.DefaultEaseFactor, got.EaseFactor)
		assert.Equal(t, 0, got.Repetitions)
		assert.Nil(t, got.LastReviewed)
	})

	t.Run("find by id not found", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.NewString())
		assert.ErrorIs(t, err, ledger.ErrNotFound)
	})

	t.Run("find by deck", func(t *testing.T) {
		deckID := uuid.NewString()
		inDeck := testutil.NewCard(t, "in deck", testutil.WithDeck(deckID))
		outside := testutil.NewCard(t, "outside deck")
		require.NoError(t, repo.Create(ctx, &inDeck))
		require.NoError(t, repo.Create(ctx, &outside))

		cards, err := repo.FindByDeck(ctx, deckID)
		require.NoError(t, err)
		require.Len(t, cards, 1)
		assert.Equal(t, inDeck.ID, cards[0].ID)
	})

	t.Run("update scheduling", func(t *testing.T) {
		c := testutil.NewCard(t, "to reschedule", testutil.WithScheduling(2.5, 6, 2))
		require.NoError(t, repo.Create(ctx, &c))

		prevInterval, prevEase := c.Interval, c.EaseFactor
		now := time.Now().UTC()
		c.EaseFactor = 2.6
		c.Interval = 15
		c.Repetitions = 3
		c.NextReview = now.AddDate(0, 0, 15)
		c.LastReviewed = &now
		c.TimesReviewed = 1
		c.TimesCorrect = 1
		c.UpdatedAt = now
		require.NoError(t, repo.UpdateScheduling(ctx, &c, prevInterval, prevEase))

		got, err := repo.FindByID(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, 2.6, got.EaseFactor)
		assert.Equal(t, 15, got.Interval)
		assert.Equal(t, 3, got.Repetitions)
		require.NotNil(t, got.LastReviewed)
	})

	t.Run("update scheduling loses the race", func(t *testing.T) {
		c := testutil.NewCard(t, "contended card", testutil.WithScheduling(2.5, 6, 2))
		require.NoError(t, repo.Create(ctx, &c))

		// A stale prior state means another writer got there first.
		c.Interval = 15
		err := repo.UpdateScheduling(ctx, &c, 10, 2.2)
		assert.ErrorIs(t, err, ledger.ErrConcurrentUpdate)
	})
}

func TestDBReviewRepository(t *testing.T) {
	ctx := context.Background()
	db := testutil.OpenTestDB(t)
	repo := ledger.NewDBReviewRepository(db)

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	cardID := uuid.NewString()
	otherCardID := uuid.NewString()
	events := []card.Review{
		{ID: uuid.NewString(), CardID: cardID, Rating: 4, TimeSpent: 8, WasCorrect: true, PreviousInterval: 0, PreviousEase: 2.5, ReviewedAt: base},
		{ID: uuid.NewString(), CardID: otherCardID, Rating: 2, TimeSpent: 20, WasCorrect: false, PreviousInterval: 6, PreviousEase: 2.5, ReviewedAt: base.Add(time.Hour)},
		{ID: uuid.NewString(), CardID: cardID, Rating: 5, TimeSpent: 4, WasCorrect: true, PreviousInterval: 1, PreviousEase: 2.36, ReviewedAt: base.Add(2 * time.Hour)},
	}
	for i := range events {
		require.NoError(t, repo.Create(ctx, &events[i]))
	}

	t.Run("find recent returns newest first", func(t *testing.T) {
		got, err := repo.FindRecent(ctx, 2)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, events[2].ID, got[0].ID)
		assert.Equal(t, events[1].ID, got[1].ID)
	})

	t.Run("find by card", func(t *testing.T) {
		got, err := repo.FindByCard(ctx, cardID)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, events[2].ID, got[0].ID)
		assert.Equal(t, events[0].ID, got[1].ID)
	})

	t.Run("count since", func(t *testing.T) {
		count, err := repo.CountSince(ctx, base.Add(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})
}

func TestDBDeckRepository(t *testing.T) {
	ctx := context.Background()
	db := testutil.OpenTestDB(t)
	repo := ledger.NewDBDeckRepository(db)

	d := card.NewDeck("standup notes", time.Now().UTC())
	d.Description = "cards from the weekly standup"
	require.NoError(t, repo.Create(ctx, &d))

	t.Run("find by id", func(t *testing.T) {
		got, err := repo.FindByID(ctx, d.ID)
		require.NoError(t, err)
		assert.Equal(t, "standup notes", got.Name)
		assert.Equal(t, 0, got.TotalCards)
	})

	t.Run("find by id not found", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.NewString())
		assert.ErrorIs(t, err, ledger.ErrNotFound)
	})

	t.Run("counters", func(t *testing.T) {
		require.NoError(t, repo.IncrementTotalCards(ctx, d.ID, 3))
		require.NoError(t, repo.IncrementMatureCards(ctx, d.ID))
		require.NoError(t, repo.IncrementMatureCards(ctx, d.ID))

		got, err := repo.FindByID(ctx, d.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, got.TotalCards)
		assert.Equal(t, 2, got.MatureCards)
	})

	t.Run("find all sorted by name", func(t *testing.T) {
		other := card.NewDeck("architecture reviews", time.Now().UTC())
		require.NoError(t, repo.Create(ctx, &other))

		decks, err := repo.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, decks, 2)
		assert.Equal(t, "architecture reviews", decks[0].Name)
	})
}
