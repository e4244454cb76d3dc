package card

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewCard(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	c := NewCard("What did we decide about the rollout?", "Staged by region, starting next sprint", now)

	assert.NotEmpty(t, c.ID)
	assert.Equal(t, DefaultEaseFactor, c.EaseFactor)
	assert.Equal(t, 0, c.Interval)
	assert.Equal(t, 0, c.Repetitions)
	assert.True(t, c.NextReview.Equal(now), "a new card is due immediately")
	assert.Nil(t, c.LastReviewed)
	assert.Equal(t, 3, c.Difficulty)
	assert.NoError(t, c.ValidateState())
}

func TestCard_IsDue(t *testing.T) {
	now := time.Now()

	assert.True(t, Card{NextReview: now}.IsDue(now))
	assert.True(t, Card{NextReview: now.Add(-time.Minute)}.IsDue(now))
	assert.False(t, Card{NextReview: now.Add(time.Minute)}.IsDue(now))
}

func TestCard_IsMature(t *testing.T) {
	assert.False(t, Card{Interval: 21}.IsMature())
	assert.True(t, Card{Interval: 22}.IsMature())
}

func TestCard_ValidateState(t *testing.T) {
	tests := []struct {
		name    string
		card    Card
		wantErr bool
	}{
		{name: "valid default state", card: Card{EaseFactor: 2.5}},
		{name: "valid at the ease floor", card: Card{EaseFactor: 1.3, Interval: 365}},
		{name: "ease below the floor", card: Card{EaseFactor: 1.29}, wantErr: true},
		{name: "negative interval", card: Card{EaseFactor: 2.5, Interval: -1}, wantErr: true},
		{name: "interval above the cap", card: Card{EaseFactor: 2.5, Interval: 366}, wantErr: true},
		{name: "negative repetitions", card: Card{EaseFactor: 2.5, Repetitions: -1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.card.ValidateState()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCardState)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
