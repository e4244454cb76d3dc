// Package review ties the pure scheduler to the card ledger: it owns the
// read-modify-write of a review submission and applies the side effects
// the scheduler only reports, such as deck maturity accounting.
package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kioku-srs/kioku/internal/card"
	"github.com/kioku-srs/kioku/internal/ledger"
	"github.com/kioku-srs/kioku/internal/scheduler"
)

// ErrInvalidTimeSpent is returned for non-positive review durations.
var ErrInvalidTimeSpent = errors.New("time spent must be positive")

// Outcome reports the result of one review submission.
type Outcome struct {
	Card            card.Card
	Event           card.Review
	MaturityCrossed bool
}

// Service processes review submissions.
type Service struct {
	cards   ledger.CardRepository
	reviews ledger.ReviewRepository
	decks   ledger.DeckRepository
	now     func() time.Time
}

// NewService creates a review service over the given ledger repositories.
func NewService(cards ledger.CardRepository, reviews ledger.ReviewRepository, decks ledger.DeckRepository) *Service {
	return &Service{
		cards:   cards,
		reviews: reviews,
		decks:   decks,
		now:     time.Now,
	}
}

// WithClock overrides the service clock. Tests use it to review at fixed
// times.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Submit records one learner interaction with a card: computes the new
// scheduling state, persists it together with an immutable review event,
// and applies maturity crossings to the owning deck.
func (s *Service) Submit(ctx context.Context, cardID string, rating int, timeSpent float64) (*Outcome, error) {
	if timeSpent <= 0 {
		return nil, fmt.Errorf("%w: %.2f", ErrInvalidTimeSpent, timeSpent)
	}

	c, err := s.cards.FindByID(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("cards.FindByID(%s) > %w", cardID, err)
	}

	now := s.now()
	result, err := scheduler.Review(*c, rating, now)
	if err != nil {
		return nil, fmt.Errorf("scheduler.Review(%s) > %w", cardID, err)
	}

	wasCorrect := rating >= 3
	event := card.Review{
		ID:               uuid.NewString(),
		CardID:           c.ID,
		Rating:           rating,
		TimeSpent:        timeSpent,
		WasCorrect:       wasCorrect,
		PreviousInterval: c.Interval,
		PreviousEase:     c.EaseFactor,
		ReviewedAt:       now,
	}

	previousInterval := c.Interval
	previousEase := c.EaseFactor

	c.EaseFactor = result.EaseFactor
	c.Interval = result.Interval
	c.Repetitions = result.Repetitions
	c.NextReview = result.NextReview
	reviewedAt := now
	c.LastReviewed = &reviewedAt
	c.AverageTime = runningMean(c.AverageTime, c.TimesReviewed, timeSpent)
	c.TimesReviewed++
	if wasCorrect {
		c.TimesCorrect++
	}
	c.UpdatedAt = now

	if err := s.cards.UpdateScheduling(ctx, c, previousInterval, previousEase); err != nil {
		return nil, fmt.Errorf("cards.UpdateScheduling(%s) > %w", cardID, err)
	}
	if err := s.reviews.Create(ctx, &event); err != nil {
		return nil, fmt.Errorf("reviews.Create(%s) > %w", cardID, err)
	}

	if result.MaturityCrossed && c.DeckID != "" {
		if err := s.decks.IncrementMatureCards(ctx, c.DeckID); err != nil {
			return nil, fmt.Errorf("decks.IncrementMatureCards(%s) > %w", c.DeckID, err)
		}
		slog.Debug("card matured", "card_id", c.ID, "deck_id", c.DeckID, "interval", c.Interval)
	}

	return &Outcome{
		Card:            *c,
		Event:           event,
		MaturityCrossed: result.MaturityCrossed,
	}, nil
}

// runningMean folds one more observation into a stored mean over count
// prior observations.
func runningMean(mean float64, count int, value float64) float64 {
	if count <= 0 {
		return value
	}
	return (mean*float64(count) + value) / float64(count+1)
}
