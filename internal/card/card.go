// Package card provides the flashcard domain models shared by the
// scheduler, the ledger and the CLI.
package card

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultEaseFactor is the SM-2 easiness factor assigned to new cards.
	DefaultEaseFactor = 2.5
	// MinEaseFactor is the floor below which the easiness factor never drops.
	MinEaseFactor = 1.3
	// MaxIntervalDays caps the review interval of any card.
	MaxIntervalDays = 365
	// MatureIntervalDays is the interval above which a card counts as mature.
	MatureIntervalDays = 21
)

// ErrInvalidCardState indicates a card whose scheduling fields violate the
// model invariants. It points at a corrupted ledger record, not a normal
// edge case.
var ErrInvalidCardState = errors.New("invalid card state")

// Card is a single recall unit with its SM-2 scheduling state.
type Card struct {
	ID        string `db:"id" yaml:"id"`
	MeetingID string `db:"meeting_id" yaml:"meeting_id,omitempty"`
	DeckID    string `db:"deck_id" yaml:"deck_id,omitempty"`

	Question string `db:"question" yaml:"question"`
	Answer   string `db:"answer" yaml:"answer"`
	Context  string `db:"context" yaml:"context,omitempty"`

	// Difficulty is assigned by the card author (1-5). The scheduler reads
	// it as a tie-break signal but never mutates it.
	Difficulty int `db:"difficulty" yaml:"difficulty"`

	EaseFactor   float64    `db:"ease_factor" yaml:"ease_factor"`
	Interval     int        `db:"interval_days" yaml:"interval_days"`
	Repetitions  int        `db:"repetitions" yaml:"repetitions"`
	NextReview   time.Time  `db:"next_review" yaml:"next_review"`
	LastReviewed *time.Time `db:"last_reviewed" yaml:"last_reviewed,omitempty"`

	TimesReviewed int     `db:"times_reviewed" yaml:"times_reviewed"`
	TimesCorrect  int     `db:"times_correct" yaml:"times_correct"`
	AverageTime   float64 `db:"average_time" yaml:"average_time"`

	CreatedAt time.Time `db:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `db:"updated_at" yaml:"updated_at"`
}

// NewCard creates a card with the default scheduling state. A new card is
// due immediately.
func NewCard(question, answer string, now time.Time) Card {
	return Card{
		ID:         uuid.NewString(),
		Question:   question,
		Answer:     answer,
		Difficulty: 3,
		EaseFactor: DefaultEaseFactor,
		NextReview: now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// IsDue reports whether the card should be shown at the given time.
func (c Card) IsDue(now time.Time) bool {
	return !c.NextReview.After(now)
}

// IsMature reports whether the card's interval exceeds the maturity
// threshold.
func (c Card) IsMature() bool {
	return c.Interval > MatureIntervalDays
}

// ValidateState checks the scheduling invariants of the card. A violation
// means the record was corrupted upstream and must not be scheduled.
func (c Card) ValidateState() error {
	if c.EaseFactor < MinEaseFactor {
		return fmt.Errorf("%w: ease factor %.2f below %.1f", ErrInvalidCardState, c.EaseFactor, MinEaseFactor)
	}
	if c.Interval < 0 {
		return fmt.Errorf("%w: negative interval %d", ErrInvalidCardState, c.Interval)
	}
	if c.Interval > MaxIntervalDays {
		return fmt.Errorf("%w: interval %d exceeds %d days", ErrInvalidCardState, c.Interval, MaxIntervalDays)
	}
	if c.Repetitions < 0 {
		return fmt.Errorf("%w: negative repetitions %d", ErrInvalidCardState, c.Repetitions)
	}
	return nil
}

// Review is an immutable record of a single learner interaction.
type Review struct {
	ID     string `db:"id" yaml:"id"`
	CardID string `db:"card_id" yaml:"card_id"`

	Rating     int     `db:"rating" yaml:"rating"`
	TimeSpent  float64 `db:"time_spent" yaml:"time_spent"`
	WasCorrect bool    `db:"was_correct" yaml:"was_correct"`

	// State before this review, kept for audit and analytics.
	PreviousInterval int     `db:"previous_interval" yaml:"previous_interval"`
	PreviousEase     float64 `db:"previous_ease" yaml:"previous_ease"`

	ReviewedAt time.Time `db:"reviewed_at" yaml:"reviewed_at"`
}

// Deck groups cards and carries aggregate counters. MatureCards counts
// cards that matured at least once and is never decremented on lapse.
type Deck struct {
	ID          string `db:"id" yaml:"id"`
	Name        string `db:"name" yaml:"name"`
	Description string `db:"description" yaml:"description,omitempty"`

	NewCardsPerDay int `db:"new_cards_per_day" yaml:"new_cards_per_day"`
	ReviewLimit    int `db:"review_limit" yaml:"review_limit"`

	TotalCards  int `db:"total_cards" yaml:"total_cards"`
	MatureCards int `db:"mature_cards" yaml:"mature_cards"`

	CreatedAt time.Time `db:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `db:"updated_at" yaml:"updated_at"`
}

// NewDeck creates a deck with the default session limits.
func NewDeck(name string, now time.Time) Deck {
	return Deck{
		ID:             uuid.NewString(),
		Name:           name,
		NewCardsPerDay: 20,
		ReviewLimit:    100,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
