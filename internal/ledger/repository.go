// Package ledger implements the card ledger: persistent storage for
// cards, decks and review events. The scheduler core never touches this
// package; callers read state here, run the pure scheduler, and write the
// result back.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/jmoiron/sqlx"

	"github.com/kioku-srs/kioku/internal/card"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrConcurrentUpdate is returned when a scheduling update lost a race
// with another writer. The read-modify-write of a review is not atomic;
// the ledger enforces at-most-one-writer-per-card with a compare-and-swap
// on the prior scheduling state.
var ErrConcurrentUpdate = errors.New("card was updated concurrently")

const writeRetryAttempts = 3

// CardRepository defines ledger operations on cards.
type CardRepository interface {
	Create(ctx context.Context, c *card.Card) error
	FindByID(ctx context.Context, id string) (*card.Card, error)
	FindAll(ctx context.Context) ([]card.Card, error)
	FindByDeck(ctx context.Context, deckID string) ([]card.Card, error)
	UpdateScheduling(ctx context.Context, c *card.Card, previousInterval int, previousEase float64) error
}

// ReviewRepository defines ledger operations on review events. Events are
// append-only and never mutated.
type ReviewRepository interface {
	Create(ctx context.Context, r *card.Review) error
	FindRecent(ctx context.Context, limit int) ([]card.Review, error)
	FindByCard(ctx context.Context, cardID string) ([]card.Review, error)
	CountSince(ctx context.Context, since time.Time) (int, error)
}

// DeckRepository defines ledger operations on decks.
type DeckRepository interface {
	Create(ctx context.Context, d *card.Deck) error
	FindByID(ctx context.Context, id string) (*card.Deck, error)
	FindAll(ctx context.Context) ([]card.Deck, error)
	IncrementTotalCards(ctx context.Context, id string, delta int) error
	IncrementMatureCards(ctx context.Context, id string) error
}

// isRetryableError reports whether a database error is transient and
// worth retrying: lock contention in sqlite, deadlocks in mysql.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked") ||
		strings.Contains(msg, "Deadlock found") ||
		strings.Contains(msg, "Lock wait timeout")
}

func withWriteRetry(ctx context.Context, operation func() error) error {
	return retry.Do(
		func() error {
			err := operation()
			if err != nil && !isRetryableError(err) {
				return retry.Unrecoverable(err)
			}
			return err
		},
		retry.Context(ctx),
		retry.Attempts(writeRetryAttempts),
		retry.LastErrorOnly(true),
	)
}

// DBCardRepository implements CardRepository using sqlx.
type DBCardRepository struct {
	db *sqlx.DB
}

// NewDBCardRepository creates a new DBCardRepository.
func NewDBCardRepository(db *sqlx.DB) *DBCardRepository {
	return &DBCardRepository{db: db}
}

// Create inserts a new card with its default scheduling state.
func (r *DBCardRepository) Create(ctx context.Context, c *card.Card) error {
	return withWriteRetry(ctx, func() error {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO cards (id, meeting_id, deck_id, question, answer, context, difficulty,
				ease_factor, interval_days, repetitions, next_review, last_reviewed,
				times_reviewed, times_correct, average_time, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID, c.MeetingID, c.DeckID, c.Question, c.Answer, c.Context, c.Difficulty,
			c.EaseFactor, c.Interval, c.Repetitions, c.NextReview, c.LastReviewed,
			c.TimesReviewed, c.TimesCorrect, c.AverageTime, c.CreatedAt, c.UpdatedAt)
		if err != nil {
			return fmt.Errorf("db.ExecContext(insert card) > %w", err)
		}
		return nil
	})
}

// FindByID returns a card by ID, or ErrNotFound.
func (r *DBCardRepository) FindByID(ctx context.Context, id string) (*card.Card, error) {
	var c card.Card
	err := r.db.GetContext(ctx, &c, "SELECT * FROM cards WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("card %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("db.GetContext(card) > %w", err)
	}
	return &c, nil
}

// FindAll returns every card in the ledger.
func (r *DBCardRepository) FindAll(ctx context.Context) ([]card.Card, error) {
	var cards []card.Card
	if err := r.db.SelectContext(ctx, &cards, "SELECT * FROM cards ORDER BY created_at, id"); err != nil {
		return nil, fmt.Errorf("db.SelectContext(cards) > %w", err)
	}
	return cards, nil
}

// FindByDeck returns all cards belonging to a deck.
func (r *DBCardRepository) FindByDeck(ctx context.Context, deckID string) ([]card.Card, error) {
	var cards []card.Card
	if err := r.db.SelectContext(ctx, &cards,
		"SELECT * FROM cards WHERE deck_id = ? ORDER BY created_at, id", deckID); err != nil {
		return nil, fmt.Errorf("db.SelectContext(cards by deck) > %w", err)
	}
	return cards, nil
}

// UpdateScheduling persists the card's new scheduling state. The update
// only applies while the stored state still matches the state the caller
// read; a lost race returns ErrConcurrentUpdate.
func (r *DBCardRepository) UpdateScheduling(ctx context.Context, c *card.Card, previousInterval int, previousEase float64) error {
	return withWriteRetry(ctx, func() error {
		result, err := r.db.ExecContext(ctx,
			`UPDATE cards SET ease_factor = ?, interval_days = ?, repetitions = ?,
				next_review = ?, last_reviewed = ?, times_reviewed = ?, times_correct = ?,
				average_time = ?, updated_at = ?
			WHERE id = ? AND interval_days = ? AND ease_factor = ?`,
			c.EaseFactor, c.Interval, c.Repetitions,
			c.NextReview, c.LastReviewed, c.TimesReviewed, c.TimesCorrect,
			c.AverageTime, c.UpdatedAt,
			c.ID, previousInterval, previousEase)
		if err != nil {
			return fmt.Errorf("db.ExecContext(update card scheduling) > %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("result.RowsAffected() > %w", err)
		}
		if affected == 0 {
			return retry.Unrecoverable(fmt.Errorf("card %s: %w", c.ID, ErrConcurrentUpdate))
		}
		return nil
	})
}

// DBReviewRepository implements ReviewRepository using sqlx.
type DBReviewRepository struct {
	db *sqlx.DB
}

// NewDBReviewRepository creates a new DBReviewRepository.
func NewDBReviewRepository(db *sqlx.DB) *DBReviewRepository {
	return &DBReviewRepository{db: db}
}

// Create appends a review event.
func (r *DBReviewRepository) Create(ctx context.Context, event *card.Review) error {
	return withWriteRetry(ctx, func() error {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO reviews (id, card_id, rating, time_spent, was_correct,
				previous_interval, previous_ease, reviewed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			event.ID, event.CardID, event.Rating, event.TimeSpent, event.WasCorrect,
			event.PreviousInterval, event.PreviousEase, event.ReviewedAt)
		if err != nil {
			return fmt.Errorf("db.ExecContext(insert review) > %w", err)
		}
		return nil
	})
}

// FindRecent returns the most recent review events, newest first.
func (r *DBReviewRepository) FindRecent(ctx context.Context, limit int) ([]card.Review, error) {
	var reviews []card.Review
	if err := r.db.SelectContext(ctx, &reviews,
		"SELECT * FROM reviews ORDER BY reviewed_at DESC, id DESC LIMIT ?", limit); err != nil {
		return nil, fmt.Errorf("db.SelectContext(recent reviews) > %w", err)
	}
	return reviews, nil
}

// FindByCard returns all review events for a card, newest first.
func (r *DBReviewRepository) FindByCard(ctx context.Context, cardID string) ([]card.Review, error) {
	var reviews []card.Review
	if err := r.db.SelectContext(ctx, &reviews,
		"SELECT * FROM reviews WHERE card_id = ? ORDER BY reviewed_at DESC, id DESC", cardID); err != nil {
		return nil, fmt.Errorf("db.SelectContext(reviews by card) > %w", err)
	}
	return reviews, nil
}

// CountSince counts review events at or after the given time.
func (r *DBReviewRepository) CountSince(ctx context.Context, since time.Time) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM reviews WHERE reviewed_at >= ?", since); err != nil {
		return 0, fmt.Errorf("db.GetContext(count reviews) > %w", err)
	}
	return count, nil
}

// DBDeckRepository implements DeckRepository using sqlx.
type DBDeckRepository struct {
	db *sqlx.DB
}

// NewDBDeckRepository creates a new DBDeckRepository.
func NewDBDeckRepository(db *sqlx.DB) *DBDeckRepository {
	return &DBDeckRepository{db: db}
}

// Create inserts a new deck.
func (r *DBDeckRepository) Create(ctx context.Context, d *card.Deck) error {
	return withWriteRetry(ctx, func() error {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO decks (id, name, description, new_cards_per_day, review_limit,
				total_cards, mature_cards, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			d.ID, d.Name, d.Description, d.NewCardsPerDay, d.ReviewLimit,
			d.TotalCards, d.MatureCards, d.CreatedAt, d.UpdatedAt)
		if err != nil {
			return fmt.Errorf("db.ExecContext(insert deck) > %w", err)
		}
		return nil
	})
}

// FindByID returns a deck by ID, or ErrNotFound.
func (r *DBDeckRepository) FindByID(ctx context.Context, id string) (*card.Deck, error) {
	var d card.Deck
	err := r.db.GetContext(ctx, &d, "SELECT * FROM decks WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("deck %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("db.GetContext(deck) > %w", err)
	}
	return &d, nil
}

// FindAll returns every deck.
func (r *DBDeckRepository) FindAll(ctx context.Context) ([]card.Deck, error) {
	var decks []card.Deck
	if err := r.db.SelectContext(ctx, &decks, "SELECT * FROM decks ORDER BY name, id"); err != nil {
		return nil, fmt.Errorf("db.SelectContext(decks) > %w", err)
	}
	return decks, nil
}

// IncrementTotalCards adjusts the deck's total card counter.
func (r *DBDeckRepository) IncrementTotalCards(ctx context.Context, id string, delta int) error {
	return withWriteRetry(ctx, func() error {
		_, err := r.db.ExecContext(ctx,
			"UPDATE decks SET total_cards = total_cards + ?, updated_at = ? WHERE id = ?",
			delta, time.Now().UTC(), id)
		if err != nil {
			return fmt.Errorf("db.ExecContext(increment total_cards) > %w", err)
		}
		return nil
	})
}

// IncrementMatureCards bumps the deck's mature card counter by one. The
// counter is a lifetime metric: a card that later lapses below the
// maturity threshold does not decrement it.
func (r *DBDeckRepository) IncrementMatureCards(ctx context.Context, id string) error {
	return withWriteRetry(ctx, func() error {
		_, err := r.db.ExecContext(ctx,
			"UPDATE decks SET mature_cards = mature_cards + 1, updated_at = ? WHERE id = ?",
			time.Now().UTC(), id)
		if err != nil {
			return fmt.Errorf("db.ExecContext(increment mature_cards) > %w", err)
		}
		return nil
	})
}
