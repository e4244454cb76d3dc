// Package testutil provides shared test helpers for config files, test
// databases and card fixtures.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/kioku-srs/kioku/internal/card"
	"github.com/kioku-srs/kioku/internal/config"
	"github.com/kioku-srs/kioku/internal/database"
)

// SetupTestConfig creates a minimal config file pointing at a sqlite
// database inside tmpDir. Returns the path to the generated config file.
func SetupTestConfig(t *testing.T, tmpDir string) string {
	t.Helper()

	configContent := fmt.Sprintf(`database:
  driver: sqlite
  path: %s
session:
  limit: 20
  forecast_days: 7
outputs:
  report_directory: %s
`,
		filepath.Join(tmpDir, "kioku.db"),
		filepath.Join(tmpDir, "reports"),
	)

	cfgPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(configContent), 0644))
	return cfgPath
}

// OpenTestDB opens a fresh sqlite database in a temp directory and
// applies all migrations.
func OpenTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := database.Open(config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "kioku.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})

	require.NoError(t, database.Migrate(db))
	return db
}

// CardOption configures optional fields when creating a card fixture.
type CardOption func(*card.Card)

// WithScheduling sets the SM-2 scheduling state of a card fixture.
func WithScheduling(easeFactor float64, interval, repetitions int) CardOption {
	return func(c *card.Card) {
		c.EaseFactor = easeFactor
		c.Interval = interval
		c.Repetitions = repetitions
	}
}

// WithNextReview sets when a card fixture is next due.
func WithNextReview(at time.Time) CardOption {
	return func(c *card.Card) {
		c.NextReview = at
	}
}

// WithDifficulty sets the author-assigned difficulty of a card fixture.
func WithDifficulty(difficulty int) CardOption {
	return func(c *card.Card) {
		c.Difficulty = difficulty
	}
}

// WithDeck assigns a card fixture to a deck.
func WithDeck(deckID string) CardOption {
	return func(c *card.Card) {
		c.DeckID = deckID
	}
}

// WithLastReviewed sets when a card fixture was last reviewed.
func WithLastReviewed(at time.Time) CardOption {
	return func(c *card.Card) {
		c.LastReviewed = &at
	}
}

// NewCard creates a card fixture due now with the default scheduling
// state.
func NewCard(t *testing.T, question string, opts ...CardOption) card.Card {
	t.Helper()

	c := card.NewCard(question, "answer: "+question, time.Now())
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
