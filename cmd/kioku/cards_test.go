package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kioku-srs/kioku/internal/config"
	"github.com/kioku-srs/kioku/internal/database"
	"github.com/kioku-srs/kioku/internal/ledger"
	"github.com/kioku-srs/kioku/internal/testutil"
)

// openLedgerForTest reopens the ledger a command just wrote to.
func openLedgerForTest(t *testing.T, cfgPath string) *repositories {
	t.Helper()

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)

	db, err := database.Open(cfg.Database)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.Migrate(db))
	return &repositories{
		db:      db,
		cards:   ledger.NewDBCardRepository(db),
		reviews: ledger.NewDBReviewRepository(db),
		decks:   ledger.NewDBDeckRepository(db),
	}
}

func TestNewCardsAddCommand_RunE(t *testing.T) {
	t.Run("invalid config", func(t *testing.T) {
		setConfigFile(t, setupBrokenConfigFile(t))

		cmd := newCardsAddCommand()
		cmd.SetArgs([]string{"question", "--answer", "answer"})
		err := cmd.Execute()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "configuration")
	})

	t.Run("missing answer", func(t *testing.T) {
		cfgPath := testutil.SetupTestConfig(t, t.TempDir())
		setConfigFile(t, cfgPath)

		cmd := newCardsAddCommand()
		cmd.SetArgs([]string{"question"})
		err := cmd.Execute()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "--answer is required")
	})

	t.Run("invalid difficulty", func(t *testing.T) {
		cfgPath := testutil.SetupTestConfig(t, t.TempDir())
		setConfigFile(t, cfgPath)

		cmd := newCardsAddCommand()
		cmd.SetArgs([]string{"question", "--answer", "answer", "--difficulty", "6"})
		err := cmd.Execute()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "--difficulty must be between 1 and 5")
	})

	t.Run("adds a card to the ledger", func(t *testing.T) {
		cfgPath := testutil.SetupTestConfig(t, t.TempDir())
		setConfigFile(t, cfgPath)

		cmd := newCardsAddCommand()
		cmd.SetArgs([]string{
			"What did the retro surface?",
			"--answer", "Flaky deploy pipeline",
			"--context", "sprint 14 retro",
			"--difficulty", "4",
		})
		require.NoError(t, cmd.Execute())

		repos := openLedgerForTest(t, cfgPath)
		cards, err := repos.cards.FindAll(context.Background())
		require.NoError(t, err)
		require.Len(t, cards, 1)
		assert.Equal(t, "What did the retro surface?", cards[0].Question)
		assert.Equal(t, "sprint 14 retro", cards[0].Context)
		assert.Equal(t, 4, cards[0].Difficulty)
		assert.Equal(t, 0, cards[0].Repetitions)
	})
}

func TestNewCardsImportCommand_RunE(t *testing.T) {
	t.Run("invalid config", func(t *testing.T) {
		setConfigFile(t, setupBrokenConfigFile(t))

		cmd := newCardsImportCommand()
		cmd.SetArgs([]string{"cards.yml"})
		err := cmd.Execute()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "configuration")
	})

	t.Run("imports cards with a fresh scheduling state", func(t *testing.T) {
		tmpDir := t.TempDir()
		cfgPath := testutil.SetupTestConfig(t, tmpDir)
		setConfigFile(t, cfgPath)

		importPath := filepath.Join(tmpDir, "cards.yml")
		// Scheduling fields in the file must be ignored on import.
		require.NoError(t, os.WriteFile(importPath, []byte(`cards:
  - question: Who approved the budget?
    answer: The steering committee
    difficulty: 2
    interval_days: 99
    repetitions: 7
  - question: When is the next review?
    answer: First Monday of the quarter
`), 0644))

		cmd := newCardsImportCommand()
		cmd.SetArgs([]string{importPath})
		require.NoError(t, cmd.Execute())

		repos := openLedgerForTest(t, cfgPath)
		cards, err := repos.cards.FindAll(context.Background())
		require.NoError(t, err)
		require.Len(t, cards, 2)
		for _, c := range cards {
			assert.Equal(t, 0, c.Interval)
			assert.Equal(t, 0, c.Repetitions)
		}
	})
}

func TestNewCardsExportCommand_RunE(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := testutil.SetupTestConfig(t, tmpDir)
	setConfigFile(t, cfgPath)

	repos := openLedgerForTest(t, cfgPath)
	c := testutil.NewCard(t, "What was the incident root cause?")
	require.NoError(t, repos.cards.Create(context.Background(), &c))

	exportPath := filepath.Join(tmpDir, "export.yml")
	cmd := newCardsExportCommand()
	cmd.SetArgs([]string{exportPath})
	require.NoError(t, cmd.Execute())

	exported, err := ledger.ReadCardFile(exportPath)
	require.NoError(t, err)
	require.Len(t, exported.Cards, 1)
	assert.Equal(t, c.ID, exported.Cards[0].ID)
}

func TestNewCardsListCommand_RunE(t *testing.T) {
	cfgPath := testutil.SetupTestConfig(t, t.TempDir())
	setConfigFile(t, cfgPath)

	cmd := newCardsListCommand()
	cmd.SetArgs([]string{})
	assert.NoError(t, cmd.Execute())
}
