package main

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/kioku-srs/kioku/internal/config"
	"github.com/kioku-srs/kioku/internal/database"
	"github.com/kioku-srs/kioku/internal/ledger"
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// repositories bundles the ledger repositories opened for one command.
type repositories struct {
	db      *sqlx.DB
	cards   *ledger.DBCardRepository
	reviews *ledger.DBReviewRepository
	decks   *ledger.DBDeckRepository
}

func openLedger(cfg *config.Config) (*repositories, error) {
	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("database.Open() > %w", err)
	}
	if err := database.Migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("database.Migrate() > %w", err)
	}

	return &repositories{
		db:      db,
		cards:   ledger.NewDBCardRepository(db),
		reviews: ledger.NewDBReviewRepository(db),
		decks:   ledger.NewDBDeckRepository(db),
	}, nil
}

func (r *repositories) Close() {
	_ = r.db.Close()
}
