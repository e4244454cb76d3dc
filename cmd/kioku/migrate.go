package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kioku-srs/kioku/internal/database"
)

func newMigrateCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			db, err := database.Open(cfg.Database)
			if err != nil {
				return err
			}
			defer func() {
				_ = db.Close()
			}()

			if err := database.Migrate(db); err != nil {
				return err
			}

			fmt.Println("Migrations applied")
			return nil
		},
	}

	return command
}
