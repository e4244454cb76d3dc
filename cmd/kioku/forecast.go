package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kioku-srs/kioku/internal/forecast"
)

func newForecastCommand() *cobra.Command {
	var days int

	command := &cobra.Command{
		Use:   "forecast",
		Short: "Project the upcoming review workload",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			repos, err := openLedger(cfg)
			if err != nil {
				return err
			}
			defer repos.Close()

			cards, err := repos.cards.FindAll(cmd.Context())
			if err != nil {
				return err
			}

			if days <= 0 {
				days = cfg.Session.ForecastDays
			}
			schedule := forecast.Schedule(cards, time.Now(), days)

			fmt.Println("Date        Due  New  Review")
			for _, day := range schedule {
				fmt.Printf("%s  %3d  %3d  %6d\n",
					day.Date.Format("2006-01-02"), day.DueCount, day.NewCount, day.ReviewCount)
			}
			return nil
		},
	}

	command.Flags().IntVar(&days, "days", 0, "forecast horizon in days (defaults to config)")

	return command
}
