package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kioku-srs/kioku/internal/forecast"
	"github.com/kioku-srs/kioku/internal/report"
	"github.com/kioku-srs/kioku/internal/statistics"
)

const recentReviewSample = 1000

func newStatsCommand() *cobra.Command {
	var exportPDF bool

	command := &cobra.Command{
		Use:   "stats",
		Short: "Show study statistics and mastery progress",
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

			ctx := cmd.Context()
			cards, err := repos.cards.FindAll(ctx)
			if err != nil {
				return err
			}
			events, err := repos.reviews.FindRecent(ctx, recentReviewSample)
			if err != nil {
				return err
			}

			now := time.Now()
			stats := statistics.ComputeStudyStats(cards, events, now, 24*time.Hour)
			mastery := forecast.ComputeMasteryStats(cards)
			schedule := forecast.Schedule(cards, now, cfg.Session.ForecastDays)

			bold := color.New(color.Bold)
			_, _ = bold.Println("Study statistics")
			fmt.Printf("  Total cards:       %d\n", stats.TotalCards)
			fmt.Printf("  Due today:         %d\n", stats.DueToday)
			fmt.Printf("  New cards:         %d\n", stats.NewCards)
			fmt.Printf("  Reviewed today:    %d\n", stats.ReviewedToday)
			fmt.Printf("  Streak days:       %d\n", stats.StreakDays)
			fmt.Printf("  Average retention: %.1f%%\n", stats.AverageRetention*100)
			fmt.Printf("  Total study time:  %.0fs\n", stats.TotalStudyTime)

			_, _ = bold.Println("Mastery")
			fmt.Printf("  Mature cards: %d of %d (%.1f%%)\n",
				mastery.MatureCards, mastery.TotalCards, mastery.MasteryPercentage)
			if mastery.AverageTimeToMastery != nil {
				fmt.Printf("  Average time to mastery: %.0f days\n", *mastery.AverageTimeToMastery)
			} else {
				fmt.Println("  Average time to mastery: unknown (no mature cards yet)")
			}

			if !exportPDF {
				return nil
			}

			markdown := report.RenderMarkdown(stats, mastery, schedule)
			markdownPath := filepath.Join(cfg.Outputs.ReportDirectory,
				fmt.Sprintf("study-report-%s.md", now.Format("2006-01-02")))
			if err := report.WriteMarkdown(markdownPath, markdown); err != nil {
				return err
			}
			pdfPath, err := report.ConvertMarkdownToPDF(markdownPath)
			if err != nil {
				return err
			}
			fmt.Printf("Report written to %s\n", pdfPath)
			return nil
		},
	}

	command.Flags().BoolVar(&exportPDF, "pdf", false, "also export the report as PDF")

	return command
}
