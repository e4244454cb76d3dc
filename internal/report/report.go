// Package report renders study statistics as markdown and optionally
// converts the result to PDF.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mandolyte/mdtopdf"

	"github.com/kioku-srs/kioku/internal/forecast"
	"github.com/kioku-srs/kioku/internal/statistics"
)

// RenderMarkdown builds the study report shown by the stats command.
func RenderMarkdown(stats statistics.StudyStats, mastery forecast.MasteryStats, schedule []forecast.DayForecast) string {
	var b strings.Builder

	b.WriteString("# Study report\n\n")

	b.WriteString("## Overview\n\n")
	fmt.Fprintf(&b, "- Total cards: %d\n", stats.TotalCards)
	fmt.Fprintf(&b, "- Due today: %d\n", stats.DueToday)
	fmt.Fprintf(&b, "- New cards: %d\n", stats.NewCards)
	fmt.Fprintf(&b, "- Reviewed today: %d\n", stats.ReviewedToday)
	fmt.Fprintf(&b, "- Streak days: %d\n", stats.StreakDays)
	fmt.Fprintf(&b, "- Average retention: %.1f%%\n", stats.AverageRetention*100)
	fmt.Fprintf(&b, "- Total study time: %.0fs\n\n", stats.TotalStudyTime)

	b.WriteString("## Mastery\n\n")
	fmt.Fprintf(&b, "- Mature cards: %d of %d (%.1f%%)\n", mastery.MatureCards, mastery.TotalCards, mastery.MasteryPercentage)
	if mastery.AverageTimeToMastery != nil {
		fmt.Fprintf(&b, "- Average time to mastery: %.0f days\n", *mastery.AverageTimeToMastery)
	} else {
		b.WriteString("- Average time to mastery: unknown (no mature cards yet)\n")
	}
	b.WriteString("\n")

	if len(stats.CardsByDifficulty) > 0 {
		b.WriteString("## Cards by difficulty\n\n")
		for difficulty := 1; difficulty <= 5; difficulty++ {
			if count, ok := stats.CardsByDifficulty[difficulty]; ok {
				fmt.Fprintf(&b, "- Difficulty %d: %d\n", difficulty, count)
			}
		}
		b.WriteString("\n")
	}

	if len(schedule) > 0 {
		b.WriteString("## Upcoming workload\n\n")
		b.WriteString("| Date | Due | New | Review |\n")
		b.WriteString("| --- | --- | --- | --- |\n")
		for _, day := range schedule {
			fmt.Fprintf(&b, "| %s | %d | %d | %d |\n",
				day.Date.Format("2006-01-02"), day.DueCount, day.NewCount, day.ReviewCount)
		}
	}

	return b.String()
}

// WriteMarkdown writes the report to a markdown file, creating the parent
// directory if needed.
func WriteMarkdown(path, contents string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("os.MkdirAll(%s) > %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		return fmt.Errorf("os.WriteFile(%s) > %w", path, err)
	}
	return nil
}

// ConvertMarkdownToPDF converts a markdown file to PDF. The PDF is
// created next to the markdown file.
func ConvertMarkdownToPDF(markdownPath string) (string, error) {
	if !strings.HasSuffix(markdownPath, ".md") {
		return "", fmt.Errorf("input file must have .md extension: %s", markdownPath)
	}

	content, err := os.ReadFile(markdownPath)
	if err != nil {
		return "", fmt.Errorf("os.ReadFile(%s) > %w", markdownPath, err)
	}

	pdfPath := strings.TrimSuffix(markdownPath, ".md") + ".pdf"

	renderer := mdtopdf.NewPdfRenderer("P", "A4", pdfPath, "", nil, mdtopdf.LIGHT)
	if err := renderer.Process(content); err != nil {
		return "", fmt.Errorf("renderer.Process() > %w", err)
	}

	absPath, err := filepath.Abs(pdfPath)
	if err != nil {
		return pdfPath, nil
	}

	return absPath, nil
}
