// Package statistics computes learner-facing aggregate metrics from the
// card population and the review event log. All functions are read-only
// projections.
package statistics

import (
	"time"

	"github.com/kioku-srs/kioku/internal/card"
)

// retentionSampleSize bounds the number of recent review events folded
// into the retention and study-time metrics.
const retentionSampleSize = 1000

// StudyStats is the aggregate view shown on the study dashboard.
type StudyStats struct {
	TotalCards    int
	DueToday      int
	NewCards      int
	ReviewedToday int

	// StreakDays is a coarse proxy derived from today's review count, not
	// a calendar-consecutive streak. An exact streak would need a per-day
	// review ledger.
	StreakDays int

	AverageRetention  float64
	TotalStudyTime    float64
	CardsByDifficulty map[int]int
}

// ComputeStudyStats folds the card population and recent review events
// into a StudyStats. Events must be ordered newest first; only the most
// recent 1000 feed the retention and study-time metrics, while the window
// count considers every event passed in.
func ComputeStudyStats(cards []card.Card, events []card.Review, now time.Time, window time.Duration) StudyStats {
	stats := StudyStats{
		TotalCards:        len(cards),
		CardsByDifficulty: make(map[int]int),
	}

	for _, c := range cards {
		if c.IsDue(now) {
			stats.DueToday++
		}
		// A lapsed card resets to repetitions 0 and needs a fresh learning
		// pass, so it counts as new again.
		if c.Repetitions == 0 {
			stats.NewCards++
		}
		stats.CardsByDifficulty[c.Difficulty]++
	}

	cutoff := now.Add(-window)
	for _, e := range events {
		if e.ReviewedAt.After(cutoff) {
			stats.ReviewedToday++
		}
	}
	stats.StreakDays = stats.ReviewedToday / 10

	sample := events
	if len(sample) > retentionSampleSize {
		sample = sample[:retentionSampleSize]
	}
	if len(sample) > 0 {
		correct := 0
		for _, e := range sample {
			if e.WasCorrect {
				correct++
			}
			stats.TotalStudyTime += e.TimeSpent
		}
		stats.AverageRetention = float64(correct) / float64(len(sample))
	}

	return stats
}
