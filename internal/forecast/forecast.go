// Package forecast projects upcoming review workload and classifies card
// maturity. Like the scheduler, everything here is a pure function over
// in-memory records.
package forecast

import (
	"math"
	"time"

	"github.com/kioku-srs/kioku/internal/card"
)

// DefaultForecastDays is the rolling window projected by Schedule when the
// caller gives no explicit horizon.
const DefaultForecastDays = 7

// EstimateRetention models the momentary recall probability of a card
// with an exponential forgetting curve: the longer the interval and the
// higher the ease, the flatter the decay. A card that was never reviewed
// has no measurable retention and returns 0.
func EstimateRetention(c card.Card, now time.Time) float64 {
	if c.LastReviewed == nil {
		return 0
	}

	stability := float64(c.Interval) * c.EaseFactor
	if stability <= 0 {
		return 0
	}

	daysSinceReview := now.Sub(*c.LastReviewed).Hours() / 24
	retention := math.Exp(-daysSinceReview / stability)
	if retention > 1 {
		retention = 1
	}
	return math.Round(retention*100) / 100
}

// MasteryStats summarises how much of the card population has matured.
type MasteryStats struct {
	MatureCards       int
	TotalCards        int
	MasteryPercentage float64

	// AverageTimeToMastery estimates the days a card took to mature, from
	// the mean repetition count of mature cards. It is nil when no card
	// has matured yet; there is no meaningful default.
	AverageTimeToMastery *float64
}

// ComputeMasteryStats classifies cards against the maturity threshold.
func ComputeMasteryStats(cards []card.Card) MasteryStats {
	stats := MasteryStats{TotalCards: len(cards)}

	repetitionSum := 0
	reviewedMature := 0
	for _, c := range cards {
		if !c.IsMature() {
			continue
		}
		stats.MatureCards++
		if c.Repetitions > 0 {
			repetitionSum += c.Repetitions
			reviewedMature++
		}
	}

	if stats.TotalCards > 0 {
		pct := float64(stats.MatureCards) / float64(stats.TotalCards) * 100
		stats.MasteryPercentage = math.Round(pct*10) / 10
	}
	if reviewedMature > 0 {
		avg := math.Round(float64(repetitionSum) / float64(reviewedMature) * 1.5)
		stats.AverageTimeToMastery = &avg
	}

	return stats
}

// DayForecast is the projected workload for one calendar day.
type DayForecast struct {
	Date        time.Time
	DueCount    int
	NewCount    int
	ReviewCount int
}

// Schedule partitions cards by the calendar day their next review falls
// on, over the given number of days starting today. It only reads the
// current nextReview values; it does not simulate future reviews.
func Schedule(cards []card.Card, now time.Time, days int) []DayForecast {
	if days <= 0 {
		days = DefaultForecastDays
	}

	schedule := make([]DayForecast, 0, days)
	for i := 0; i < days; i++ {
		day := truncateToDay(now.AddDate(0, 0, i))
		entry := DayForecast{Date: day}

		for _, c := range cards {
			if !truncateToDay(c.NextReview.In(now.Location())).Equal(day) {
				continue
			}
			entry.DueCount++
			if c.Repetitions == 0 {
				entry.NewCount++
			} else {
				entry.ReviewCount++
			}
		}

		schedule = append(schedule, entry)
	}
	return schedule
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
