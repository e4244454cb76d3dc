// Package scheduler implements the SM-2 style interval scheduler and the
// due-set selector. Every function here is pure: the caller owns loading
// and persisting card state.
package scheduler

import (
	"math"
	"time"

	"github.com/kioku-srs/kioku/internal/card"
)

// Result is the scheduling state computed for a single review.
type Result struct {
	Interval    int
	EaseFactor  float64
	Repetitions int
	NextReview  time.Time

	// MaturityCrossed is set when this review pushed the interval past the
	// maturity threshold for the first time. The caller applies it to the
	// owning deck's mature-card counter.
	MaturityCrossed bool
}

// Review computes the next scheduling state for a card given the learner's
// quality rating. Ratings outside [0, 5] are clamped, never rejected. The
// only error is a card whose stored state violates the model invariants.
func Review(c card.Card, rating int, now time.Time) (Result, error) {
	if err := c.ValidateState(); err != nil {
		return Result{}, err
	}

	if rating < 0 {
		rating = 0
	}
	if rating > 5 {
		rating = 5
	}

	var interval, repetitions int
	if rating < 3 {
		// A lapse always drops the card to a 1-day relearn interval.
		repetitions = 0
		interval = 1
	} else {
		repetitions = c.Repetitions + 1
		switch repetitions {
		case 1:
			interval = 1
		case 2:
			interval = 6
		default:
			interval = int(math.Round(float64(c.Interval) * c.EaseFactor))
		}
	}
	if interval > card.MaxIntervalDays {
		interval = card.MaxIntervalDays
	}

	// The easiness factor update applies on every review, success or
	// failure. Full precision in the computation, two decimals at rest.
	q := float64(rating)
	ease := c.EaseFactor + (0.1 - (5-q)*(0.08+(5-q)*0.02))
	if ease < card.MinEaseFactor {
		ease = card.MinEaseFactor
	}
	ease = math.Round(ease*100) / 100

	return Result{
		Interval:        interval,
		EaseFactor:      ease,
		Repetitions:     repetitions,
		NextReview:      now.AddDate(0, 0, interval),
		MaturityCrossed: interval > card.MatureIntervalDays && c.Interval <= card.MatureIntervalDays,
	}, nil
}
