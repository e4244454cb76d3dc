package scheduler

import (
	"sort"
	"time"

	"github.com/kioku-srs/kioku/internal/card"
)

// DefaultSessionLimit bounds a review session when the caller gives no
// explicit limit.
const DefaultSessionLimit = 20

// SelectSession filters the card population down to the cards due at the
// given time and ranks them for presentation: most overdue first, harder
// cards first among equally-overdue ones. At most limit cards are
// returned; the excess stays due for the next session. A deckID restricts
// the selection to that deck.
func SelectSession(cards []card.Card, now time.Time, limit int, deckID string) []card.Card {
	if limit <= 0 {
		return nil
	}

	due := make([]card.Card, 0, len(cards))
	for _, c := range cards {
		if deckID != "" && c.DeckID != deckID {
			continue
		}
		if c.IsDue(now) {
			due = append(due, c)
		}
	}

	sort.SliceStable(due, func(i, j int) bool {
		if !due[i].NextReview.Equal(due[j].NextReview) {
			return due[i].NextReview.Before(due[j].NextReview)
		}
		return due[i].Difficulty > due[j].Difficulty
	})

	if len(due) > limit {
		due = due[:limit]
	}
	return due
}

// SessionStats accumulates the running counters of one review session.
type SessionStats struct {
	Reviewed  int
	Correct   int
	TimeSpent float64
}

// Session holds the cards selected for one sitting plus the learner's
// position within them. It is owned by exactly one caller context and is
// not safe for concurrent use.
type Session struct {
	DeckID       string
	Cards        []card.Card
	CurrentIndex int
	Stats        SessionStats
}

// NewSession selects the due set and wraps it with fresh session state.
func NewSession(cards []card.Card, now time.Time, limit int, deckID string) *Session {
	return &Session{
		DeckID: deckID,
		Cards:  SelectSession(cards, now, limit, deckID),
	}
}

// Current returns the card at the session cursor, or false when the
// session is exhausted.
func (s *Session) Current() (card.Card, bool) {
	if s.CurrentIndex >= len(s.Cards) {
		return card.Card{}, false
	}
	return s.Cards[s.CurrentIndex], true
}

// Record advances the cursor and folds one review outcome into the
// session counters.
func (s *Session) Record(correct bool, timeSpent float64) {
	s.CurrentIndex++
	s.Stats.Reviewed++
	if correct {
		s.Stats.Correct++
	}
	s.Stats.TimeSpent += timeSpent
}

// Remaining returns the number of cards left in the session.
func (s *Session) Remaining() int {
	if s.CurrentIndex >= len(s.Cards) {
		return 0
	}
	return len(s.Cards) - s.CurrentIndex
}
