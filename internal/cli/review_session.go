// Package cli implements the interactive review session loop.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/kioku-srs/kioku/internal/forecast"
	"github.com/kioku-srs/kioku/internal/review"
	"github.com/kioku-srs/kioku/internal/scheduler"
)

// errEnd signals the normal end of a session loop.
var errEnd = errors.New("end of session")

//go:generate mockgen -source=review_session.go -destination=../mocks/cli/mock_session.go -package=mock_cli Session Submitter

// Session is one iteration of an interactive loop.
type Session interface {
	Session(ctx context.Context) error
}

// Submitter records the outcome of reviewing one card.
type Submitter interface {
	Submit(ctx context.Context, cardID string, rating int, timeSpent float64) (*review.Outcome, error)
}

// ReviewSessionCLI walks the learner through the due cards of one
// session, reading ratings from stdin and submitting them to the review
// service.
type ReviewSessionCLI struct {
	submitter    Submitter
	session      *scheduler.Session
	stdinReader  *bufio.Reader
	stdoutWriter io.Writer
	bold         *color.Color
	italic       *color.Color
	now          func() time.Time
}

// NewReviewSessionCLI creates a review CLI over an already-selected
// session.
func NewReviewSessionCLI(submitter Submitter, session *scheduler.Session) *ReviewSessionCLI {
	return &ReviewSessionCLI{
		submitter:    submitter,
		session:      session,
		stdinReader:  bufio.NewReader(os.Stdin),
		stdoutWriter: os.Stdout,
		bold:         color.New(color.Bold),
		italic:       color.New(color.Italic),
		now:          time.Now,
	}
}

// Run drives the session loop until it ends, fails, or the learner
// interrupts it.
func (cli *ReviewSessionCLI) Run(ctx context.Context, session Session) error {
	ctx, cancel := signal.NotifyContext(
		ctx,
		os.Interrupt,
	)
	defer cancel()

	errCh := make(chan error)
	go func() {
		defer close(errCh)

	LOOP:
		for {
			select {
			case <-ctx.Done():
				break LOOP
			default:
			}

			if err := session.Session(ctx); err != nil {
				if errors.Is(err, errEnd) {
					break
				}
				errCh <- err
				break
			}
		}
	}()
	select {
	case <-ctx.Done():
		fmt.Fprintln(cli.stdoutWriter, "Received interrupt signal, exiting...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("error: %w", err)
		}
	}
	return nil
}

// Session shows one due card, reads the learner's rating, and submits the
// review. Returns errEnd when the session is exhausted or the learner
// quits.
func (cli *ReviewSessionCLI) Session(ctx context.Context) error {
	current, ok := cli.session.Current()
	if !ok {
		cli.printSummary()
		return errEnd
	}

	fmt.Fprintf(cli.stdoutWriter, "Card %d of %d\n", cli.session.CurrentIndex+1, len(cli.session.Cards))
	_, _ = cli.bold.Fprintf(cli.stdoutWriter, "Q: %s\n", current.Question)
	if current.Context != "" {
		_, _ = cli.italic.Fprintf(cli.stdoutWriter, "   (%s)\n", current.Context)
	}

	started := cli.now()
	fmt.Fprint(cli.stdoutWriter, "Press Enter to reveal the answer...")
	if _, err := cli.stdinReader.ReadString('\n'); err != nil {
		return fmt.Errorf("error reading input: %w", err)
	}

	_, _ = cli.bold.Fprintf(cli.stdoutWriter, "A: %s\n", current.Answer)

	rating, quit, err := cli.readRating()
	if err != nil {
		return err
	}
	if quit {
		cli.printSummary()
		return errEnd
	}

	timeSpent := cli.now().Sub(started).Seconds()
	if timeSpent <= 0 {
		timeSpent = 1
	}

	outcome, err := cli.submitter.Submit(ctx, current.ID, rating, timeSpent)
	if err != nil {
		return fmt.Errorf("submitter.Submit(%s) > %w", current.ID, err)
	}

	cli.session.Record(outcome.Event.WasCorrect, timeSpent)

	fmt.Fprintf(cli.stdoutWriter, "Next review in %d day(s), retention now %.0f%%\n\n",
		outcome.Card.Interval,
		forecast.EstimateRetention(outcome.Card, cli.now())*100)
	if outcome.MaturityCrossed {
		fmt.Fprintln(cli.stdoutWriter, "This card just matured!")
	}
	return nil
}

// readRating prompts until it gets a 0-5 rating or a quit request.
func (cli *ReviewSessionCLI) readRating() (int, bool, error) {
	for {
		fmt.Fprint(cli.stdoutWriter, "How well did you recall it? [0-5, q to quit]: ")
		line, err := cli.stdinReader.ReadString('\n')
		if err != nil {
			return 0, false, fmt.Errorf("error reading input: %w", err)
		}

		line = strings.TrimSpace(line)
		if strings.EqualFold(line, "q") {
			return 0, true, nil
		}

		rating, err := strconv.Atoi(line)
		if err != nil || rating < 0 || rating > 5 {
			fmt.Fprintln(cli.stdoutWriter, "Please enter a number between 0 and 5.")
			continue
		}
		return rating, false, nil
	}
}

func (cli *ReviewSessionCLI) printSummary() {
	stats := cli.session.Stats
	if stats.Reviewed == 0 {
		fmt.Fprintln(cli.stdoutWriter, "No cards reviewed.")
		return
	}
	fmt.Fprintf(cli.stdoutWriter, "Session finished: %d reviewed, %d correct, %.0fs spent\n",
		stats.Reviewed, stats.Correct, stats.TimeSpent)
}
