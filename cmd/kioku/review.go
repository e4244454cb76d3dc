package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kioku-srs/kioku/internal/card"
	"github.com/kioku-srs/kioku/internal/cli"
	"github.com/kioku-srs/kioku/internal/review"
	"github.com/kioku-srs/kioku/internal/scheduler"
)

func newReviewCommand() *cobra.Command {
	var deckID string
	var limit int

	command := &cobra.Command{
		Use:   "review",
		Short: "Start an interactive review session over the due cards",
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
			var cards []card.Card
			if deckID != "" {
				cards, err = repos.cards.FindByDeck(ctx, deckID)
			} else {
				cards, err = repos.cards.FindAll(ctx)
			}
			if err != nil {
				return err
			}

			if limit <= 0 {
				limit = cfg.Session.Limit
			}
			session := scheduler.NewSession(cards, time.Now(), limit, deckID)
			if len(session.Cards) == 0 {
				fmt.Println("No cards due. Come back later!")
				return nil
			}

			service := review.NewService(repos.cards, repos.reviews, repos.decks)
			sessionCLI := cli.NewReviewSessionCLI(service, session)

			fmt.Printf("Starting review session with %d card(s)\n\n", len(session.Cards))
			return sessionCLI.Run(ctx, sessionCLI)
		},
	}

	command.Flags().StringVar(&deckID, "deck", "", "restrict the session to one deck")
	command.Flags().IntVar(&limit, "limit", 0, "maximum cards per session (defaults to config)")

	return command
}
