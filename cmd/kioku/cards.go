package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kioku-srs/kioku/internal/card"
	"github.com/kioku-srs/kioku/internal/forecast"
	"github.com/kioku-srs/kioku/internal/ledger"
)

func newCardsCommand() *cobra.Command {
	cardsCommand := &cobra.Command{
		Use:   "cards",
		Short: "Manage flashcards in the ledger",
	}

	cardsCommand.AddCommand(
		newCardsAddCommand(),
		newCardsListCommand(),
		newCardsImportCommand(),
		newCardsExportCommand(),
	)

	return cardsCommand
}

func newCardsAddCommand() *cobra.Command {
	var answer, context, deckID string
	var difficulty int

	command := &cobra.Command{
		Use:   "add <question>",
		Short: "Add a single card with the default scheduling state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if answer == "" {
				return fmt.Errorf("--answer is required")
			}
			if difficulty < 1 || difficulty > 5 {
				return fmt.Errorf("--difficulty must be between 1 and 5")
			}

			repos, err := openLedger(cfg)
			if err != nil {
				return err
			}
			defer repos.Close()

			ctx := cmd.Context()
			c := card.NewCard(args[0], answer, time.Now())
			c.Context = context
			c.Difficulty = difficulty
			c.DeckID = deckID

			if err := repos.cards.Create(ctx, &c); err != nil {
				return err
			}
			if deckID != "" {
				if err := repos.decks.IncrementTotalCards(ctx, deckID, 1); err != nil {
					return err
				}
			}

			fmt.Printf("Added card %s\n", c.ID)
			return nil
		},
	}

	command.Flags().StringVar(&answer, "answer", "", "the card's answer")
	command.Flags().StringVar(&context, "context", "", "optional context shown with the question")
	command.Flags().StringVar(&deckID, "deck", "", "deck the card belongs to")
	command.Flags().IntVar(&difficulty, "difficulty", 3, "author-assigned difficulty (1-5)")

	return command
}

func newCardsListCommand() *cobra.Command {
	var deckID string
	var dueOnly bool

	command := &cobra.Command{
		Use:   "list",
		Short: "List cards with their scheduling state",
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

			now := time.Now()
			bold := color.New(color.Bold)
			for _, c := range cards {
				if dueOnly && !c.IsDue(now) {
					continue
				}
				_, _ = bold.Printf("%s\n", c.Question)
				fmt.Printf("  id=%s interval=%dd ease=%.2f reps=%d retention=%.0f%% next=%s\n",
					c.ID, c.Interval, c.EaseFactor, c.Repetitions,
					forecast.EstimateRetention(c, now)*100,
					c.NextReview.Format("2006-01-02"))
			}
			return nil
		},
	}

	command.Flags().StringVar(&deckID, "deck", "", "restrict to one deck")
	command.Flags().BoolVar(&dueOnly, "due", false, "only show cards that are due now")

	return command
}

func newCardsImportCommand() *cobra.Command {
	var deckID string

	command := &cobra.Command{
		Use:   "import <file.yml>",
		Short: "Import authored cards from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			cardFile, err := ledger.ReadCardFile(args[0])
			if err != nil {
				return err
			}

			repos, err := openLedger(cfg)
			if err != nil {
				return err
			}
			defer repos.Close()

			ctx := cmd.Context()
			now := time.Now()
			imported := 0
			for _, c := range cardFile.Cards {
				// Imported cards always start with the default scheduling
				// state, whatever the file says.
				fresh := card.NewCard(c.Question, c.Answer, now)
				fresh.Context = c.Context
				fresh.MeetingID = c.MeetingID
				if c.Difficulty >= 1 && c.Difficulty <= 5 {
					fresh.Difficulty = c.Difficulty
				}
				fresh.DeckID = deckID

				if err := repos.cards.Create(ctx, &fresh); err != nil {
					return err
				}
				imported++
			}

			if deckID != "" && imported > 0 {
				if err := repos.decks.IncrementTotalCards(ctx, deckID, imported); err != nil {
					return err
				}
			}

			fmt.Printf("Imported %d card(s)\n", imported)
			return nil
		},
	}

	command.Flags().StringVar(&deckID, "deck", "", "deck to import the cards into")

	return command
}

func newCardsExportCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "export <file.yml>",
		Short: "Export all cards with their scheduling state to a YAML file",
		Args:  cobra.ExactArgs(1),
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

			if err := ledger.WriteCardFile(args[0], ledger.CardFile{Cards: cards}); err != nil {
				return err
			}

			fmt.Printf("Exported %d card(s) to %s\n", len(cards), args[0])
			return nil
		},
	}

	return command
}
