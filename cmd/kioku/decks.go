package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kioku-srs/kioku/internal/card"
)

func newDecksCommand() *cobra.Command {
	decksCommand := &cobra.Command{
		Use:   "decks",
		Short: "Manage card decks",
	}

	decksCommand.AddCommand(
		newDecksAddCommand(),
		newDecksListCommand(),
	)

	return decksCommand
}

func newDecksAddCommand() *cobra.Command {
	var description string

	command := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a new deck",
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

			d := card.NewDeck(args[0], time.Now())
			d.Description = description
			if err := repos.decks.Create(cmd.Context(), &d); err != nil {
				return err
			}

			fmt.Printf("Created deck %s (%s)\n", d.Name, d.ID)
			return nil
		},
	}

	command.Flags().StringVar(&description, "description", "", "deck description")

	return command
}

func newDecksListCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "list",
		Short: "List decks with their counters",
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

			decks, err := repos.decks.FindAll(cmd.Context())
			if err != nil {
				return err
			}

			for _, d := range decks {
				fmt.Printf("%s  %s  cards=%d mature=%d\n", d.ID, d.Name, d.TotalCards, d.MatureCards)
			}
			return nil
		},
	}

	return command
}
