package cli

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

func newStateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Show the current player's game state",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result StateResult
			if err := client.Get("/api/v1/state", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newCardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "card",
		Short: "Card inventory commands",
	}

	cmd.AddCommand(newCardListCmd())
	cmd.AddCommand(newCardEnhanceCmd())
	cmd.AddCommand(newCardLockCmd(true))
	cmd.AddCommand(newCardLockCmd(false))
	cmd.AddCommand(newCardFuseCmd())

	return cmd
}

func newCardListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the cards in the inventory",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result CardList
			if err := client.Get("/api/v1/cards", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newCardEnhanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enhance <card-id>",
		Short: "Spend tokens to raise a card's level",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result EnhanceResult
			if err := client.Post(fmt.Sprintf("/api/v1/cards/%s/enhance", args[0]), nil, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newCardLockCmd(lock bool) *cobra.Command {
	use, short := "lock <card-id>", "Protect a card from fusion"
	if !lock {
		use, short = "unlock <card-id>", "Allow a card to be used in fusion again"
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := fmt.Sprintf("/api/v1/cards/%s/lock", args[0])
			method := http.MethodPost
			if !lock {
				method = http.MethodDelete
			}

			var result CardResult
			if err := client.Do(method, path, nil, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newCardFuseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fuse <card-id> <card-id> <card-id>",
		Short: "Fuse three cards of the same rarity into one of the next rarity",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result FuseResult
			if err := client.Post("/api/v1/cards/fuse", map[string][]string{"card_ids": args}, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}
