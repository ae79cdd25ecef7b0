package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newFactionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "faction",
		Short: "Faction unlocks and production slot commands",
	}

	cmd.AddCommand(newFactionListCmd())
	cmd.AddCommand(newFactionUnlockCmd())
	cmd.AddCommand(newFactionPlaceCmd())
	cmd.AddCommand(newFactionClearCmd())
	cmd.AddCommand(newFactionClaimCmd())
	cmd.AddCommand(newFactionBonusCmd())

	return cmd
}

func newFactionListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List factions and whether they are unlocked",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result FactionList
			if err := client.Get("/api/v1/factions", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newFactionUnlockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unlock <faction-id>",
		Short: "Spend tokens to unlock a faction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result TokensResult
			if err := client.Post(fmt.Sprintf("/api/v1/factions/%s/unlock", args[0]), nil, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newFactionPlaceCmd() *cobra.Command {
	var slot int

	cmd := &cobra.Command{
		Use:   "place <faction-id>",
		Short: "Place an unlocked faction into a production slot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{"faction_id": args[0]}
			if slot > 0 {
				req["slot"] = slot
			}

			var result SlotResult
			if err := client.Post("/api/v1/slots", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&slot, "slot", 0, "Slot number (default: first empty slot)")

	return cmd
}

func slotArg(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid slot %q", arg)
	}
	return n, nil
}

func newFactionClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear <slot>",
		Short: "Remove the faction from a slot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := slotArg(args[0])
			if err != nil {
				return err
			}
			if err := client.Delete(fmt.Sprintf("/api/v1/slots/%d", n)); err != nil {
				return err
			}

			NewOutput(cfg.Output).PrintMessage(fmt.Sprintf("Slot %d cleared", n))
			return nil
		},
	}
}

func newFactionClaimCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "claim <slot>",
		Short: "Collect the card a slot has produced",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := slotArg(args[0])
			if err != nil {
				return err
			}

			var result ClaimResult
			if err := client.Post(fmt.Sprintf("/api/v1/slots/%d/claim", n), nil, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newFactionBonusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bonus",
		Short: "Claim the bonus cards earned from level-ups",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result BonusCards
			if err := client.Post("/api/v1/bonus-cards/claim", nil, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}
