package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPvPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pvp",
		Short: "PvP matchmaking and battle history commands",
	}

	cmd.AddCommand(newPvPSearchCmd())
	cmd.AddCommand(newPvPStatusCmd())
	cmd.AddCommand(newPvPCancelCmd())
	cmd.AddCommand(newPvPAckCmd())
	cmd.AddCommand(newPvPHistoryCmd())
	cmd.AddCommand(newPvPMatchCmd())

	return cmd
}

func newPvPSearchCmd() *cobra.Command {
	var (
		cards []string
		mode  string
		genre string
		live  bool
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Queue a deck for a PvP battle",
		Long: `Queue a five card deck for a battle.

Without --live the opponent is a bot built from a rating-matched deck and
the result is available a few seconds later through "pvp status".
With --live the search waits for another player and falls back to a bot
once the server's live timeout passes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{
				"card_ids": cards,
				"mode":     mode,
				"genre":    genre,
				"live":     live,
			}

			var result PvPSession
			if err := client.Post("/api/v1/pvp/search", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&cards, "cards", nil, "Comma separated card IDs (required)")
	cmd.Flags().StringVar(&mode, "mode", "ranked", "Battle mode: ranked, story")
	cmd.Flags().StringVar(&genre, "genre", "balanced", "Battle genre: balanced, creative, analytical, speed, ethical")
	cmd.Flags().BoolVar(&live, "live", false, "Wait for a live opponent")
	_ = cmd.MarkFlagRequired("cards")

	return cmd
}

func newPvPStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current matchmaking session",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result PvPSession
			if err := client.Get("/api/v1/pvp/session", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newPvPCancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel",
		Short: "Cancel a search that has not been matched yet",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete("/api/v1/pvp/search"); err != nil {
				return err
			}

			NewOutput(cfg.Output).PrintMessage("Search cancelled")
			return nil
		},
	}
}

func newPvPAckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ack",
		Short: "Acknowledge a finished battle and return to idle",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result PvPSession
			if err := client.Post("/api/v1/pvp/session/ack", nil, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newPvPHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent matches",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result MatchList
			if err := client.Get(fmt.Sprintf("/api/v1/pvp/matches?limit=%d", limit), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum matches to show")

	return cmd
}

func newPvPMatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "match <match-id>",
		Short: "Show a single match with its rounds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Match
			if err := client.Get("/api/v1/pvp/matches/"+args[0], &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}
