package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRankingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rankings",
		Short: "Leaderboard commands",
	}

	cmd.AddCommand(newRankingsTopCmd())
	cmd.AddCommand(newRankingsMeCmd())

	return cmd
}

func newRankingsTopCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "top",
		Short: "Show the top of the current season's leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Rankings
			if err := client.Get(fmt.Sprintf("/api/v1/rankings?limit=%d", limit), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Number of entries")

	return cmd
}

func newRankingsMeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the current player's rank, tier and season reward",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Standing
			if err := client.Get("/api/v1/rankings/me", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}
