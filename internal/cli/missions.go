package cli

import (
	"github.com/spf13/cobra"
)

func newMissionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mission",
		Short: "Daily mission commands",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Show today's missions and progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result MissionList
			if err := client.Get("/api/v1/missions", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "claim <mission-id>",
		Short: "Claim the reward of a completed mission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result MissionClaim
			if err := client.Post("/api/v1/missions/"+args[0]+"/claim", nil, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	})

	return cmd
}
