package main

import (
	"fmt"
	"strconv"

	"github.com/Veraticus/carbon-footprint/internal/cli"
	"github.com/spf13/cobra"
)

var medals = map[int]string{1: "🥇", 2: "🥈", 3: "🥉"}

func leaderboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the challenge leaderboard",
		Long:  `Rank participants by the points of the challenges they have completed.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			asJSON, _ := cmd.Flags().GetBool("json")

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := initStorage(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			entries, err := store.Leaderboard(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), entries)
			}
			if len(entries) == 0 {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No participants yet. Join a challenge to get on the board."))
				return err
			}

			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rank := strconv.Itoa(e.Rank)
				if medal, ok := medals[e.Rank]; ok {
					rank = medal
				}
				rows = append(rows, []string{rank, e.Name, strconv.Itoa(e.Points), strconv.Itoa(e.Completed)})
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatTitle(cli.TrophyIcon+" Leaderboard")+"\n"+
				cli.RenderTable([]string{"Rank", "Name", "Points", "Completed"}, rows))
			return err
		},
	}

	cmd.Flags().Int("limit", 10, "Number of entries to show (0 for all)")
	cmd.Flags().Bool("json", false, "Output as JSON")

	return cmd
}
