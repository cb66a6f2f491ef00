package main

import (
	"fmt"
	"strconv"

	"github.com/Veraticus/carbon-footprint/internal/cli"
	"github.com/spf13/cobra"
)

func tripsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trips",
		Short: "Show saved journeys",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List saved journeys, newest first",
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

			trips, err := store.ListTrips(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), trips)
			}
			if len(trips) == 0 {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No saved trips. Use footprint calc --save or press s in the dashboard."))
				return err
			}

			rows := make([][]string, 0, len(trips))
			var totalCO2 float64
			for _, trip := range trips {
				rows = append(rows, []string{
					strconv.Itoa(trip.ID),
					trip.RecordedAt.Local().Format("2006-01-02 15:04"),
					fmt.Sprintf("%.1f km", trip.Snapshot.TotalDistance),
					fmt.Sprintf("%.2f kg", trip.Snapshot.TotalEmission),
					trip.Note,
				})
				totalCO2 += trip.Snapshot.TotalEmission
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n%s\n",
				cli.RenderTable([]string{"ID", "Recorded", "Distance", "CO2", "Note"}, rows),
				cli.SubtleStyle.Render(fmt.Sprintf("%d trips, %.2f kg CO2", len(trips), totalCO2)))
			return err
		},
	}
	list.Flags().Int("limit", 20, "Number of trips to show (0 for all)")
	list.Flags().Bool("json", false, "Output as JSON")
	cmd.AddCommand(list)

	return cmd
}
