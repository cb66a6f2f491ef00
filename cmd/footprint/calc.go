package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/Veraticus/carbon-footprint/internal/cli"
	"github.com/Veraticus/carbon-footprint/internal/emissions"
	"github.com/Veraticus/carbon-footprint/internal/model"
	"github.com/spf13/cobra"
)

// calcResult is the JSON shape of calc --json.
type calcResult struct {
	Distances         map[model.TransportMode]float64 `json:"distances"`
	Emissions         map[model.TransportMode]float64 `json:"emissions"`
	Tier              string                          `json:"tier"`
	TierLabel         string                          `json:"tier_label"`
	TotalDistance     float64                         `json:"total_distance"`
	TotalEmission     float64                         `json:"total_emission"`
	TotalSaved        float64                         `json:"total_saved"`
	ZeroEmissionShare float64                         `json:"zero_emission_share"`
	RingFraction      float64                         `json:"ring_fraction"`
	Score             int                             `json:"score"`
	TripID            int                             `json:"trip_id,omitempty"`
}

func calcCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Calculate journey emissions",
		Long: `Calculate the CO2 emitted by a set of journeys.

Distances are given in km per transport mode:
  footprint calc --car 12 --bus 5 --walking 2

Use --save to keep the result in your trip history.`,
		RunE: runCalc,
	}

	addDistanceFlags(cmd)
	cmd.Flags().Bool("json", false, "Output as JSON")
	cmd.Flags().Bool("save", false, "Save the journey to trip history")
	cmd.Flags().String("note", "", "Note stored with a saved trip")

	return cmd
}

func runCalc(cmd *cobra.Command, _ []string) error {
	agg, err := aggregatorFromFlags(cmd)
	if err != nil {
		return err
	}
	asJSON, _ := cmd.Flags().GetBool("json")
	save, _ := cmd.Flags().GetBool("save")
	note, _ := cmd.Flags().GetString("note")

	state := agg.State()
	tier := emissions.TierFor(state.ZeroEmissionShare)
	result := calcResult{
		Distances:         state.Distances,
		Emissions:         state.ModeEmissions,
		Tier:              tier.Name(),
		TierLabel:         tier.Label(),
		TotalDistance:     state.TotalDistance,
		TotalEmission:     state.TotalEmission,
		TotalSaved:        state.TotalSaved,
		ZeroEmissionShare: state.ZeroEmissionShare,
		RingFraction:      emissions.RingFraction(state.TotalDistance),
		Score:             emissions.Score(state),
	}

	if save {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := initStorage(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		trip, err := store.SaveTrip(cmd.Context(), agg.Snapshot(), note)
		if err != nil {
			return fmt.Errorf("failed to save trip: %w", err)
		}
		result.TripID = trip.ID
	}

	if asJSON {
		return writeJSON(cmd.OutOrStdout(), result)
	}
	return printCalc(cmd.OutOrStdout(), state, result)
}

func printCalc(w io.Writer, state emissions.State, result calcResult) error {
	heights := emissions.BarHeights(state)
	rows := make([][]string, 0, len(model.AllModes()))
	for _, mode := range model.AllModes() {
		bar := strings.Repeat("█", int(heights[mode]/5))
		rows = append(rows, []string{
			mode.Label(),
			fmt.Sprintf("%.1f km", state.Distances[mode]),
			fmt.Sprintf("%.2f kg", state.ModeEmissions[mode]),
			cli.SubtleStyle.Render(bar),
		})
	}

	tier := emissions.TierFor(state.ZeroEmissionShare)
	summary := strings.Join([]string{
		fmt.Sprintf("Total distance:  %s", cli.BoldStyle.Render(fmt.Sprintf("%.1f km", result.TotalDistance))),
		fmt.Sprintf("Total CO2:       %s", cli.BoldStyle.Render(fmt.Sprintf("%.2f kg", result.TotalEmission))),
		fmt.Sprintf("Saved vs car:    %s", cli.SuccessStyle.Render(fmt.Sprintf("%.2f kg", result.TotalSaved))),
		fmt.Sprintf("Zero emission:   %.0f%%", result.ZeroEmissionShare*100),
		fmt.Sprintf("Distance ring:   %.0f%% of %.0f km", result.RingFraction*100, emissions.RingFullDistance),
		fmt.Sprintf("Eco score:       %s", cli.StyleTier(tier.Color(), fmt.Sprintf("%d", result.Score))),
	}, "\n")

	out := []string{
		cli.FormatTitle(cli.GlobeIcon+" Journey emissions"),
		cli.RenderTable([]string{"Mode", "Distance", "CO2", ""}, rows),
		"",
		summary,
		"",
		cli.StyleTier(tier.Color(), tier.Label()),
	}
	if result.TripID > 0 {
		out = append(out, "", cli.FormatSuccess(fmt.Sprintf("Saved as trip #%d", result.TripID)))
	}

	_, err := fmt.Fprintln(w, strings.Join(out, "\n"))
	return err
}
