package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/carbon-footprint/internal/cli"
	"github.com/Veraticus/carbon-footprint/internal/common"
	"github.com/Veraticus/carbon-footprint/internal/gmail"
	"github.com/spf13/cobra"
	"google.golang.org/api/option"
)

// emailResult is the JSON shape of email --json.
type emailResult struct {
	gmail.Counts
	Total          int             `json:"total"`
	FootprintGrams float64         `json:"footprint_grams"`
	Recent         []gmail.Message `json:"recent,omitempty"`
}

func emailCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "email",
		Short: "Estimate the footprint of this month's email",
		Long: `Count the messages received and sent from your Gmail account since the
first day of the month and estimate their CO2.

The first run opens a browser sign-in; the token is stored at
gmail.token_file and refreshed automatically afterwards.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			recent, _ := cmd.Flags().GetInt("recent")
			asJSON, _ := cmd.Flags().GetBool("json")

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ts, err := gmail.TokenSource(cmd.Context(), cfg.Gmail)
			if err != nil {
				return common.NewUserError("Gmail sign-in failed. Check gmail.client_id and gmail.client_secret.", err)
			}
			counter, err := gmail.NewCounter(cmd.Context(), option.WithTokenSource(ts))
			if err != nil {
				return err
			}

			now := time.Now()
			counts, err := counter.CountSinceMonthStart(cmd.Context(), now)
			if err != nil {
				return fmt.Errorf("failed to count emails: %w", err)
			}
			result := emailResult{
				Counts:         counts,
				Total:          counts.Total(),
				FootprintGrams: counts.FootprintGrams(),
			}
			if recent > 0 {
				if result.Recent, err = counter.Recent(cmd.Context(), now, recent); err != nil {
					return fmt.Errorf("failed to list recent emails: %w", err)
				}
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), result)
			}

			lines := []string{
				fmt.Sprintf("Account:   %s", counts.Email),
				fmt.Sprintf("Since:     %s", counts.Since.Format(time.DateOnly)),
				fmt.Sprintf("Received:  %d", counts.Received),
				fmt.Sprintf("Sent:      %d", counts.Sent),
				fmt.Sprintf("Footprint: %s", cli.BoldStyle.Render(fmt.Sprintf("%.0f g CO2", result.FootprintGrams))),
			}
			out := cli.RenderBox(cli.MailIcon+" Email footprint", strings.Join(lines, "\n"))
			if len(result.Recent) > 0 {
				rows := make([][]string, 0, len(result.Recent))
				for _, m := range result.Recent {
					rows = append(rows, []string{m.From, m.Subject})
				}
				out += "\n" + cli.RenderTable([]string{"From", "Subject"}, rows)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}

	cmd.Flags().Int("recent", 0, "Also list this many recent inbox messages")
	cmd.Flags().Bool("json", false, "Output as JSON")

	return cmd
}
