package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/Veraticus/carbon-footprint/internal/cli"
	"github.com/Veraticus/carbon-footprint/internal/model"
	"github.com/Veraticus/carbon-footprint/internal/tips"
	"github.com/spf13/cobra"
)

type tipsRequester interface {
	RequestTailoredTips(ctx context.Context, snapshot model.Snapshot) tips.Outcome
}

func tipsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tips",
		Short: "Get tailored tips for greener travel",
		Long: `Get tips for reducing the emissions of a set of journeys.

By default tips are generated locally. With --remote the journeys are sent
to the footprint API at api.base_url instead.`,
		RunE: runTips,
	}

	addDistanceFlags(cmd)
	cmd.Flags().Bool("remote", false, "Ask the footprint API instead of the local advisor")
	cmd.Flags().Bool("json", false, "Output as JSON")

	return cmd
}

func runTips(cmd *cobra.Command, _ []string) error {
	agg, err := aggregatorFromFlags(cmd)
	if err != nil {
		return err
	}
	remote, _ := cmd.Flags().GetBool("remote")
	asJSON, _ := cmd.Flags().GetBool("json")

	var requester tipsRequester = tips.NewAdvisor()
	if remote {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		requester = tips.NewRequester(cfg.APIBaseURL)
	}

	outcome := requester.RequestTailoredTips(cmd.Context(), agg.Snapshot())
	if asJSON {
		return writeJSON(cmd.OutOrStdout(), tips.Response{Tips: outcome.Tips})
	}

	var b strings.Builder
	b.WriteString(cli.FormatTitle(cli.LeafIcon+" Tailored tips"))
	b.WriteString("\n")
	switch outcome.Reason {
	case tips.ReasonTips:
		for i, tip := range outcome.Tips {
			fmt.Fprintf(&b, "%d. %s\n", i+1, tip)
		}
	case tips.ReasonNoTips:
		b.WriteString(cli.FormatInfo(outcome.Tips[0]) + "\n")
	default:
		b.WriteString(cli.FormatWarning(outcome.Tips[0]) + "\n")
	}

	_, err = fmt.Fprint(cmd.OutOrStdout(), b.String())
	return err
}
