package main

import (
	"fmt"
	"strconv"

	"github.com/Veraticus/carbon-footprint/internal/cli"
	"github.com/Veraticus/carbon-footprint/internal/common"
	"github.com/Veraticus/carbon-footprint/internal/model"
	"github.com/spf13/cobra"
)

func challengesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "challenges",
		Aliases: []string{"challenge"},
		Short:   "Manage sustainability challenges",
	}

	cmd.AddCommand(challengesListCmd())
	cmd.AddCommand(challengesAddCmd())
	cmd.AddCommand(challengesUpdateCmd())
	cmd.AddCommand(challengesDeleteCmd())
	cmd.AddCommand(challengesJoinCmd())
	cmd.AddCommand(challengesProgressCmd())

	return cmd
}

func challengesListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List challenges",
		RunE: func(cmd *cobra.Command, _ []string) error {
			activeOnly, _ := cmd.Flags().GetBool("active")
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

			challenges, err := store.ListChallenges(cmd.Context(), activeOnly)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), challenges)
			}
			if len(challenges) == 0 {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No challenges yet. Add one with footprint challenges add."))
				return err
			}

			rows := make([][]string, 0, len(challenges))
			for _, c := range challenges {
				status := "active"
				if !c.IsActive {
					status = "inactive"
				}
				rows = append(rows, []string{
					strconv.Itoa(c.ID),
					c.BadgeIcon + " " + c.Title,
					string(c.Type),
					fmt.Sprintf("%g %s", c.TargetValue, c.TargetUnit),
					strconv.Itoa(c.PointsReward),
					status,
				})
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatTitle(cli.TrophyIcon+" Challenges")+"\n"+
				cli.RenderTable([]string{"ID", "Challenge", "Type", "Target", "Points", "Status"}, rows))
			return err
		},
	}

	cmd.Flags().Bool("active", false, "Only list active challenges")
	cmd.Flags().Bool("json", false, "Output as JSON")

	return cmd
}

func challengesAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a challenge",
		Example: `  footprint challenges add "Car-free week" --target 7 --unit days --points 50
  footprint challenges add "Office cycles" --type company --target 500 --unit km`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			description, _ := cmd.Flags().GetString("description")
			challengeType, _ := cmd.Flags().GetString("type")
			target, _ := cmd.Flags().GetFloat64("target")
			unit, _ := cmd.Flags().GetString("unit")
			points, _ := cmd.Flags().GetInt("points")
			badge, _ := cmd.Flags().GetString("badge")

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := initStorage(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			challenge := &model.Challenge{
				Title:        args[0],
				Description:  description,
				Type:         model.ChallengeType(challengeType),
				TargetValue:  target,
				TargetUnit:   unit,
				PointsReward: points,
				BadgeIcon:    badge,
				IsActive:     true,
			}
			if err := store.CreateChallenge(cmd.Context(), challenge); err != nil {
				return common.NewUserError("Could not create challenge", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created challenge #%d: %s", challenge.ID, challenge.Title)))
			return err
		},
	}

	cmd.Flags().String("description", "", "Challenge description")
	cmd.Flags().String("type", string(model.ChallengeIndividual), "Challenge type (individual, team, company)")
	cmd.Flags().Float64("target", 1, "Target value")
	cmd.Flags().String("unit", "km", "Target unit")
	cmd.Flags().Int("points", 10, "Points awarded on completion")
	cmd.Flags().String("badge", model.DefaultBadgeIcon, "Badge icon")

	return cmd
}

func challengesUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a challenge",
		Example: `  footprint challenges update 3 --points 80
  footprint challenges update 3 --active=false`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "challenge")
			if err != nil {
				return err
			}
			update, err := challengeUpdateFromFlags(cmd)
			if err != nil {
				return err
			}
			if update.IsEmpty() {
				return common.NewUserError("Nothing to update. Pass at least one field flag.", nil)
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := initStorage(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.UpdateChallenge(cmd.Context(), id, update); err != nil {
				return common.NewUserError(fmt.Sprintf("Could not update challenge #%d", id), err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Updated challenge #%d", id)))
			return err
		},
	}

	cmd.Flags().String("title", "", "New title")
	cmd.Flags().String("description", "", "New description")
	cmd.Flags().String("type", "", "New type (individual, team, company)")
	cmd.Flags().Float64("target", 0, "New target value")
	cmd.Flags().String("unit", "", "New target unit")
	cmd.Flags().Int("points", 0, "New points reward")
	cmd.Flags().String("badge", "", "New badge icon")
	cmd.Flags().Bool("active", true, "Whether the challenge is active")

	return cmd
}

// challengeUpdateFromFlags maps the flags the user actually set.
func challengeUpdateFromFlags(cmd *cobra.Command) (model.ChallengeUpdate, error) {
	var update model.ChallengeUpdate
	flags := cmd.Flags()

	str := func(name string) (*string, error) {
		if !flags.Changed(name) {
			return nil, nil
		}
		v, err := flags.GetString(name)
		return &v, err
	}

	var err error
	if update.Title, err = str("title"); err != nil {
		return update, err
	}
	if update.Description, err = str("description"); err != nil {
		return update, err
	}
	if update.TargetUnit, err = str("unit"); err != nil {
		return update, err
	}
	if update.BadgeIcon, err = str("badge"); err != nil {
		return update, err
	}
	if flags.Changed("type") {
		v, err := flags.GetString("type")
		if err != nil {
			return update, err
		}
		t := model.ChallengeType(v)
		update.Type = &t
	}
	if flags.Changed("target") {
		v, err := flags.GetFloat64("target")
		if err != nil {
			return update, err
		}
		update.TargetValue = &v
	}
	if flags.Changed("points") {
		v, err := flags.GetInt("points")
		if err != nil {
			return update, err
		}
		update.PointsReward = &v
	}
	if flags.Changed("active") {
		v, err := flags.GetBool("active")
		if err != nil {
			return update, err
		}
		update.IsActive = &v
	}
	return update, nil
}

func challengesDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a challenge and its participation records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "challenge")
			if err != nil {
				return err
			}
			yes, _ := cmd.Flags().GetBool("yes")

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := initStorage(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			challenge, err := store.GetChallenge(cmd.Context(), id)
			if err != nil {
				return common.NewUserError(fmt.Sprintf("Challenge #%d not found", id), err)
			}

			if !yes {
				ok, err := cli.Confirm(cmd.Context(), cli.NewLineReader(cmd.InOrStdin()), cmd.OutOrStdout(),
					fmt.Sprintf("Delete challenge #%d %q?", id, challenge.Title))
				if err != nil {
					return err
				}
				if !ok {
					_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Nothing deleted"))
					return err
				}
			}

			if err := store.DeleteChallenge(cmd.Context(), id); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted challenge #%d", id)))
			return err
		},
	}

	cmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

func challengesJoinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "join <user-id> <challenge-id>",
		Short: "Enroll a user in a challenge",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, challengeID, err := parseUserChallenge(args)
			if err != nil {
				return err
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := initStorage(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.JoinChallenge(cmd.Context(), userID, challengeID); err != nil {
				return common.NewUserError("Could not join challenge", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("User #%d joined challenge #%d", userID, challengeID)))
			return err
		},
	}
}

func challengesProgressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "progress <user-id> <challenge-id> <value>",
		Short: "Record a user's progress in a challenge",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, challengeID, err := parseUserChallenge(args[:2])
			if err != nil {
				return err
			}
			progress, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return common.NewUserError(fmt.Sprintf("Invalid progress value %q", args[2]), err)
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := initStorage(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.UpdateProgress(cmd.Context(), userID, challengeID, progress); err != nil {
				return common.NewUserError("Could not record progress", err)
			}
			challenge, err := store.GetChallenge(cmd.Context(), challengeID)
			if err != nil {
				return err
			}

			msg := fmt.Sprintf("Progress %g/%g %s", progress, challenge.TargetValue, challenge.TargetUnit)
			if progress >= challenge.TargetValue {
				msg += " " + challenge.BadgeIcon + " completed!"
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(msg))
			return err
		},
	}
}

func parseID(arg, what string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, common.NewUserError(fmt.Sprintf("Invalid %s id %q", what, arg), common.ErrInvalidInput)
	}
	return id, nil
}

func parseUserChallenge(args []string) (userID, challengeID int, err error) {
	if userID, err = parseID(args[0], "user"); err != nil {
		return 0, 0, err
	}
	if challengeID, err = parseID(args[1], "challenge"); err != nil {
		return 0, 0, err
	}
	return userID, challengeID, nil
}
