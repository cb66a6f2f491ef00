package main

import (
	"context"

	"github.com/Veraticus/carbon-footprint/internal/model"
	"github.com/Veraticus/carbon-footprint/internal/news"
	"github.com/Veraticus/carbon-footprint/internal/storage"
	"github.com/Veraticus/carbon-footprint/internal/tips"
	"github.com/Veraticus/carbon-footprint/internal/tui"
	"github.com/Veraticus/carbon-footprint/internal/tui/themes"
	"github.com/spf13/cobra"
)

// storedFeed serves the dashboard news feed from the local database.
type storedFeed struct {
	store *storage.SQLiteStorage
}

func (f storedFeed) FetchAll(ctx context.Context) ([]model.NewsItem, error) {
	return f.store.ListNewsItems(ctx, 0)
}

func dashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Open the interactive dashboard",
		Long: `Open the terminal dashboard: the emissions calculator with tailored
tips, the climate news feed and the challenge leaderboard.

News and tips come from the local database and advisor. With --remote
both are requested from the footprint API at api.base_url.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			remote, _ := cmd.Flags().GetBool("remote")
			themeName, _ := cmd.Flags().GetString("theme")
			noMouse, _ := cmd.Flags().GetBool("no-mouse")

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := initStorage(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			var feed news.Fetcher = storedFeed{store: store}
			var requester tui.TipsRequester = tips.NewAdvisor()
			if remote {
				feed = news.NewClient(cfg.APIBaseURL, nil)
				requester = tips.NewRequester(cfg.APIBaseURL)
			}

			return tui.Run(cmd.Context(),
				tui.WithTheme(themes.GetTheme(themeName)),
				tui.WithNews(feed),
				tui.WithTips(requester),
				tui.WithLeaderboard(store),
				tui.WithTrips(store),
				tui.WithPageSize(cfg.NewsPageSize),
				tui.WithMouse(!noMouse),
			)
		},
	}

	cmd.Flags().Bool("remote", false, "Use the footprint API for news and tips")
	cmd.Flags().String("theme", "default", "Color theme (default, catppuccin-mocha)")
	cmd.Flags().Bool("no-mouse", false, "Disable mouse support")

	return cmd
}
