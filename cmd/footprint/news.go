package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Veraticus/carbon-footprint/internal/cli"
	"github.com/Veraticus/carbon-footprint/internal/common"
	"github.com/Veraticus/carbon-footprint/internal/model"
	"github.com/Veraticus/carbon-footprint/internal/news"
	"github.com/spf13/cobra"
)

func newsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "news",
		Short: "Manage the climate news feed",
		Long:  `List stored news, import feed files and sync upstream feeds.`,
	}

	cmd.AddCommand(newsListCmd())
	cmd.AddCommand(newsImportCmd())
	cmd.AddCommand(newsSyncCmd())

	return cmd
}

func newsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored news, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			category, _ := cmd.Flags().GetString("category")
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

			items, err := store.ListNewsItems(cmd.Context(), 0)
			if err != nil {
				return err
			}
			items = filterNews(items, category, limit)

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), news.FeedResponse{Items: items})
			}
			if len(items) == 0 {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo(news.MessageNoNews))
				return err
			}

			rows := make([][]string, 0, len(items))
			for _, card := range news.RenderCards(items) {
				rows = append(rows, []string{card.DateLabel, card.Category, card.Source, card.Title})
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatTitle(cli.NewsIcon+" Climate news")+"\n"+
				cli.RenderTable([]string{"Date", "Category", "Source", "Title"}, rows))
			return err
		},
	}

	cmd.Flags().Int("limit", 20, "Maximum number of items to show (0 for all)")
	cmd.Flags().String("category", "", "Only show items in this category")
	cmd.Flags().Bool("json", false, "Output as JSON")

	return cmd
}

func filterNews(items []model.NewsItem, category string, limit int) []model.NewsItem {
	out := make([]model.NewsItem, 0, len(items))
	for _, item := range items {
		if item.MatchesCategory(category) {
			out = append(out, item)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func newsImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>...",
		Short: "Import news from feed files",
		Long: `Import news items from JSON feed files shaped like the news API
response, {"items": [...]}. Items without a title or link are skipped;
items already stored are updated in place.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := initStorage(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			progress := cli.NewProgress(cmd.ErrOrStderr(), len(args), "Importing news")
			var total news.SyncResult
			var failed []string
			for _, path := range args {
				data, err := os.ReadFile(path) // #nosec G304 - user supplied import file
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", path, err)
				}

				result, err := news.Import(cmd.Context(), store, data)
				if err != nil {
					slog.Warn("Failed to import feed file", "file", path, "error", err)
					failed = append(failed, filepath.Base(path))
				}
				total.Fetched += result.Fetched
				total.Stored += result.Stored
				total.Skipped += result.Skipped
				progress.Step(filepath.Base(path))
			}
			progress.Finish()

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Imported %d items (%d skipped)", total.Stored, total.Skipped)))
			if len(failed) > 0 {
				_, _ = fmt.Fprintln(out, cli.FormatWarning("Could not import: "+strings.Join(failed, ", ")))
				return common.NewUserError(fmt.Sprintf("%d of %d files failed", len(failed), len(args)), nil)
			}
			return nil
		},
	}
}

func newsSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync [url]...",
		Short: "Sync news from upstream feeds",
		Long: `Fetch every configured upstream feed (news.sources, or the URLs given
as arguments) and store the items. Requests are spaced by news.sync_rate.
A failing feed is reported and skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			sources := args
			if len(sources) == 0 {
				sources = cfg.NewsSources
			}
			if len(sources) == 0 {
				return common.NewUserError("No news sources configured. Set news.sources or pass feed URLs.", common.ErrMissingConfig)
			}

			store, err := initStorage(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			handler := cli.NewInterruptHandler(cmd.OutOrStdout(), "News sync").
				WithResumeHint("Items stored so far are kept. Run footprint news sync again to continue.")
			ctx := handler.HandleInterrupts(cmd.Context())

			progress := cli.NewProgress(cmd.ErrOrStderr(), len(sources), "Syncing news")
			syncer := news.NewSyncer(store,
				news.WithRateLimit(cfg.NewsSyncRate),
				news.WithProgress(progress.Step),
			)

			result, err := syncer.Sync(ctx, sources)
			if err != nil {
				if handler.WasInterrupted() {
					return nil
				}
				return err
			}
			progress.Finish()

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf(
				"Fetched %d items, stored %d, skipped %d", result.Fetched, result.Stored, result.Skipped)))

			failedSources := make([]string, 0, len(result.Failed))
			for source := range result.Failed {
				failedSources = append(failedSources, source)
			}
			sort.Strings(failedSources)
			for _, source := range failedSources {
				_, _ = fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("%s: %v", source, result.Failed[source])))
			}
			return nil
		},
	}

	return cmd
}
