// Package main runs the dashboard against canned data, without a database
// or API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/Veraticus/carbon-footprint/internal/emissions"
	"github.com/Veraticus/carbon-footprint/internal/model"
	"github.com/Veraticus/carbon-footprint/internal/tips"
	"github.com/Veraticus/carbon-footprint/internal/tui"
	"github.com/Veraticus/carbon-footprint/internal/tui/themes"
)

type demoFeed struct{}

func (demoFeed) FetchAll(ctx context.Context) ([]model.NewsItem, error) {
	// Simulate network latency so the loading state is visible
	select {
	case <-time.After(800 * time.Millisecond):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	categories := []string{"Energy", "Transport", "Policy", "Technology"}
	items := make([]model.NewsItem, 0, 30)
	now := time.Now().UTC()
	for i := range 30 {
		category := categories[i%len(categories)]
		items = append(items, model.NewsItem{
			Title:     fmt.Sprintf("%s story #%d", category, i+1),
			Summary:   "A demo article used to exercise the news feed layout, paging and category filter.",
			Source:    "Demo Wire",
			Published: now.Add(-time.Duration(i) * 6 * time.Hour).Format(time.RFC3339),
			Link:      fmt.Sprintf("https://example.com/news/%d", i+1),
			Category:  category,
		})
	}
	return items, nil
}

type demoLeaderboard struct{}

func (demoLeaderboard) Leaderboard(_ context.Context, limit int) ([]model.LeaderboardEntry, error) {
	entries := []model.LeaderboardEntry{
		{Rank: 1, UserID: 3, Name: "Noor", Points: 180, Completed: 4},
		{Rank: 2, UserID: 1, Name: "Ana", Points: 120, Completed: 3},
		{Rank: 3, UserID: 4, Name: "Tomás", Points: 60, Completed: 1},
		{Rank: 4, UserID: 2, Name: "Bo", Points: 0, Completed: 0},
	}
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	return entries, nil
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	agg := emissions.New()
	_ = agg.SetDistance(model.ModeCar, 12)
	_ = agg.SetDistance(model.ModeBus, 6)
	_ = agg.SetDistance(model.ModeWalking, 3)

	theme := "default"
	if len(os.Args) > 1 {
		theme = os.Args[1]
	}

	err := tui.Run(ctx,
		tui.WithTheme(themes.GetTheme(theme)),
		tui.WithAggregator(agg),
		tui.WithNews(demoFeed{}),
		tui.WithTips(tips.NewAdvisor()),
		tui.WithLeaderboard(demoLeaderboard{}),
		tui.WithSize(120, 40),
	)
	if err != nil {
		// Use explicit error check to satisfy forbidigo
		_, _ = fmt.Fprintf(os.Stderr, "Error running dashboard: %v\n", err)
		os.Exit(1)
	}
}
