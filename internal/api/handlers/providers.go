// Package handlers contains HTTP request handlers.
package handlers

import (
	"context"

	"github.com/Veraticus/carbon-footprint/internal/model"
)

// NewsProvider lists stored news items, newest first.
type NewsProvider interface {
	ListNewsItems(ctx context.Context, limit int) ([]model.NewsItem, error)
}

// TipsProvider generates tips for a journey.
type TipsProvider interface {
	Advise(s model.Snapshot) []string
}

// LeaderboardProvider ranks challenge participants.
type LeaderboardProvider interface {
	Leaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error)
}
