// Package testutil provides shared helpers for tests that need a database.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Veraticus/carbon-footprint/internal/model"
	"github.com/Veraticus/carbon-footprint/internal/storage"
)

// TestDB wraps a migrated in-memory database.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
}

// SetupTestDB creates a new in-memory test database.
// It automatically handles migrations and cleanup.
//
// Example:
//
//	db := testutil.SetupTestDB(t)
//	db.SeedNews(12, func(i int) string { return "energy" })
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{Storage: store, t: t}
}

// NewsItems builds count items published a day apart, item 0 newest.
func NewsItems(count int, category func(i int) string) []model.NewsItem {
	base := time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)
	items := make([]model.NewsItem, count)
	for i := range items {
		cat := "climate"
		if category != nil {
			cat = category(i)
		}
		items[i] = model.NewsItem{
			Title:     fmt.Sprintf("Story %d", i),
			Summary:   fmt.Sprintf("Summary of story %d", i),
			Source:    "Example Wire",
			Link:      fmt.Sprintf("https://example.com/news/%d", i),
			Published: base.AddDate(0, 0, -i).Format(time.RFC3339),
			Category:  cat,
		}
	}
	return items
}

// SeedNews stores count generated news items.
func (db *TestDB) SeedNews(count int, category func(i int) string) []model.NewsItem {
	db.t.Helper()
	items := NewsItems(count, category)
	if _, err := db.Storage.UpsertNewsItems(context.Background(), items); err != nil {
		db.t.Fatalf("failed to seed news: %v", err)
	}
	return items
}

// SeedLeaderboard creates users and one completed challenge per user, worth
// the given points.
func (db *TestDB) SeedLeaderboard(points map[string]int) {
	db.t.Helper()
	ctx := context.Background()
	for name, reward := range points {
		user, err := db.Storage.AddUser(ctx, fmt.Sprintf("%s@example.com", name), name)
		if err != nil {
			db.t.Fatalf("failed to add user %s: %v", name, err)
		}
		challenge := &model.Challenge{
			Title:        name + " challenge",
			Type:         model.ChallengeIndividual,
			TargetValue:  1,
			PointsReward: reward,
		}
		if err := db.Storage.CreateChallenge(ctx, challenge); err != nil {
			db.t.Fatalf("failed to create challenge: %v", err)
		}
		if err := db.Storage.JoinChallenge(ctx, user.ID, challenge.ID); err != nil {
			db.t.Fatalf("failed to join challenge: %v", err)
		}
		if err := db.Storage.UpdateProgress(ctx, user.ID, challenge.ID, 1); err != nil {
			db.t.Fatalf("failed to update progress: %v", err)
		}
	}
}
