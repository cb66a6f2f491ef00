package tui

import (
	"context"

	"github.com/Veraticus/carbon-footprint/internal/emissions"
	"github.com/Veraticus/carbon-footprint/internal/model"
	"github.com/Veraticus/carbon-footprint/internal/news"
	"github.com/Veraticus/carbon-footprint/internal/tips"
	"github.com/Veraticus/carbon-footprint/internal/tui/themes"
)

// TipsRequester requests tips for a calculator snapshot.
type TipsRequester interface {
	RequestTailoredTips(ctx context.Context, snapshot model.Snapshot) tips.Outcome
}

// LeaderboardSource ranks challenge participants.
type LeaderboardSource interface {
	Leaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error)
}

// TripSaver records calculator snapshots.
type TripSaver interface {
	SaveTrip(ctx context.Context, snapshot model.Snapshot, note string) (*model.Trip, error)
}

// Config holds TUI configuration.
type Config struct {
	Theme            themes.Theme
	News             news.Fetcher
	Tips             TipsRequester
	Leaderboard      LeaderboardSource
	Trips            TripSaver
	Aggregator       *emissions.Aggregator
	Width            int
	Height           int
	PageSize         int
	LeaderboardLimit int
	MouseSupport     bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Theme:            themes.Default,
		Width:            100,
		Height:           30,
		PageSize:         news.DefaultPageSize,
		LeaderboardLimit: 10,
		MouseSupport:     true,
	}
}

// WithNews sets the news feed source.
func WithNews(fetcher news.Fetcher) Option {
	return func(c *Config) {
		c.News = fetcher
	}
}

// WithTips sets the tips requester.
func WithTips(requester TipsRequester) Option {
	return func(c *Config) {
		c.Tips = requester
	}
}

// WithLeaderboard sets the leaderboard source.
func WithLeaderboard(source LeaderboardSource) Option {
	return func(c *Config) {
		c.Leaderboard = source
	}
}

// WithTrips enables saving snapshots as trips.
func WithTrips(saver TripSaver) Option {
	return func(c *Config) {
		c.Trips = saver
	}
}

// WithAggregator starts the calculator from existing distances.
func WithAggregator(agg *emissions.Aggregator) Option {
	return func(c *Config) {
		c.Aggregator = agg
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithPageSize sets how many news cards each page appends.
func WithPageSize(size int) Option {
	return func(c *Config) {
		c.PageSize = size
	}
}

// WithMouse toggles mouse wheel scrolling.
func WithMouse(enabled bool) Option {
	return func(c *Config) {
		c.MouseSupport = enabled
	}
}
