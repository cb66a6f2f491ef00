package tui

import (
	"github.com/Veraticus/carbon-footprint/internal/model"
	"github.com/Veraticus/carbon-footprint/internal/tips"
)

// Data loading messages.
type newsLoadedMsg struct {
	err   error
	items []model.NewsItem
}

type leaderboardLoadedMsg struct {
	err     error
	entries []model.LeaderboardEntry
}

// Async operation messages.
type tipsLoadedMsg struct {
	outcome tips.Outcome
	seq     uint64
}

type tripSavedMsg struct {
	err  error
	trip *model.Trip
}

// Status bar messages.
type statusMsg struct {
	text    string
	isError bool
}

type clearStatusMsg struct {
	id int
}
