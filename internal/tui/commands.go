package tui

import (
	"context"
	"errors"
	"time"

	"github.com/Veraticus/carbon-footprint/internal/model"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	newsTimeout        = 30 * time.Second
	leaderboardTimeout = 10 * time.Second
	tripTimeout        = 5 * time.Second
	statusDuration     = 3 * time.Second
)

var errNoNewsSource = errors.New("news source not configured")

// fetchNews downloads the full feed. The pager is only touched from Update.
func (m Model) fetchNews() tea.Cmd {
	fetcher := m.config.News
	return func() tea.Msg {
		if fetcher == nil {
			return newsLoadedMsg{err: errNoNewsSource}
		}

		ctx, cancel := context.WithTimeout(m.ctx, newsTimeout)
		defer cancel()

		items, err := fetcher.FetchAll(ctx)
		return newsLoadedMsg{items: items, err: err}
	}
}

// requestTips asks for tips for snapshot. A newer request supersedes this
// one; its message is dropped when seq no longer matches.
func (m Model) requestTips(snapshot model.Snapshot, seq uint64) tea.Cmd {
	requester := m.config.Tips
	ctx := m.ctx
	return func() tea.Msg {
		return tipsLoadedMsg{
			outcome: requester.RequestTailoredTips(ctx, snapshot),
			seq:     seq,
		}
	}
}

// loadLeaderboard loads the ranking from storage.
func (m Model) loadLeaderboard() tea.Cmd {
	source := m.config.Leaderboard
	limit := m.config.LeaderboardLimit
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, leaderboardTimeout)
		defer cancel()

		entries, err := source.Leaderboard(ctx, limit)
		return leaderboardLoadedMsg{entries: entries, err: err}
	}
}

// saveTrip records the current snapshot.
func (m Model) saveTrip(snapshot model.Snapshot) tea.Cmd {
	saver := m.config.Trips
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, tripTimeout)
		defer cancel()

		trip, err := saver.SaveTrip(ctx, snapshot, "")
		return tripSavedMsg{trip: trip, err: err}
	}
}

// showStatus shows a status bar message and clears it later.
func (m *Model) showStatus(text string, isError bool) tea.Cmd {
	m.status = statusMsg{text: text, isError: isError}
	m.statusID++
	id := m.statusID
	return tea.Tick(statusDuration, func(time.Time) tea.Msg {
		return clearStatusMsg{id: id}
	})
}
