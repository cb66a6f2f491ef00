package components

import (
	"fmt"
	"strings"

	"github.com/Veraticus/carbon-footprint/internal/model"
	"github.com/Veraticus/carbon-footprint/internal/tui/themes"
	"github.com/charmbracelet/lipgloss"
)

var medals = map[int]string{1: "🥇", 2: "🥈", 3: "🥉"}

// LeaderboardModel shows challenge points per participant.
type LeaderboardModel struct {
	theme   themes.Theme
	err     error
	entries []model.LeaderboardEntry
	loaded  bool
}

// NewLeaderboardModel creates an empty leaderboard.
func NewLeaderboardModel(theme themes.Theme) LeaderboardModel {
	return LeaderboardModel{theme: theme}
}

// SetEntries replaces the ranking.
func (m *LeaderboardModel) SetEntries(entries []model.LeaderboardEntry, err error) {
	m.entries = entries
	m.err = err
	m.loaded = true
}

// Entries returns the current ranking.
func (m LeaderboardModel) Entries() []model.LeaderboardEntry {
	return m.entries
}

// View renders the ranking table.
func (m LeaderboardModel) View() string {
	title := m.theme.Title.Render("🏆 Challenge leaderboard")

	switch {
	case !m.loaded:
		return lipgloss.JoinVertical(lipgloss.Left, title, m.theme.StatusPending.Render("Loading..."))
	case m.err != nil:
		return lipgloss.JoinVertical(lipgloss.Left, title,
			m.theme.StatusError.Render(fmt.Sprintf("Failed to load leaderboard: %v", m.err)))
	case len(m.entries) == 0:
		return lipgloss.JoinVertical(lipgloss.Left, title,
			m.theme.Faint.Render("No participants yet. Join a challenge to get on the board."))
	}

	var b strings.Builder
	b.WriteString(m.theme.Subtitle.Render(fmt.Sprintf("%-4s %-24s %8s %10s", "Rank", "Name", "Points", "Completed")))
	for _, e := range m.entries {
		rank := fmt.Sprintf("%d", e.Rank)
		if medal, ok := medals[e.Rank]; ok {
			rank = medal
		}
		row := fmt.Sprintf("%-4s %-24s %8d %10d", rank, truncateName(e.Name, 24), e.Points, e.Completed)
		b.WriteString("\n")
		if e.Rank == 1 {
			b.WriteString(m.theme.Selected.Render(row))
		} else {
			b.WriteString(m.theme.Normal.Render(row))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, b.String())
}

func truncateName(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
