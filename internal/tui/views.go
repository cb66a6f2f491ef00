package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderDashboard renders tabs, the active panel, the status bar and help.
func (m Model) renderDashboard() string {
	var body string
	switch m.activePanel() {
	case PanelCalculator:
		body = lipgloss.JoinVertical(lipgloss.Left,
			m.calculator.View(),
			"",
			m.tipsPanel.View(),
		)
	case PanelNews:
		body = m.newsPanel.View()
	case PanelLeaderboard:
		body = m.leaderboard.View()
	}

	box := m.theme.RoundedBox.Width(max(m.width-2, 20)).Render(body)

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderTabs(),
		box,
		m.renderStatusBar(),
		m.help.View(m.keymap),
	)
}

// renderTabs renders the panel switcher.
func (m Model) renderTabs() string {
	tabs := make([]string, 0, len(m.panels))
	for i, p := range m.panels {
		if i == m.active {
			tabs = append(tabs, m.theme.ActiveTab.Render(p.String()))
		} else {
			tabs = append(tabs, m.theme.Tab.Render(p.String()))
		}
	}
	title := m.theme.Bold.Foreground(m.theme.Primary).Render("🌱 Carbon Footprint ")
	return title + strings.Join(tabs, " ")
}

// renderStatusBar renders the transient status message.
func (m Model) renderStatusBar() string {
	if m.status.text == "" {
		return m.theme.Faint.Render(" ")
	}
	if m.status.isError {
		return m.theme.StatusError.Render(m.status.text)
	}
	return m.theme.StatusSuccess.Render(m.status.text)
}
