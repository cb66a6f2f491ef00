package components

import (
	"fmt"
	"strings"

	"github.com/Veraticus/carbon-footprint/internal/tips"
	"github.com/Veraticus/carbon-footprint/internal/tui/themes"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// TipsPanelModel shows the latest tailored tips.
type TipsPanelModel struct {
	theme   themes.Theme
	outcome *tips.Outcome
	spinner spinner.Model
	width   int
	loading bool
}

// NewTipsPanelModel creates an empty tips panel.
func NewTipsPanelModel(theme themes.Theme) TipsPanelModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(theme.Primary)

	return TipsPanelModel{
		theme:   theme,
		spinner: s,
		width:   60,
	}
}

// Start marks a request in flight and starts the spinner.
func (m TipsPanelModel) Start() (TipsPanelModel, tea.Cmd) {
	m.loading = true
	return m, m.spinner.Tick
}

// SetOutcome shows a finished request.
func (m *TipsPanelModel) SetOutcome(outcome tips.Outcome) {
	m.loading = false
	m.outcome = &outcome
}

// Loading reports whether a request is in flight.
func (m TipsPanelModel) Loading() bool {
	return m.loading
}

// Outcome returns the last shown outcome.
func (m TipsPanelModel) Outcome() (tips.Outcome, bool) {
	if m.outcome == nil {
		return tips.Outcome{}, false
	}
	return *m.outcome, true
}

// Resize sets the panel width.
func (m *TipsPanelModel) Resize(width int) {
	m.width = width
}

// Update advances the spinner while a request is in flight.
func (m TipsPanelModel) Update(msg tea.Msg) (TipsPanelModel, tea.Cmd) {
	if _, ok := msg.(spinner.TickMsg); ok && m.loading {
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the tips list or the fallback message.
func (m TipsPanelModel) View() string {
	title := m.theme.Title.Render("💡 Tailored tips")

	switch {
	case m.loading:
		return lipgloss.JoinVertical(lipgloss.Left, title,
			m.spinner.View()+" "+m.theme.StatusPending.Render("Generating tips for your journey..."))
	case m.outcome == nil:
		return lipgloss.JoinVertical(lipgloss.Left, title,
			m.theme.Faint.Render("Set your distances, then press t for tips."))
	}

	wrap := lipgloss.NewStyle().Width(max(m.width-4, 20))
	if !m.outcome.Produced() {
		style := m.theme.StatusWarning
		if m.outcome.Reason == tips.ReasonNoTips {
			style = m.theme.StatusInfo
		}
		return lipgloss.JoinVertical(lipgloss.Left, title, wrap.Inherit(style).Render(m.outcome.Tips[0]))
	}

	var b strings.Builder
	for i, tip := range m.outcome.Tips {
		b.WriteString(wrap.Render(fmt.Sprintf("%d. %s", i+1, tip)))
		b.WriteString("\n")
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, strings.TrimRight(b.String(), "\n"))
}
