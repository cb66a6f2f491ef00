package components

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/Veraticus/carbon-footprint/internal/emissions"
	"github.com/Veraticus/carbon-footprint/internal/model"
	"github.com/Veraticus/carbon-footprint/internal/tui/themes"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Slider steps in km.
const (
	SliderStep     = 1.0
	SliderBigStep  = 10.0
	minSliderWidth = 10
)

// DistancesChangedMsg is emitted after a slider moves.
type DistancesChangedMsg struct {
	State emissions.State
}

// CalculatorModel holds the five distance sliders and the derived emissions.
type CalculatorModel struct {
	theme    themes.Theme
	agg      *emissions.Aggregator
	slider   progress.Model
	bar      progress.Model
	ring     progress.Model
	modes    []model.TransportMode
	focused  int
	width    int
	disabled bool
}

// NewCalculatorModel creates a calculator over agg. A nil aggregator starts a
// fresh one with every distance at zero.
func NewCalculatorModel(agg *emissions.Aggregator, theme themes.Theme) CalculatorModel {
	if agg == nil {
		agg = emissions.New()
	}
	return CalculatorModel{
		theme: theme,
		agg:   agg,
		slider: progress.New(
			progress.WithGradient(string(theme.GradientStart), string(theme.GradientEnd)),
			progress.WithoutPercentage(),
		),
		bar: progress.New(
			progress.WithSolidFill(string(theme.Muted)),
			progress.WithoutPercentage(),
		),
		ring: progress.New(
			progress.WithSolidFill(string(theme.Primary)),
			progress.WithoutPercentage(),
		),
		modes: model.AllModes(),
		width: 60,
	}
}

// Update handles key messages for moving between and adjusting sliders.
func (m CalculatorModel) Update(msg tea.Msg) (CalculatorModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || m.disabled {
		return m, nil
	}

	switch keyMsg.String() {
	case "up", "k":
		if m.focused > 0 {
			m.focused--
		}
	case "down", "j":
		if m.focused < len(m.modes)-1 {
			m.focused++
		}
	case "left", "h":
		return m, m.adjust(-SliderStep)
	case "right", "l":
		return m, m.adjust(SliderStep)
	case "shift+left", "H":
		return m, m.adjust(-SliderBigStep)
	case "shift+right", "L":
		return m, m.adjust(SliderBigStep)
	case "0":
		m.agg.Reset()
		return m, m.changed()
	}
	return m, nil
}

func (m CalculatorModel) adjust(delta float64) tea.Cmd {
	mode := m.modes[m.focused]
	current := m.agg.Distance(mode)
	next := math.Max(0, math.Min(emissions.MaxSliderDistance, current+delta))
	if next == current {
		return nil
	}
	if err := m.agg.SetDistance(mode, next); err != nil {
		slog.Warn("Rejected slider value", "mode", mode, "value", next, "error", err)
		return nil
	}
	return m.changed()
}

func (m CalculatorModel) changed() tea.Cmd {
	state := m.agg.State()
	return func() tea.Msg {
		return DistancesChangedMsg{State: state}
	}
}

// Resize sets the panel width.
func (m *CalculatorModel) Resize(width int) {
	m.width = width
}

// SetDisabled stops the sliders from reacting to keys.
func (m *CalculatorModel) SetDisabled(disabled bool) {
	m.disabled = disabled
}

// Focused returns the mode whose slider has focus.
func (m CalculatorModel) Focused() model.TransportMode {
	return m.modes[m.focused]
}

// Snapshot returns the current distances and totals.
func (m CalculatorModel) Snapshot() model.Snapshot {
	return m.agg.Snapshot()
}

// State returns the derived emissions state.
func (m CalculatorModel) State() emissions.State {
	return m.agg.State()
}

// View renders sliders, the emissions chart and the summary.
func (m CalculatorModel) View() string {
	state := m.agg.State()

	left := lipgloss.JoinVertical(lipgloss.Left,
		m.theme.Title.Render("🌍 Journey distances"),
		m.renderSliders(state),
	)
	right := lipgloss.JoinVertical(lipgloss.Left,
		m.theme.Title.Render("Emissions by mode"),
		m.renderChart(state),
		"",
		m.renderSummary(state),
	)

	if m.width < 100 {
		return lipgloss.JoinVertical(lipgloss.Left, left, "", right)
	}
	half := m.width / 2
	return lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(half).Render(left),
		lipgloss.NewStyle().Width(m.width-half).Render(right),
	)
}

func (m CalculatorModel) barWidth() int {
	w := m.width - 28
	if m.width >= 100 {
		w = m.width/2 - 28
	}
	return max(w, minSliderWidth)
}

func (m CalculatorModel) renderSliders(state emissions.State) string {
	var b strings.Builder
	width := m.barWidth()

	for i, mode := range m.modes {
		indicator := "▷"
		label := m.theme.Normal
		if i == m.focused {
			indicator = "▶"
			label = m.theme.Selected
		}

		m.slider.Width = width
		distance := state.Distances[mode]
		b.WriteString(fmt.Sprintf("%s %s %s\n", indicator, themes.GetModeIcon(mode), label.Render(mode.Label())))
		b.WriteString(fmt.Sprintf("  %s %s\n\n",
			m.slider.ViewAs(distance/emissions.MaxSliderDistance),
			m.theme.Faint.Render(fmt.Sprintf("%3.0f km", distance))))
	}

	return strings.TrimRight(b.String(), "\n")
}

func (m CalculatorModel) renderChart(state emissions.State) string {
	heights := emissions.BarHeights(state)
	m.bar.Width = m.barWidth()

	lines := make([]string, 0, len(m.modes))
	for _, mode := range m.modes {
		lines = append(lines, fmt.Sprintf("%-10s %s %s",
			mode.Label(),
			m.bar.ViewAs(heights[mode]/100),
			m.theme.Faint.Render(fmt.Sprintf("%.2f kg", state.ModeEmissions[mode]))))
	}
	return strings.Join(lines, "\n")
}

func (m CalculatorModel) renderSummary(state emissions.State) string {
	tier := emissions.TierFor(state.ZeroEmissionShare)
	m.ring.Width = m.barWidth()

	rows := []string{
		fmt.Sprintf("Total distance  %s", m.theme.Bold.Render(fmt.Sprintf("%.1f km", state.TotalDistance))),
		fmt.Sprintf("Total CO₂       %s", m.theme.Bold.Render(fmt.Sprintf("%.2f kg", state.TotalEmission))),
		fmt.Sprintf("Saved vs car    %s", m.theme.StatusSuccess.Render(fmt.Sprintf("%.2f kg", state.TotalSaved))),
		fmt.Sprintf("Zero emission   %s", m.theme.Bold.Render(fmt.Sprintf("%.0f%%", state.ZeroEmissionShare*100))),
		"",
		fmt.Sprintf("Distance ring   %s %s",
			m.ring.ViewAs(emissions.RingFraction(state.TotalDistance)),
			m.theme.Faint.Render(fmt.Sprintf("/ %.0f km", emissions.RingFullDistance))),
		fmt.Sprintf("Eco score       %s", themes.TierStyle(tier).Render(fmt.Sprintf("%d", emissions.Score(state)))),
		"",
		themes.TierStyle(tier).Render(tier.Label()),
	}
	return strings.Join(rows, "\n")
}
