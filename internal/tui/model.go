package tui

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/carbon-footprint/internal/news"
	"github.com/Veraticus/carbon-footprint/internal/tips"
	"github.com/Veraticus/carbon-footprint/internal/tui/components"
	"github.com/Veraticus/carbon-footprint/internal/tui/themes"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Panel identifies a dashboard tab.
type Panel int

const (
	PanelCalculator Panel = iota
	PanelNews
	PanelLeaderboard
)

func (p Panel) String() string {
	switch p {
	case PanelCalculator:
		return "Calculator"
	case PanelNews:
		return "News"
	case PanelLeaderboard:
		return "Leaderboard"
	default:
		return "Unknown"
	}
}

// Model holds the dashboard state.
type Model struct {
	ctx         context.Context
	theme       themes.Theme
	help        help.Model
	keymap      KeyMap
	status      statusMsg
	panels      []Panel
	config      Config
	calculator  components.CalculatorModel
	tipsPanel   components.TipsPanelModel
	newsPanel   components.NewsPanelModel
	leaderboard components.LeaderboardModel
	tipsSeq     uint64
	statusID    int
	active      int
	width       int
	height      int
	showHelp    bool
	quitting    bool
}

// newModel creates a model with the given configuration. The news fetch is
// marked in flight here so Init only has to issue the command.
func newModel(ctx context.Context, cfg Config) Model {
	pager := news.NewPager(cfg.News, news.WithPageSize(cfg.PageSize))
	if cfg.News != nil {
		pager.BeginLoad()
	}

	panels := []Panel{PanelCalculator, PanelNews}
	if cfg.Leaderboard != nil {
		panels = append(panels, PanelLeaderboard)
	}

	m := Model{
		ctx:         ctx,
		config:      cfg,
		theme:       cfg.Theme,
		keymap:      DefaultKeyMap(),
		help:        help.New(),
		panels:      panels,
		calculator:  components.NewCalculatorModel(cfg.Aggregator, cfg.Theme),
		tipsPanel:   components.NewTipsPanelModel(cfg.Theme),
		newsPanel:   components.NewNewsPanelModel(pager, cfg.Theme),
		leaderboard: components.NewLeaderboardModel(cfg.Theme),
		width:       cfg.Width,
		height:      cfg.Height,
	}
	m.handleResize()
	return m
}

// Init starts the initial loads.
func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.newsPanel.Pager().State() == news.StateLoading {
		cmds = append(cmds, m.fetchNews())
	}
	if m.config.Leaderboard != nil {
		cmds = append(cmds, m.loadLeaderboard())
	}
	return tea.Batch(cmds...)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if m.activePanel() == PanelNews {
			var cmd tea.Cmd
			m.newsPanel, cmd = m.newsPanel.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.handleResize()

	case newsLoadedMsg:
		m.newsPanel.Pager().CompleteLoad(msg.items, msg.err)
		m.newsPanel.Refresh()
		m.newsPanel.FillViewport()
		if msg.err != nil {
			cmd := m.showStatus("Failed to load news", true)
			return m, cmd
		}

	case tipsLoadedMsg:
		if msg.seq != m.tipsSeq || msg.outcome.Reason == tips.ReasonSuperseded {
			slog.Debug("Dropping stale tips response", "seq", msg.seq, "current", m.tipsSeq)
			return m, nil
		}
		m.tipsPanel.SetOutcome(msg.outcome)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.tipsPanel, cmd = m.tipsPanel.Update(msg)
		return m, cmd

	case leaderboardLoadedMsg:
		m.leaderboard.SetEntries(msg.entries, msg.err)

	case tripSavedMsg:
		if msg.err != nil {
			slog.Warn("Failed to save trip", "error", msg.err)
			cmd := m.showStatus(fmt.Sprintf("Failed to save trip: %v", msg.err), true)
			return m, cmd
		}
		cmd := m.showStatus(fmt.Sprintf("Saved trip #%d", msg.trip.ID), false)
		return m, cmd

	case components.DistancesChangedMsg:
		slog.Debug("Distances changed",
			"total_distance", msg.State.TotalDistance,
			"total_emission", msg.State.TotalEmission)

	case clearStatusMsg:
		if msg.id == m.statusID {
			m.status = statusMsg{}
		}
	}

	return m, nil
}

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return m.renderDashboard()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.ForceQuit), key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		m.handleResize()
		return m, nil

	case key.Matches(msg, m.keymap.ClearScreen):
		return m, tea.ClearScreen

	case key.Matches(msg, m.keymap.NextPanel):
		m.active = (m.active + 1) % len(m.panels)
		return m, nil

	case key.Matches(msg, m.keymap.PrevPanel):
		m.active = (m.active - 1 + len(m.panels)) % len(m.panels)
		return m, nil

	case key.Matches(msg, m.keymap.Tips):
		return m.startTips()
	}

	switch m.activePanel() {
	case PanelCalculator:
		if key.Matches(msg, m.keymap.Save) {
			if m.config.Trips == nil {
				cmd := m.showStatus("Trip history is not available", true)
				return m, cmd
			}
			return m, m.saveTrip(m.calculator.Snapshot())
		}
		var cmd tea.Cmd
		m.calculator, cmd = m.calculator.Update(msg)
		return m, cmd

	case PanelNews:
		switch {
		case key.Matches(msg, m.keymap.Category):
			m.newsPanel.NextCategory()
			return m, nil
		case key.Matches(msg, m.keymap.Reload):
			if m.config.News != nil && m.newsPanel.Pager().BeginLoad() {
				m.newsPanel.Refresh()
				return m, m.fetchNews()
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.newsPanel, cmd = m.newsPanel.Update(msg)
		return m, cmd

	case PanelLeaderboard:
		if key.Matches(msg, m.keymap.Reload) {
			return m, m.loadLeaderboard()
		}
	}

	return m, nil
}

// startTips issues a tips request for the current distances. Any request
// still in flight is superseded.
func (m Model) startTips() (tea.Model, tea.Cmd) {
	if m.config.Tips == nil {
		cmd := m.showStatus("Tips service is not configured", true)
		return m, cmd
	}

	m.tipsSeq++
	var spin tea.Cmd
	m.tipsPanel, spin = m.tipsPanel.Start()
	m.active = 0
	return m, tea.Batch(spin, m.requestTips(m.calculator.Snapshot(), m.tipsSeq))
}

func (m Model) activePanel() Panel {
	return m.panels[m.active]
}

// handleResize adjusts component sizes when the terminal resizes.
func (m *Model) handleResize() {
	usableWidth := max(m.width-4, 20)
	m.help.Width = usableWidth
	m.calculator.Resize(usableWidth)
	m.tipsPanel.Resize(usableWidth)

	// tabs (2), status bar (1), help (1 or more), box border (2)
	chrome := 6
	if m.showHelp {
		chrome += len(m.keymap.FullHelp())
	}
	m.newsPanel.Resize(usableWidth, max(m.height-chrome, 5))
}
