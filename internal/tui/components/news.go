package components

import (
	"fmt"
	"strings"

	"github.com/Veraticus/carbon-footprint/internal/model"
	"github.com/Veraticus/carbon-footprint/internal/news"
	"github.com/Veraticus/carbon-footprint/internal/tui/themes"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// RowUnits converts terminal rows into the layout units the pager's
// load-more threshold is expressed in.
const RowUnits = 20

// NewsPanelModel renders the paged news feed in a scrollable viewport.
type NewsPanelModel struct {
	theme    themes.Theme
	pager    *news.Pager
	viewport viewport.Model
	width    int
	height   int
}

// NewNewsPanelModel creates a panel over pager.
func NewNewsPanelModel(pager *news.Pager, theme themes.Theme) NewsPanelModel {
	m := NewsPanelModel{
		theme:    theme,
		pager:    pager,
		viewport: viewport.New(80, 20),
		width:    80,
		height:   20,
	}
	m.Refresh()
	return m
}

// Pager returns the underlying pager.
func (m NewsPanelModel) Pager() *news.Pager {
	return m.pager
}

// Resize sets the panel size. Two rows are kept for the header.
func (m *NewsPanelModel) Resize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = max(height-2, 3)
	m.Refresh()
	m.FillViewport()
}

// Refresh re-renders the viewport content from the pager.
func (m *NewsPanelModel) Refresh() {
	m.viewport.SetContent(m.renderFeed())
}

// FillViewport loads pages until the feed reaches past the load-more
// threshold below the viewport or the pager runs out.
func (m *NewsPanelModel) FillViewport() {
	for {
		if !m.maybeLoadMore() {
			return
		}
	}
}

// NextCategory switches the filter to the next category, wrapping back to
// all categories after the last one.
func (m *NewsPanelModel) NextCategory() {
	categories := append([]string{model.CategoryAll}, m.pager.Categories()...)
	active := m.pager.Cursor().ActiveCategory

	next := categories[0]
	for i, c := range categories {
		if strings.EqualFold(c, active) {
			next = categories[(i+1)%len(categories)]
			break
		}
	}

	m.pager.SetCategory(next)
	m.viewport.GotoTop()
	m.Refresh()
	m.FillViewport()
}

// Update scrolls the viewport and loads the next page once the bottom of the
// viewport nears the end of the rendered feed.
func (m NewsPanelModel) Update(msg tea.Msg) (NewsPanelModel, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)

	if _, ok := msg.(tea.KeyMsg); ok {
		m.maybeLoadMore()
	}
	if _, ok := msg.(tea.MouseMsg); ok {
		m.maybeLoadMore()
	}
	return m, cmd
}

func (m *NewsPanelModel) maybeLoadMore() bool {
	bottom := float64((m.viewport.YOffset + m.viewport.Height) * RowUnits)
	document := float64(m.viewport.TotalLineCount() * RowUnits)
	added := m.pager.MaybeLoadMore(bottom, document)
	if len(added) == 0 {
		return false
	}
	offset := m.viewport.YOffset
	m.Refresh()
	m.viewport.SetYOffset(offset)
	return true
}

// View renders the header and the feed.
func (m NewsPanelModel) View() string {
	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), m.viewport.View())
}

func (m NewsPanelModel) renderHeader() string {
	cursor := m.pager.Cursor()
	category := cursor.ActiveCategory
	if category == "" || category == model.CategoryAll {
		category = "All"
	}

	status := m.theme.Faint.Render(fmt.Sprintf("%d shown", len(m.pager.Rendered())))
	switch m.pager.State() {
	case news.StateLoading:
		status = m.theme.StatusPending.Render("loading...")
	case news.StateExhausted:
		status = m.theme.Faint.Render(fmt.Sprintf("%d shown · end of feed", len(m.pager.Rendered())))
	case news.StateFailed:
		status = m.theme.StatusError.Render("failed")
	}

	return fmt.Sprintf("%s  %s  %s",
		m.theme.Bold.Render("📰 Climate news"),
		m.theme.Badge.Render(category),
		status)
}

func (m NewsPanelModel) renderFeed() string {
	var sections []string

	if featured, ok := m.pager.Featured(); ok {
		sections = append(sections, m.renderCard(news.RenderFeatured(featured)))
	}
	for _, card := range news.RenderCards(m.pager.Rendered()) {
		sections = append(sections, m.renderCard(card))
	}
	if msg := m.pager.Message(); msg != "" {
		style := m.theme.StatusInfo
		if m.pager.State() == news.StateFailed {
			style = m.theme.StatusError
		}
		sections = append(sections, style.Render(msg))
	}
	if m.pager.State() == news.StateLoading {
		sections = append(sections, m.theme.StatusPending.Render("Loading the latest news..."))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m NewsPanelModel) renderCard(card news.Card) string {
	style := m.theme.Card
	title := m.theme.Bold.Render(card.Title)
	if card.Featured {
		style = m.theme.FeaturedCard
		title = m.theme.Selected.Render("★ " + card.Title)
	}

	meta := m.theme.Faint.Render(fmt.Sprintf("%s · %s · %s", card.Source, card.DateLabel, card.Category))
	lines := []string{title, meta}
	if card.Summary != "" {
		lines = append(lines, m.theme.Normal.Render(card.Summary))
	}
	if card.Link != "" {
		lines = append(lines, m.theme.Faint.Render(card.Link))
	}

	return style.Width(max(m.width-2, 20)).Render(strings.Join(lines, "\n"))
}
