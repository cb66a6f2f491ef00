package components

import (
	"context"
	"testing"

	"github.com/Veraticus/carbon-footprint/internal/model"
	"github.com/Veraticus/carbon-footprint/internal/news"
	"github.com/Veraticus/carbon-footprint/internal/testutil"
	"github.com/Veraticus/carbon-footprint/internal/tui/themes"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticFetcher []model.NewsItem

func (f staticFetcher) FetchAll(context.Context) ([]model.NewsItem, error) {
	return f, nil
}

func loadedPanel(t *testing.T, items []model.NewsItem, pageSize int) NewsPanelModel {
	t.Helper()
	pager := news.NewPager(staticFetcher(items), news.WithPageSize(pageSize))
	require.NoError(t, pager.LoadAll(context.Background()))

	m := NewNewsPanelModel(pager, themes.Default)
	m.Resize(120, 12)
	return m
}

// nearBottom reports whether the panel would still ask the pager for more.
func nearBottom(m NewsPanelModel) bool {
	bottom := float64((m.viewport.YOffset + m.viewport.Height) * RowUnits)
	return news.ShouldLoadMore(bottom, float64(m.viewport.TotalLineCount()*RowUnits))
}

func TestNewsPanelModel_RendersFeaturedAndPage(t *testing.T) {
	// eight cards already reach well past the threshold of a 10 row viewport
	m := loadedPanel(t, testutil.NewsItems(20, nil), 7)

	view := m.View()
	assert.Contains(t, view, "★ Story 0")
	assert.Contains(t, view, "Story 1")
	assert.Contains(t, view, "All")
	assert.Len(t, m.Pager().Rendered(), 7)
}

func TestNewsPanelModel_ScrollLoadsMore(t *testing.T) {
	m := loadedPanel(t, testutil.NewsItems(20, nil), 7)
	require.Len(t, m.Pager().Rendered(), 7)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	require.Len(t, m.Pager().Rendered(), 7, "one row down is still far from the end")

	for range 40 {
		if len(m.Pager().Rendered()) > 7 {
			break
		}
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	}

	assert.Len(t, m.Pager().Rendered(), 14)
	assert.Positive(t, m.viewport.YOffset, "loading keeps the scroll position")
}

func TestNewsPanelModel_ShortPageFillsViewport(t *testing.T) {
	m := loadedPanel(t, testutil.NewsItems(40, nil), 1)

	assert.Greater(t, len(m.Pager().Rendered()), 1)
	assert.False(t, nearBottom(m), "pages load until the viewport is covered")
	assert.Zero(t, m.viewport.YOffset)
}

func TestNewsPanelModel_ResizeLoadsMore(t *testing.T) {
	m := loadedPanel(t, testutil.NewsItems(40, nil), 5)
	before := len(m.Pager().Rendered())

	m.Resize(120, 60)

	assert.Greater(t, len(m.Pager().Rendered()), before)
	assert.False(t, nearBottom(m))
}

func TestNewsPanelModel_ExhaustsFeed(t *testing.T) {
	m := loadedPanel(t, testutil.NewsItems(5, nil), 2)

	for range 10 {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	}

	assert.Len(t, m.Pager().Rendered(), 4)
	assert.Equal(t, news.StateExhausted, m.Pager().State())
	assert.Contains(t, m.View(), "end of feed")
}

func TestNewsPanelModel_NextCategory(t *testing.T) {
	items := testutil.NewsItems(7, func(i int) string {
		if i%2 == 0 {
			return "energy"
		}
		return "technology"
	})
	m := loadedPanel(t, items, 10)
	require.Len(t, m.Pager().Rendered(), 6)

	// the featured story is energy, so the filtered grid holds all four
	m.NextCategory()
	assert.Equal(t, "energy", m.Pager().Cursor().ActiveCategory)
	assert.Len(t, m.Pager().Rendered(), 4)
	assert.NotContains(t, m.View(), "★")
	assert.NotContains(t, m.View(), news.MessageEmptyCategory)

	m.NextCategory()
	assert.Equal(t, "technology", m.Pager().Cursor().ActiveCategory)
	assert.Len(t, m.Pager().Rendered(), 3)

	m.NextCategory()
	assert.Equal(t, model.CategoryAll, m.Pager().Cursor().ActiveCategory)
	assert.Len(t, m.Pager().Rendered(), 6)
	assert.Contains(t, m.View(), "★ Story 0")
}

func TestNewsPanelModel_SingleItemFeed(t *testing.T) {
	m := loadedPanel(t, testutil.NewsItems(1, nil), 3)

	view := m.View()
	assert.Contains(t, view, "★ Story 0")
	assert.NotContains(t, view, news.MessageEmptyCategory)
	assert.Contains(t, view, "end of feed")
}

func TestNewsPanelModel_EmptyFeed(t *testing.T) {
	m := loadedPanel(t, nil, 3)

	assert.Contains(t, m.View(), news.MessageNoNews)
}
