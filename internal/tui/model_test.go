package tui

import (
	"context"
	"errors"
	"testing"

	"github.com/Veraticus/carbon-footprint/internal/model"
	"github.com/Veraticus/carbon-footprint/internal/news"
	"github.com/Veraticus/carbon-footprint/internal/testutil"
	"github.com/Veraticus/carbon-footprint/internal/tips"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	err   error
	items []model.NewsItem
}

func (f fakeFetcher) FetchAll(context.Context) ([]model.NewsItem, error) {
	return f.items, f.err
}

type fakeRequester struct {
	snapshots []model.Snapshot
	outcome   tips.Outcome
}

func (f *fakeRequester) RequestTailoredTips(_ context.Context, s model.Snapshot) tips.Outcome {
	f.snapshots = append(f.snapshots, s)
	return f.outcome
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel(t *testing.T, opts ...Option) Model {
	t.Helper()
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return newModel(context.Background(), cfg)
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	updated, ok := next.(Model)
	require.True(t, ok)
	return updated, cmd
}

func TestModel_LoadsNewsOnStart(t *testing.T) {
	items := testutil.NewsItems(12, nil)
	m := newTestModel(t, WithNews(fakeFetcher{items: items}), WithPageSize(5))

	assert.Equal(t, news.StateLoading, m.newsPanel.Pager().State())
	require.NotNil(t, m.Init())

	m, _ = update(t, m, m.fetchNews()())

	pager := m.newsPanel.Pager()
	assert.Equal(t, news.StateReady, pager.State())
	featured, ok := pager.Featured()
	require.True(t, ok)
	assert.Equal(t, "Story 0", featured.Title)
	// the first page of five is shorter than the panel, so a second one follows
	assert.Len(t, pager.Rendered(), 10)
	assert.Equal(t, 2, pager.Cursor().PageIndex)
}

func TestModel_NewsFailureShowsStatus(t *testing.T) {
	m := newTestModel(t, WithNews(fakeFetcher{err: errors.New("boom")}))

	m, cmd := update(t, m, m.fetchNews()())

	assert.NotNil(t, cmd)
	assert.Equal(t, news.StateFailed, m.newsPanel.Pager().State())
	assert.True(t, m.status.isError)

	m.active = 1
	assert.Contains(t, m.View(), news.MessageLoadFailed)
}

func TestModel_WithoutNewsSource(t *testing.T) {
	m := newTestModel(t)

	assert.Equal(t, news.StateEmpty, m.newsPanel.Pager().State())
	assert.Nil(t, m.Init())
}

func TestModel_SlidersAdjustFocusedMode(t *testing.T) {
	m := newTestModel(t)

	for range 3 {
		m, _ = update(t, m, keyRunes("l"))
	}
	m, _ = update(t, m, keyRunes("j"))
	m, _ = update(t, m, keyRunes("L"))
	m, _ = update(t, m, keyRunes("L"))

	snapshot := m.calculator.Snapshot()
	assert.InDelta(t, 3, snapshot.Bus, 1e-9)
	assert.InDelta(t, 20, snapshot.Car, 1e-9)
	assert.InDelta(t, 23, snapshot.TotalDistance, 1e-9)
}

func TestModel_TipsRequest(t *testing.T) {
	requester := &fakeRequester{outcome: tips.Outcome{Tips: []string{"Walk more"}, Reason: tips.ReasonTips}}
	m := newTestModel(t, WithTips(requester))
	m, _ = update(t, m, keyRunes("l"))

	m, cmd := update(t, m, keyRunes("t"))
	require.NotNil(t, cmd)
	assert.True(t, m.tipsPanel.Loading())
	assert.Equal(t, uint64(1), m.tipsSeq)

	m, _ = update(t, m, m.requestTips(m.calculator.Snapshot(), m.tipsSeq)())

	assert.False(t, m.tipsPanel.Loading())
	outcome, ok := m.tipsPanel.Outcome()
	require.True(t, ok)
	assert.Equal(t, []string{"Walk more"}, outcome.Tips)
	require.Len(t, requester.snapshots, 1)
	assert.InDelta(t, 1, requester.snapshots[0].Bus, 1e-9)
	assert.Contains(t, m.View(), "Walk more")
}

func TestModel_StaleTipsAreDropped(t *testing.T) {
	m := newTestModel(t, WithTips(&fakeRequester{}))
	m, _ = update(t, m, keyRunes("t"))
	m, _ = update(t, m, keyRunes("t"))
	require.Equal(t, uint64(2), m.tipsSeq)

	m, _ = update(t, m, tipsLoadedMsg{seq: 1, outcome: tips.Outcome{Tips: []string{"old"}, Reason: tips.ReasonTips}})
	assert.True(t, m.tipsPanel.Loading())

	m, _ = update(t, m, tipsLoadedMsg{seq: 2, outcome: tips.Outcome{Tips: []string{tips.FallbackFailed}, Reason: tips.ReasonSuperseded}})
	assert.True(t, m.tipsPanel.Loading())

	m, _ = update(t, m, tipsLoadedMsg{seq: 2, outcome: tips.Outcome{Tips: []string{tips.FallbackNoTips}, Reason: tips.ReasonNoTips}})
	assert.False(t, m.tipsPanel.Loading())
	assert.Contains(t, m.View(), "No tailored tips")
}

func TestModel_TipsWithoutRequester(t *testing.T) {
	m := newTestModel(t)

	m, cmd := update(t, m, keyRunes("t"))

	assert.NotNil(t, cmd)
	assert.False(t, m.tipsPanel.Loading())
	assert.True(t, m.status.isError)
}

func TestModel_PanelNavigation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	m := newTestModel(t, WithLeaderboard(db.Storage))
	require.Len(t, m.panels, 3)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, PanelNews, m.activePanel())
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, PanelLeaderboard, m.activePanel())
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, PanelCalculator, m.activePanel())
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, PanelLeaderboard, m.activePanel())
}

func TestModel_Leaderboard(t *testing.T) {
	db := testutil.SetupTestDB(t)
	db.SeedLeaderboard(map[string]int{"Ana": 50, "Bo": 30})
	m := newTestModel(t, WithLeaderboard(db.Storage))

	m, _ = update(t, m, m.loadLeaderboard()())
	m.active = 2

	entries := m.leaderboard.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "Ana", entries[0].Name)
	assert.Contains(t, m.View(), "Bo")
}

func TestModel_SaveTrip(t *testing.T) {
	db := testutil.SetupTestDB(t)
	m := newTestModel(t, WithTrips(db.Storage))
	m, _ = update(t, m, keyRunes("L"))

	m, cmd := update(t, m, keyRunes("s"))
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())

	assert.False(t, m.status.isError)
	assert.Contains(t, m.status.text, "Saved trip")

	trips, err := db.Storage.ListTrips(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, trips, 1)
	assert.InDelta(t, 10, trips[0].Snapshot.Bus, 1e-9)
}

func TestModel_StatusClears(t *testing.T) {
	m := newTestModel(t)
	_ = m.showStatus("first", false)
	_ = m.showStatus("second", false)

	m, _ = update(t, m, clearStatusMsg{id: 1})
	assert.Equal(t, "second", m.status.text)

	m, _ = update(t, m, clearStatusMsg{id: 2})
	assert.Empty(t, m.status.text)
}

func TestModel_Quit(t *testing.T) {
	m := newTestModel(t)

	m, cmd := update(t, m, keyRunes("q"))

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}

func TestModel_WindowResize(t *testing.T) {
	m := newTestModel(t)

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 140, Height: 50})

	assert.Equal(t, 140, m.width)
	assert.Equal(t, 50, m.height)
	assert.Contains(t, m.View(), "Calculator")
}
