package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Veraticus/carbon-footprint/internal/api"
	"github.com/Veraticus/carbon-footprint/internal/api/handlers"
	"github.com/Veraticus/carbon-footprint/internal/model"
	"github.com/Veraticus/carbon-footprint/internal/news"
	"github.com/Veraticus/carbon-footprint/internal/testutil"
	"github.com/Veraticus/carbon-footprint/internal/tips"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*httptest.Server, *testutil.TestDB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	server := httptest.NewServer(api.NewRouter(api.Dependencies{
		News:        db.Storage,
		Tips:        tips.NewAdvisor(),
		Leaderboard: db.Storage,
		Version:     "test",
	}))
	t.Cleanup(server.Close)
	return server, db
}

func getJSON(t *testing.T, url string, into any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	if into != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(into))
	}
	return resp
}

func TestRouter_Health(t *testing.T) {
	server, _ := newTestServer(t)

	var body map[string]any
	resp := getJSON(t, server.URL+"/health", &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", body["status"])
	assert.Equal(t, "test", body["version"])
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRouter_IndexAndNotFound(t *testing.T) {
	server, _ := newTestServer(t)

	var index map[string]any
	resp := getJSON(t, server.URL+"/api", &index)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, index["endpoints"], "POST /api/tailored-tips")

	resp = getJSON(t, server.URL+"/nope", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRouter_NewsFeedFeedsPager(t *testing.T) {
	server, db := newTestServer(t)
	db.SeedNews(12, func(i int) string {
		if i > 0 && i%3 == 0 {
			return "technology"
		}
		return "policy"
	})

	pager := news.NewPager(news.NewClient(server.URL, server.Client()))
	require.NoError(t, pager.LoadAll(context.Background()))

	featured, ok := pager.Featured()
	require.True(t, ok)
	assert.Equal(t, "Story 0", featured.Title)
	assert.Len(t, pager.Rendered(), 9)

	assert.Len(t, pager.SetCategory("technology"), 3)
	assert.Equal(t, news.StateExhausted, pager.State())
}

func TestRouter_NewsCategoryAndLimit(t *testing.T) {
	server, db := newTestServer(t)
	db.SeedNews(10, func(i int) string {
		if i%2 == 0 {
			return "Energy"
		}
		return "transport"
	})

	var body struct {
		Items []model.NewsItem `json:"items"`
	}
	getJSON(t, server.URL+"/api/news?category=energy&limit=2", &body)
	require.Len(t, body.Items, 2)
	assert.Equal(t, "Story 0", body.Items[0].Title)
	assert.Equal(t, "Story 2", body.Items[1].Title)

	getJSON(t, server.URL+"/api/news", &body)
	assert.Len(t, body.Items, 10)
}

func TestRouter_NewsEmpty(t *testing.T) {
	server, _ := newTestServer(t)

	items, err := news.NewClient(server.URL, server.Client()).FetchAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestRouter_TailoredTipsRoundTrip(t *testing.T) {
	server, _ := newTestServer(t)

	requester := tips.NewRequester(server.URL, tips.WithHTTPClient(server.Client()))
	outcome := requester.RequestTailoredTips(context.Background(), model.Snapshot{
		Car: 30, Bus: 5, TotalDistance: 35, TotalEmission: 6.9,
	})

	require.NoError(t, outcome.Err)
	assert.True(t, outcome.Produced())
	assert.NotEmpty(t, outcome.Tips)
	assert.LessOrEqual(t, len(outcome.Tips), tips.MaxTips)
}

func TestRouter_TailoredTipsEmptyJourney(t *testing.T) {
	server, _ := newTestServer(t)

	requester := tips.NewRequester(server.URL, tips.WithHTTPClient(server.Client()))
	outcome := requester.RequestTailoredTips(context.Background(), model.Snapshot{})

	assert.Equal(t, tips.ReasonNoTips, outcome.Reason)
	assert.Equal(t, []string{tips.FallbackNoTips}, outcome.Tips)
}

func TestRouter_TailoredTipsBadRequest(t *testing.T) {
	server, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "malformed", body: `{"car":`},
		{name: "negative distance", body: `{"car":-4}`},
		{name: "wrong type", body: `{"car":"far"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(server.URL+"/api/tailored-tips", "application/json", strings.NewReader(tt.body))
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestRouter_Emissions(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Post(server.URL+"/api/emissions", "application/json",
		strings.NewReader(`{"bus":10,"car":5,"bike":0,"cycle":15,"walking":10}`))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body handlers.EmissionsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.InDelta(t, 40, body.TotalDistance, 1e-9)
	assert.InDelta(t, 2.25, body.TotalEmission, 1e-9)
	assert.InDelta(t, 0.625, body.ZeroEmissionShare, 1e-9)
	assert.Equal(t, "outstanding", body.Tier)
	assert.Equal(t, 63, body.Score)
}

func TestRouter_Leaderboard(t *testing.T) {
	server, db := newTestServer(t)
	db.SeedLeaderboard(map[string]int{"Ana": 50, "Bo": 80})

	var body struct {
		Entries []model.LeaderboardEntry `json:"entries"`
	}
	resp := getJSON(t, server.URL+"/api/leaderboard?limit=5", &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, body.Entries, 2)
	assert.Equal(t, "Bo", body.Entries[0].Name)
	assert.Equal(t, 1, body.Entries[0].Rank)
	assert.Equal(t, 80, body.Entries[0].Points)
}

func TestRouter_CORSPreflight(t *testing.T) {
	server, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, server.URL+"/api/tailored-tips", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), "POST")
}
