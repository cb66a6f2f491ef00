package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Veraticus/carbon-footprint/internal/config"
	"github.com/Veraticus/carbon-footprint/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// useTestConfig points the global viper config at a fresh database.
func useTestConfig(t *testing.T) string {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	config.SetDefaults(viper.GetViper())
	dbPath := filepath.Join(t.TempDir(), "footprint.db")
	viper.Set("database.path", dbPath)
	viper.Set("database.backup_dir", filepath.Join(t.TempDir(), "backups"))
	return dbPath
}

func execute(t *testing.T, cmd *cobra.Command, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCalcCommand_JSON(t *testing.T) {
	out, err := execute(t, calcCmd(), "", "--car", "10", "--walking", "20", "--cycle", "10", "--json")
	require.NoError(t, err)

	var result calcResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.InDelta(t, 40.0, result.TotalDistance, 1e-9)
	assert.InDelta(t, 2.1, result.TotalEmission, 1e-9)
	assert.InDelta(t, 6.3, result.TotalSaved, 1e-9)
	assert.InDelta(t, 0.75, result.ZeroEmissionShare, 1e-9)
	assert.Equal(t, 75, result.Score)
	assert.Equal(t, "outstanding", result.Tier)
	assert.InDelta(t, 2.1, result.Emissions[model.ModeCar], 1e-9)
	assert.Zero(t, result.TripID)
}

func TestCalcCommand_InvalidDistance(t *testing.T) {
	_, err := execute(t, calcCmd(), "", "--bus", "-5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--bus")
}

func TestCalcCommand_SaveThenListTrips(t *testing.T) {
	useTestConfig(t)

	out, err := execute(t, calcCmd(), "", "--bus", "12", "--save", "--note", "commute")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved as trip #1")

	out, err = execute(t, tripsCmd(), "", "list", "--json")
	require.NoError(t, err)

	var trips []model.Trip
	require.NoError(t, json.Unmarshal([]byte(out), &trips))
	require.Len(t, trips, 1)
	assert.Equal(t, "commute", trips[0].Note)
	assert.InDelta(t, 12.0, trips[0].Snapshot.Bus, 1e-9)
}

func TestTipsCommand_Local(t *testing.T) {
	out, err := execute(t, tipsCmd(), "", "--car", "30")
	require.NoError(t, err)
	assert.Contains(t, out, "Tailored tips")
	assert.Contains(t, out, "1. ")
}

func TestNewsImportAndList(t *testing.T) {
	useTestConfig(t)

	feed := `{"items": [
		{"title": "Solar record", "link": "https://example.com/solar", "source": "Wire", "category": "Energy", "published": "2024-03-02T10:00:00Z"},
		{"title": "Bike lanes", "link": "https://example.com/bikes", "source": "City", "category": "Transport", "published": "2024-03-01T10:00:00Z"},
		{"title": "", "link": "https://example.com/empty"}
	]}`
	path := filepath.Join(t.TempDir(), "feed.json")
	require.NoError(t, os.WriteFile(path, []byte(feed), 0o600))

	out, err := execute(t, newsCmd(), "", "import", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 items (1 skipped)")

	out, err = execute(t, newsCmd(), "", "list", "--category", "energy", "--json")
	require.NoError(t, err)

	var resp struct {
		Items []model.NewsItem `json:"items"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Solar record", resp.Items[0].Title)
}

func TestNewsImport_BadFile(t *testing.T) {
	useTestConfig(t)

	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

	out, err := execute(t, newsCmd(), "", "import", path)
	require.Error(t, err)
	assert.Contains(t, out, "Could not import: broken.json")
}

func TestNewsSync_NoSources(t *testing.T) {
	useTestConfig(t)

	_, err := execute(t, newsCmd(), "", "sync")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No news sources configured")
}

func TestChallengeLifecycle(t *testing.T) {
	useTestConfig(t)

	out, err := execute(t, challengesCmd(), "", "add", "Car-free week", "--target", "7", "--unit", "days", "--points", "50")
	require.NoError(t, err)
	assert.Contains(t, out, "Created challenge #1")

	out, err = execute(t, usersCmd(), "", "add", "ana@example.com", "Ana")
	require.NoError(t, err)
	assert.Contains(t, out, "Added user #1")

	_, err = execute(t, challengesCmd(), "", "join", "1", "1")
	require.NoError(t, err)

	out, err = execute(t, challengesCmd(), "", "progress", "1", "1", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "completed!")

	out, err = execute(t, leaderboardCmd(), "", "--json")
	require.NoError(t, err)
	var entries []model.LeaderboardEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, 50, entries[0].Points)
	assert.Equal(t, 1, entries[0].Completed)

	_, err = execute(t, challengesCmd(), "", "update", "1", "--active=false")
	require.NoError(t, err)

	out, err = execute(t, challengesCmd(), "", "list", "--active", "--json")
	require.NoError(t, err)
	var active []model.Challenge
	require.NoError(t, json.Unmarshal([]byte(out), &active))
	assert.Empty(t, active)

	out, err = execute(t, challengesCmd(), "", "delete", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing deleted")

	out, err = execute(t, challengesCmd(), "y\n", "delete", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted challenge #1")
}

func TestChallengeUpdate_NothingToUpdate(t *testing.T) {
	useTestConfig(t)

	_, err := execute(t, challengesCmd(), "", "update", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Nothing to update")
}

func TestChallengeUpdateFromFlags(t *testing.T) {
	tests := []struct {
		check func(t *testing.T, u model.ChallengeUpdate)
		name  string
		args  []string
	}{
		{
			name: "no flags",
			args: nil,
			check: func(t *testing.T, u model.ChallengeUpdate) {
				assert.True(t, u.IsEmpty())
			},
		},
		{
			name: "points only",
			args: []string{"--points", "80"},
			check: func(t *testing.T, u model.ChallengeUpdate) {
				require.NotNil(t, u.PointsReward)
				assert.Equal(t, 80, *u.PointsReward)
				assert.Nil(t, u.Title)
				assert.Nil(t, u.IsActive)
			},
		},
		{
			name: "explicit empty description",
			args: []string{"--description", ""},
			check: func(t *testing.T, u model.ChallengeUpdate) {
				require.NotNil(t, u.Description)
				assert.Empty(t, *u.Description)
			},
		},
		{
			name: "deactivate and retype",
			args: []string{"--active=false", "--type", "team"},
			check: func(t *testing.T, u model.ChallengeUpdate) {
				require.NotNil(t, u.IsActive)
				assert.False(t, *u.IsActive)
				require.NotNil(t, u.Type)
				assert.Equal(t, model.ChallengeTeam, *u.Type)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := challengesUpdateCmd()
			require.NoError(t, cmd.ParseFlags(tt.args))
			update, err := challengeUpdateFromFlags(cmd)
			require.NoError(t, err)
			tt.check(t, update)
		})
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		name    string
		arg     string
		want    int
		wantErr bool
	}{
		{name: "valid", arg: "12", want: 12},
		{name: "zero", arg: "0", wantErr: true},
		{name: "negative", arg: "-3", wantErr: true},
		{name: "not a number", arg: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseID(tt.arg, "challenge")
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilterNews(t *testing.T) {
	items := []model.NewsItem{
		{Title: "a", Category: "Energy"},
		{Title: "b", Category: "Transport"},
		{Title: "c", Category: "Energy"},
	}

	assert.Len(t, filterNews(items, "", 0), 3)
	assert.Len(t, filterNews(items, "all", 2), 2)
	energy := filterNews(items, "energy", 0)
	require.Len(t, energy, 2)
	assert.Equal(t, "c", energy[1].Title)
}

func TestMigrateCommand_Status(t *testing.T) {
	useTestConfig(t)

	out, err := execute(t, migrateCmd(), "", "--status")
	require.NoError(t, err)
	assert.Contains(t, out, "Schema version 0")

	out, err = execute(t, migrateCmd(), "")
	require.NoError(t, err)
	assert.Contains(t, out, "Migrated schema from version 0")

	out, err = execute(t, migrateCmd(), "")
	require.NoError(t, err)
	assert.Contains(t, out, "up to date")
}

func TestExportCommand(t *testing.T) {
	useTestConfig(t)

	_, err := execute(t, usersCmd(), "", "add", "bo@example.com", "Bo")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "export.json")
	out, err := execute(t, exportCmd(), "", "--output", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var dump map[string]struct {
		RowCount int `json:"row_count"`
	}
	require.NoError(t, json.Unmarshal(data, &dump))
	assert.Equal(t, 1, dump["users"].RowCount)
}
