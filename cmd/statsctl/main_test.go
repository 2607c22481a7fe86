package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/gamenight-tracker/internal/domain"
)

const sampleDataset = `
players:
  - id: p1
    first_name: Alice
  - id: p2
    first_name: Bob
games:
  - id: catan
    name: Catan
    points: 3
    tags: [strategy]
events:
  - id: e2023
    date: 2023-05-01
    player_ids: [p1, p2]
  - id: e2024
    date: 2024-05-01
    player_ids: [p1, p2]
results:
  - id: r1
    event_id: e2023
    game_id: catan
    player_results:
      - {player_id: p1, rank: 1}
      - {player_id: p2, rank: 2}
  - id: r2
    event_id: e2024
    game_id: catan
    order: 0
    player_results:
      - {player_id: p2, is_winner: true}
      - {player_id: p1, rank: 2}
  - id: r3
    event_id: e2024
    game_id: catan
    order: 1
    player_results:
      - {player_id: p2, is_winner: true}
      - {player_id: p1, rank: 2}
`

func writeDataset(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gamenight.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleDataset), 0o644))
	return path
}

func run(t *testing.T, args ...string) ([]byte, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp(&out, slog.New(slog.NewTextHandler(io.Discard, nil)))
	app.Writer = io.Discard
	app.ErrWriter = io.Discard
	err := app.Run(append([]string{"statsctl"}, args...))
	return out.Bytes(), err
}

func TestLeaderboardCommand(t *testing.T) {
	path := writeDataset(t)

	out, err := run(t, "-i", path, "--format", "json", "leaderboard")
	require.NoError(t, err)

	var lb domain.Leaderboard
	require.NoError(t, json.Unmarshal(out, &lb))
	assert.Equal(t, domain.ScopeOverall, lb.Scope)
	require.Len(t, lb.Rows, 2)
	assert.Equal(t, "p2", lb.Rows[0].Player.ID)
	assert.Equal(t, 6, lb.Rows[0].Data.Points)
	assert.Equal(t, domain.MedalGold, lb.Rows[0].Medal)
	assert.Equal(t, "p1", lb.Rows[1].Player.ID)
}

func TestLeaderboardCommandYearFilter(t *testing.T) {
	path := writeDataset(t)

	out, err := run(t, "-i", path, "--format", "json", "--year", "2023", "leaderboard")
	require.NoError(t, err)

	var lb domain.Leaderboard
	require.NoError(t, json.Unmarshal(out, &lb))
	assert.Equal(t, domain.YearScope(2023), lb.Scope)
	require.NotEmpty(t, lb.Rows)
	assert.Equal(t, "p1", lb.Rows[0].Player.ID)
	assert.Equal(t, 3, lb.Rows[0].Data.Points)
}

func TestPlayerCommandYAMLOutput(t *testing.T) {
	path := writeDataset(t)

	out, err := run(t, "-i", path, "player", "p1")
	require.NoError(t, err)

	var doc struct {
		Player struct {
			ID string `yaml:"id"`
		} `yaml:"player"`
		Data struct {
			Games int `yaml:"games"`
			Wins  int `yaml:"wins"`
		} `yaml:"data"`
		Position int `yaml:"position"`
	}
	require.NoError(t, yaml.Unmarshal(out, &doc))
	assert.Equal(t, "p1", doc.Player.ID)
	assert.Equal(t, 3, doc.Data.Games)
	assert.Equal(t, 1, doc.Data.Wins)
	assert.Equal(t, 2, doc.Position)
}

func TestPlayerCommandErrors(t *testing.T) {
	path := writeDataset(t)

	_, err := run(t, "-i", path, "player")
	assert.Error(t, err)

	_, err = run(t, "-i", path, "player", "nobody")
	assert.ErrorIs(t, err, domain.ErrPlayerNotFound)
}

func TestGameCommand(t *testing.T) {
	path := writeDataset(t)

	out, err := run(t, "-i", path, "--format", "json", "game", "catan")
	require.NoError(t, err)

	var gs domain.GameStats
	require.NoError(t, json.Unmarshal(out, &gs))
	assert.Equal(t, "catan", gs.Game.ID)

	_, err = run(t, "-i", path, "game", "chess")
	assert.ErrorIs(t, err, domain.ErrGameNotFound)
}

func TestChampionshipsCommand(t *testing.T) {
	path := writeDataset(t)

	out, err := run(t, "-i", path, "--format", "json", "--current-year", "2025", "championships")
	require.NoError(t, err)

	var report domain.ChampionshipReport
	require.NoError(t, json.Unmarshal(out, &report))
	require.Len(t, report.Championships, 2)
	assert.Equal(t, 2023, report.Championships[0].Year)
	assert.Equal(t, "p1", report.Championships[0].Player.ID)
	assert.Equal(t, 2024, report.Championships[1].Year)
	assert.Equal(t, "p2", report.Championships[1].Player.ID)
}

func TestOutputFile(t *testing.T) {
	path := writeDataset(t)
	target := filepath.Join(t.TempDir(), "insights.json")

	out, err := run(t, "-i", path, "-o", target, "--format", "json", "insights")
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	var insights domain.Insights
	require.NoError(t, json.Unmarshal(data, &insights))
	assert.NotEmpty(t, insights.Attendance)
}

func TestFlagErrors(t *testing.T) {
	path := writeDataset(t)

	_, err := run(t, "leaderboard")
	assert.Error(t, err, "input is required")

	_, err = run(t, "-i", path, "--format", "xml", "leaderboard")
	assert.Error(t, err)

	_, err = run(t, "-i", path, "--from", "2024-06-01", "--to", "2024-01-01", "leaderboard")
	assert.Error(t, err)

	_, err = run(t, "-i", filepath.Join(t.TempDir(), "missing.yaml"), "leaderboard")
	assert.Error(t, err)
}
