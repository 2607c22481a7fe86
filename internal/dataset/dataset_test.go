package dataset

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamenight-tracker/internal/domain"
)

const sampleYAML = `
players:
  - id: p1
    first_name: Alice
  - id: p2
    first_name: Bob
    show_on_leaderboard: false
games:
  - id: catan
    name: Catan
    points: 3
    tags: [strategy]
events:
  - id: e1
    date: 2024-03-01
    player_ids: [p1, p2]
results:
  - id: r1
    event_id: e1
    game_id: catan
    player_results:
      - player_id: p1
        is_winner: true
      - player_id: p2
        rank: 2
`

func TestDecodeYAML(t *testing.T) {
	snap, err := Decode(strings.NewReader(sampleYAML), FormatYAML)
	require.NoError(t, err)

	require.Len(t, snap.Players, 2)
	assert.True(t, snap.Players[0].ShowOnLeaderboard, "missing flag defaults to shown")
	assert.False(t, snap.Players[1].ShowOnLeaderboard)

	require.Len(t, snap.Events, 1)
	assert.Equal(t, 2024, snap.Events[0].Year())
	assert.Equal(t, 1, snap.Events[0].Date.Day())

	require.Len(t, snap.Results, 1)
	pr := snap.Results[0].PlayerResults
	require.Len(t, pr, 2)
	assert.True(t, pr[0].IsWinner)
	require.NotNil(t, pr[1].Rank)
	assert.Equal(t, 2, *pr[1].Rank)
	assert.Equal(t, []string{"strategy"}, snap.Games[0].Tags)
}

func TestDecodeJSON(t *testing.T) {
	snap, err := Decode(strings.NewReader(`{"events":[{"id":"e1","date":"2023-12-31"}]}`), FormatJSON)
	require.NoError(t, err)
	require.Len(t, snap.Events, 1)
	assert.Equal(t, 2023, snap.Events[0].Year())
	assert.Empty(t, snap.Players)
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode(strings.NewReader("players: [unclosed"), FormatYAML)
	assert.Error(t, err)

	_, err = Decode(strings.NewReader(`{"events":[{"id":"e1","date":"March"}]}`), FormatJSON)
	assert.Error(t, err)
}

func TestDecodeEmptyYAML(t *testing.T) {
	snap, err := Decode(strings.NewReader(""), FormatYAML)
	require.NoError(t, err)
	assert.Empty(t, snap.Results)
}

func TestLoadPicksFormatFromExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "night.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"players":[{"id":"p1","first_name":"Alice"}]}`), 0o600))

	snap, err := Load(path)
	require.NoError(t, err)
	require.Len(t, snap.Players, 1)
	assert.Equal(t, "Alice", snap.Players[0].DisplayName())

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"yaml": FormatYAML, "YML": FormatYAML, "json": FormatJSON} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("csv")
	assert.Error(t, err)

	assert.Equal(t, FormatJSON, FormatOf("a/b.JSON"))
	assert.Equal(t, FormatYAML, FormatOf("a/b.yml"))
}

func TestEncodeYAMLUsesJSONNames(t *testing.T) {
	var buf bytes.Buffer
	err := Encode(&buf, domain.EventScorer{Player: domain.PlayerInfo{ID: "p1", DisplayName: "Alice"}, Points: 4}, FormatYAML)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "display_name: Alice")
	assert.Contains(t, out, "points: 4")
}

func TestEncodeJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, map[string]int{"wins": 2}, FormatJSON))
	assert.JSONEq(t, `{"wins":2}`, buf.String())
}
