package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamenight-tracker/internal/domain"
)

func gameNightSnapshot() domain.Snapshot {
	rank := func(id string, r int) domain.PlayerResult {
		return domain.PlayerResult{PlayerID: id, Rank: intPtr(r)}
	}
	return domain.Snapshot{
		Players: []domain.Player{player("p1", "Alice"), player("p2", "Bob"), player("p3", "Cara")},
		Games: []domain.Game{
			game("catan", "Catan", 2, "strategy"),
			game("kart", "Mario Kart", 1, "party"),
			game("azul", "azul", 3, "strategy"),
		},
		Events: []domain.Event{
			event("e1", "2024-01-01", "p1", "p2", "p3"),
			event("e2", "2024-02-01", "p1", "p2"),
		},
		Results: []domain.Result{
			result("r1", "e1", "catan", 0, rank("p1", 1), rank("p2", 2), rank("p3", 3)),
			result("r2", "e1", "catan", 1, rank("p2", 1), rank("p1", 2)),
			result("r3", "e1", "kart", 2, win("p3"), play("p1")),
			result("r4", "e2", "catan", 0, rank("p1", 1), rank("p2", 2)),
		},
	}
}

func TestGameData(t *testing.T) {
	snap := gameNightSnapshot()
	calc := NewCalculator(DefaultOptions(), nil)
	data := calc.GameData(snap.Games[0], NewScope(snap, Filter{}))

	assert.Equal(t, 3, data.TimesPlayed)
	assert.Equal(t, 6, data.TotalPointsAwarded)
	assert.Equal(t, 3, data.UniquePlayers)
	assert.Equal(t, 2.3, data.AvgPlayersPerGame)
	assert.Equal(t, map[string]int{"p1": 2, "p2": 1}, data.WinsByPlayer)
	assert.Equal(t, map[int]int{1: 3, 2: 3, 3: 1}, data.RankDistribution)
	require.NotNil(t, data.LastPlayed)
	assert.Equal(t, date("2024-02-01"), *data.LastPlayed)
}

func TestGameDataNeverPlayed(t *testing.T) {
	snap := gameNightSnapshot()
	calc := NewCalculator(DefaultOptions(), nil)
	data := calc.GameData(snap.Games[2], NewScope(snap, Filter{}))

	assert.Zero(t, data.TimesPlayed)
	assert.Zero(t, data.AvgPlayersPerGame)
	assert.Nil(t, data.LastPlayed)
	assert.Empty(t, data.WinsByPlayer)
}

func TestAllGameDataOrdering(t *testing.T) {
	snap := gameNightSnapshot()
	calc := NewCalculator(DefaultOptions(), nil)

	all := calc.AllGameData(NewScope(snap, Filter{}))
	require.Len(t, all, 3)
	assert.Equal(t, []string{"catan", "kart", "azul"}, []string{all[0].Game.ID, all[1].Game.ID, all[2].Game.ID})

	tagged := calc.AllGameData(NewScope(snap, Filter{GameTags: []string{"Strategy"}}))
	require.Len(t, tagged, 2)
	assert.Equal(t, "catan", tagged[0].Game.ID)
	assert.Equal(t, "azul", tagged[1].Game.ID)
}

func TestPlayerGameStats(t *testing.T) {
	snap := gameNightSnapshot()
	calc := NewCalculator(DefaultOptions(), nil)
	stats := calc.PlayerGameStats(snap.Games[0], NewScope(snap, Filter{}))

	require.Len(t, stats, 3)
	assert.Equal(t, "p1", stats[0].Player.ID)
	assert.Equal(t, 2, stats[0].Wins)
	assert.Equal(t, 3, stats[0].Games)
	assert.Equal(t, 4, stats[0].Points)
	require.NotNil(t, stats[0].AverageRank)
	assert.Equal(t, 1.33, *stats[0].AverageRank)

	assert.Equal(t, "p2", stats[1].Player.ID)
	assert.Equal(t, "p3", stats[2].Player.ID)
	assert.Zero(t, stats[2].Wins)
}

func TestTopPlayersForGame(t *testing.T) {
	snap := gameNightSnapshot()
	calc := NewCalculator(DefaultOptions(), nil)
	top := calc.TopPlayersForGame(snap.Games[0], NewScope(snap, Filter{}))

	require.Len(t, top, 2, "p3 played catan only once")
	assert.Equal(t, "p1", top[0].Player.ID)
	assert.Equal(t, "p2", top[1].Player.ID)
}
