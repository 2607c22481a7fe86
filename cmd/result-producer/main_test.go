package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomResult(t *testing.T) {
	players := []string{"p1", "p2", "p3", "p4"}
	for i := 0; i < 50; i++ {
		sub := randomResult("e1", []string{"catan", "uno"}, players, i)

		assert.Equal(t, "e1", sub.EventID)
		assert.Contains(t, []string{"catan", "uno"}, sub.GameID)
		assert.Equal(t, i, sub.Order)
		assert.NotEmpty(t, sub.ID)
		require.GreaterOrEqual(t, len(sub.PlayerResults), 2)
		require.LessOrEqual(t, len(sub.PlayerResults), len(players))

		seen := map[string]bool{}
		for j, pr := range sub.PlayerResults {
			assert.False(t, seen[pr.PlayerID], "duplicate player %s", pr.PlayerID)
			seen[pr.PlayerID] = true
			require.NotNil(t, pr.Rank)
			assert.Equal(t, j+1, *pr.Rank)
		}
		assert.True(t, sub.PlayerResults[0].Won())
		assert.True(t, sub.PlayerResults[len(sub.PlayerResults)-1].IsLoser)
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b "))
	assert.Empty(t, splitList(""))
}
