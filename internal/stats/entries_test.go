package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamenight-tracker/internal/domain"
)

func TestExtractEntries(t *testing.T) {
	results := []domain.Result{
		result("r1", "e1", "g1", 0, win("p1"), lose("p2"), play("p3")),
		result("r2", "e1", "g2", 1, play("p2"), play("p3")),
		result("r3", "e2", "g1", 0, domain.PlayerResult{PlayerID: "p1", Rank: intPtr(1)}, play("p3")),
	}

	entries := ExtractEntries(results, "p1")
	require.Len(t, entries, 2)

	assert.Equal(t, "r1", entries[0].ResultID)
	assert.True(t, entries[0].IsWinner)
	assert.ElementsMatch(t, []string{"p2", "p3"}, entries[0].OpponentIDs)

	assert.Equal(t, "r3", entries[1].ResultID)
	assert.True(t, entries[1].IsWinner, "rank one counts as a win")
	assert.Equal(t, []string{"p3"}, entries[1].OpponentIDs)

	assert.Empty(t, ExtractEntries(results, "nobody"))
}
