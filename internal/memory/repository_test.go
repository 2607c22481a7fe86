package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamenight-tracker/internal/domain"
)

func seed() domain.Snapshot {
	return domain.Snapshot{
		Players: []domain.Player{{ID: "p1", FirstName: "Alice"}},
		Games: []domain.Game{
			{ID: "g2", Name: "Uno"},
			{ID: "g1", Name: "Catan"},
		},
		Events: []domain.Event{
			{ID: "e2", Date: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
			{ID: "e1", Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		},
		Results: []domain.Result{
			{ID: "r2", EventID: "e1", Order: 1},
			{ID: "r1", EventID: "e1", Order: 0},
			{ID: "r3", EventID: "e2"},
		},
	}
}

func TestSeedIsCopied(t *testing.T) {
	s := seed()
	repo := NewRepository(s)
	s.Players[0].FirstName = "Changed"

	p, err := repo.GetPlayer(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", p.FirstName)
}

func TestListOrdering(t *testing.T) {
	repo := NewRepository(seed())
	ctx := context.Background()

	games, err := repo.ListGames(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Catan", games[0].Name)

	events, err := repo.ListEvents(ctx)
	require.NoError(t, err)
	assert.Equal(t, "e1", events[0].ID)

	results, err := repo.ListResults(ctx, "e1")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "r1", results[0].ID)

	all, err := repo.ListResults(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	configs, err := repo.ListLeaderboards(ctx)
	require.NoError(t, err)
	assert.NotNil(t, configs)
}

func TestNotFoundErrors(t *testing.T) {
	repo := NewRepository(domain.Snapshot{})
	ctx := context.Background()

	assert.ErrorIs(t, repo.UpdatePlayer(ctx, domain.Player{ID: "x"}), domain.ErrPlayerNotFound)
	assert.ErrorIs(t, repo.DeleteGame(ctx, "x"), domain.ErrGameNotFound)
	assert.ErrorIs(t, repo.DeleteEvent(ctx, "x"), domain.ErrEventNotFound)
	assert.ErrorIs(t, repo.DeleteResult(ctx, "x"), domain.ErrResultNotFound)
	_, err := repo.GetLeaderboard(ctx, "x")
	assert.ErrorIs(t, err, domain.ErrLeaderboardNotFound)
}

func TestDeleteEventCascades(t *testing.T) {
	repo := NewRepository(seed())
	ctx := context.Background()

	require.NoError(t, repo.DeleteEvent(ctx, "e1"))

	snap, err := repo.LoadSnapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Events, 1)
	require.Len(t, snap.Results, 1)
	assert.Equal(t, "r3", snap.Results[0].ID)
}

func TestUpsertResultKeepsCreatedAt(t *testing.T) {
	repo := NewRepository(domain.Snapshot{})
	ctx := context.Background()
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.UpsertResult(ctx, domain.Result{ID: "r1", GameID: "g1", CreatedAt: created}))
	require.NoError(t, repo.UpsertResults(ctx, []domain.Result{
		{ID: "r1", GameID: "g2", CreatedAt: created.Add(time.Hour)},
		{ID: "r2", GameID: "g1"},
	}))

	res, err := repo.GetResult(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "g2", res.GameID)
	assert.Equal(t, created, res.CreatedAt)

	all, err := repo.ListResults(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestLeaderboardIDsAreUnique(t *testing.T) {
	repo := NewRepository(domain.Snapshot{})
	ctx := context.Background()

	require.NoError(t, repo.CreateLeaderboard(ctx, domain.LeaderboardConfig{ID: "spring"}))
	assert.ErrorIs(t, repo.CreateLeaderboard(ctx, domain.LeaderboardConfig{ID: "spring"}), domain.ErrLeaderboardExists)
	require.NoError(t, repo.DeleteLeaderboard(ctx, "spring"))
	assert.ErrorIs(t, repo.DeleteLeaderboard(ctx, "spring"), domain.ErrLeaderboardNotFound)
}

func TestLoadSnapshotHonorsContext(t *testing.T) {
	repo := NewRepository(seed())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.LoadSnapshot(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestArchivedYears(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(seed())

	years, err := repo.ArchivedYears(ctx)
	require.NoError(t, err)
	assert.Empty(t, years)

	require.NoError(t, repo.MarkArchived(ctx, 2023, "standings/2023.json", "aaa"))
	require.NoError(t, repo.MarkArchived(ctx, 2023, "standings/2023.json", "bbb"))
	years, err = repo.ArchivedYears(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[int]string{2023: "bbb"}, years)
}
