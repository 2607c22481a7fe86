package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamenight-tracker/internal/domain"
	"github.com/gamenight-tracker/internal/memory"
	"github.com/gamenight-tracker/internal/redis"
	"github.com/gamenight-tracker/internal/stats"
)

// recordSeason stores a 2024 Catan win for p1 and a 2025 Uno win for p2
func recordSeason(t *testing.T, svc *TrackerService) {
	t.Helper()
	ctx := context.Background()
	_, err := svc.RecordResult(ctx, submission("e2024", "catan", "p1", "p2", "p3"))
	require.NoError(t, err)
	_, err = svc.RecordResult(ctx, submission("e2025", "uno", "p2", "p1"))
	require.NoError(t, err)
}

func rowIDs(rows []domain.LeaderboardRow) []string {
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.Player.ID
	}
	return ids
}

func TestCreatePlayerPublishesSnapshot(t *testing.T) {
	svc := newTestService(t, memory.NewRepository(domain.Snapshot{}))
	before := svc.Snapshot().Version

	p, err := svc.CreatePlayer(context.Background(), domain.PlayerRequest{FirstName: "Dana"})
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.True(t, p.ShowOnLeaderboard)
	assert.Equal(t, testNow, p.CreatedAt)

	snap := svc.Snapshot()
	assert.Equal(t, before+1, snap.Version)
	require.Len(t, snap.Players, 1)
	assert.Equal(t, "Dana", snap.Players[0].FirstName)
}

func TestUpdatePlayerKeepsVisibilityWhenUnset(t *testing.T) {
	data := seedData()
	data.Players[0].ShowOnLeaderboard = false
	svc := newTestService(t, memory.NewRepository(data))

	p, err := svc.UpdatePlayer(context.Background(), "p1", domain.PlayerRequest{FirstName: "Alicia"})
	require.NoError(t, err)
	assert.Equal(t, "Alicia", p.FirstName)
	assert.False(t, p.ShowOnLeaderboard)

	_, err = svc.UpdatePlayer(context.Background(), "nobody", domain.PlayerRequest{FirstName: "X"})
	assert.ErrorIs(t, err, domain.ErrPlayerNotFound)
}

func TestCreateEventRejectsBadDate(t *testing.T) {
	svc := newTestService(t, memory.NewRepository(domain.Snapshot{}))

	_, err := svc.CreateEvent(context.Background(), domain.EventRequest{Date: "15/03/2025"})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	e, err := svc.CreateEvent(context.Background(), domain.EventRequest{Date: "2025-03-14", Location: "Bob's"})
	require.NoError(t, err)
	assert.Equal(t, 2025, e.Year())
}

func TestDeleteEventRemovesItsResults(t *testing.T) {
	svc := newTestService(t, seededRepo())
	recordSeason(t, svc)

	require.NoError(t, svc.DeleteEvent(context.Background(), "e2024"))

	results, err := svc.ListResults(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "e2025", results[0].EventID)
	assert.Len(t, svc.Snapshot().Results, 1)
}

func TestRecordResultValidation(t *testing.T) {
	svc := newTestService(t, seededRepo())

	tests := []struct {
		name string
		sub  domain.ResultSubmission
		want error
	}{
		{"unknown event", submission("nope", "catan", "p1"), domain.ErrEventNotFound},
		{"unknown game", submission("e2024", "chess", "p1"), domain.ErrGameNotFound},
		{"unknown player", submission("e2024", "catan", "p1", "ghost"), domain.ErrPlayerNotFound},
		{"duplicate player", submission("e2024", "catan", "p1", "p1"), domain.ErrInvalidResult},
		{"no players", domain.ResultSubmission{EventID: "e2024", GameID: "catan"}, domain.ErrInvalidResult},
		{"zero rank", domain.ResultSubmission{
			EventID:       "e2024",
			GameID:        "catan",
			PlayerResults: []domain.PlayerResult{{PlayerID: "p1", Rank: new(int)}},
		}, domain.ErrInvalidResult},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RecordResult(context.Background(), tt.sub)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, domain.ErrInvalidResult)
		})
	}
	assert.Empty(t, svc.Snapshot().Results)
}

func TestRecordResultReplacesExistingID(t *testing.T) {
	svc := newTestService(t, seededRepo())
	ctx := context.Background()

	first, err := svc.RecordResult(ctx, submission("e2024", "catan", "p1", "p2"))
	require.NoError(t, err)

	again := submission("e2024", "catan", "p2", "p1")
	again.ID = first.ID
	_, err = svc.RecordResult(ctx, again)
	require.NoError(t, err)

	snap := svc.Snapshot()
	require.Len(t, snap.Results, 1)
	assert.True(t, snap.Results[0].PlayerResults[0].IsWinner)
	assert.Equal(t, "p2", snap.Results[0].PlayerResults[0].PlayerID)
}

func TestRecordResultBatch(t *testing.T) {
	svc := newTestService(t, seededRepo())
	before := svc.Snapshot().Version

	outcome, err := svc.RecordResultBatch(context.Background(), domain.BatchResultSubmission{
		Results: []domain.ResultSubmission{
			submission("e2024", "catan", "p1", "p2"),
			submission("e2024", "chess", "p1", "p2"),
			submission("e2025", "uno", "p3", "p1"),
		},
	})
	require.NoError(t, err)

	assert.Len(t, outcome.Recorded, 2)
	require.Len(t, outcome.Failed, 1)
	assert.Equal(t, 1, outcome.Failed[0].Index)
	assert.Contains(t, outcome.Failed[0].Error, "game not found")

	snap := svc.Snapshot()
	assert.Equal(t, before+1, snap.Version, "one publish per batch")
	assert.Len(t, snap.Results, 2)
}

func TestRecordResultBatchAllRejected(t *testing.T) {
	svc := newTestService(t, seededRepo())
	before := svc.Snapshot().Version

	outcome, err := svc.RecordResultBatch(context.Background(), domain.BatchResultSubmission{
		Results: []domain.ResultSubmission{submission("nope", "catan", "p1")},
	})
	require.NoError(t, err)
	assert.Empty(t, outcome.Recorded)
	assert.Len(t, outcome.Failed, 1)
	assert.Equal(t, before, svc.Snapshot().Version)
}

func TestWriteSucceedsWhenReloadFails(t *testing.T) {
	repo := &flakyRepo{Repository: seededRepo()}
	svc := newTestService(t, repo)
	before := svc.Snapshot().Version

	repo.setFailLoad(true)
	_, err := svc.CreateGame(context.Background(), domain.GameRequest{Name: "Azul", Points: 2})
	require.NoError(t, err)

	assert.Equal(t, before, svc.Snapshot().Version)
	games, err := svc.ListGames(context.Background())
	require.NoError(t, err)
	assert.Len(t, games, 3)

	_, err = svc.Refresh(context.Background())
	assert.ErrorIs(t, err, errLoadFailed)
}

func TestLeaderboardScopes(t *testing.T) {
	svc := newTestService(t, seededRepo())
	recordSeason(t, svc)
	ctx := context.Background()

	overall, err := svc.Leaderboard(ctx, domain.ScopeOverall, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "Overall", overall.Name)
	assert.Equal(t, []string{"p1", "p2", "p3"}, rowIDs(overall.Rows))
	assert.Equal(t, 3, overall.Rows[0].Data.Points)
	assert.Equal(t, domain.MedalGold, overall.Rows[0].Medal)
	assert.Equal(t, svc.Snapshot().Version, overall.Version)

	season, err := svc.Leaderboard(ctx, domain.YearScope(2025), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "2025 season", season.Name)
	assert.Equal(t, []string{"p2", "p1"}, rowIDs(season.Rows))

	cfg, err := svc.CreateLeaderboard(ctx, domain.CreateLeaderboardRequest{
		ID:       "strategy",
		Name:     "Strategy",
		GameTags: []string{"strategy"},
	})
	require.NoError(t, err)
	assert.Equal(t, testNow, cfg.CreatedAt)

	strategy, err := svc.Leaderboard(ctx, domain.ConfigScope("strategy"), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "Strategy", strategy.Name)
	assert.Equal(t, []string{"p1", "p2", "p3"}, rowIDs(strategy.Rows))
	assert.Equal(t, 0, strategy.Rows[1].Data.Points)
}

func TestLeaderboardUnknownScopes(t *testing.T) {
	svc := newTestService(t, seededRepo())
	ctx := context.Background()

	for _, scope := range []string{"", "weekly", "year:abc", "year:12"} {
		_, err := svc.Leaderboard(ctx, scope, 0, 0)
		assert.ErrorIs(t, err, domain.ErrInvalidRequest, scope)
	}

	_, err := svc.Leaderboard(ctx, domain.ConfigScope("missing"), 0, 0)
	assert.ErrorIs(t, err, domain.ErrLeaderboardNotFound)
}

func TestLeaderboardPaging(t *testing.T) {
	svc := newTestService(t, seededRepo())
	recordSeason(t, svc)
	ctx := context.Background()

	page, err := svc.Leaderboard(ctx, domain.ScopeOverall, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"p2"}, rowIDs(page.Rows))
	assert.Equal(t, 2, page.Rows[0].Position)

	past, err := svc.Leaderboard(ctx, domain.ScopeOverall, 10, 5)
	require.NoError(t, err)
	assert.NotNil(t, past.Rows)
	assert.Empty(t, past.Rows)

	clamped, err := svc.Leaderboard(ctx, domain.ScopeOverall, -3, 1000)
	require.NoError(t, err)
	assert.Len(t, clamped.Rows, 3)
}

func TestLeaderboardAround(t *testing.T) {
	svc := newTestService(t, seededRepo())
	recordSeason(t, svc)
	ctx := context.Background()

	rows, err := svc.LeaderboardAround(ctx, domain.ScopeOverall, "p1", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, rowIDs(rows))

	rows, err = svc.LeaderboardAround(ctx, domain.ScopeOverall, "p2", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2", "p3"}, rowIDs(rows))

	_, err = svc.LeaderboardAround(ctx, domain.YearScope(2025), "p3", 1)
	assert.ErrorIs(t, err, domain.ErrPlayerNotFound)
}

func newCachedService(t *testing.T, repo Repository) (*TrackerService, *redis.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cache := redis.NewCacheWithClient(client, "test", time.Minute, testLogger())
	return newTestService(t, repo, WithCache(cache)), cache, mr
}

func TestLeaderboardIsCachedPerVersion(t *testing.T) {
	svc, cache, _ := newCachedService(t, seededRepo())
	ctx := context.Background()
	_, err := svc.RecordResult(ctx, submission("e2024", "catan", "p1", "p2"))
	require.NoError(t, err)
	rev := svc.Snapshot().Revision()

	_, err = svc.Leaderboard(ctx, domain.ScopeOverall, 0, 1)
	require.NoError(t, err)

	cached, err := cache.GetLeaderboard(ctx, domain.ScopeOverall, rev, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, rowIDs(cached.Rows))

	rows, err := svc.LeaderboardAround(ctx, domain.ScopeOverall, "p2", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, rowIDs(rows))

	_, err = svc.RecordResult(ctx, submission("e2025", "uno", "p3", "p1"))
	require.NoError(t, err)

	_, err = cache.GetLeaderboard(ctx, domain.ScopeOverall, rev, 0, 0)
	assert.ErrorIs(t, err, domain.ErrCacheMiss, "older versions are dropped on publish")

	fresh, err := svc.Leaderboard(ctx, domain.ScopeOverall, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p3", "p2"}, rowIDs(fresh.Rows))
}

func TestViewsAreCached(t *testing.T) {
	svc, cache, _ := newCachedService(t, seededRepo())
	recordSeason(t, svc)
	ctx := context.Background()
	rev := svc.Snapshot().Revision()

	report := svc.Championships(ctx, stats.Filter{})

	var cached domain.ChampionshipReport
	require.NoError(t, cache.GetView(ctx, viewName("championships", stats.Filter{}), rev, &cached))
	assert.Equal(t, report, cached)

	assert.Equal(t, report, svc.Championships(ctx, stats.Filter{}))
}

func TestSharedCacheKeepsInstancesApart(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cache := redis.NewCacheWithClient(client, "test", time.Minute, testLogger())

	repo := seededRepo()
	a := newTestService(t, repo, WithCache(cache))
	b := newTestService(t, repo, WithCache(cache))
	ctx := context.Background()

	_, err := a.RecordResult(ctx, submission("e2024", "catan", "p1", "p2"))
	require.NoError(t, err)
	first, err := a.Leaderboard(ctx, domain.ScopeOverall, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, rowIDs(first.Rows))

	// b reaches the same version number with different data
	_, err = b.RecordResult(ctx, submission("e2025", "uno", "p3", "p1"))
	require.NoError(t, err)
	require.Equal(t, a.Snapshot().Version, b.Snapshot().Version)

	second, err := b.Leaderboard(ctx, domain.ScopeOverall, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p3", "p2"}, rowIDs(second.Rows))

	again, err := a.Leaderboard(ctx, domain.ScopeOverall, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, rowIDs(again.Rows), "a keeps serving its own snapshot")
}

func TestViewNameDependsOnFilter(t *testing.T) {
	a := viewName("insights", stats.Filter{Year: 2024})
	assert.Equal(t, a, viewName("insights", stats.Filter{Year: 2024}))
	assert.NotEqual(t, a, viewName("insights", stats.Filter{Year: 2025}))
	assert.NotEqual(t, a, viewName("dashboard", stats.Filter{Year: 2024}))
}

func TestSnapshotBroadcasts(t *testing.T) {
	hub := &recordingHub{scopes: []string{domain.ScopeOverall, domain.ConfigScope("missing")}}
	svc := newTestService(t, seededRepo(), WithBroadcaster(hub))

	_, err := svc.RecordResult(context.Background(), submission("e2024", "catan", "p2", "p1"))
	require.NoError(t, err)
	version := svc.Snapshot().Version

	hub.mu.Lock()
	defer hub.mu.Unlock()
	require.NotEmpty(t, hub.dataVersions)
	assert.Equal(t, version, hub.dataVersions[len(hub.dataVersions)-1])

	require.NotEmpty(t, hub.boards)
	last := hub.boards[len(hub.boards)-1]
	assert.Equal(t, domain.ScopeOverall, last.Scope)
	assert.Equal(t, version, last.Version)
	assert.Equal(t, []string{"p2", "p1"}, rowIDs(last.Rows))
}

func TestPlayerAndGameStats(t *testing.T) {
	svc := newTestService(t, seededRepo())
	recordSeason(t, svc)
	ctx := context.Background()

	ps, err := svc.PlayerStats(ctx, "p2", stats.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 2, ps.Position)
	assert.Equal(t, 2, ps.Data.Games)
	assert.Equal(t, 1, ps.Data.Wins)

	ps, err = svc.PlayerStats(ctx, "p3", stats.Filter{Year: 2025})
	require.NoError(t, err)
	assert.Zero(t, ps.Position, "players without games are not ranked")

	_, err = svc.PlayerStats(ctx, "ghost", stats.Filter{})
	assert.ErrorIs(t, err, domain.ErrPlayerNotFound)

	gs, err := svc.GameStats(ctx, "catan", stats.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 1, gs.Data.TimesPlayed)
	assert.Len(t, gs.Players, 3)

	_, err = svc.GameStats(ctx, "chess", stats.Filter{})
	assert.ErrorIs(t, err, domain.ErrGameNotFound)
}

func TestTopScorersAndChampionships(t *testing.T) {
	svc := newTestService(t, seededRepo())
	recordSeason(t, svc)
	ctx := context.Background()

	scorers, err := svc.TopScorers(ctx, "e2024")
	require.NoError(t, err)
	require.Len(t, scorers, 1)
	assert.Equal(t, "p1", scorers[0].Player.ID)
	assert.Equal(t, 3, scorers[0].Points)

	_, err = svc.TopScorers(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrEventNotFound)

	assert.Equal(t, []int{2024}, svc.ConcludedYears())

	report := svc.Championships(ctx, stats.Filter{})
	require.Len(t, report.Championships, 1)
	assert.Equal(t, 2024, report.Championships[0].Year)
	assert.Equal(t, "p1", report.Championships[0].Player.ID)
	require.Len(t, report.Titles, 1)
	assert.Equal(t, 1, report.Titles[0].Titles)

	standings, err := svc.YearStandings(ctx, 2024)
	require.NoError(t, err)
	assert.Equal(t, domain.YearScope(2024), standings.Scope)
	assert.Len(t, standings.Rows, 3)

	dash := svc.Dashboard(ctx, stats.Filter{})
	assert.Equal(t, svc.Snapshot().Version, dash.Version)
	assert.Len(t, dash.Games, 2)
	assert.Equal(t, report.Championships, dash.Insights.Championships)

	season := svc.Dashboard(ctx, stats.Filter{Year: 2025})
	assert.Empty(t, season.Insights.Championships, "a year filter lists only that year")
	assert.Equal(t, report, svc.Championships(ctx, stats.Filter{Year: 2024}))
}

func TestLeaderboardDefinitions(t *testing.T) {
	svc := newTestService(t, seededRepo())
	ctx := context.Background()

	cfg, err := svc.CreateLeaderboard(ctx, domain.CreateLeaderboardRequest{Name: "Spring", StartDate: "2025-03-01", EndDate: "2025-05-31"})
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.ID)

	_, err = svc.CreateLeaderboard(ctx, domain.CreateLeaderboardRequest{ID: cfg.ID, Name: "Again"})
	assert.ErrorIs(t, err, domain.ErrLeaderboardExists)

	_, err = svc.CreateLeaderboard(ctx, domain.CreateLeaderboardRequest{Name: "Backwards", StartDate: "2025-05-01", EndDate: "2025-03-01"})
	assert.ErrorIs(t, err, domain.ErrInvalidLeaderboard)

	_, err = svc.CreateLeaderboard(ctx, domain.CreateLeaderboardRequest{Name: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidLeaderboard)

	list, err := svc.ListLeaderboards(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.DeleteLeaderboard(ctx, cfg.ID))
	_, err = svc.Leaderboard(ctx, domain.ConfigScope(cfg.ID), 0, 0)
	assert.ErrorIs(t, err, domain.ErrLeaderboardNotFound)
}
