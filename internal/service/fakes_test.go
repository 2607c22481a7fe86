package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gamenight-tracker/internal/config"
	"github.com/gamenight-tracker/internal/domain"
	"github.com/gamenight-tracker/internal/memory"
	"github.com/gamenight-tracker/internal/source"
	"github.com/gamenight-tracker/internal/stats"
)

var errLoadFailed = errors.New("load failed")

// flakyRepo fails snapshot loads on demand
type flakyRepo struct {
	*memory.Repository
	mu       sync.Mutex
	failLoad bool
}

func (r *flakyRepo) setFailLoad(fail bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failLoad = fail
}

func (r *flakyRepo) LoadSnapshot(ctx context.Context) (domain.Snapshot, error) {
	r.mu.Lock()
	fail := r.failLoad
	r.mu.Unlock()
	if fail {
		return domain.Snapshot{}, errLoadFailed
	}
	return r.Repository.LoadSnapshot(ctx)
}

// recordingHub is a Broadcaster that remembers what it was asked to send
type recordingHub struct {
	mu           sync.Mutex
	scopes       []string
	boards       []domain.Leaderboard
	dataVersions []int64
}

func (h *recordingHub) BroadcastLeaderboard(lb domain.Leaderboard) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.boards = append(h.boards, lb)
}

func (h *recordingHub) BroadcastDataChanged(version int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dataVersions = append(h.dataVersions, version)
}

func (h *recordingHub) SubscribedScopes() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.scopes)
}

var testNow = time.Date(2025, 3, 15, 18, 0, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T, repo Repository, opts ...Option) *TrackerService {
	t.Helper()
	cfg := &config.LeaderboardConfig{DefaultLimit: 10, MaxLimit: 20, AroundRange: 1}
	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	svc := NewTrackerService(repo, source.NewStore(testLogger()), stats.NewCalculator(stats.DefaultOptions(), nil), cfg, testLogger(), opts...)
	t.Cleanup(svc.Close)
	_, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	return svc
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// seedData holds three players, two games and two events, one in 2024 and one in 2025
func seedData() domain.Snapshot {
	return domain.Snapshot{
		Players: []domain.Player{
			{ID: "p1", FirstName: "Alice", ShowOnLeaderboard: true},
			{ID: "p2", FirstName: "Bob", ShowOnLeaderboard: true},
			{ID: "p3", FirstName: "Cara", ShowOnLeaderboard: true},
		},
		Games: []domain.Game{
			{ID: "catan", Name: "Catan", Points: 3, Type: domain.GameTypeBoard, Tags: []string{"strategy"}},
			{ID: "uno", Name: "Uno", Points: 1, Type: domain.GameTypeBoard, Tags: []string{"party"}},
		},
		Events: []domain.Event{
			{ID: "e2024", Date: day(2024, 6, 1), PlayerIDs: []string{"p1", "p2", "p3"}},
			{ID: "e2025", Date: day(2025, 2, 1), PlayerIDs: []string{"p1", "p2", "p3"}},
		},
	}
}

func seededRepo() *memory.Repository {
	return memory.NewRepository(seedData())
}

func submission(eventID, gameID, winner string, others ...string) domain.ResultSubmission {
	sub := domain.ResultSubmission{
		EventID:       eventID,
		GameID:        gameID,
		PlayerResults: []domain.PlayerResult{{PlayerID: winner, IsWinner: true}},
	}
	for _, id := range others {
		sub.PlayerResults = append(sub.PlayerResults, domain.PlayerResult{PlayerID: id})
	}
	return sub
}
