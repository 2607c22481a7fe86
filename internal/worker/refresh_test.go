package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamenight-tracker/internal/config"
	"github.com/gamenight-tracker/internal/domain"
	"github.com/gamenight-tracker/internal/memory"
)

type fakeTracker struct {
	mu         sync.Mutex
	refreshes  int
	refreshErr error
	years      []int
	missing    map[int]bool
	points     map[int]int
}

func (f *fakeTracker) Refresh(ctx context.Context) (domain.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
	if f.refreshErr != nil {
		return domain.Snapshot{}, f.refreshErr
	}
	return domain.Snapshot{Version: int64(f.refreshes)}, nil
}

func (f *fakeTracker) ConcludedYears() []int {
	return f.years
}

func (f *fakeTracker) YearStandings(ctx context.Context, year int) (*domain.Leaderboard, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.missing[year] {
		return nil, domain.ErrInvalidRequest
	}
	return &domain.Leaderboard{
		Scope:      domain.YearScope(year),
		Version:    int64(f.refreshes),
		ComputedAt: time.Now(),
		Rows: []domain.LeaderboardRow{{
			Position: 1,
			Player:   domain.PlayerInfo{ID: "p1", DisplayName: "Alice"},
			Data:     domain.PlayerData{Points: f.points[year], Games: 1},
		}},
	}, nil
}

func (f *fakeTracker) setPoints(year, points int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.points == nil {
		f.points = make(map[int]int)
	}
	f.points[year] = points
}

func (f *fakeTracker) refreshCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshes
}

type fakeArchiver struct {
	mu    sync.Mutex
	years []int
	fail  map[int]bool
}

func (f *fakeArchiver) ArchiveStandings(ctx context.Context, year int, lb *domain.Leaderboard) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[year] {
		return "", errors.New("upload failed")
	}
	f.years = append(f.years, year)
	return lb.Scope + ".json", nil
}

func (f *fakeArchiver) archived() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.years...)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunOnceArchivesConcludedYears(t *testing.T) {
	ctx := context.Background()
	tracker := &fakeTracker{years: []int{2022, 2023, 2024}}
	archiver := &fakeArchiver{}
	ledger := memory.NewRepository(domain.Snapshot{})
	standings, err := tracker.YearStandings(ctx, 2022)
	require.NoError(t, err)
	fingerprint, err := Fingerprint(standings)
	require.NoError(t, err)
	require.NoError(t, ledger.MarkArchived(ctx, 2022, "old.json", fingerprint))

	w := NewRefreshWorker(tracker, archiver, ledger, &config.SyncConfig{Interval: time.Hour}, testLogger())
	w.RunOnce(ctx)

	assert.Equal(t, 1, tracker.refreshCount())
	assert.Equal(t, []int{2023, 2024}, archiver.archived())

	years, err := ledger.ArchivedYears(ctx)
	require.NoError(t, err)
	assert.Len(t, years, 3)
	assert.Equal(t, fingerprint, years[2022])

	// Unchanged standings are not uploaded twice
	w.RunOnce(ctx)
	assert.Equal(t, []int{2023, 2024}, archiver.archived())
}

func TestRunOnceRearchivesChangedStandings(t *testing.T) {
	ctx := context.Background()
	tracker := &fakeTracker{years: []int{2023}}
	tracker.setPoints(2023, 4)
	archiver := &fakeArchiver{}
	ledger := memory.NewRepository(domain.Snapshot{})

	w := NewRefreshWorker(tracker, archiver, ledger, &config.SyncConfig{Interval: time.Hour}, testLogger())
	w.RunOnce(ctx)
	before, err := ledger.ArchivedYears(ctx)
	require.NoError(t, err)

	// A late result edits the concluded year
	tracker.setPoints(2023, 7)
	w.RunOnce(ctx)
	assert.Equal(t, []int{2023, 2023}, archiver.archived())

	after, err := ledger.ArchivedYears(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, before[2023], after[2023])

	w.RunOnce(ctx)
	assert.Equal(t, []int{2023, 2023}, archiver.archived())
}

func TestFingerprintIgnoresVersionAndTime(t *testing.T) {
	rows := []domain.LeaderboardRow{{Position: 1, Player: domain.PlayerInfo{ID: "p1"}}}
	a, err := Fingerprint(&domain.Leaderboard{Version: 1, ComputedAt: time.Unix(0, 0), Rows: rows})
	require.NoError(t, err)
	b, err := Fingerprint(&domain.Leaderboard{Version: 9, ComputedAt: time.Now(), Rows: rows})
	require.NoError(t, err)
	assert.Equal(t, a, b)

	rows[0].Data.Points = 3
	c, err := Fingerprint(&domain.Leaderboard{Rows: rows})
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestRunOnceKeepsGoingAfterFailedYear(t *testing.T) {
	ctx := context.Background()
	tracker := &fakeTracker{years: []int{2021, 2022, 2023}, missing: map[int]bool{2021: true}}
	archiver := &fakeArchiver{fail: map[int]bool{2022: true}}
	ledger := memory.NewRepository(domain.Snapshot{})

	w := NewRefreshWorker(tracker, archiver, ledger, &config.SyncConfig{Interval: time.Hour}, testLogger())
	w.RunOnce(ctx)

	assert.Equal(t, []int{2023}, archiver.archived())
	years, err := ledger.ArchivedYears(ctx)
	require.NoError(t, err)
	assert.Len(t, years, 1)
	assert.Contains(t, years, 2023)
}

func TestRunOnceSkipsArchiveWhenRefreshFails(t *testing.T) {
	tracker := &fakeTracker{refreshErr: errors.New("db down"), years: []int{2024}}
	archiver := &fakeArchiver{}

	w := NewRefreshWorker(tracker, archiver, memory.NewRepository(domain.Snapshot{}), &config.SyncConfig{Interval: time.Hour}, testLogger())
	w.RunOnce(context.Background())

	assert.Equal(t, 1, tracker.refreshCount())
	assert.Empty(t, archiver.archived())
}

func TestRunOnceWithoutArchiver(t *testing.T) {
	tracker := &fakeTracker{years: []int{2024}}

	w := NewRefreshWorker(tracker, nil, nil, &config.SyncConfig{Interval: time.Hour}, testLogger())
	w.RunOnce(context.Background())

	assert.Equal(t, 1, tracker.refreshCount())
}

func TestStartStop(t *testing.T) {
	tracker := &fakeTracker{}
	w := NewRefreshWorker(tracker, nil, nil, &config.SyncConfig{Interval: 10 * time.Millisecond}, testLogger())

	require.NoError(t, w.Start(context.Background()))
	require.NoError(t, w.Start(context.Background()))
	assert.True(t, w.IsRunning())

	require.Eventually(t, func() bool {
		return tracker.refreshCount() >= 3
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, w.Stop())
	assert.False(t, w.IsRunning())
	require.NoError(t, w.Stop())

	stopped := tracker.refreshCount()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, tracker.refreshCount())
}

func TestRestartAfterStop(t *testing.T) {
	tracker := &fakeTracker{}
	w := NewRefreshWorker(tracker, nil, nil, &config.SyncConfig{Interval: 10 * time.Millisecond}, testLogger())

	for round := 1; round <= 2; round++ {
		before := tracker.refreshCount()
		require.NoError(t, w.Start(context.Background()))
		require.Eventually(t, func() bool {
			return tracker.refreshCount() > before
		}, time.Second, 5*time.Millisecond, "round %d", round)
		require.NoError(t, w.Stop())
		assert.False(t, w.IsRunning())
	}
}
