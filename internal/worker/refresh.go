package worker

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gamenight-tracker/internal/config"
	"github.com/gamenight-tracker/internal/domain"
)

// Tracker is the part of the tracker service the worker drives
type Tracker interface {
	Refresh(ctx context.Context) (domain.Snapshot, error)
	ConcludedYears() []int
	YearStandings(ctx context.Context, year int) (*domain.Leaderboard, error)
}

// Archiver stores the final standings of a year and returns where they went
type Archiver interface {
	ArchiveStandings(ctx context.Context, year int, lb *domain.Leaderboard) (string, error)
}

// ArchiveLedger remembers the fingerprint of the standings archived per year
type ArchiveLedger interface {
	ArchivedYears(ctx context.Context) (map[int]string, error)
	MarkArchived(ctx context.Context, year int, objectKey, fingerprint string) error
}

// RefreshWorker periodically reloads the snapshot from storage and archives
// the standings of concluded years
type RefreshWorker struct {
	tracker  Tracker
	archiver Archiver
	ledger   ArchiveLedger
	config   *config.SyncConfig
	logger   *slog.Logger
	stopCh   chan struct{}
	doneCh   chan struct{}
	mu       sync.Mutex
	running  bool
}

// NewRefreshWorker creates a new refresh worker. A nil archiver disables archiving.
func NewRefreshWorker(
	tracker Tracker,
	archiver Archiver,
	ledger ArchiveLedger,
	cfg *config.SyncConfig,
	logger *slog.Logger,
) *RefreshWorker {
	return &RefreshWorker{
		tracker:  tracker,
		archiver: archiver,
		ledger:   ledger,
		config:   cfg,
		logger:   logger,
	}
}

// Start runs one cycle immediately and then one every interval. A stopped
// worker can be started again.
func (w *RefreshWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	stopCh, doneCh := make(chan struct{}), make(chan struct{})
	w.stopCh, w.doneCh = stopCh, doneCh
	w.mu.Unlock()

	w.logger.Info("refresh worker started", "interval", w.config.Interval)

	go w.run(ctx, stopCh, doneCh)
	return nil
}

// Stop stops the background loop and waits for the current cycle to finish
func (w *RefreshWorker) Stop() error {
	w.mu.Lock()
	if !w.running || w.stopCh == nil {
		w.mu.Unlock()
		return nil
	}
	stopCh, doneCh := w.stopCh, w.doneCh
	w.stopCh = nil
	w.mu.Unlock()

	close(stopCh)
	<-doneCh

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()

	w.logger.Info("refresh worker stopped")
	return nil
}

func (w *RefreshWorker) run(ctx context.Context, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	w.RunOnce(ctx)

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce runs a single refresh and archive cycle
func (w *RefreshWorker) RunOnce(ctx context.Context) {
	startTime := time.Now()

	snap, err := w.tracker.Refresh(ctx)
	if err != nil {
		w.logger.Error("failed to refresh snapshot", "error", err)
		return
	}

	archived := 0
	if w.archiver != nil {
		archived = w.archiveConcluded(ctx)
	}

	w.logger.Info("refresh cycle completed",
		"duration", time.Since(startTime),
		"version", snap.Version,
		"results", len(snap.Results),
		"archived", archived,
	)
}

// archiveConcluded uploads every concluded year whose standings differ from the
// archived ones. Late edits to a concluded year replace its object.
func (w *RefreshWorker) archiveConcluded(ctx context.Context) int {
	done, err := w.ledger.ArchivedYears(ctx)
	if err != nil {
		w.logger.Error("failed to list archived years", "error", err)
		return 0
	}

	count := 0
	for _, year := range w.tracker.ConcludedYears() {
		archived, err := w.archiveYear(ctx, year, done[year])
		if err != nil {
			w.logger.Error("failed to archive year", "year", year, "error", err)
			continue
		}
		if archived {
			count++
		}
	}
	return count
}

func (w *RefreshWorker) archiveYear(ctx context.Context, year int, previous string) (bool, error) {
	lb, err := w.tracker.YearStandings(ctx, year)
	if err != nil {
		return false, err
	}
	fingerprint, err := Fingerprint(lb)
	if err != nil {
		return false, err
	}
	if fingerprint == previous {
		return false, nil
	}
	if previous != "" {
		w.logger.Info("standings changed since archive", "year", year)
	}

	key, err := w.archiver.ArchiveStandings(ctx, year, lb)
	if err != nil {
		return false, err
	}
	return true, w.ledger.MarkArchived(ctx, year, key, fingerprint)
}

// Fingerprint hashes the ranked rows of a leaderboard. Computation time and
// snapshot version are left out so only a change in standings alters it.
func Fingerprint(lb *domain.Leaderboard) (string, error) {
	data, err := json.Marshal(lb.Rows)
	if err != nil {
		return "", fmt.Errorf("encoding standings: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// IsRunning returns whether the worker is currently running
func (w *RefreshWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
