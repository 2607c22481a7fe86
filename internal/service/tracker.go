package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gamenight-tracker/internal/config"
	"github.com/gamenight-tracker/internal/domain"
	"github.com/gamenight-tracker/internal/source"
	"github.com/gamenight-tracker/internal/stats"
)

// Repository is the persistent store of every collection
type Repository interface {
	Ping(ctx context.Context) error
	LoadSnapshot(ctx context.Context) (domain.Snapshot, error)

	CreatePlayer(ctx context.Context, p domain.Player) error
	UpdatePlayer(ctx context.Context, p domain.Player) error
	DeletePlayer(ctx context.Context, id string) error
	GetPlayer(ctx context.Context, id string) (*domain.Player, error)
	ListPlayers(ctx context.Context) ([]domain.Player, error)

	CreateGame(ctx context.Context, g domain.Game) error
	UpdateGame(ctx context.Context, g domain.Game) error
	DeleteGame(ctx context.Context, id string) error
	GetGame(ctx context.Context, id string) (*domain.Game, error)
	ListGames(ctx context.Context) ([]domain.Game, error)

	CreateEvent(ctx context.Context, e domain.Event) error
	UpdateEvent(ctx context.Context, e domain.Event) error
	DeleteEvent(ctx context.Context, id string) error
	GetEvent(ctx context.Context, id string) (*domain.Event, error)
	ListEvents(ctx context.Context) ([]domain.Event, error)

	UpsertResult(ctx context.Context, res domain.Result) error
	UpsertResults(ctx context.Context, results []domain.Result) error
	DeleteResult(ctx context.Context, id string) error
	GetResult(ctx context.Context, id string) (*domain.Result, error)
	ListResults(ctx context.Context, eventID string) ([]domain.Result, error)

	CreateLeaderboard(ctx context.Context, cfg domain.LeaderboardConfig) error
	GetLeaderboard(ctx context.Context, id string) (*domain.LeaderboardConfig, error)
	ListLeaderboards(ctx context.Context) ([]domain.LeaderboardConfig, error)
	DeleteLeaderboard(ctx context.Context, id string) error
}

// Cache stores computed leaderboards and views per snapshot revision
type Cache interface {
	Ping(ctx context.Context) error
	StoreLeaderboard(ctx context.Context, rev domain.Revision, lb domain.Leaderboard) error
	GetLeaderboard(ctx context.Context, scope string, rev domain.Revision, offset, limit int) (*domain.Leaderboard, error)
	GetAroundPlayer(ctx context.Context, scope string, rev domain.Revision, playerID string, count int) ([]domain.LeaderboardRow, error)
	SetView(ctx context.Context, name string, rev domain.Revision, value interface{}) error
	GetView(ctx context.Context, name string, rev domain.Revision, dest interface{}) error
	Invalidate(ctx context.Context, keep domain.Revision) (int, error)
}

// Broadcaster pushes recomputed leaderboards to live subscribers
type Broadcaster interface {
	BroadcastLeaderboard(lb domain.Leaderboard)
	BroadcastDataChanged(version int64)
	SubscribedScopes() []string
}

const (
	maxAroundRange  = 50
	snapshotTimeout = 10 * time.Second
)

// TrackerService provides the business logic of the tracker: writes go to the
// repository and republish the snapshot, reads are recomputed from the snapshot.
type TrackerService struct {
	repo        Repository
	store       *source.Store
	calc        *stats.Calculator
	cache       Cache
	hub         Broadcaster
	config      *config.LeaderboardConfig
	now         func() time.Time
	logger      *slog.Logger
	unsubscribe func()
}

// Option configures optional collaborators of the service
type Option func(*TrackerService)

// WithCache enables caching of computed leaderboards and views
func WithCache(c Cache) Option {
	return func(s *TrackerService) { s.cache = c }
}

// WithBroadcaster enables live pushes after every snapshot change
func WithBroadcaster(b Broadcaster) Option {
	return func(s *TrackerService) { s.hub = b }
}

// WithClock replaces the wall clock used for timestamps and the current year
func WithClock(now func() time.Time) Option {
	return func(s *TrackerService) { s.now = now }
}

// NewTrackerService creates a new tracker service subscribed to the store
func NewTrackerService(
	repo Repository,
	store *source.Store,
	calc *stats.Calculator,
	cfg *config.LeaderboardConfig,
	logger *slog.Logger,
	opts ...Option,
) *TrackerService {
	s := &TrackerService{
		repo:   repo,
		store:  store,
		calc:   calc,
		config: cfg,
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.unsubscribe = store.Subscribe(s.onSnapshot)
	return s
}

// Close detaches the service from the store
func (s *TrackerService) Close() {
	s.unsubscribe()
}

// Ready checks every backing store
func (s *TrackerService) Ready(ctx context.Context) error {
	if err := s.repo.Ping(ctx); err != nil {
		return fmt.Errorf("database not ready: %w", err)
	}
	if s.cache != nil {
		if err := s.cache.Ping(ctx); err != nil {
			return fmt.Errorf("cache not ready: %w", err)
		}
	}
	return nil
}

// Refresh reloads the snapshot from the repository and publishes it
func (s *TrackerService) Refresh(ctx context.Context) (domain.Snapshot, error) {
	snap, err := s.repo.LoadSnapshot(ctx)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("loading snapshot: %w", err)
	}
	return s.store.Publish(snap), nil
}

// Snapshot returns the snapshot reads are computed from
func (s *TrackerService) Snapshot() domain.Snapshot {
	return s.store.Current()
}

// CurrentYear returns the calendar year of the service clock
func (s *TrackerService) CurrentYear() int {
	return s.now().Year()
}

// afterWrite republishes the snapshot. The write already succeeded, so a failed
// reload only delays visibility until the next refresh.
func (s *TrackerService) afterWrite(ctx context.Context) {
	if _, err := s.Refresh(ctx); err != nil {
		s.logger.Warn("failed to refresh snapshot after write", "error", err)
	}
}

// onSnapshot drops stale cache entries and pushes fresh leaderboards to every
// subscribed scope
func (s *TrackerService) onSnapshot(snap domain.Snapshot) {
	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()

	if s.cache != nil {
		if _, err := s.cache.Invalidate(ctx, snap.Revision()); err != nil {
			s.logger.Warn("failed to invalidate cache", "version", snap.Version, "error", err)
		}
	}

	if s.hub == nil {
		return
	}
	s.hub.BroadcastDataChanged(snap.Version)
	for _, scope := range s.hub.SubscribedScopes() {
		lb, err := s.computeLeaderboard(ctx, snap, scope)
		if err != nil {
			s.logger.Warn("failed to recompute leaderboard for broadcast", "scope", scope, "error", err)
			continue
		}
		s.hub.BroadcastLeaderboard(*lb)
	}
}

// cachedView returns the cached value of a view for the snapshot revision, computing
// and storing it on a miss
func cachedView[T any](ctx context.Context, s *TrackerService, name string, rev domain.Revision, compute func() T) T {
	if s.cache == nil {
		return compute()
	}

	var cached T
	err := s.cache.GetView(ctx, name, rev, &cached)
	if err == nil {
		return cached
	}
	if !errors.Is(err, domain.ErrCacheMiss) {
		s.logger.Warn("failed to read cached view", "view", name, "error", err)
	}

	value := compute()
	if err := s.cache.SetView(ctx, name, rev, value); err != nil {
		s.logger.Warn("failed to cache view", "view", name, "error", err)
	}
	return value
}
