// Package memory keeps every collection in process memory. It serves demos and
// tests and mirrors the behavior of the PostgreSQL repository.
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/gamenight-tracker/internal/domain"
)

// Repository is an in-memory store safe for concurrent use
type Repository struct {
	mu           sync.RWMutex
	players      []domain.Player
	games        []domain.Game
	events       []domain.Event
	results      []domain.Result
	leaderboards []domain.LeaderboardConfig
	archived     map[int]archiveEntry
}

// NewRepository creates a repository holding a copy of the seed data
func NewRepository(seed domain.Snapshot) *Repository {
	return &Repository{
		players:  slices.Clone(seed.Players),
		games:    slices.Clone(seed.Games),
		events:   slices.Clone(seed.Events),
		results:  slices.Clone(seed.Results),
		archived: make(map[int]archiveEntry),
	}
}

// Ping always succeeds
func (r *Repository) Ping(ctx context.Context) error {
	return ctx.Err()
}

// LoadSnapshot returns a copy of every collection
func (r *Repository) LoadSnapshot(ctx context.Context) (domain.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return domain.Snapshot{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	return domain.Snapshot{
		Players: slices.Clone(r.players),
		Games:   slices.Clone(r.games),
		Events:  slices.Clone(r.events),
		Results: slices.Clone(r.results),
	}, nil
}

func indexOf[T any](items []T, id string, key func(T) string) int {
	return slices.IndexFunc(items, func(item T) bool { return key(item) == id })
}

func playerKey(p domain.Player) string            { return p.ID }
func gameKey(g domain.Game) string                { return g.ID }
func eventKey(e domain.Event) string              { return e.ID }
func resultKey(res domain.Result) string          { return res.ID }
func configKey(c domain.LeaderboardConfig) string { return c.ID }

// CreatePlayer adds a player
func (r *Repository) CreatePlayer(ctx context.Context, p domain.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.players = append(r.players, p)
	return nil
}

// UpdatePlayer replaces a stored player
func (r *Repository) UpdatePlayer(ctx context.Context, p domain.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := indexOf(r.players, p.ID, playerKey)
	if i < 0 {
		return domain.ErrPlayerNotFound
	}
	r.players[i] = p
	return nil
}

// DeletePlayer removes a player and keeps results that reference it
func (r *Repository) DeletePlayer(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := indexOf(r.players, id, playerKey)
	if i < 0 {
		return domain.ErrPlayerNotFound
	}
	r.players = slices.Delete(r.players, i, i+1)
	return nil
}

// GetPlayer returns a player by ID
func (r *Repository) GetPlayer(ctx context.Context, id string) (*domain.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := indexOf(r.players, id, playerKey)
	if i < 0 {
		return nil, domain.ErrPlayerNotFound
	}
	p := r.players[i]
	return &p, nil
}

// ListPlayers returns players in creation order
func (r *Repository) ListPlayers(ctx context.Context) ([]domain.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := slices.Clone(r.players)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return orEmpty(out), nil
}

// CreateGame adds a game
func (r *Repository) CreateGame(ctx context.Context, g domain.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.games = append(r.games, g)
	return nil
}

// UpdateGame replaces a stored game
func (r *Repository) UpdateGame(ctx context.Context, g domain.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := indexOf(r.games, g.ID, gameKey)
	if i < 0 {
		return domain.ErrGameNotFound
	}
	r.games[i] = g
	return nil
}

// DeleteGame removes a game and keeps results that reference it
func (r *Repository) DeleteGame(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := indexOf(r.games, id, gameKey)
	if i < 0 {
		return domain.ErrGameNotFound
	}
	r.games = slices.Delete(r.games, i, i+1)
	return nil
}

// GetGame returns a game by ID
func (r *Repository) GetGame(ctx context.Context, id string) (*domain.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := indexOf(r.games, id, gameKey)
	if i < 0 {
		return nil, domain.ErrGameNotFound
	}
	g := r.games[i]
	return &g, nil
}

// ListGames returns games by name
func (r *Repository) ListGames(ctx context.Context) ([]domain.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := slices.Clone(r.games)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return orEmpty(out), nil
}

// CreateEvent adds an event
func (r *Repository) CreateEvent(ctx context.Context, e domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

// UpdateEvent replaces a stored event
func (r *Repository) UpdateEvent(ctx context.Context, e domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := indexOf(r.events, e.ID, eventKey)
	if i < 0 {
		return domain.ErrEventNotFound
	}
	r.events[i] = e
	return nil
}

// DeleteEvent removes an event together with its results
func (r *Repository) DeleteEvent(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := indexOf(r.events, id, eventKey)
	if i < 0 {
		return domain.ErrEventNotFound
	}
	r.events = slices.Delete(r.events, i, i+1)
	r.results = slices.DeleteFunc(r.results, func(res domain.Result) bool {
		return res.EventID == id
	})
	return nil
}

// GetEvent returns an event by ID
func (r *Repository) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := indexOf(r.events, id, eventKey)
	if i < 0 {
		return nil, domain.ErrEventNotFound
	}
	e := r.events[i]
	return &e, nil
}

// ListEvents returns events by date
func (r *Repository) ListEvents(ctx context.Context) ([]domain.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := slices.Clone(r.events)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return orEmpty(out), nil
}

// UpsertResult inserts a result or replaces the one with the same ID
func (r *Repository) UpsertResult(ctx context.Context, res domain.Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upsertResult(res)
	return nil
}

// UpsertResults stores several results at once
func (r *Repository) UpsertResults(ctx context.Context, results []domain.Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, res := range results {
		r.upsertResult(res)
	}
	return nil
}

func (r *Repository) upsertResult(res domain.Result) {
	if i := indexOf(r.results, res.ID, resultKey); i >= 0 {
		res.CreatedAt = r.results[i].CreatedAt
		r.results[i] = res
		return
	}
	r.results = append(r.results, res)
}

// DeleteResult removes a result
func (r *Repository) DeleteResult(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := indexOf(r.results, id, resultKey)
	if i < 0 {
		return domain.ErrResultNotFound
	}
	r.results = slices.Delete(r.results, i, i+1)
	return nil
}

// GetResult returns a result by ID
func (r *Repository) GetResult(ctx context.Context, id string) (*domain.Result, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := indexOf(r.results, id, resultKey)
	if i < 0 {
		return nil, domain.ErrResultNotFound
	}
	res := r.results[i]
	return &res, nil
}

// ListResults returns the results of one event, or all results when eventID is empty
func (r *Repository) ListResults(ctx context.Context, eventID string) ([]domain.Result, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Result, 0, len(r.results))
	for _, res := range r.results {
		if eventID == "" || res.EventID == eventID {
			out = append(out, res)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.EventID != b.EventID {
			return a.EventID < b.EventID
		}
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		return a.ID < b.ID
	})
	return out, nil
}

// CreateLeaderboard stores a leaderboard definition with a unique ID
func (r *Repository) CreateLeaderboard(ctx context.Context, cfg domain.LeaderboardConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if indexOf(r.leaderboards, cfg.ID, configKey) >= 0 {
		return domain.ErrLeaderboardExists
	}
	r.leaderboards = append(r.leaderboards, cfg)
	return nil
}

// GetLeaderboard returns a leaderboard definition by ID
func (r *Repository) GetLeaderboard(ctx context.Context, id string) (*domain.LeaderboardConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := indexOf(r.leaderboards, id, configKey)
	if i < 0 {
		return nil, domain.ErrLeaderboardNotFound
	}
	cfg := r.leaderboards[i]
	return &cfg, nil
}

// ListLeaderboards returns leaderboard definitions, newest first
func (r *Repository) ListLeaderboards(ctx context.Context) ([]domain.LeaderboardConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := slices.Clone(r.leaderboards)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return orEmpty(out), nil
}

// DeleteLeaderboard removes a leaderboard definition
func (r *Repository) DeleteLeaderboard(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := indexOf(r.leaderboards, id, configKey)
	if i < 0 {
		return domain.ErrLeaderboardNotFound
	}
	r.leaderboards = slices.Delete(r.leaderboards, i, i+1)
	return nil
}

type archiveEntry struct {
	objectKey   string
	fingerprint string
}

// ArchivedYears returns the fingerprint of the standings archived for each year
func (r *Repository) ArchivedYears(ctx context.Context) (map[int]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	years := make(map[int]string, len(r.archived))
	for year, entry := range r.archived {
		years[year] = entry.fingerprint
	}
	return years, nil
}

// MarkArchived records that a year's standings were written to objectKey
func (r *Repository) MarkArchived(ctx context.Context, year int, objectKey, fingerprint string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.archived[year] = archiveEntry{objectKey: objectKey, fingerprint: fingerprint}
	return nil
}

func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
