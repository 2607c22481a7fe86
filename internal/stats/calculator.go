// Package stats turns raw game nights into leaderboards, per-player and per-game
// aggregates, and derived records such as rivalries and droughts.
//
// Every function here is a pure function of its inputs. Nothing is cached and
// nothing is mutated; recomputing on an unchanged snapshot yields identical output.
package stats

import (
	"io"
	"log/slog"

	"github.com/gamenight-tracker/internal/domain"
)

// Calculator computes aggregates with a fixed set of options
type Calculator struct {
	opts   Options
	logger *slog.Logger
}

// NewCalculator creates a new calculator. A nil logger discards output.
func NewCalculator(opts Options, logger *slog.Logger) *Calculator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Calculator{
		opts:   opts.withDefaults(),
		logger: logger,
	}
}

// Options returns the effective options
func (c *Calculator) Options() Options {
	return c.opts
}

// Scope is a snapshot narrowed by a filter: the in-scope events and results in
// chronological order plus lookup maps for every entity.
type Scope struct {
	Filter  Filter
	Version int64
	Players []domain.Player
	Events  []domain.Event
	Results []domain.Result

	snapshot domain.Snapshot
	players  map[string]domain.Player
	games    map[string]domain.Game
	events   map[string]domain.Event
}

// NewScope applies a filter to a snapshot
func NewScope(snapshot domain.Snapshot, f Filter) *Scope {
	events := FilterEvents(snapshot.Events, f)
	eventsByID := make(map[string]domain.Event, len(events))
	for _, e := range events {
		eventsByID[e.ID] = e
	}
	games := snapshot.GamesByID()
	results := FilterResults(snapshot.Results, eventsByID, games, f)

	return &Scope{
		Filter:   f,
		Version:  snapshot.Version,
		Players:  snapshot.Players,
		Events:   events,
		Results:  SortResults(results, eventsByID),
		snapshot: snapshot,
		players:  snapshot.PlayersByID(),
		games:    games,
		events:   eventsByID,
	}
}

// Player looks up a player by id
func (s *Scope) Player(id string) (domain.Player, bool) {
	p, ok := s.players[id]
	return p, ok
}

// Game looks up a game by id
func (s *Scope) Game(id string) (domain.Game, bool) {
	g, ok := s.games[id]
	return g, ok
}

// Event looks up an in-scope event by id
func (s *Scope) Event(id string) (domain.Event, bool) {
	e, ok := s.events[id]
	return e, ok
}

// Games returns every game matching the filter's tags, in snapshot order
func (s *Scope) Games() []domain.Game {
	out := make([]domain.Game, 0, len(s.snapshot.Games))
	for _, g := range s.snapshot.Games {
		if s.Filter.IncludesGame(g) {
			out = append(out, g)
		}
	}
	return out
}

// playerInfo returns the display reference of a player, falling back to the bare id
// for players missing from the snapshot
func (s *Scope) playerInfo(id string) domain.PlayerInfo {
	if p, ok := s.players[id]; ok {
		return p.Info()
	}
	return domain.PlayerInfo{ID: id, DisplayName: id}
}
