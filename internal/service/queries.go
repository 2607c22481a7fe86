package service

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/gamenight-tracker/internal/domain"
	"github.com/gamenight-tracker/internal/stats"
)

// viewName derives a stable cache name for a view computed under a filter
func viewName(kind string, f stats.Filter) string {
	key, err := json.Marshal(f)
	if err != nil {
		return kind
	}
	return kind + ":" + uuid.NewSHA1(uuid.NameSpaceOID, key).String()
}

// PlayerStats returns a player's aggregates and leaderboard position under a filter
func (s *TrackerService) PlayerStats(ctx context.Context, playerID string, f stats.Filter) (*domain.PlayerStats, error) {
	snap := s.store.Current()
	scope := stats.NewScope(snap, f)
	player, ok := scope.Player(playerID)
	if !ok {
		return nil, domain.ErrPlayerNotFound
	}

	out := &domain.PlayerStats{
		Player: player,
		Data:   s.calc.PlayerData(player, scope),
	}
	for _, row := range s.calc.Leaderboard(scope) {
		if row.Player.ID == playerID {
			out.Position = row.Position
			break
		}
	}
	return out, nil
}

// GameStats returns a game's aggregates and per-player breakdown under a filter
func (s *TrackerService) GameStats(ctx context.Context, gameID string, f stats.Filter) (*domain.GameStats, error) {
	snap := s.store.Current()
	scope := stats.NewScope(snap, f)
	game, ok := scope.Game(gameID)
	if !ok {
		return nil, domain.ErrGameNotFound
	}

	return &domain.GameStats{
		Game:       game,
		Data:       s.calc.GameData(game, scope),
		TopPlayers: s.calc.TopPlayersForGame(game, scope),
		Players:    s.calc.PlayerGameStats(game, scope),
	}, nil
}

// TopScorers returns the point totals of everyone who scored at an event
func (s *TrackerService) TopScorers(ctx context.Context, eventID string) ([]domain.EventScorer, error) {
	scope := stats.NewScope(s.store.Current(), stats.Filter{})
	if _, ok := scope.Event(eventID); !ok {
		return nil, domain.ErrEventNotFound
	}
	return s.calc.TopScorers(eventID, scope), nil
}

// Insights returns the derived records of the filtered data
func (s *TrackerService) Insights(ctx context.Context, f stats.Filter) domain.Insights {
	snap := s.store.Current()
	year := s.CurrentYear()
	return cachedView(ctx, s, viewName("insights", f), snap.Revision(), func() domain.Insights {
		scope := stats.NewScope(snap, f)
		return s.calc.Insights(scope, s.calc.AllPlayerData(scope), year)
	})
}

// Dashboard returns the leaderboard, game stats and insights of the filtered data
func (s *TrackerService) Dashboard(ctx context.Context, f stats.Filter) domain.Dashboard {
	snap := s.store.Current()
	year := s.CurrentYear()
	return cachedView(ctx, s, viewName("dashboard", f), snap.Revision(), func() domain.Dashboard {
		return s.calc.Dashboard(stats.NewScope(snap, f), year)
	})
}

// Championships returns the champion of every concluded year and the title counts
func (s *TrackerService) Championships(ctx context.Context, f stats.Filter) domain.ChampionshipReport {
	snap := s.store.Current()
	year := s.CurrentYear()
	return cachedView(ctx, s, viewName("championships", f), snap.Revision(), func() domain.ChampionshipReport {
		champs := s.calc.Championships(stats.NewScope(snap, f), year)
		return domain.ChampionshipReport{
			Championships: champs,
			Titles:        stats.Titles(champs),
		}
	})
}

// ConcludedYears returns the years whose standings are final
func (s *TrackerService) ConcludedYears() []int {
	return stats.ConcludedYears(s.store.Current().Events, s.CurrentYear())
}

// YearStandings returns the full final leaderboard of one year
func (s *TrackerService) YearStandings(ctx context.Context, year int) (*domain.Leaderboard, error) {
	return s.fullLeaderboard(ctx, s.store.Current(), domain.YearScope(year))
}
