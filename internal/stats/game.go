package stats

import (
	"sort"
	"strings"

	"github.com/gamenight-tracker/internal/domain"
)

// GameData aggregates every in-scope play of a game
func (c *Calculator) GameData(game domain.Game, scope *Scope) domain.GameData {
	data := domain.GameData{
		WinsByPlayer:     make(map[string]int),
		RankDistribution: make(map[int]int),
	}

	unique := make(map[string]struct{})
	slots := 0
	var lastEventID string

	for _, r := range scope.Results {
		if r.GameID != game.ID {
			continue
		}
		data.TimesPlayed++
		lastEventID = r.EventID

		for _, pr := range r.PlayerResults {
			slots++
			unique[pr.PlayerID] = struct{}{}
			if IsWinner(pr) {
				data.WinsByPlayer[pr.PlayerID]++
				data.TotalPointsAwarded += game.Points
			}
			if pr.Rank != nil {
				data.RankDistribution[*pr.Rank]++
			}
		}
	}

	data.UniquePlayers = len(unique)
	data.AvgPlayersPerGame = round1(ratio(slots, data.TimesPlayed))
	if e, ok := scope.Event(lastEventID); ok {
		last := e.Date
		data.LastPlayed = &last
	}
	return data
}

// AllGameData aggregates every game matching the filter, most played first.
// Ties are ordered by name, then id.
func (c *Calculator) AllGameData(scope *Scope) []domain.GameWithData {
	games := scope.Games()
	out := make([]domain.GameWithData, 0, len(games))
	for _, g := range games {
		out = append(out, domain.GameWithData{
			Game: g,
			Data: c.GameData(g, scope),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Data.TimesPlayed != b.Data.TimesPlayed {
			return a.Data.TimesPlayed > b.Data.TimesPlayed
		}
		an, bn := strings.ToLower(a.Game.Name), strings.ToLower(b.Game.Name)
		if an != bn {
			return an < bn
		}
		return a.Game.ID < b.Game.ID
	})
	return out
}

// PlayerGameStats returns every participant's record in one game, best first:
// wins, then win rate, then games played, then name.
func (c *Calculator) PlayerGameStats(game domain.Game, scope *Scope) []domain.PlayerGameStats {
	type tally struct {
		games, wins, points int
		rankSum, rankCount  int
	}
	byPlayer := make(map[string]*tally)

	for _, r := range scope.Results {
		if r.GameID != game.ID {
			continue
		}
		seen := make(map[string]bool, len(r.PlayerResults))
		for _, pr := range r.PlayerResults {
			if seen[pr.PlayerID] {
				continue
			}
			seen[pr.PlayerID] = true

			t, ok := byPlayer[pr.PlayerID]
			if !ok {
				t = &tally{}
				byPlayer[pr.PlayerID] = t
			}
			t.games++
			if IsWinner(pr) {
				t.wins++
			}
			t.points += PointsFor(pr, game.Points)
			if pr.Rank != nil {
				t.rankSum += *pr.Rank
				t.rankCount++
			}
		}
	}

	out := make([]domain.PlayerGameStats, 0, len(byPlayer))
	for playerID, t := range byPlayer {
		s := domain.PlayerGameStats{
			Player:  scope.playerInfo(playerID),
			Games:   t.games,
			Wins:    t.wins,
			WinRate: ratio(t.wins, t.games),
			Points:  t.points,
		}
		if t.rankCount > 0 {
			avg := round2(float64(t.rankSum) / float64(t.rankCount))
			s.AverageRank = &avg
		}
		out = append(out, s)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		if a.WinRate != b.WinRate {
			return a.WinRate > b.WinRate
		}
		if a.Games != b.Games {
			return a.Games > b.Games
		}
		return lessByName(a.Player, b.Player)
	})
	return out
}

// TopPlayersForGame returns the best players of a game among those with enough plays,
// limited to the display limit
func (c *Calculator) TopPlayersForGame(game domain.Game, scope *Scope) []domain.PlayerGameStats {
	all := c.PlayerGameStats(game, scope)
	out := make([]domain.PlayerGameStats, 0, len(all))
	for _, s := range all {
		if s.Games < c.opts.MinGamesForRank {
			continue
		}
		out = append(out, s)
		if len(out) == c.opts.DisplayLimit {
			break
		}
	}
	return out
}
