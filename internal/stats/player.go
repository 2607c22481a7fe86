package stats

import (
	"math"

	"github.com/gamenight-tracker/internal/domain"
)

// PlayerData aggregates one player's results within a scope
func (c *Calculator) PlayerData(player domain.Player, scope *Scope) domain.PlayerData {
	entries := ExtractEntries(scope.Results, player.ID)

	data := domain.PlayerData{
		Games:      len(entries),
		RecentForm: []*int{},
	}

	eventPoints := make(map[string]int)
	playedAt := make(map[string]bool)
	var rankSum, rankCount int

	for _, entry := range entries {
		playedAt[entry.EventID] = true

		if entry.IsWinner {
			data.Wins++
			data.CurrentWinStreak++
			data.CurrentLossStreak = 0
			data.LongestWinStreak = max(data.LongestWinStreak, data.CurrentWinStreak)
		} else {
			data.CurrentLossStreak++
			data.CurrentWinStreak = 0
			data.LongestLossStreak = max(data.LongestLossStreak, data.CurrentLossStreak)
		}
		if entry.IsLoser {
			data.Losses++
		}
		if entry.Rank != nil {
			rankSum += *entry.Rank
			rankCount++
		}

		game, ok := scope.Game(entry.GameID)
		if !ok {
			c.logger.Warn("result references unknown game, skipping points",
				"result_id", entry.ResultID,
				"game_id", entry.GameID,
				"player_id", player.ID,
			)
			continue
		}
		net := netPoints(entry.IsWinner, entry.IsLoser, game.Points)
		data.Points += net
		eventPoints[entry.EventID] += net
	}

	data.WinRate = ratio(data.Wins, data.Games)
	data.WinRatePercent = int(math.Round(data.WinRate * 100))
	if rankCount > 0 {
		avg := round2(float64(rankSum) / float64(rankCount))
		data.AverageRank = &avg
	}
	if len(entries) > 0 {
		if e, ok := scope.Event(entries[len(entries)-1].EventID); ok {
			last := e.Date
			data.LastPlayed = &last
		}
	}

	for _, e := range scope.Events {
		if e.Attended(player.ID) || playedAt[e.ID] {
			data.EventsAttended++
		}
	}

	data.RecentForm = c.recentForm(player.ID, scope, eventPoints, playedAt)
	data.BestGame = c.bestGame(entries, scope)

	return data
}

// recentForm returns net points for the most recent events in scope, newest first.
// Events the player did not attend are nil.
func (c *Calculator) recentForm(playerID string, scope *Scope, eventPoints map[string]int, playedAt map[string]bool) []*int {
	form := make([]*int, 0, c.opts.RecentFormWindow)
	for i := len(scope.Events) - 1; i >= 0 && len(form) < c.opts.RecentFormWindow; i-- {
		e := scope.Events[i]
		if !e.Attended(playerID) && !playedAt[e.ID] {
			form = append(form, nil)
			continue
		}
		pts := eventPoints[e.ID]
		form = append(form, &pts)
	}
	return form
}

// bestGame picks the game with the most winning points. Ties go to the lowest game id.
func (c *Calculator) bestGame(entries []domain.PlayerEntry, scope *Scope) *domain.BestGame {
	type tally struct {
		plays, wins, points int
	}
	byGame := make(map[string]*tally)
	for _, entry := range entries {
		t, ok := byGame[entry.GameID]
		if !ok {
			t = &tally{}
			byGame[entry.GameID] = t
		}
		t.plays++
		if entry.IsWinner {
			t.wins++
		}
	}

	var best *domain.BestGame
	for gameID, t := range byGame {
		game, ok := scope.Game(gameID)
		if !ok || t.plays < c.opts.MinGamesForBestGame {
			continue
		}
		t.points = t.wins * game.Points
		if t.points <= 0 {
			continue
		}
		if best == nil || t.points > best.Points || (t.points == best.Points && gameID < best.GameID) {
			best = &domain.BestGame{
				GameID: gameID,
				Name:   game.Name,
				Wins:   t.wins,
				Points: t.points,
			}
		}
	}
	return best
}

// AllPlayerData aggregates every known player in the scope, in snapshot order
func (c *Calculator) AllPlayerData(scope *Scope) []domain.PlayerWithData {
	c.warnUnknownPlayers(scope)

	out := make([]domain.PlayerWithData, 0, len(scope.Players))
	for _, p := range scope.Players {
		out = append(out, domain.PlayerWithData{
			Player: p,
			Data:   c.PlayerData(p, scope),
		})
	}
	return out
}

func (c *Calculator) warnUnknownPlayers(scope *Scope) {
	seen := make(map[string]bool)
	for _, r := range scope.Results {
		for _, pr := range r.PlayerResults {
			if _, ok := scope.Player(pr.PlayerID); ok || seen[pr.PlayerID] {
				continue
			}
			seen[pr.PlayerID] = true
			c.logger.Warn("result references unknown player",
				"result_id", r.ID,
				"player_id", pr.PlayerID,
			)
		}
	}
}

// ratio divides guarding against an empty denominator
func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
