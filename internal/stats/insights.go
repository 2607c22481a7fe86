package stats

import (
	"math"
	"sort"

	"github.com/gamenight-tracker/internal/domain"
)

// TopScorers returns every player tied at the highest net points within one event,
// sorted by display name. Results of unknown games still count the participants
// but award no points.
func (c *Calculator) TopScorers(eventID string, scope *Scope) []domain.EventScorer {
	points := make(map[string]int)
	for _, r := range scope.Results {
		if r.EventID != eventID {
			continue
		}
		game, known := scope.Game(r.GameID)
		if !known {
			c.logger.Warn("result references unknown game, skipping points",
				"result_id", r.ID,
				"game_id", r.GameID,
				"event_id", eventID,
			)
		}
		for _, pr := range r.PlayerResults {
			delta := 0
			if known {
				delta = PointsFor(pr, game.Points)
			}
			points[pr.PlayerID] += delta
		}
	}
	if len(points) == 0 {
		return []domain.EventScorer{}
	}

	best := math.MinInt
	for _, p := range points {
		best = max(best, p)
	}

	out := make([]domain.EventScorer, 0, 1)
	for playerID, p := range points {
		if p == best {
			out = append(out, domain.EventScorer{
				Player: scope.playerInfo(playerID),
				Points: p,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return lessByName(out[i].Player, out[j].Player)
	})
	return out
}

// Drought counts the plays since the player's most recent win, walking from the
// newest in-scope result backwards. A player whose latest play was a win has zero.
func Drought(entries []domain.PlayerEntry) int {
	drought := 0
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].IsWinner {
			break
		}
		drought++
	}
	return drought
}

// LongestDrought returns the listed player with the longest positive drought, or nil.
// Ties go to the lowest player id.
func (c *Calculator) LongestDrought(scope *Scope) *domain.StreakPlayer {
	var best *domain.StreakPlayer
	for _, p := range scope.Players {
		if !Listed(p, scope.Filter) {
			continue
		}
		d := Drought(ExtractEntries(scope.Results, p.ID))
		if d <= 0 {
			continue
		}
		if best == nil || d > best.Streak || (d == best.Streak && p.ID < best.Player.ID) {
			best = &domain.StreakPlayer{Player: p.Info(), Streak: d}
		}
	}
	return best
}

// HotStreaks returns listed players whose current win streak reaches the minimum
// streak, longest first
func (c *Calculator) HotStreaks(players []domain.PlayerWithData, f Filter) []domain.StreakPlayer {
	out := make([]domain.StreakPlayer, 0)
	for _, p := range players {
		if p.Data.CurrentWinStreak < c.opts.MinStreak || !Listed(p.Player, f) {
			continue
		}
		out = append(out, domain.StreakPlayer{
			Player: p.Player.Info(),
			Streak: p.Data.CurrentWinStreak,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Streak != out[j].Streak {
			return out[i].Streak > out[j].Streak
		}
		return lessByName(out[i].Player, out[j].Player)
	})
	return out
}

type pairKey struct {
	a, b string
}

type pairTally struct {
	shared int
	winsA  int
	winsB  int
}

// headToHead tallies shared plays and head-to-head wins for every pair of players.
// A head-to-head win is a play the one won and the other did not.
func headToHead(results []domain.Result) map[pairKey]*pairTally {
	pairs := make(map[pairKey]*pairTally)
	for _, r := range results {
		won := make(map[string]bool, len(r.PlayerResults))
		ids := make([]string, 0, len(r.PlayerResults))
		for _, pr := range r.PlayerResults {
			if _, dup := won[pr.PlayerID]; dup {
				continue
			}
			won[pr.PlayerID] = IsWinner(pr)
			ids = append(ids, pr.PlayerID)
		}
		sort.Strings(ids)

		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				key := pairKey{ids[i], ids[j]}
				t, ok := pairs[key]
				if !ok {
					t = &pairTally{}
					pairs[key] = t
				}
				t.shared++
				switch {
				case won[ids[i]] && !won[ids[j]]:
					t.winsA++
				case won[ids[j]] && !won[ids[i]]:
					t.winsB++
				}
			}
		}
	}
	return pairs
}

// Closeness scores how even a rivalry is, from 0 (one-sided) to 100 (dead even)
func Closeness(wins1, wins2, totalGames int) float64 {
	if totalGames == 0 {
		return 0
	}
	gap := math.Abs(float64(wins1-wins2)) / float64(totalGames) * 100
	return math.Max(0, 100-gap)
}

// allRivalries returns every qualifying pair with the player holding more
// head-to-head wins in the first slot
func (c *Calculator) allRivalries(scope *Scope) []domain.TopRivalry {
	out := make([]domain.TopRivalry, 0)
	for key, t := range headToHead(scope.Results) {
		if t.shared < c.opts.RivalryMinGames || t.winsA+t.winsB == 0 {
			continue
		}
		p1, p2, w1, w2 := key.a, key.b, t.winsA, t.winsB
		if w2 > w1 {
			p1, p2, w1, w2 = p2, p1, w2, w1
		}
		out = append(out, domain.TopRivalry{
			Player1:    scope.playerInfo(p1),
			Player2:    scope.playerInfo(p2),
			Wins1:      w1,
			Wins2:      w2,
			TotalGames: t.shared,
			Closeness:  round1(Closeness(w1, w2, t.shared)),
		})
	}
	return out
}

func lessRivalryPlayers(a, b domain.TopRivalry) bool {
	if a.Player1.ID != b.Player1.ID {
		return a.Player1.ID < b.Player1.ID
	}
	return a.Player2.ID < b.Player2.ID
}

// Rivalries returns qualifying pairs, most competitive first.
// Ties prefer the pair with more shared games.
func (c *Calculator) Rivalries(scope *Scope) []domain.TopRivalry {
	out := c.allRivalries(scope)
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Closeness != b.Closeness {
			return a.Closeness > b.Closeness
		}
		if a.TotalGames != b.TotalGames {
			return a.TotalGames > b.TotalGames
		}
		return lessRivalryPlayers(a, b)
	})
	return out
}

// LopsidedRivalries returns qualifying pairs, biggest gap first, with the
// dominant player in the first slot
func (c *Calculator) LopsidedRivalries(scope *Scope) []domain.TopRivalry {
	out := c.allRivalries(scope)
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Closeness != b.Closeness {
			return a.Closeness < b.Closeness
		}
		if a.TotalGames != b.TotalGames {
			return a.TotalGames > b.TotalGames
		}
		return lessRivalryPlayers(a, b)
	})
	return out
}

// Attendance returns how many in-scope events each listed player came to, most
// regular first. Players who never came are left out.
func (c *Calculator) Attendance(scope *Scope) []domain.PlayerAttendance {
	played := make(map[string]map[string]bool)
	for _, r := range scope.Results {
		for _, pr := range r.PlayerResults {
			if played[pr.PlayerID] == nil {
				played[pr.PlayerID] = make(map[string]bool)
			}
			played[pr.PlayerID][r.EventID] = true
		}
	}

	total := len(scope.Events)
	out := make([]domain.PlayerAttendance, 0, len(scope.Players))
	for _, p := range scope.Players {
		if !Listed(p, scope.Filter) {
			continue
		}
		attended := 0
		for _, e := range scope.Events {
			if e.Attended(p.ID) || played[p.ID][e.ID] {
				attended++
			}
		}
		if attended == 0 {
			continue
		}
		out = append(out, domain.PlayerAttendance{
			Player:   p.Info(),
			Attended: attended,
			Total:    total,
			Rate:     round2(ratio(attended, total)),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Attended != out[j].Attended {
			return out[i].Attended > out[j].Attended
		}
		return lessByName(out[i].Player, out[j].Player)
	})
	return out
}

// RecentEvents returns the latest in-scope events, newest first, with their top scorers
func (c *Calculator) RecentEvents(scope *Scope) []domain.EventSummary {
	out := make([]domain.EventSummary, 0, c.opts.RecentEventsWindow)
	for i := len(scope.Events) - 1; i >= 0 && len(out) < c.opts.RecentEventsWindow; i-- {
		e := scope.Events[i]
		out = append(out, domain.EventSummary{
			Event:      e,
			TopScorers: c.TopScorers(e.ID, scope),
		})
	}
	return out
}
