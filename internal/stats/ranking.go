package stats

import (
	"sort"
	"strings"

	"github.com/gamenight-tracker/internal/domain"
)

var medals = []domain.Medal{domain.MedalGold, domain.MedalSilver, domain.MedalBronze}

// Less reports whether a ranks above b. Keys, first difference wins:
// points, wins, win rate, games (all descending), then display name ascending
// ignoring case. Identical names fall back to the player id.
func Less(a, b domain.PlayerWithData) bool {
	if a.Data.Points != b.Data.Points {
		return a.Data.Points > b.Data.Points
	}
	if a.Data.Wins != b.Data.Wins {
		return a.Data.Wins > b.Data.Wins
	}
	if a.Data.WinRate != b.Data.WinRate {
		return a.Data.WinRate > b.Data.WinRate
	}
	if a.Data.Games != b.Data.Games {
		return a.Data.Games > b.Data.Games
	}
	return lessByName(a.Player.Info(), b.Player.Info())
}

func lessByName(a, b domain.PlayerInfo) bool {
	an, bn := strings.ToLower(a.DisplayName), strings.ToLower(b.DisplayName)
	if an != bn {
		return an < bn
	}
	return a.ID < b.ID
}

// Listed reports whether a player may be named in per-player rankings: the
// leaderboard, streaks, droughts and attendance
func Listed(p domain.Player, f Filter) bool {
	return p.ShowOnLeaderboard && f.IncludesPlayer(p.ID)
}

// Eligible reports whether a player may appear on a leaderboard
func Eligible(p domain.PlayerWithData, f Filter, minGames int) bool {
	return p.Data.Games >= minGames && Listed(p.Player, f)
}

// RankLeaderboard filters ineligible players, sorts the rest and assigns positions
// and medals. The input slice is left untouched.
func RankLeaderboard(players []domain.PlayerWithData, f Filter, minGames int) []domain.LeaderboardRow {
	eligible := make([]domain.PlayerWithData, 0, len(players))
	for _, p := range players {
		if Eligible(p, f, minGames) {
			eligible = append(eligible, p)
		}
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		return Less(eligible[i], eligible[j])
	})

	rows := make([]domain.LeaderboardRow, len(eligible))
	for i, p := range eligible {
		rows[i] = domain.LeaderboardRow{
			Position: i + 1,
			Player:   p.Player.Info(),
			Data:     p.Data,
		}
		if i < len(medals) {
			rows[i].Medal = medals[i]
		}
	}
	return rows
}

// Leaderboard computes the ranked leaderboard of a scope
func (c *Calculator) Leaderboard(scope *Scope) []domain.LeaderboardRow {
	return RankLeaderboard(c.AllPlayerData(scope), scope.Filter, c.opts.MinGamesForLeaderboard)
}
