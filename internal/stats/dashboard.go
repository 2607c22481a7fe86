package stats

import "github.com/gamenight-tracker/internal/domain"

// Insights computes every derived record of a scope.
// Rivalry lists are cut to the display limit.
func (c *Calculator) Insights(scope *Scope, players []domain.PlayerWithData, currentYear int) domain.Insights {
	championships := c.Championships(scope, currentYear)
	return domain.Insights{
		LongestDrought:    c.LongestDrought(scope),
		HotStreaks:        c.HotStreaks(players, scope.Filter),
		TopRivalries:      limit(c.Rivalries(scope), c.opts.DisplayLimit),
		LopsidedRivalries: limit(c.LopsidedRivalries(scope), c.opts.DisplayLimit),
		Attendance:        c.Attendance(scope),
		RecentEvents:      c.RecentEvents(scope),
		Championships:     championships,
		Titles:            Titles(championships),
	}
}

// Dashboard computes the leaderboard, game stats and insights of a scope in one pass
func (c *Calculator) Dashboard(scope *Scope, currentYear int) domain.Dashboard {
	players := c.AllPlayerData(scope)
	return domain.Dashboard{
		Leaderboard: RankLeaderboard(players, scope.Filter, c.opts.MinGamesForLeaderboard),
		Games:       c.AllGameData(scope),
		Insights:    c.Insights(scope, players, currentYear),
		Version:     scope.Version,
	}
}

func limit[T any](items []T, n int) []T {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}
