package stats

// Options holds the thresholds and window sizes used by the aggregations
type Options struct {
	MinGamesForLeaderboard int
	MinGamesForBestGame    int
	MinGamesForRank        int
	RecentFormWindow       int
	RecentEventsWindow     int
	RivalryMinGames        int
	MinStreak              int
	DisplayLimit           int
}

// DefaultOptions returns the options used when nothing is configured
func DefaultOptions() Options {
	return Options{
		MinGamesForLeaderboard: 1,
		MinGamesForBestGame:    1,
		MinGamesForRank:        3,
		RecentFormWindow:       5,
		RecentEventsWindow:     5,
		RivalryMinGames:        5,
		MinStreak:              3,
		DisplayLimit:           10,
	}
}

// withDefaults fills unset (zero or negative) values from DefaultOptions
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MinGamesForLeaderboard <= 0 {
		o.MinGamesForLeaderboard = d.MinGamesForLeaderboard
	}
	if o.MinGamesForBestGame <= 0 {
		o.MinGamesForBestGame = d.MinGamesForBestGame
	}
	if o.MinGamesForRank <= 0 {
		o.MinGamesForRank = d.MinGamesForRank
	}
	if o.RecentFormWindow <= 0 {
		o.RecentFormWindow = d.RecentFormWindow
	}
	if o.RecentEventsWindow <= 0 {
		o.RecentEventsWindow = d.RecentEventsWindow
	}
	if o.RivalryMinGames <= 0 {
		o.RivalryMinGames = d.RivalryMinGames
	}
	if o.MinStreak <= 0 {
		o.MinStreak = d.MinStreak
	}
	if o.DisplayLimit <= 0 {
		o.DisplayLimit = d.DisplayLimit
	}
	return o
}
