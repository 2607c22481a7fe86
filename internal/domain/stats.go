package domain

import "time"

// PlayerEntry is one player's outcome in one Result, with the other participants
type PlayerEntry struct {
	ResultID    string   `json:"result_id"`
	EventID     string   `json:"event_id"`
	GameID      string   `json:"game_id"`
	IsWinner    bool     `json:"is_winner"`
	IsLoser     bool     `json:"is_loser"`
	Rank        *int     `json:"rank,omitempty"`
	OpponentIDs []string `json:"opponent_ids"`
}

// BestGame is the game in which a player collected the most winning points
type BestGame struct {
	GameID string `json:"game_id"`
	Name   string `json:"name"`
	Wins   int    `json:"wins"`
	Points int    `json:"points"`
}

// PlayerData holds aggregated stats for one player within a scope
type PlayerData struct {
	Games             int        `json:"games"`
	Wins              int        `json:"wins"`
	Losses            int        `json:"losses"`
	Points            int        `json:"points"`
	WinRate           float64    `json:"win_rate"`
	WinRatePercent    int        `json:"win_rate_percent"`
	RecentForm        []*int     `json:"recent_form"`
	BestGame          *BestGame  `json:"best_game,omitempty"`
	CurrentWinStreak  int        `json:"current_win_streak"`
	CurrentLossStreak int        `json:"current_loss_streak"`
	LongestWinStreak  int        `json:"longest_win_streak"`
	LongestLossStreak int        `json:"longest_loss_streak"`
	EventsAttended    int        `json:"events_attended"`
	AverageRank       *float64   `json:"average_rank,omitempty"`
	LastPlayed        *time.Time `json:"last_played,omitempty"`
}

// PlayerWithData attaches aggregated stats to a player
type PlayerWithData struct {
	Player Player     `json:"player"`
	Data   PlayerData `json:"data"`
}

// GameData holds aggregated stats for one game within a scope
type GameData struct {
	TimesPlayed        int            `json:"times_played"`
	TotalPointsAwarded int            `json:"total_points_awarded"`
	UniquePlayers      int            `json:"unique_players"`
	AvgPlayersPerGame  float64        `json:"avg_players_per_game"`
	WinsByPlayer       map[string]int `json:"wins_by_player"`
	RankDistribution   map[int]int    `json:"rank_distribution"`
	LastPlayed         *time.Time     `json:"last_played,omitempty"`
}

// GameWithData attaches aggregated stats to a game
type GameWithData struct {
	Game Game     `json:"game"`
	Data GameData `json:"data"`
}

// PlayerGameStats holds one player's stats for a single game
type PlayerGameStats struct {
	Player      PlayerInfo `json:"player"`
	Games       int        `json:"games"`
	Wins        int        `json:"wins"`
	WinRate     float64    `json:"win_rate"`
	AverageRank *float64   `json:"average_rank,omitempty"`
	Points      int        `json:"points"`
}

// TopRivalry describes the head-to-head record of two players
type TopRivalry struct {
	Player1    PlayerInfo `json:"player1"`
	Player2    PlayerInfo `json:"player2"`
	Wins1      int        `json:"wins1"`
	Wins2      int        `json:"wins2"`
	TotalGames int        `json:"total_games"`
	Closeness  float64    `json:"closeness"`
}

// StreakPlayer is a player with a notable run of wins or non-wins
type StreakPlayer struct {
	Player PlayerInfo `json:"player"`
	Streak int        `json:"streak"`
}

// PlayerAttendance is how many in-scope events a player came to
type PlayerAttendance struct {
	Player   PlayerInfo `json:"player"`
	Attended int        `json:"attended"`
	Total    int        `json:"total"`
	Rate     float64    `json:"rate"`
}

// EventScorer is a player's net points within a single event
type EventScorer struct {
	Player PlayerInfo `json:"player"`
	Points int        `json:"points"`
}

// EventSummary is an event with its top scorers
type EventSummary struct {
	Event      Event         `json:"event"`
	TopScorers []EventScorer `json:"top_scorers"`
}

// Championship records the winner of a concluded year
type Championship struct {
	Year   int        `json:"year"`
	Player PlayerInfo `json:"player"`
	Points int        `json:"points"`
}

// ChampionshipCount is the number of titles a player holds
type ChampionshipCount struct {
	Player PlayerInfo `json:"player"`
	Titles int        `json:"titles"`
	Years  []int      `json:"years"`
}

// Insights bundles the derived records shown on the dashboard
type Insights struct {
	LongestDrought    *StreakPlayer       `json:"longest_drought,omitempty"`
	HotStreaks        []StreakPlayer      `json:"hot_streaks"`
	TopRivalries      []TopRivalry        `json:"top_rivalries"`
	LopsidedRivalries []TopRivalry        `json:"lopsided_rivalries"`
	Attendance        []PlayerAttendance  `json:"attendance"`
	RecentEvents      []EventSummary      `json:"recent_events"`
	Championships     []Championship      `json:"championships"`
	Titles            []ChampionshipCount `json:"titles"`
}

// Dashboard is the full recomputed view for a scope
type Dashboard struct {
	Leaderboard []LeaderboardRow `json:"leaderboard"`
	Games       []GameWithData   `json:"games"`
	Insights    Insights         `json:"insights"`
	Version     int64            `json:"version"`
}

// PlayerStats is a player's aggregate plus their standing on the same scope
type PlayerStats struct {
	Player   Player     `json:"player"`
	Data     PlayerData `json:"data"`
	Position int        `json:"position,omitempty"`
}

// GameStats is a game's aggregate plus its best players
type GameStats struct {
	Game       Game              `json:"game"`
	Data       GameData          `json:"data"`
	TopPlayers []PlayerGameStats `json:"top_players"`
	Players    []PlayerGameStats `json:"players"`
}

// ChampionshipReport lists yearly champions and title counts
type ChampionshipReport struct {
	Championships []Championship      `json:"championships"`
	Titles        []ChampionshipCount `json:"titles"`
}
