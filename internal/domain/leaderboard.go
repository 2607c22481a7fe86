package domain

import (
	"fmt"
	"time"
)

// Leaderboard scope ids
const (
	ScopeOverall      = "overall"
	YearScopePrefix   = "year:"
	ConfigScopePrefix = "config:"
)

// YearScope returns the scope id of a single-year leaderboard
func YearScope(year int) string {
	return fmt.Sprintf("%s%d", YearScopePrefix, year)
}

// ConfigScope returns the scope id of a saved leaderboard
func ConfigScope(configID string) string {
	return ConfigScopePrefix + configID
}

// Medal represents the podium position shown next to a leaderboard row
type Medal string

const (
	MedalGold   Medal = "gold"
	MedalSilver Medal = "silver"
	MedalBronze Medal = "bronze"
)

// LeaderboardConfig is a saved leaderboard definition restricting which games,
// players and dates count towards it
type LeaderboardConfig struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	GameTags  []string   `json:"game_tags,omitempty"`
	PlayerIDs []string   `json:"player_ids,omitempty"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	Year      int        `json:"year,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CreateLeaderboardRequest represents a request to create a saved leaderboard
type CreateLeaderboardRequest struct {
	ID        string   `json:"id" validate:"omitempty,max=64"`
	Name      string   `json:"name" validate:"required,max=255"`
	GameTags  []string `json:"game_tags,omitempty"`
	PlayerIDs []string `json:"player_ids,omitempty"`
	StartDate string   `json:"start_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string   `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Year      int      `json:"year,omitempty" validate:"omitempty,gte=1900,lte=9999"`
}

// ToConfig converts a CreateLeaderboardRequest to a LeaderboardConfig
func (r *CreateLeaderboardRequest) ToConfig(now time.Time) (LeaderboardConfig, error) {
	config := LeaderboardConfig{
		ID:        r.ID,
		Name:      r.Name,
		GameTags:  r.GameTags,
		PlayerIDs: r.PlayerIDs,
		Year:      r.Year,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if r.StartDate != "" {
		start, err := ParseDate(r.StartDate)
		if err != nil {
			return LeaderboardConfig{}, fmt.Errorf("parsing start date: %w", ErrInvalidLeaderboard)
		}
		config.StartDate = &start
	}
	if r.EndDate != "" {
		end, err := ParseDate(r.EndDate)
		if err != nil {
			return LeaderboardConfig{}, fmt.Errorf("parsing end date: %w", ErrInvalidLeaderboard)
		}
		config.EndDate = &end
	}
	if config.StartDate != nil && config.EndDate != nil && config.EndDate.Before(*config.StartDate) {
		return LeaderboardConfig{}, ErrInvalidLeaderboard
	}
	return config, nil
}

// LeaderboardRow is a ranked player with aggregated stats
type LeaderboardRow struct {
	Position int        `json:"position"`
	Medal    Medal      `json:"medal,omitempty"`
	Player   PlayerInfo `json:"player"`
	Data     PlayerData `json:"data"`
}

// Leaderboard is a computed, ranked leaderboard for one scope
type Leaderboard struct {
	Scope      string           `json:"scope"`
	Name       string           `json:"name,omitempty"`
	Version    int64            `json:"version"`
	Rows       []LeaderboardRow `json:"rows"`
	ComputedAt time.Time        `json:"computed_at"`
}
