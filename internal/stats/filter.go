package stats

import (
	"slices"
	"sort"
	"time"

	"github.com/gamenight-tracker/internal/domain"
)

// Filter restricts which events, games and players count towards a computation.
// The zero value includes everything.
type Filter struct {
	Year      int        `json:"year,omitempty"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	GameTags  []string   `json:"game_tags,omitempty"`
	PlayerIDs []string   `json:"player_ids,omitempty"`
}

// FilterFromConfig builds the filter described by a saved leaderboard
func FilterFromConfig(cfg domain.LeaderboardConfig) Filter {
	return Filter{
		Year:      cfg.Year,
		StartDate: cfg.StartDate,
		EndDate:   cfg.EndDate,
		GameTags:  cfg.GameTags,
		PlayerIDs: cfg.PlayerIDs,
	}
}

// ForYear returns a copy of the filter restricted to a single calendar year.
// Date bounds are dropped; tag and player restrictions are kept.
func (f Filter) ForYear(year int) Filter {
	return Filter{
		Year:      year,
		GameTags:  f.GameTags,
		PlayerIDs: f.PlayerIDs,
	}
}

// IncludesEvent reports whether the event falls inside the year and date bounds.
// Both date bounds are inclusive.
func (f Filter) IncludesEvent(e domain.Event) bool {
	day := domain.CalendarDay(e.Date)
	if f.Year != 0 && day.Year() != f.Year {
		return false
	}
	if f.StartDate != nil && day.Before(domain.CalendarDay(*f.StartDate)) {
		return false
	}
	if f.EndDate != nil && day.After(domain.CalendarDay(*f.EndDate)) {
		return false
	}
	return true
}

// IncludesGame reports whether the game matches the tag restriction
func (f Filter) IncludesGame(g domain.Game) bool {
	if len(f.GameTags) == 0 {
		return true
	}
	return g.HasAnyTag(f.GameTags)
}

// IncludesPlayer reports whether the player may appear on a leaderboard
func (f Filter) IncludesPlayer(playerID string) bool {
	return len(f.PlayerIDs) == 0 || slices.Contains(f.PlayerIDs, playerID)
}

// FilterEvents returns the events inside the filter, sorted by date then id
func FilterEvents(events []domain.Event, f Filter) []domain.Event {
	out := make([]domain.Event, 0, len(events))
	for _, e := range events {
		if f.IncludesEvent(e) {
			out = append(out, e)
		}
	}
	return SortEvents(out)
}

// FilterResults returns the results whose event is in eventsInScope and whose game
// matches the tag restriction. Results of unknown events are dropped because they
// cannot be placed in time. When tags are set, results of unknown games are dropped too.
func FilterResults(results []domain.Result, eventsInScope map[string]domain.Event, games map[string]domain.Game, f Filter) []domain.Result {
	out := make([]domain.Result, 0, len(results))
	for _, r := range results {
		if _, ok := eventsInScope[r.EventID]; !ok {
			continue
		}
		if len(f.GameTags) > 0 {
			g, ok := games[r.GameID]
			if !ok || !f.IncludesGame(g) {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}

// SortEvents returns a copy of events in chronological order, ties broken by id
func SortEvents(events []domain.Event) []domain.Event {
	out := slices.Clone(events)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// SortResults returns a copy of results in chronological order: event date,
// then order within the event, then id
func SortResults(results []domain.Result, events map[string]domain.Event) []domain.Result {
	out := slices.Clone(results)
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := events[out[i].EventID].Date, events[out[j].EventID].Date
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		if out[i].EventID != out[j].EventID {
			return out[i].EventID < out[j].EventID
		}
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].ID < out[j].ID
	})
	return out
}
