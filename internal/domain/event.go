package domain

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"
)

// DateLayout is the calendar-day format used for event dates
const DateLayout = "2006-01-02"

// Event represents a game night: a date, a place, who came and what was played
type Event struct {
	ID        string    `json:"id"`
	Location  string    `json:"location"`
	Date      time.Time `json:"date"`
	PlayerIDs []string  `json:"player_ids"`
	GameIDs   []string  `json:"game_ids"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Attended reports whether the player is on the event's attendance list
func (e Event) Attended(playerID string) bool {
	return slices.Contains(e.PlayerIDs, playerID)
}

// Year returns the calendar year of the event
func (e Event) Year() int {
	return e.Date.Year()
}

// ParseDate parses a YYYY-MM-DD string into a UTC calendar day
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// CalendarDay strips the time component, keeping the calendar day in UTC
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type eventJSON struct {
	ID        string    `json:"id"`
	Location  string    `json:"location"`
	Date      string    `json:"date"`
	PlayerIDs []string  `json:"player_ids"`
	GameIDs   []string  `json:"game_ids"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MarshalJSON writes the event date as a calendar day
func (e Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(eventJSON{
		ID:        e.ID,
		Location:  e.Location,
		Date:      e.Date.Format(DateLayout),
		PlayerIDs: e.PlayerIDs,
		GameIDs:   e.GameIDs,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	})
}

// UnmarshalJSON accepts either a calendar day or an RFC 3339 timestamp as the date
func (e *Event) UnmarshalJSON(data []byte) error {
	var raw eventJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	date, err := ParseDate(raw.Date)
	if err != nil {
		ts, tsErr := time.Parse(time.RFC3339, raw.Date)
		if tsErr != nil {
			return fmt.Errorf("parsing event date %q: %w", raw.Date, err)
		}
		date = CalendarDay(ts)
	}
	*e = Event{
		ID:        raw.ID,
		Location:  raw.Location,
		Date:      date,
		PlayerIDs: raw.PlayerIDs,
		GameIDs:   raw.GameIDs,
		CreatedAt: raw.CreatedAt,
		UpdatedAt: raw.UpdatedAt,
	}
	return nil
}

// EventRequest represents a request to create or update a game night
type EventRequest struct {
	Location  string   `json:"location" validate:"max=255"`
	Date      string   `json:"date" validate:"required,datetime=2006-01-02"`
	PlayerIDs []string `json:"player_ids" validate:"omitempty,dive,required"`
	GameIDs   []string `json:"game_ids" validate:"omitempty,dive,required"`
}

// Apply copies the request onto an event
func (r EventRequest) Apply(e *Event) error {
	date, err := ParseDate(r.Date)
	if err != nil {
		return fmt.Errorf("parsing event date: %w", ErrInvalidRequest)
	}
	e.Location = r.Location
	e.Date = date
	e.PlayerIDs = r.PlayerIDs
	e.GameIDs = r.GameIDs
	return nil
}
