package domain

import (
	"strings"
	"time"
)

// Player represents a member of the game group
type Player struct {
	ID                string    `json:"id"`
	FirstName         string    `json:"first_name"`
	LastName          string    `json:"last_name"`
	PreferredName     string    `json:"preferred_name,omitempty"`
	Color             string    `json:"color"`
	PictureURL        string    `json:"picture_url,omitempty"`
	ShowOnLeaderboard bool      `json:"show_on_leaderboard"`
	UserID            string    `json:"user_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// DisplayName returns the name shown on leaderboards.
// Preferred name wins, then first name, then last name, then the id.
func (p Player) DisplayName() string {
	for _, name := range []string{p.PreferredName, p.FirstName, p.LastName} {
		if n := strings.TrimSpace(name); n != "" {
			return n
		}
	}
	return p.ID
}

// FullName returns first and last name joined by a space
func (p Player) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// PlayerInfo is a lightweight player reference embedded in derived rows
type PlayerInfo struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Color       string `json:"color,omitempty"`
}

// Info converts a Player to its lightweight reference
func (p Player) Info() PlayerInfo {
	return PlayerInfo{
		ID:          p.ID,
		DisplayName: p.DisplayName(),
		Color:       p.Color,
	}
}

// PlayerRequest represents a request to create or update a player
type PlayerRequest struct {
	FirstName         string `json:"first_name" validate:"required_without=PreferredName,max=255"`
	LastName          string `json:"last_name" validate:"max=255"`
	PreferredName     string `json:"preferred_name" validate:"max=255"`
	Color             string `json:"color" validate:"omitempty,hexcolor"`
	PictureURL        string `json:"picture_url" validate:"omitempty,url"`
	ShowOnLeaderboard *bool  `json:"show_on_leaderboard"`
	UserID            string `json:"user_id" validate:"max=128"`
}

// Apply copies the request onto a player. A missing visibility flag keeps the
// current value, which defaults to shown for new players.
func (r PlayerRequest) Apply(p *Player) {
	p.FirstName = r.FirstName
	p.LastName = r.LastName
	p.PreferredName = r.PreferredName
	p.Color = r.Color
	p.PictureURL = r.PictureURL
	p.UserID = r.UserID
	if r.ShowOnLeaderboard != nil {
		p.ShowOnLeaderboard = *r.ShowOnLeaderboard
	}
}
