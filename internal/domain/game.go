package domain

import (
	"strings"
	"time"
)

// GameType represents the kind of game being played
type GameType string

const (
	GameTypeBoard GameType = "board"
	GameTypeVideo GameType = "video"
)

// Valid reports whether the game type is one of the known values
func (t GameType) Valid() bool {
	return t == GameTypeBoard || t == GameTypeVideo
}

// Game represents a game that can be played at an event
type Game struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Points    int       `json:"points"`
	Type      GameType  `json:"type"`
	Color     string    `json:"color"`
	Tags      []string  `json:"tags,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasAnyTag reports whether the game carries at least one of the given tags.
// Tags are compared case-insensitively.
func (g Game) HasAnyTag(tags []string) bool {
	for _, want := range tags {
		for _, have := range g.Tags {
			if strings.EqualFold(strings.TrimSpace(want), strings.TrimSpace(have)) {
				return true
			}
		}
	}
	return false
}

// GameRequest represents a request to create or update a game
type GameRequest struct {
	Name   string   `json:"name" validate:"required,max=255"`
	Points int      `json:"points" validate:"gte=0,lte=1000"`
	Type   GameType `json:"type" validate:"omitempty,oneof=board video"`
	Color  string   `json:"color" validate:"omitempty,hexcolor"`
	Tags   []string `json:"tags" validate:"omitempty,dive,required,max=64"`
}

// Apply copies the request onto a game. An empty type means board game.
func (r GameRequest) Apply(g *Game) {
	g.Name = r.Name
	g.Points = r.Points
	g.Type = r.Type
	if g.Type == "" {
		g.Type = GameTypeBoard
	}
	g.Color = r.Color
	g.Tags = r.Tags
}
