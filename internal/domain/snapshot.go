package domain

import "time"

// Snapshot is an immutable view of every collection at one point in time.
// Consumers must not modify the slices they receive.
type Snapshot struct {
	Players  []Player  `json:"players" yaml:"players"`
	Games    []Game    `json:"games" yaml:"games"`
	Events   []Event   `json:"events" yaml:"events"`
	Results  []Result  `json:"results" yaml:"results"`
	Version  int64     `json:"version" yaml:"-"`
	Epoch    string    `json:"epoch" yaml:"-"`
	LoadedAt time.Time `json:"loaded_at" yaml:"-"`
}

// Revision identifies one published snapshot. Versions count publishes within a
// single store, so the epoch of that store is needed to tell two stores apart.
type Revision struct {
	Epoch   string
	Version int64
}

// Revision returns the identity of the snapshot
func (s Snapshot) Revision() Revision {
	return Revision{Epoch: s.Epoch, Version: s.Version}
}

// PlayersByID indexes players by id
func (s Snapshot) PlayersByID() map[string]Player {
	m := make(map[string]Player, len(s.Players))
	for _, p := range s.Players {
		m[p.ID] = p
	}
	return m
}

// GamesByID indexes games by id
func (s Snapshot) GamesByID() map[string]Game {
	m := make(map[string]Game, len(s.Games))
	for _, g := range s.Games {
		m[g.ID] = g
	}
	return m
}

// EventsByID indexes events by id
func (s Snapshot) EventsByID() map[string]Event {
	m := make(map[string]Event, len(s.Events))
	for _, e := range s.Events {
		m[e.ID] = e
	}
	return m
}
