package stats

import (
	"time"

	"github.com/gamenight-tracker/internal/domain"
)

func intPtr(v int) *int { return &v }

func date(s string) time.Time {
	d, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func player(id, name string) domain.Player {
	return domain.Player{ID: id, FirstName: name, ShowOnLeaderboard: true}
}

func game(id, name string, points int, tags ...string) domain.Game {
	return domain.Game{ID: id, Name: name, Points: points, Type: domain.GameTypeBoard, Tags: tags}
}

func event(id, day string, players ...string) domain.Event {
	return domain.Event{ID: id, Date: date(day), PlayerIDs: players}
}

func win(id string) domain.PlayerResult  { return domain.PlayerResult{PlayerID: id, IsWinner: true} }
func lose(id string) domain.PlayerResult { return domain.PlayerResult{PlayerID: id, IsLoser: true} }
func play(id string) domain.PlayerResult { return domain.PlayerResult{PlayerID: id} }

func result(id, eventID, gameID string, order int, prs ...domain.PlayerResult) domain.Result {
	return domain.Result{ID: id, EventID: eventID, GameID: gameID, Order: order, PlayerResults: prs}
}

// headToHeadSnapshot builds a snapshot where p1 and p2 play the same game on
// consecutive days, with the given winners (p1 or p2) in chronological order.
func headToHeadSnapshot(winners ...string) domain.Snapshot {
	snap := domain.Snapshot{
		Players: []domain.Player{player("p1", "Alice"), player("p2", "Bob")},
		Games:   []domain.Game{game("g1", "Catan", 2)},
	}
	start := date("2024-01-01")
	for i, w := range winners {
		eventID := "e" + string(rune('a'+i))
		snap.Events = append(snap.Events, domain.Event{
			ID:        eventID,
			Date:      start.AddDate(0, 0, i),
			PlayerIDs: []string{"p1", "p2"},
		})
		other := "p2"
		if w == "p2" {
			other = "p1"
		}
		snap.Results = append(snap.Results, result("r"+eventID, eventID, "g1", 0, win(w), lose(other)))
	}
	return snap
}
