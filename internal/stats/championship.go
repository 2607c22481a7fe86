package stats

import (
	"sort"

	"github.com/gamenight-tracker/internal/domain"
)

// ConcludedYears returns the distinct event years before currentYear, oldest first.
// The current year is excluded because its standings are not final.
func ConcludedYears(events []domain.Event, currentYear int) []int {
	seen := make(map[int]bool)
	var years []int
	for _, e := range events {
		y := e.Year()
		if y >= currentYear || seen[y] {
			continue
		}
		seen[y] = true
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// Championships recomputes the leaderboard of every concluded year holding an
// in-scope event and records its leader. The scope's year and date bounds only
// pick the years; each year is ranked over all of its events with the scope's
// tag and player restrictions.
func (c *Calculator) Championships(scope *Scope, currentYear int) []domain.Championship {
	out := make([]domain.Championship, 0)
	for _, year := range ConcludedYears(scope.Events, currentYear) {
		yearScope := NewScope(scope.snapshot, scope.Filter.ForYear(year))
		board := c.Leaderboard(yearScope)
		if len(board) == 0 {
			continue
		}
		out = append(out, domain.Championship{
			Year:   year,
			Player: board[0].Player,
			Points: board[0].Data.Points,
		})
	}
	return out
}

// Titles counts championships per player, most decorated first
func Titles(championships []domain.Championship) []domain.ChampionshipCount {
	byPlayer := make(map[string]*domain.ChampionshipCount)
	for _, ch := range championships {
		t, ok := byPlayer[ch.Player.ID]
		if !ok {
			t = &domain.ChampionshipCount{Player: ch.Player}
			byPlayer[ch.Player.ID] = t
		}
		t.Titles++
		t.Years = append(t.Years, ch.Year)
	}

	out := make([]domain.ChampionshipCount, 0, len(byPlayer))
	for _, t := range byPlayer {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Titles != out[j].Titles {
			return out[i].Titles > out[j].Titles
		}
		return lessByName(out[i].Player, out[j].Player)
	})
	return out
}
