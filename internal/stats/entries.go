package stats

import "github.com/gamenight-tracker/internal/domain"

// ExtractEntries flattens results into one entry per play of the given player.
// Results must already be in chronological order; the entries keep that order.
// A player listed twice in the same result only contributes the first record.
func ExtractEntries(results []domain.Result, playerID string) []domain.PlayerEntry {
	var entries []domain.PlayerEntry
	for _, r := range results {
		pr, ok := r.For(playerID)
		if !ok {
			continue
		}
		opponents := make([]string, 0, len(r.PlayerResults)-1)
		for _, other := range r.PlayerResults {
			if other.PlayerID != playerID {
				opponents = append(opponents, other.PlayerID)
			}
		}
		entries = append(entries, domain.PlayerEntry{
			ResultID:    r.ID,
			EventID:     r.EventID,
			GameID:      r.GameID,
			IsWinner:    IsWinner(pr),
			IsLoser:     pr.IsLoser,
			Rank:        pr.Rank,
			OpponentIDs: opponents,
		})
	}
	return entries
}
