package stats

import "github.com/gamenight-tracker/internal/domain"

// IsWinner reports whether a participant won the play.
// The winner flag and a rank of 1 are both honored and never counted twice.
func IsWinner(pr domain.PlayerResult) bool {
	return pr.Won()
}

// PointsFor returns the points a participant gains or loses in a play of a game worth points.
// A winner gains points and a flagged loser loses them. The two adjustments are independent,
// so a participant flagged both ways nets zero.
func PointsFor(pr domain.PlayerResult, points int) int {
	return netPoints(IsWinner(pr), pr.IsLoser, points)
}

func netPoints(won, lost bool, points int) int {
	net := 0
	if won {
		net += points
	}
	if lost {
		net -= points
	}
	return net
}
