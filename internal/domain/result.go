package domain

import "time"

// Outcome is the resolved result of one player in one play
type Outcome string

const (
	OutcomeWin          Outcome = "win"
	OutcomeLoss         Outcome = "loss"
	OutcomeUndetermined Outcome = "undetermined"
)

// PlayerResult is one player's outcome within a Result.
// IsWinner, IsLoser and Rank are set independently by the people entering results.
type PlayerResult struct {
	PlayerID string `json:"player_id" validate:"required"`
	Rank     *int   `json:"rank,omitempty" validate:"omitempty,gte=1"`
	IsWinner bool   `json:"is_winner,omitempty"`
	IsLoser  bool   `json:"is_loser,omitempty"`
}

// Won reports whether the player won: the winner flag is set or the rank is 1
func (pr PlayerResult) Won() bool {
	return pr.IsWinner || (pr.Rank != nil && *pr.Rank == 1)
}

// Outcome resolves the flags into a single outcome. A win takes precedence.
func (pr PlayerResult) Outcome() Outcome {
	switch {
	case pr.Won():
		return OutcomeWin
	case pr.IsLoser:
		return OutcomeLoss
	default:
		return OutcomeUndetermined
	}
}

// Result represents one play of one game at one event
type Result struct {
	ID            string         `json:"id"`
	EventID       string         `json:"event_id"`
	GameID        string         `json:"game_id"`
	Order         int            `json:"order"`
	PlayerResults []PlayerResult `json:"player_results"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// PlayerIDs returns the ids of every participant in order of entry
func (r Result) PlayerIDs() []string {
	ids := make([]string, 0, len(r.PlayerResults))
	for _, pr := range r.PlayerResults {
		ids = append(ids, pr.PlayerID)
	}
	return ids
}

// For returns the participant record of a player, if present
func (r Result) For(playerID string) (PlayerResult, bool) {
	for _, pr := range r.PlayerResults {
		if pr.PlayerID == playerID {
			return pr, true
		}
	}
	return PlayerResult{}, false
}

// ResultSubmission represents a request to record a result
type ResultSubmission struct {
	ID            string         `json:"id,omitempty"`
	EventID       string         `json:"event_id" validate:"required"`
	GameID        string         `json:"game_id" validate:"required"`
	Order         int            `json:"order" validate:"gte=0"`
	PlayerResults []PlayerResult `json:"player_results" validate:"required,min=1,dive"`
}

// BatchResultSubmission represents multiple result submissions
type BatchResultSubmission struct {
	Results []ResultSubmission `json:"results" validate:"required,min=1,max=500"`
}

// BatchFailure describes one rejected submission of a batch
type BatchFailure struct {
	Index int    `json:"index"`
	ID    string `json:"id,omitempty"`
	Error string `json:"error"`
}

// BatchOutcome reports what a batch submission recorded
type BatchOutcome struct {
	Recorded []Result       `json:"recorded"`
	Failed   []BatchFailure `json:"failed"`
}
