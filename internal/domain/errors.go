package domain

import "errors"

// Domain errors
var (
	ErrPlayerNotFound      = errors.New("player not found")
	ErrGameNotFound        = errors.New("game not found")
	ErrEventNotFound       = errors.New("event not found")
	ErrResultNotFound      = errors.New("result not found")
	ErrLeaderboardNotFound = errors.New("leaderboard not found")
	ErrLeaderboardExists   = errors.New("leaderboard already exists")
	ErrInvalidResult       = errors.New("invalid result")
	ErrInvalidLeaderboard  = errors.New("invalid leaderboard configuration")
	ErrInvalidRequest      = errors.New("invalid request")
	ErrCacheMiss           = errors.New("cache miss")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrInternalError       = errors.New("internal server error")
)

// IsNotFoundError checks if an error is a not-found type error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrPlayerNotFound) ||
		errors.Is(err, ErrGameNotFound) ||
		errors.Is(err, ErrEventNotFound) ||
		errors.Is(err, ErrResultNotFound) ||
		errors.Is(err, ErrLeaderboardNotFound)
}
