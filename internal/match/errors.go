package match

import "errors"

var (
	ErrNotFound          = errors.New("match not found")
	ErrTeamNotFound      = errors.New("team not found")
	ErrSameTeams         = errors.New("home and away teams must differ")
	ErrInvalidOdds       = errors.New("odds must be >= 1.0")
	ErrInvalidResult     = errors.New("invalid result")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrOddsLocked        = errors.New("odds can only change while scheduled")
	ErrResultConflict    = errors.New("match already completed with different result")
)
