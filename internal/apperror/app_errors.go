package apperror

import "errors"

var (
	ErrSessionFinished   = errors.New("session is already finished")
	ErrSessionNotStarted = errors.New("session is not started")
	ErrNotYourTurn       = errors.New("it's not your turn")
	ErrWrongHandSize     = errors.New("hand size does not allow this action")
	ErrAlreadyWaiting    = errors.New("waiting hand is already declared")
	ErrNotWaiting        = errors.New("waiting hand is not declared")
	ErrNotEligible       = errors.New("hand is not eligible for the declaration")

	ErrUnknownTile   = errors.New("unknown tile identity")
	ErrTileNotInHand = errors.New("tile is not in hand")
	ErrMissingField  = errors.New("required field is missing")

	ErrSessionNotFound = errors.New("session not found")
	ErrPlayerNotFound  = errors.New("player not found")
	ErrSeatOccupied    = errors.New("session already has two seated players")

	ErrUnknownWinKind = errors.New("unknown win declaration kind")

	ErrQueryTimeout = errors.New("judgment query timed out")
)
