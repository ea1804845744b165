package apperror

import "errors"

var (
	ErrInvalidCode      = errors.New("invalid game code")
	ErrSessionNotFound  = errors.New("game not found")
	ErrSessionFull      = errors.New("game is full")
	ErrNotYourTurn      = errors.New("it's not your turn")
	ErrIllegalMove      = errors.New("illegal move")
	ErrSessionNotActive = errors.New("game is not active")
	ErrSessionFinished  = errors.New("game is already finished")
	ErrNotParticipant   = errors.New("you are not part of this game")
	ErrConflict         = errors.New("concurrent update conflict")
	ErrNotFound         = errors.New("not found")
)

// Kind maps an error to its machine-readable kind for transport payloads.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidCode):
		return "invalid_code"
	case errors.Is(err, ErrSessionNotFound):
		return "session_not_found"
	case errors.Is(err, ErrSessionFull):
		return "session_full"
	case errors.Is(err, ErrNotYourTurn):
		return "not_your_turn"
	case errors.Is(err, ErrIllegalMove):
		return "illegal_move"
	case errors.Is(err, ErrSessionNotActive):
		return "session_not_active"
	case errors.Is(err, ErrSessionFinished):
		return "session_finished"
	case errors.Is(err, ErrNotParticipant):
		return "not_participant"
	case errors.Is(err, ErrConflict):
		return "conflict"
	default:
		return "internal"
	}
}
