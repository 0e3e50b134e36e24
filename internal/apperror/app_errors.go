package apperror

import "errors"

var (
	ErrRoomNotFound      = errors.New("room not found")
	ErrSelfJoin          = errors.New("cannot join your own room")
	ErrSessionNotStarted = errors.New("session is not started")
	ErrSessionEnded      = errors.New("session is already ended")
	ErrNotYourTurn       = errors.New("it's not your turn")
	ErrNotInSession      = errors.New("participant is not in this session")
)
