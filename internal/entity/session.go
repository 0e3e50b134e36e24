package entity

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rocketscienceinc/warfront-relay/internal/apperror"
)

type Slot string

const (
	SlotA Slot = "A"
	SlotB Slot = "B"
)

type SessionState string

const (
	StatePairedNotReady SessionState = "paired_not_ready"
	StateReadyPending   SessionState = "paired_ready_pending"
	StateInProgress     SessionState = "in_progress"
	StateEnded          SessionState = "ended"
)

const (
	MaxChatLength   = 100
	firstTurnNumber = 1
)

var (
	ErrDuplicateParticipant = errors.New("session needs two distinct participants")
	ErrUnknownSessionState  = errors.New("unknown session state")
)

// Session is one paired match between the participants in slot A and slot B.
type Session struct {
	ID         string          `json:"id"`
	PlayerA    string          `json:"player_a"`
	PlayerB    string          `json:"player_b"`
	State      SessionState    `json:"state"`
	Turn       Slot            `json:"turn"`
	TurnNumber int             `json:"turn_number"`
	GameState  json.RawMessage `json:"game_state,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

func NewSession(id, playerA, playerB string, createdAt time.Time) (*Session, error) {
	if playerA == "" || playerB == "" || playerA == playerB {
		return nil, fmt.Errorf("%w: %q and %q", ErrDuplicateParticipant, playerA, playerB)
	}

	return &Session{
		ID:         id,
		PlayerA:    playerA,
		PlayerB:    playerB,
		State:      StatePairedNotReady,
		Turn:       SlotA,
		TurnNumber: firstTurnNumber,
		CreatedAt:  createdAt,
	}, nil
}

func (that *Session) Has(playerID string) bool {
	return playerID != "" && (playerID == that.PlayerA || playerID == that.PlayerB)
}

func (that *Session) SlotOf(playerID string) (Slot, bool) {
	switch playerID {
	case "":
		return "", false
	case that.PlayerA:
		return SlotA, true
	case that.PlayerB:
		return SlotB, true
	default:
		return "", false
	}
}

// Other - returns the opponent of playerID.
func (that *Session) Other(playerID string) (string, bool) {
	switch playerID {
	case "":
		return "", false
	case that.PlayerA:
		return that.PlayerB, true
	case that.PlayerB:
		return that.PlayerA, true
	default:
		return "", false
	}
}

func (that *Session) Members() []string {
	return []string{that.PlayerA, that.PlayerB}
}

// Holder - returns the participant whose turn it is.
func (that *Session) Holder() string {
	if that.Turn == SlotB {
		return that.PlayerB
	}

	return that.PlayerA
}

// UpdateReadiness - moves the session through the ready handshake. It reports true only on
// the single transition into StateInProgress.
func (that *Session) UpdateReadiness(readyA, readyB bool) bool {
	if that.State != StatePairedNotReady && that.State != StateReadyPending {
		return false
	}

	switch {
	case readyA && readyB:
		that.State = StateInProgress
		that.Turn = SlotA
		return true
	case readyA || readyB:
		that.State = StateReadyPending
	}

	return false
}

// EndTurn - passes the turn to the other slot and stores the snapshot. The turn counter
// grows each time the turn comes back to slot A. With strict set, only the holder may end
// the turn.
func (that *Session) EndTurn(playerID string, snapshot json.RawMessage, strict bool) error {
	if err := that.ConfirmInProgress(); err != nil {
		return err
	}

	if !that.Has(playerID) {
		return apperror.ErrNotInSession
	}

	if strict && that.Holder() != playerID {
		return apperror.ErrNotYourTurn
	}

	if that.Turn == SlotA {
		that.Turn = SlotB
	} else {
		that.Turn = SlotA
		that.TurnNumber++
	}

	that.GameState = snapshot

	return nil
}

func (that *Session) End() {
	that.State = StateEnded
}

func (that *Session) IsEnded() bool {
	return that.State == StateEnded
}

func (that *Session) IsInProgress() bool {
	return that.State == StateInProgress
}

func (that *Session) ConfirmInProgress() error {
	switch that.State {
	case StateInProgress:
		return nil
	case StatePairedNotReady, StateReadyPending:
		return apperror.ErrSessionNotStarted
	case StateEnded:
		return apperror.ErrSessionEnded
	default:
		return fmt.Errorf("%w: %s", ErrUnknownSessionState, that.State)
	}
}
