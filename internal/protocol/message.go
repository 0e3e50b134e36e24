// Package protocol describes the JSON messages exchanged with game clients.
//
// Every frame is an envelope {"action": "<event>", "payload": <json>}. Inbound envelopes are
// decoded into one of the Inbound variants; outbound payloads are the structs at the bottom
// of this file.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Inbound actions sent by clients.
const (
	ActionSetName     = "set_name"
	ActionQuickMatch  = "quick_match"
	ActionCancelMatch = "cancel_match"
	ActionCreateRoom  = "create_room"
	ActionJoinRoom    = "join_room"
	ActionPlayerReady = "player_ready"
	ActionGameAction  = "game_action"
	ActionEndTurn     = "end_turn"
	ActionChatMessage = "chat_message"
	ActionGameOver    = "game_over"
	ActionSurrender   = "surrender"
)

// Outbound actions sent by the server.
const (
	ActionConnected            = "connected"
	ActionOnlineCount          = "online_count"
	ActionWaitingMatch         = "waiting_match"
	ActionMatchFound           = "match_found"
	ActionOpponentReady        = "opponent_ready"
	ActionGameStart            = "game_start"
	ActionOpponentAction       = "opponent_action"
	ActionYourTurn             = "your_turn"
	ActionGameResult           = "game_result"
	ActionOpponentSurrendered  = "opponent_surrendered"
	ActionOpponentDisconnected = "opponent_disconnected"
	ActionJoinError            = "join_error"
	ActionRoomCreated          = "room_created"
)

var (
	ErrUnknownAction  = errors.New("unknown action")
	ErrInvalidPayload = errors.New("invalid payload")
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Envelope is an inbound event tagged with the connection it arrived on.
type Envelope struct {
	ConnID string
	Event  Inbound
}

// Inbound is implemented by every event the coordinator dispatches.
type Inbound interface {
	inbound()
}

type (
	// Connected and Disconnected are produced by the transport, never by clients.
	Connected    struct{}
	Disconnected struct{}

	SetName     struct{ Name string }
	QuickMatch  struct{}
	CancelMatch struct{}
	CreateRoom  struct{}
	JoinRoom    struct{ Code string }
	PlayerReady struct{}
	GameAction  struct{ Payload json.RawMessage }
	EndTurn     struct{ State json.RawMessage }
	ChatMessage struct{ Text string }
	GameOver    struct {
		WinnerID string `json:"winnerId"`
		Reason   string `json:"reason"`
	}
	Surrender struct{}
)

func (Connected) inbound()    {}
func (Disconnected) inbound() {}
func (SetName) inbound()      {}
func (QuickMatch) inbound()   {}
func (CancelMatch) inbound()  {}
func (CreateRoom) inbound()   {}
func (JoinRoom) inbound()     {}
func (PlayerReady) inbound()  {}
func (GameAction) inbound()   {}
func (EndTurn) inbound()      {}
func (ChatMessage) inbound()  {}
func (GameOver) inbound()     {}
func (Surrender) inbound()    {}

// Decode - parses a raw frame into an inbound event.
func Decode(data []byte) (Inbound, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message: %w", err)
	}

	return DecodeMessage(msg)
}

// DecodeMessage - maps an envelope onto its inbound variant.
func DecodeMessage(msg Message) (Inbound, error) {
	switch msg.Action {
	case ActionSetName:
		name, err := decodeString(msg)
		if err != nil {
			return nil, err
		}
		return SetName{Name: name}, nil
	case ActionQuickMatch:
		return QuickMatch{}, nil
	case ActionCancelMatch:
		return CancelMatch{}, nil
	case ActionCreateRoom:
		return CreateRoom{}, nil
	case ActionJoinRoom:
		code, err := decodeString(msg)
		if err != nil {
			return nil, err
		}
		return JoinRoom{Code: code}, nil
	case ActionPlayerReady:
		return PlayerReady{}, nil
	case ActionGameAction:
		return GameAction{Payload: msg.Payload}, nil
	case ActionEndTurn:
		return EndTurn{State: msg.Payload}, nil
	case ActionChatMessage:
		text, err := decodeString(msg)
		if err != nil {
			return nil, err
		}
		return ChatMessage{Text: text}, nil
	case ActionGameOver:
		var result GameOver
		if len(msg.Payload) == 0 {
			return nil, fmt.Errorf("%w: %s: missing result", ErrInvalidPayload, msg.Action)
		}
		if err := json.Unmarshal(msg.Payload, &result); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidPayload, msg.Action, err)
		}
		return result, nil
	case ActionSurrender:
		return Surrender{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, msg.Action)
	}
}

func decodeString(msg Message) (string, error) {
	var value string
	if len(msg.Payload) == 0 {
		return "", nil
	}

	if err := json.Unmarshal(msg.Payload, &value); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrInvalidPayload, msg.Action, err)
	}

	return value, nil
}

type PlayerSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Welcome struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type MatchFound struct {
	SessionID string        `json:"sessionId"`
	PlayerA   PlayerSummary `json:"playerA"`
	PlayerB   PlayerSummary `json:"playerB"`
}

type GameStart struct {
	FirstTurnSlot string `json:"firstTurnSlot"`
	PlayerAID     string `json:"playerAId"`
	PlayerBID     string `json:"playerBId"`
}

type YourTurn struct {
	State      json.RawMessage `json:"state"`
	TurnNumber int             `json:"turnNumber"`
}

type Chat struct {
	Sender  string `json:"sender"`
	Message string `json:"message"`
}

type GameResult struct {
	WinnerID string `json:"winnerId"`
	Reason   string `json:"reason"`
}

type OpponentSurrendered struct {
	Name string `json:"name"`
}

type RoomCreated struct {
	Code string `json:"code"`
}
