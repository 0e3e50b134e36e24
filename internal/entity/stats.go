package entity

import "time"

type SessionSummary struct {
	ID         string       `json:"id"`
	PlayerA    string       `json:"player_a"`
	PlayerB    string       `json:"player_b"`
	State      SessionState `json:"state"`
	TurnNumber int          `json:"turn_number"`
	CreatedAt  time.Time    `json:"created_at"`
}

// Stats is a point-in-time view of the coordinator, used by /stats and the redis mirror.
type Stats struct {
	OnlineCount    int              `json:"online_count"`
	WaitingPlayer  bool             `json:"waiting_player"`
	PrivateRooms   int              `json:"private_rooms"`
	ActiveSessions int              `json:"active_sessions"`
	Sessions       []SessionSummary `json:"sessions"`
	GeneratedAt    time.Time        `json:"generated_at"`
}

func (that *Session) Summary() SessionSummary {
	return SessionSummary{
		ID:         that.ID,
		PlayerA:    that.PlayerA,
		PlayerB:    that.PlayerB,
		State:      that.State,
		TurnNumber: that.TurnNumber,
		CreatedAt:  that.CreatedAt,
	}
}
