package entity

import (
	"strings"
	"time"
)

// RoomEntry is a private room waiting for a joiner who knows its code.
type RoomEntry struct {
	Code      string    `json:"code"`
	HostID    string    `json:"host_id"`
	HostName  string    `json:"host_name"`
	CreatedAt time.Time `json:"created_at"`
}

// NormalizeRoomCode - room codes are matched case-insensitively.
func NormalizeRoomCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
