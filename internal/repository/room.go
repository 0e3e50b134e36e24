package repository

import (
	"github.com/rocketscienceinc/warfront-relay/internal/entity"
)

// RoomDirectory maps private room codes to the hosts waiting behind them.
type RoomDirectory struct {
	rooms map[string]*entity.RoomEntry
}

func NewRoomDirectory() *RoomDirectory {
	return &RoomDirectory{
		rooms: make(map[string]*entity.RoomEntry),
	}
}

// Put - stores the entry under its normalized code. It reports whether an existing entry
// was overwritten.
func (that *RoomDirectory) Put(entry *entity.RoomEntry) bool {
	entry.Code = entity.NormalizeRoomCode(entry.Code)

	_, replaced := that.rooms[entry.Code]
	that.rooms[entry.Code] = entry

	return replaced
}

func (that *RoomDirectory) Get(code string) (*entity.RoomEntry, bool) {
	entry, ok := that.rooms[entity.NormalizeRoomCode(code)]
	return entry, ok
}

func (that *RoomDirectory) Exists(code string) bool {
	_, ok := that.rooms[entity.NormalizeRoomCode(code)]
	return ok
}

func (that *RoomDirectory) Delete(code string) {
	delete(that.rooms, entity.NormalizeRoomCode(code))
}

// RemoveByHost - drops every entry hosted by hostID and returns how many were removed.
func (that *RoomDirectory) RemoveByHost(hostID string) int {
	removed := 0

	for code, entry := range that.rooms {
		if entry.HostID == hostID {
			delete(that.rooms, code)
			removed++
		}
	}

	return removed
}

func (that *RoomDirectory) Count() int {
	return len(that.rooms)
}
