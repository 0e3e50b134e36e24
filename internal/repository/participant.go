package repository

import (
	"github.com/rocketscienceinc/warfront-relay/internal/entity"
)

// Registry tracks every connected participant. It is owned by the coordinator and must only
// be touched from its goroutine.
type Registry struct {
	participants map[string]*entity.Participant
}

func NewRegistry() *Registry {
	return &Registry{
		participants: make(map[string]*entity.Participant),
	}
}

// Register - creates a participant for the connection, or returns the existing one.
func (that *Registry) Register(id string) *entity.Participant {
	if participant, ok := that.participants[id]; ok {
		return participant
	}

	participant := entity.NewParticipant(id)
	that.participants[id] = participant

	return participant
}

// Rename - reports false when the participant is unknown.
func (that *Registry) Rename(id, name string) bool {
	participant, ok := that.participants[id]
	if !ok {
		return false
	}

	participant.Rename(name)

	return true
}

func (that *Registry) Lookup(id string) (*entity.Participant, bool) {
	participant, ok := that.participants[id]
	return participant, ok
}

func (that *Registry) Remove(id string) {
	delete(that.participants, id)
}

func (that *Registry) Count() int {
	return len(that.participants)
}
