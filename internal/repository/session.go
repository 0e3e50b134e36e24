package repository

import (
	"sort"

	"github.com/rocketscienceinc/warfront-relay/internal/entity"
)

// SessionStore holds the active sessions by ID.
type SessionStore struct {
	sessions map[string]*entity.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*entity.Session),
	}
}

func (that *SessionStore) Save(session *entity.Session) {
	that.sessions[session.ID] = session
}

func (that *SessionStore) Get(id string) (*entity.Session, bool) {
	if id == "" {
		return nil, false
	}

	session, ok := that.sessions[id]
	return session, ok
}

func (that *SessionStore) Delete(id string) {
	delete(that.sessions, id)
}

func (that *SessionStore) Count() int {
	return len(that.sessions)
}

// All - returns the sessions ordered by creation time, oldest first.
func (that *SessionStore) All() []*entity.Session {
	sessions := make([]*entity.Session, 0, len(that.sessions))
	for _, session := range that.sessions {
		sessions = append(sessions, session)
	}

	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].CreatedAt.Equal(sessions[j].CreatedAt) {
			return sessions[i].ID < sessions[j].ID
		}
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})

	return sessions
}
