package entity

const (
	MaxNameLength = 10

	defaultNamePrefix  = "Guest"
	defaultNameIDRunes = 4
)

// Participant is a connected player. SessionID is a back-reference to the session the
// participant currently plays in; the coordinator owns the session itself.
type Participant struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	SessionID string `json:"session_id,omitempty"`
	Ready     bool   `json:"ready"`
}

func NewParticipant(id string) *Participant {
	return &Participant{
		ID:   id,
		Name: DefaultName(id),
	}
}

// DefaultName - derives a display name from the connection identifier.
func DefaultName(id string) string {
	return defaultNamePrefix + Truncate(id, defaultNameIDRunes)
}

// Rename - sets a new display name. Empty input keeps the previous name.
func (that *Participant) Rename(name string) {
	name = Truncate(name, MaxNameLength)
	if name == "" {
		return
	}

	that.Name = name
}

func (that *Participant) InSession() bool {
	return that.SessionID != ""
}

func (that *Participant) JoinSession(sessionID string) {
	that.SessionID = sessionID
	that.Ready = false
}

func (that *Participant) LeaveSession() {
	that.SessionID = ""
	that.Ready = false
}

// Truncate - cuts s to at most limit characters (runes, not bytes).
func Truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}

	return string(runes[:limit])
}
