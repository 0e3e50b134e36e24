package repository

// MatchQueue is the open matchmaking slot. It holds at most one waiting participant.
type MatchQueue struct {
	waiting string
}

func NewMatchQueue() *MatchQueue {
	return &MatchQueue{}
}

// Match - pairs the requester with the waiting participant, if there is one other than the
// requester. Otherwise the requester takes the slot and false is returned.
func (that *MatchQueue) Match(requesterID string) (string, bool) {
	if that.waiting != "" && that.waiting != requesterID {
		opponent := that.waiting
		that.waiting = ""

		return opponent, true
	}

	that.waiting = requesterID

	return "", false
}

// Cancel - clears the slot only when it holds id.
func (that *MatchQueue) Cancel(id string) bool {
	if id == "" || that.waiting != id {
		return false
	}

	that.waiting = ""

	return true
}

func (that *MatchQueue) Waiting() (string, bool) {
	return that.waiting, that.waiting != ""
}
