package usecase

import (
	"github.com/rocketscienceinc/warfront-relay/internal/apperror"
	"github.com/rocketscienceinc/warfront-relay/internal/entity"
	"github.com/rocketscienceinc/warfront-relay/internal/pkg"
	"github.com/rocketscienceinc/warfront-relay/internal/protocol"
)

// requestMatch - pairs the requester with whoever waits in the matchmaking slot, or parks
// the requester there.
func (that *Coordinator) requestMatch(connID string) {
	log := that.logger.With("method", "requestMatch", "connID", connID)

	requester, ok := that.registry.Lookup(connID)
	if !ok {
		log.Debug("unknown participant, ignored")
		return
	}

	if requester.InSession() {
		log.Debug("already in a session, ignored", "sessionID", requester.SessionID)
		return
	}

	opponentID, matched := that.queue.Match(connID)
	if matched {
		if opponent, ok := that.registry.Lookup(opponentID); ok && !opponent.InSession() {
			that.startSession(opponent, requester)
			return
		}

		// the slot held a participant that can no longer play; take its place
		log.Warn("stale participant in matchmaking slot", "opponentID", opponentID)
		that.queue.Match(connID)
	}

	that.relay.ToConn(connID, protocol.ActionWaitingMatch, nil)
	log.Info("waiting for a match")
}

func (that *Coordinator) cancelMatch(connID string) {
	if that.queue.Cancel(connID) {
		that.logger.Info("matchmaking cancelled", "method", "cancelMatch", "connID", connID)
	}
}

// createRoom - opens a private room hosted by the caller and sends its code back.
func (that *Coordinator) createRoom(connID string) {
	log := that.logger.With("method", "createRoom", "connID", connID)

	host, ok := that.registry.Lookup(connID)
	if !ok {
		log.Debug("unknown participant, ignored")
		return
	}

	code := that.generateRoomCode()

	entry := &entity.RoomEntry{
		Code:      code,
		HostID:    host.ID,
		HostName:  host.Name,
		CreatedAt: that.now(),
	}
	if replaced := that.rooms.Put(entry); replaced {
		log.Warn("room code collision, previous room overwritten", "code", entry.Code)
	}

	that.relay.ToConn(connID, protocol.ActionRoomCreated, protocol.RoomCreated{Code: entry.Code})
	log.Info("private room created", "code", entry.Code)
}

// generateRoomCode - draws codes until an unused one comes up. When every attempt collides
// the last draw is returned and the existing room is overwritten.
func (that *Coordinator) generateRoomCode() string {
	var code string

	for i := 0; i < that.options.RoomCodeAttempts; i++ {
		code = pkg.GenerateRoomCode(that.random)
		if !that.rooms.Exists(code) {
			return code
		}
	}

	return code
}

func (that *Coordinator) joinRoom(connID, code string) {
	log := that.logger.With("method", "joinRoom", "connID", connID)

	joiner, ok := that.registry.Lookup(connID)
	if !ok {
		log.Debug("unknown participant, ignored")
		return
	}

	if joiner.InSession() {
		log.Debug("already in a session, ignored", "sessionID", joiner.SessionID)
		return
	}

	host, err := that.resolveRoom(connID, code)
	if err != nil {
		log.Info("failed to join room", "code", code, "error", err)
		that.relay.ToConn(connID, protocol.ActionJoinError, err.Error())
		return
	}

	that.rooms.Delete(code)
	that.startSession(host, joiner)
}

// resolveRoom - finds the host waiting behind code. The returned errors are the reasons sent
// back in join_error.
func (that *Coordinator) resolveRoom(connID, code string) (*entity.Participant, error) {
	entry, ok := that.rooms.Get(code)
	if !ok {
		return nil, apperror.ErrRoomNotFound
	}

	if entry.HostID == connID {
		return nil, apperror.ErrSelfJoin
	}

	host, ok := that.registry.Lookup(entry.HostID)
	if !ok || host.InSession() {
		that.rooms.Delete(code)
		return nil, apperror.ErrRoomNotFound
	}

	return host, nil
}

// startSession - pairs a (slot A) with b (slot B), withdraws their other pending requests and
// tells both about the match.
func (that *Coordinator) startSession(a, b *entity.Participant) {
	log := that.logger.With("method", "startSession")

	session, err := entity.NewSession(that.newSessionID(), a.ID, b.ID, that.now())
	if err != nil {
		log.Error("failed to create session", "error", err)
		return
	}

	that.sessions.Save(session)

	for _, participant := range []*entity.Participant{a, b} {
		participant.JoinSession(session.ID)
		that.queue.Cancel(participant.ID)
		that.rooms.RemoveByHost(participant.ID)
	}

	that.relay.Subscribe(session.ID, a.ID, b.ID)
	that.relay.ToGroup(session.ID, protocol.ActionMatchFound, protocol.MatchFound{
		SessionID: session.ID,
		PlayerA:   protocol.PlayerSummary{ID: a.ID, Name: a.Name},
		PlayerB:   protocol.PlayerSummary{ID: b.ID, Name: b.Name},
	})

	log.Info("session created", "sessionID", session.ID, "playerA", a.ID, "playerB", b.ID)
}
