package usecase

import (
	"github.com/rocketscienceinc/warfront-relay/internal/protocol"
)

func (that *Coordinator) connect(connID string) {
	log := that.logger.With("method", "connect", "connID", connID)

	participant := that.registry.Register(connID)

	that.relay.ToConn(connID, protocol.ActionConnected, protocol.Welcome{
		ID:   participant.ID,
		Name: participant.Name,
	})
	that.broadcastOnlineCount()

	log.Info("player connected", "name", participant.Name, "online", that.registry.Count())
}

func (that *Coordinator) setName(connID, name string) {
	log := that.logger.With("method", "setName", "connID", connID)

	if !that.registry.Rename(connID, name) {
		log.Debug("unknown participant, ignored")
		return
	}

	participant, _ := that.registry.Lookup(connID)
	log.Info("name set", "name", participant.Name)
}

// disconnect - withdraws every pending request of the participant, ends its session and
// forgets it.
func (that *Coordinator) disconnect(connID string) {
	log := that.logger.With("method", "disconnect", "connID", connID)

	if that.queue.Cancel(connID) {
		log.Info("removed from matchmaking")
	}

	if removed := that.rooms.RemoveByHost(connID); removed > 0 {
		log.Info("private rooms removed", "count", removed)
	}

	if _, session, ok := that.sessionOf(connID); ok {
		that.relay.ToOther(session.ID, connID, protocol.ActionOpponentDisconnected, nil)
		that.endSession(session)

		log.Info("session ended by disconnect", "sessionID", session.ID)
	}

	that.registry.Remove(connID)
	that.broadcastOnlineCount()

	log.Info("player disconnected", "online", that.registry.Count())
}

func (that *Coordinator) broadcastOnlineCount() {
	that.relay.ToAll(protocol.ActionOnlineCount, that.registry.Count())
}
