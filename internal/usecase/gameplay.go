package usecase

import (
	"encoding/json"

	"github.com/rocketscienceinc/warfront-relay/internal/entity"
	"github.com/rocketscienceinc/warfront-relay/internal/protocol"
)

// markReady - records the caller as ready and starts the game once both are.
func (that *Coordinator) markReady(connID string) {
	log := that.logger.With("method", "markReady", "connID", connID)

	participant, session, ok := that.sessionOf(connID)
	if !ok {
		log.Debug("not in a session, ignored")
		return
	}

	if participant.Ready || session.IsEnded() {
		return
	}

	participant.Ready = true
	that.relay.ToOther(session.ID, connID, protocol.ActionOpponentReady, nil)

	if !session.UpdateReadiness(that.isReady(session.PlayerA), that.isReady(session.PlayerB)) {
		log.Info("player ready", "sessionID", session.ID)
		return
	}

	that.relay.ToGroup(session.ID, protocol.ActionGameStart, protocol.GameStart{
		FirstTurnSlot: string(session.Turn),
		PlayerAID:     session.PlayerA,
		PlayerBID:     session.PlayerB,
	})

	log.Info("game started", "sessionID", session.ID)
}

func (that *Coordinator) isReady(connID string) bool {
	participant, ok := that.registry.Lookup(connID)
	return ok && participant.Ready
}

// relayAction - forwards an opaque game action to the opponent.
func (that *Coordinator) relayAction(connID string, payload json.RawMessage) {
	log := that.logger.With("method", "relayAction", "connID", connID)

	_, session, ok := that.sessionOf(connID)
	if !ok {
		log.Debug("not in a session, ignored")
		return
	}

	if err := session.ConfirmInProgress(); err != nil {
		log.Debug("action ignored", "sessionID", session.ID, "error", err)
		return
	}

	that.relay.ToOther(session.ID, connID, protocol.ActionOpponentAction, orNull(payload))
}

func (that *Coordinator) endTurn(connID string, state json.RawMessage) {
	log := that.logger.With("method", "endTurn", "connID", connID)

	_, session, ok := that.sessionOf(connID)
	if !ok {
		log.Debug("not in a session, ignored")
		return
	}

	if err := session.EndTurn(connID, state, that.options.StrictTurns); err != nil {
		log.Debug("end turn ignored", "sessionID", session.ID, "error", err)
		return
	}

	that.relay.ToOther(session.ID, connID, protocol.ActionYourTurn, protocol.YourTurn{
		State:      orNull(session.GameState),
		TurnNumber: session.TurnNumber,
	})

	log.Debug("turn ended", "sessionID", session.ID, "turn", session.Turn, "turnNumber", session.TurnNumber)
}

func (that *Coordinator) chat(connID, text string) {
	log := that.logger.With("method", "chat", "connID", connID)

	participant, session, ok := that.sessionOf(connID)
	if !ok || session.IsEnded() {
		log.Debug("not in a session, ignored")
		return
	}

	that.relay.ToGroup(session.ID, protocol.ActionChatMessage, protocol.Chat{
		Sender:  participant.Name,
		Message: entity.Truncate(text, entity.MaxChatLength),
	})
}

func (that *Coordinator) gameOver(connID string, result protocol.GameOver) {
	log := that.logger.With("method", "gameOver", "connID", connID)

	_, session, ok := that.sessionOf(connID)
	if !ok {
		log.Debug("not in a session, ignored")
		return
	}

	that.relay.ToGroup(session.ID, protocol.ActionGameResult, protocol.GameResult{
		WinnerID: result.WinnerID,
		Reason:   result.Reason,
	})
	that.endSession(session)

	log.Info("game over", "sessionID", session.ID, "winnerID", result.WinnerID, "reason", result.Reason)
}

// surrender - the opponent is told who gave up. Both participants are reset, same as game over.
func (that *Coordinator) surrender(connID string) {
	log := that.logger.With("method", "surrender", "connID", connID)

	participant, session, ok := that.sessionOf(connID)
	if !ok {
		log.Debug("not in a session, ignored")
		return
	}

	that.relay.ToOther(session.ID, connID, protocol.ActionOpponentSurrendered, protocol.OpponentSurrendered{
		Name: participant.Name,
	})
	that.endSession(session)

	log.Info("player surrendered", "sessionID", session.ID)
}

// endSession - ends and discards the session, releasing both participants and the group.
func (that *Coordinator) endSession(session *entity.Session) {
	session.End()

	for _, member := range session.Members() {
		if participant, ok := that.registry.Lookup(member); ok && participant.SessionID == session.ID {
			participant.LeaveSession()
		}
	}

	that.relay.Unsubscribe(session.ID, session.Members()...)
	that.sessions.Delete(session.ID)
}

// orNull - the opaque payloads are forwarded verbatim, absent ones as JSON null.
func orNull(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage("null")
	}

	return raw
}
