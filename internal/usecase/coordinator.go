package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/warfront-relay/internal/entity"
	"github.com/rocketscienceinc/warfront-relay/internal/pkg"
	"github.com/rocketscienceinc/warfront-relay/internal/protocol"
	"github.com/rocketscienceinc/warfront-relay/internal/repository"
)

const (
	defaultInboxSize        = 256
	defaultRoomCodeAttempts = 8
)

type relayer interface {
	ToConn(connID, action string, payload any)
	ToGroup(group, action string, payload any)
	ToOther(group, senderID, action string, payload any)
	ToAll(action string, payload any)
	Subscribe(group string, connIDs ...string)
	Unsubscribe(group string, connIDs ...string)
}

type Options struct {
	// StrictTurns rejects end_turn from the participant not holding the turn.
	StrictTurns bool
	// RoomCodeAttempts bounds how many codes are drawn looking for an unused one.
	RoomCodeAttempts int
	InboxSize        int
}

// Coordinator owns every piece of session state: the registry, the matchmaking slot, the
// private room directory and the sessions. All of it is mutated by one goroutine only, the
// one running Run (or the test calling Handle), so none of it is locked.
type Coordinator struct {
	logger  *slog.Logger
	relay   relayer
	random  pkg.Random
	options Options

	now          func() time.Time
	newSessionID func() string

	registry *repository.Registry
	queue    *repository.MatchQueue
	rooms    *repository.RoomDirectory
	sessions *repository.SessionStore

	inbox   chan protocol.Envelope
	queries chan func()
}

func NewCoordinator(logger *slog.Logger, relay relayer, random pkg.Random, options Options) *Coordinator {
	if options.RoomCodeAttempts <= 0 {
		options.RoomCodeAttempts = defaultRoomCodeAttempts
	}

	if options.InboxSize <= 0 {
		options.InboxSize = defaultInboxSize
	}

	return &Coordinator{
		logger:  logger.With("component", "coordinator"),
		relay:   relay,
		random:  random,
		options: options,

		now:          time.Now,
		newSessionID: pkg.GenerateSessionID,

		registry: repository.NewRegistry(),
		queue:    repository.NewMatchQueue(),
		rooms:    repository.NewRoomDirectory(),
		sessions: repository.NewSessionStore(),

		inbox:   make(chan protocol.Envelope, options.InboxSize),
		queries: make(chan func()),
	}
}

// Submit - queues an inbound event for the pump. It blocks while the inbox is full.
func (that *Coordinator) Submit(ctx context.Context, envelope protocol.Envelope) error {
	select {
	case that.inbox <- envelope:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("failed to submit %T: %w", envelope.Event, ctx.Err())
	}
}

// Run - the message pump. Events are handled one at a time in arrival order until ctx ends.
func (that *Coordinator) Run(ctx context.Context) error {
	log := that.logger.With("method", "Run")
	log.Info("coordinator started")

	for {
		select {
		case <-ctx.Done():
			log.Info("coordinator stopped")
			return nil
		case envelope := <-that.inbox:
			that.Handle(envelope)
		case query := <-that.queries:
			query()
		}
	}
}

// Handle - dispatches one inbound event.
func (that *Coordinator) Handle(envelope protocol.Envelope) {
	connID := envelope.ConnID

	switch event := envelope.Event.(type) {
	case protocol.Connected:
		that.connect(connID)
	case protocol.Disconnected:
		that.disconnect(connID)
	case protocol.SetName:
		that.setName(connID, event.Name)
	case protocol.QuickMatch:
		that.requestMatch(connID)
	case protocol.CancelMatch:
		that.cancelMatch(connID)
	case protocol.CreateRoom:
		that.createRoom(connID)
	case protocol.JoinRoom:
		that.joinRoom(connID, event.Code)
	case protocol.PlayerReady:
		that.markReady(connID)
	case protocol.GameAction:
		that.relayAction(connID, event.Payload)
	case protocol.EndTurn:
		that.endTurn(connID, event.State)
	case protocol.ChatMessage:
		that.chat(connID, event.Text)
	case protocol.GameOver:
		that.gameOver(connID, event)
	case protocol.Surrender:
		that.surrender(connID)
	default:
		that.logger.Warn("unhandled event", "connID", connID, "event", fmt.Sprintf("%T", event))
	}
}

// Stats - takes a snapshot on the pump goroutine. Run must be running.
func (that *Coordinator) Stats(ctx context.Context) (*entity.Stats, error) {
	reply := make(chan *entity.Stats, 1)

	select {
	case that.queries <- func() { reply <- that.snapshot() }:
	case <-ctx.Done():
		return nil, fmt.Errorf("failed to request stats: %w", ctx.Err())
	}

	select {
	case stats := <-reply:
		return stats, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("failed to receive stats: %w", ctx.Err())
	}
}

func (that *Coordinator) snapshot() *entity.Stats {
	_, waiting := that.queue.Waiting()

	sessions := that.sessions.All()
	summaries := make([]entity.SessionSummary, 0, len(sessions))
	for _, session := range sessions {
		summaries = append(summaries, session.Summary())
	}

	return &entity.Stats{
		OnlineCount:    that.registry.Count(),
		WaitingPlayer:  waiting,
		PrivateRooms:   that.rooms.Count(),
		ActiveSessions: len(summaries),
		Sessions:       summaries,
		GeneratedAt:    that.now().UTC(),
	}
}

// sessionOf - resolves the participant and its current session. ok is false when either is
// missing, which callers treat as a stale event.
func (that *Coordinator) sessionOf(connID string) (*entity.Participant, *entity.Session, bool) {
	participant, ok := that.registry.Lookup(connID)
	if !ok || !participant.InSession() {
		return nil, nil, false
	}

	session, ok := that.sessions.Get(participant.SessionID)
	if !ok || !session.Has(connID) {
		return nil, nil, false
	}

	return participant, session, true
}
