// Package relay delivers outbound events to single connections, to session groups and to
// everyone, on top of the transport's group primitive.
package relay

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/warfront-relay/internal/protocol"
)

type transport interface {
	// Send reports false when the connection is unknown or already closed.
	Send(connID string, data []byte) bool
	Join(group, connID string)
	Leave(group, connID string)
	Members(group string) []string
	Connections() []string
}

type Relay struct {
	logger    *slog.Logger
	transport transport
}

func New(logger *slog.Logger, transport transport) *Relay {
	return &Relay{
		logger:    logger.With("component", "relay"),
		transport: transport,
	}
}

// ToConn - sends an event to one connection.
func (that *Relay) ToConn(connID, action string, payload any) {
	data, ok := that.encode(action, payload)
	if !ok {
		return
	}

	that.send(connID, action, data)
}

// ToGroup - sends an event to every member of the group, the sender included.
func (that *Relay) ToGroup(group, action string, payload any) {
	data, ok := that.encode(action, payload)
	if !ok {
		return
	}

	for _, connID := range that.transport.Members(group) {
		that.send(connID, action, data)
	}
}

// ToOther - sends an event to every member of the group except the sender.
func (that *Relay) ToOther(group, senderID, action string, payload any) {
	data, ok := that.encode(action, payload)
	if !ok {
		return
	}

	for _, connID := range that.transport.Members(group) {
		if connID == senderID {
			continue
		}
		that.send(connID, action, data)
	}
}

// ToAll - sends an event to every open connection.
func (that *Relay) ToAll(action string, payload any) {
	data, ok := that.encode(action, payload)
	if !ok {
		return
	}

	for _, connID := range that.transport.Connections() {
		that.send(connID, action, data)
	}
}

func (that *Relay) Subscribe(group string, connIDs ...string) {
	for _, connID := range connIDs {
		that.transport.Join(group, connID)
	}
}

func (that *Relay) Unsubscribe(group string, connIDs ...string) {
	for _, connID := range connIDs {
		that.transport.Leave(group, connID)
	}
}

func (that *Relay) send(connID, action string, data []byte) {
	if !that.transport.Send(connID, data) {
		that.logger.Debug("connection gone, event dropped", "connID", connID, "action", action)
	}
}

func (that *Relay) encode(action string, payload any) ([]byte, bool) {
	data, err := Encode(action, payload)
	if err != nil {
		that.logger.Error("failed to encode event", "action", action, "error", err)
		return nil, false
	}

	return data, true
}

// Encode - builds the wire envelope for an outbound event. A nil payload is omitted.
func Encode(action string, payload any) ([]byte, error) {
	msg := protocol.Message{Action: action}

	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal payload: %w", err)
		}
		msg.Payload = raw
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	return data, nil
}
