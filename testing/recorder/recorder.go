// Package recorder provides an in-memory transport that records every delivered message,
// for tests of the relay and the coordinator.
package recorder

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/rocketscienceinc/warfront-relay/internal/protocol"
)

type Transport struct {
	mu       sync.Mutex
	open     map[string]bool
	groups   map[string]map[string]struct{}
	received map[string][]protocol.Message
}

func New() *Transport {
	return &Transport{
		open:     make(map[string]bool),
		groups:   make(map[string]map[string]struct{}),
		received: make(map[string][]protocol.Message),
	}
}

// Open - marks a connection as live.
func (that *Transport) Open(connID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.open[connID] = true
}

// Close - drops a connection and its group memberships, like a closed socket.
func (that *Transport) Close(connID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.open, connID)
	for group, members := range that.groups {
		delete(members, connID)
		if len(members) == 0 {
			delete(that.groups, group)
		}
	}
}

func (that *Transport) Send(connID string, data []byte) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	if !that.open[connID] {
		return false
	}

	var msg protocol.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		panic(fmt.Sprintf("recorder: undecodable frame %q: %v", data, err))
	}

	that.received[connID] = append(that.received[connID], msg)

	return true
}

func (that *Transport) Join(group, connID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if !that.open[connID] {
		return
	}

	if that.groups[group] == nil {
		that.groups[group] = make(map[string]struct{})
	}
	that.groups[group][connID] = struct{}{}
}

func (that *Transport) Leave(group, connID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	members, ok := that.groups[group]
	if !ok {
		return
	}

	delete(members, connID)
	if len(members) == 0 {
		delete(that.groups, group)
	}
}

func (that *Transport) Members(group string) []string {
	that.mu.Lock()
	defer that.mu.Unlock()

	members := make([]string, 0, len(that.groups[group]))
	for connID := range that.groups[group] {
		members = append(members, connID)
	}
	sort.Strings(members)

	return members
}

func (that *Transport) Connections() []string {
	that.mu.Lock()
	defer that.mu.Unlock()

	conns := make([]string, 0, len(that.open))
	for connID := range that.open {
		conns = append(conns, connID)
	}
	sort.Strings(conns)

	return conns
}

// Messages - everything delivered to the connection, oldest first.
func (that *Transport) Messages(connID string) []protocol.Message {
	that.mu.Lock()
	defer that.mu.Unlock()

	return append([]protocol.Message(nil), that.received[connID]...)
}

// Actions - the action names delivered to the connection, oldest first.
func (that *Transport) Actions(connID string) []string {
	messages := that.Messages(connID)

	actions := make([]string, 0, len(messages))
	for _, msg := range messages {
		actions = append(actions, msg.Action)
	}

	return actions
}

// Count - how many times the action was delivered to the connection.
func (that *Transport) Count(connID, action string) int {
	count := 0
	for _, msg := range that.Messages(connID) {
		if msg.Action == action {
			count++
		}
	}

	return count
}

// Last - the most recent message with the action delivered to the connection.
func (that *Transport) Last(connID, action string) (protocol.Message, bool) {
	messages := that.Messages(connID)
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Action == action {
			return messages[i], true
		}
	}

	return protocol.Message{}, false
}

// Reset - forgets delivered messages but keeps connections and groups.
func (that *Transport) Reset() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.received = make(map[string][]protocol.Message)
}

// Payload - decodes a recorded message payload into T.
func Payload[T any](msg protocol.Message) (T, error) {
	var value T
	if err := json.Unmarshal(msg.Payload, &value); err != nil {
		return value, fmt.Errorf("failed to unmarshal %s payload: %w", msg.Action, err)
	}

	return value, nil
}
