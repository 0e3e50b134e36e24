package websocket

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/warfront-relay/internal/protocol"
)

const eventTimeout = 2 * time.Second

type channelDispatcher struct {
	events chan protocol.Envelope
}

func (that *channelDispatcher) Submit(ctx context.Context, envelope protocol.Envelope) error {
	select {
	case that.events <- envelope:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (that *channelDispatcher) next(t *testing.T) protocol.Envelope {
	t.Helper()

	select {
	case envelope := <-that.events:
		return envelope
	case <-time.After(eventTimeout):
		t.Fatal("no event submitted")
		return protocol.Envelope{}
	}
}

type harness struct {
	server     *Server
	dispatcher *channelDispatcher
	url        string
}

func newHarness(t *testing.T, options Options) *harness {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	server := New(logger, options)
	dispatcher := &channelDispatcher{events: make(chan protocol.Envelope, 16)}

	httpServer := httptest.NewServer(server.Handler(ctx, dispatcher))
	t.Cleanup(httpServer.Close)

	return &harness{
		server:     server,
		dispatcher: dispatcher,
		url:        "ws" + strings.TrimPrefix(httpServer.URL, "http"),
	}
}

// dial - opens a client connection and returns it with the ID the server assigned.
func (that *harness) dial(t *testing.T) (*websocket.Conn, string) {
	t.Helper()

	conn, resp, err := websocket.DefaultDialer.Dial(that.url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	_ = resp.Body.Close()

	envelope := that.dispatcher.next(t)
	require.IsType(t, protocol.Connected{}, envelope.Event)
	require.NotEmpty(t, envelope.ConnID)

	return conn, envelope.ConnID
}

func TestServer_Connect(t *testing.T) {
	// Given: a running server
	h := newHarness(t, Options{})

	// When: two clients connect
	_, first := h.dial(t)
	_, second := h.dial(t)

	// Then: each gets its own ID and both are listed
	assert.NotEqual(t, first, second)
	assert.ElementsMatch(t, []string{first, second}, h.server.Connections())
}

func TestServer_InboundFrames(t *testing.T) {
	h := newHarness(t, Options{})
	conn, connID := h.dial(t)

	t.Run("Decodes known actions", func(t *testing.T) {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"action":"set_name","payload":"Ada"}`)))

		envelope := h.dispatcher.next(t)
		assert.Equal(t, connID, envelope.ConnID)
		assert.Equal(t, protocol.SetName{Name: "Ada"}, envelope.Event)
	})

	t.Run("Skips malformed frames", func(t *testing.T) {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`not json`)))
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"action":"launch_nukes"}`)))
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"action":"quick_match"}`)))

		envelope := h.dispatcher.next(t)
		assert.Equal(t, protocol.QuickMatch{}, envelope.Event)
	})
}

func TestServer_Send(t *testing.T) {
	h := newHarness(t, Options{})
	conn, connID := h.dial(t)

	t.Run("Delivers one frame per message", func(t *testing.T) {
		require.True(t, h.server.Send(connID, []byte(`{"action":"waiting_match"}`)))
		require.True(t, h.server.Send(connID, []byte(`{"action":"online_count","payload":1}`)))

		_ = conn.SetReadDeadline(time.Now().Add(eventTimeout))

		_, first, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.JSONEq(t, `{"action":"waiting_match"}`, string(first))

		_, second, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.JSONEq(t, `{"action":"online_count","payload":1}`, string(second))
	})

	t.Run("Unknown connection", func(t *testing.T) {
		assert.False(t, h.server.Send("nobody", []byte(`{}`)))
	})
}

func TestServer_Groups(t *testing.T) {
	h := newHarness(t, Options{})
	_, first := h.dial(t)
	_, second := h.dial(t)

	h.server.Join("session_1", first)
	h.server.Join("session_1", second)
	h.server.Join("session_1", "nobody")

	assert.ElementsMatch(t, []string{first, second}, h.server.Members("session_1"))

	h.server.Leave("session_1", first)
	assert.Equal(t, []string{second}, h.server.Members("session_1"))

	h.server.Leave("session_1", second)
	assert.Empty(t, h.server.Members("session_1"))
}

func TestServer_Disconnect(t *testing.T) {
	// Given: a connected client in a group
	h := newHarness(t, Options{})
	conn, connID := h.dial(t)
	h.server.Join("session_1", connID)

	// When: the client goes away
	require.NoError(t, conn.Close())

	// Then: the disconnect is submitted and the connection is forgotten everywhere
	envelope := h.dispatcher.next(t)
	assert.Equal(t, connID, envelope.ConnID)
	assert.Equal(t, protocol.Disconnected{}, envelope.Event)

	assert.Empty(t, h.server.Connections())
	assert.Empty(t, h.server.Members("session_1"))
	assert.False(t, h.server.Send(connID, []byte(`{}`)))
}

func TestServer_ReadLimit(t *testing.T) {
	// Given: a server that accepts small frames only
	h := newHarness(t, Options{ReadLimit: 64})
	conn, connID := h.dial(t)

	// When: the client sends an oversized frame
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(strings.Repeat("x", 1024))))

	// Then: the connection is dropped
	envelope := h.dispatcher.next(t)
	assert.Equal(t, connID, envelope.ConnID)
	assert.Equal(t, protocol.Disconnected{}, envelope.Event)
}

func TestServer_Close(t *testing.T) {
	h := newHarness(t, Options{})
	conn, connID := h.dial(t)

	h.server.Close()

	envelope := h.dispatcher.next(t)
	assert.Equal(t, connID, envelope.ConnID)
	assert.Equal(t, protocol.Disconnected{}, envelope.Event)

	_ = conn.SetReadDeadline(time.Now().Add(eventTimeout))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
}
