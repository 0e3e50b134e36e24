package websocket

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/warfront-relay/internal/pkg"
	"github.com/rocketscienceinc/warfront-relay/internal/protocol"
)

const (
	writeWait = 10 * time.Second

	pongWait = 60 * time.Second

	// pingPeriod must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	defaultReadLimit  = 64 * 1024
	defaultSendBuffer = 256
)

type dispatcher interface {
	Submit(ctx context.Context, envelope protocol.Envelope) error
}

type Options struct {
	ReadLimit  int64
	SendBuffer int
}

// Server upgrades HTTP requests to WebSocket connections, names them, and keeps the
// connection and group tables the relay addresses.
type Server struct {
	logger   *slog.Logger
	options  Options
	upgrader websocket.Upgrader
	newID    func() string

	mu      sync.RWMutex
	clients map[string]*client
	groups  map[string]map[string]struct{}
}

func New(logger *slog.Logger, options Options) *Server {
	if options.ReadLimit <= 0 {
		options.ReadLimit = defaultReadLimit
	}

	if options.SendBuffer <= 0 {
		options.SendBuffer = defaultSendBuffer
	}

	return &Server{
		logger:  logger.With("component", "websocket"),
		options: options,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(*http.Request) bool {
				return true
			},
		},
		newID: pkg.GenerateConnectionID,

		clients: make(map[string]*client),
		groups:  make(map[string]map[string]struct{}),
	}
}

// Handler - serves /ws. Every inbound frame is decoded and submitted to the dispatcher
// together with the connect and disconnect of the socket. ctx bounds the whole server.
func (that *Server) Handler(ctx context.Context, dispatcher dispatcher) http.HandlerFunc {
	return func(writer http.ResponseWriter, req *http.Request) {
		that.serve(ctx, dispatcher, writer, req)
	}
}

func (that *Server) serve(ctx context.Context, dispatcher dispatcher, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "serve")

	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	c := newClient(that.newID(), conn, that.options.SendBuffer)
	that.register(c)
	go that.writePump(c)

	log = log.With("connID", c.id)
	log.Info("WebSocket connection established", "remote", req.RemoteAddr)

	if err = dispatcher.Submit(ctx, protocol.Envelope{ConnID: c.id, Event: protocol.Connected{}}); err != nil {
		log.Error("failed to submit connect", "error", err)
		that.unregister(c)
		return
	}

	that.readPump(ctx, dispatcher, c)
	that.unregister(c)

	if err = dispatcher.Submit(ctx, protocol.Envelope{ConnID: c.id, Event: protocol.Disconnected{}}); err != nil {
		log.Warn("failed to submit disconnect", "error", err)
	}

	log.Info("WebSocket connection closed")
}

// readPump - decodes frames until the socket fails. Malformed frames are skipped.
func (that *Server) readPump(ctx context.Context, dispatcher dispatcher, c *client) {
	log := that.logger.With("method", "readPump", "connID", c.id)

	defer c.conn.Close()

	c.conn.SetReadLimit(that.options.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("unexpected close", "error", err)
			}
			return
		}

		event, err := protocol.Decode(data)
		if err != nil {
			log.Warn("failed to decode message", "error", err)
			continue
		}

		if err = dispatcher.Submit(ctx, protocol.Envelope{ConnID: c.id, Event: event}); err != nil {
			log.Warn("failed to submit message", "error", err)
			return
		}
	}
}

// writePump - writes one frame per queued message and keeps the peer alive with pings.
func (that *Server) writePump(c *client) {
	log := that.logger.With("method", "writePump", "connID", c.id)

	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Debug("failed to write message", "error", err)
				c.close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage, []byte{}, time.Now().Add(writeWait))
			return
		}
	}
}

// Send - queues data for the connection. A full buffer marks the peer as too slow and the
// connection is closed.
func (that *Server) Send(connID string, data []byte) bool {
	that.mu.RLock()
	c, ok := that.clients[connID]
	that.mu.RUnlock()

	if !ok {
		return false
	}

	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- data:
		return true
	default:
		that.logger.Warn("send buffer full, closing connection", "connID", connID)
		c.close()
		return false
	}
}

func (that *Server) Join(group, connID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.clients[connID]; !ok {
		return
	}

	if that.groups[group] == nil {
		that.groups[group] = make(map[string]struct{})
	}
	that.groups[group][connID] = struct{}{}
}

func (that *Server) Leave(group, connID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.leave(group, connID)
}

func (that *Server) Members(group string) []string {
	that.mu.RLock()
	defer that.mu.RUnlock()

	members := make([]string, 0, len(that.groups[group]))
	for connID := range that.groups[group] {
		members = append(members, connID)
	}
	sort.Strings(members)

	return members
}

func (that *Server) Connections() []string {
	that.mu.RLock()
	defer that.mu.RUnlock()

	conns := make([]string, 0, len(that.clients))
	for connID := range that.clients {
		conns = append(conns, connID)
	}
	sort.Strings(conns)

	return conns
}

// Close - closes every open connection.
func (that *Server) Close() {
	that.mu.RLock()
	defer that.mu.RUnlock()

	for _, c := range that.clients {
		c.close()
	}
}

func (that *Server) register(c *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.clients[c.id] = c
}

func (that *Server) unregister(c *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.clients, c.id)
	for group := range that.groups {
		that.leave(group, c.id)
	}

	c.close()
}

func (that *Server) leave(group, connID string) {
	members, ok := that.groups[group]
	if !ok {
		return
	}

	delete(members, connID)
	if len(members) == 0 {
		delete(that.groups, group)
	}
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte

	done      chan struct{}
	closeOnce sync.Once
}

func newClient(id string, conn *websocket.Conn, buffer int) *client {
	return &client{
		id:   id,
		conn: conn,
		send: make(chan []byte, buffer),
		done: make(chan struct{}),
	}
}

// close - signals the write pump to close the socket, which in turn ends the read pump.
func (that *client) close() {
	that.closeOnce.Do(func() {
		close(that.done)
	})
}
