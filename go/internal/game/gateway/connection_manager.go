package gateway

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/mcdev12/guessword/go/internal/game/protocol"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// MessageHandler processes frames read from a connection
type MessageHandler interface {
	HandleMessage(ctx context.Context, client protocol.Client, raw []byte)
}

// ConnectionManager is the registry of live WebSocket connections. Every
// registered connection receives broadcasts.
type ConnectionManager struct {
	connections map[*Connection]struct{}
	mu          sync.RWMutex

	upgrader websocket.Upgrader
	config   ConnectionConfig

	ctx    context.Context
	cancel context.CancelFunc

	registered atomic.Uint64
	evicted    atomic.Uint64
}

// Connection is one client socket and its outbound queue
type Connection struct {
	id          uuid.UUID
	addr        string
	conn        *websocket.Conn
	send        chan string
	manager     *ConnectionManager
	handler     MessageHandler
	connectedAt time.Time
}

// ConnectionConfig holds configuration for WebSocket connections
type ConnectionConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	SendBufferSize  int
	AllowedOrigins  []string
}

// ConnectionStats summarizes the registry
type ConnectionStats struct {
	ActiveConnections int    `json:"active_connections"`
	TotalRegistered   uint64 `json:"total_registered"`
	TotalEvicted      uint64 `json:"total_evicted"`
}

// DefaultConnectionConfig returns default WebSocket configuration
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  4096,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		SendBufferSize:  256,
		AllowedOrigins:  []string{"*"},
	}
}

// NewConnectionManager creates an empty registry
func NewConnectionManager(config ConnectionConfig) *ConnectionManager {
	ctx, cancel := context.WithCancel(context.Background())
	return &ConnectionManager{
		connections: make(map[*Connection]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     checkOrigin(config.AllowedOrigins),
		},
		config: config,
		ctx:    ctx,
		cancel: cancel,
	}
}

// checkOrigin allows requests without an Origin header (non-browser clients)
// and those whose origin is listed. "*" allows everything.
func checkOrigin(allowed []string) func(r *http.Request) bool {
	allowAll := len(allowed) == 0 || lo.Contains(allowed, "*")
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if allowAll || origin == "" {
			return true
		}
		return lo.Contains(allowed, origin)
	}
}

// UpgradeConnection upgrades an HTTP request to a WebSocket, registers it and
// starts its pumps. Frames read from it are passed to handler.
func (cm *ConnectionManager) UpgradeConnection(w http.ResponseWriter, r *http.Request, handler MessageHandler) (*Connection, error) {
	conn, err := cm.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to upgrade connection: %w", err)
	}

	connection := cm.newConnection(conn, r.RemoteAddr, handler)
	cm.Register(connection)

	go connection.writePump()
	go connection.readPump()

	log.Info().
		Str("connection_id", connection.id.String()).
		Str("remote_addr", connection.addr).
		Msg("WebSocket connection established")

	return connection, nil
}

func (cm *ConnectionManager) newConnection(conn *websocket.Conn, addr string, handler MessageHandler) *Connection {
	return &Connection{
		id:          uuid.New(),
		addr:        addr,
		conn:        conn,
		send:        make(chan string, max(1, cm.config.SendBufferSize)),
		manager:     cm,
		handler:     handler,
		connectedAt: time.Now(),
	}
}

// Register adds a connection to the broadcast set
func (cm *ConnectionManager) Register(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	cm.connections[conn] = struct{}{}
	cm.registered.Add(1)

	log.Debug().
		Str("connection_id", conn.id.String()).
		Int("total_connections", len(cm.connections)).
		Msg("connection registered")
}

// Unregister removes a connection and closes its send queue. Removing an
// unknown or already removed connection is a no-op.
func (cm *ConnectionManager) Unregister(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.unregisterLocked(conn)
}

func (cm *ConnectionManager) unregisterLocked(conn *Connection) bool {
	if _, ok := cm.connections[conn]; !ok {
		return false
	}
	delete(cm.connections, conn)
	close(conn.send)

	log.Info().
		Str("connection_id", conn.id.String()).
		Str("remote_addr", conn.addr).
		Dur("connected_for", time.Since(conn.connectedAt)).
		Msg("connection unregistered")
	return true
}

// Broadcast queues text on every registered connection. A connection whose
// queue is full is dropped instead of blocking the others.
func (cm *ConnectionManager) Broadcast(text string) {
	var stalled []*Connection

	cm.mu.RLock()
	for conn := range cm.connections {
		select {
		case conn.send <- text:
		default:
			stalled = append(stalled, conn)
		}
	}
	delivered := len(cm.connections) - len(stalled)
	cm.mu.RUnlock()

	for _, conn := range stalled {
		cm.evict(conn)
	}

	log.Debug().
		Int("connections", delivered).
		Int("evicted", len(stalled)).
		Msg("message broadcasted")
}

// Unicast queues text on a single connection. It reports false when the
// connection is gone or stalled; a stalled connection is dropped.
func (cm *ConnectionManager) Unicast(conn *Connection, text string) bool {
	cm.mu.RLock()
	_, ok := cm.connections[conn]
	if ok {
		select {
		case conn.send <- text:
			cm.mu.RUnlock()
			return true
		default:
		}
	}
	cm.mu.RUnlock()

	if ok {
		cm.evict(conn)
	}
	return false
}

func (cm *ConnectionManager) evict(conn *Connection) {
	cm.mu.Lock()
	removed := cm.unregisterLocked(conn)
	cm.mu.Unlock()

	if !removed {
		return
	}
	cm.evicted.Add(1)
	log.Warn().
		Str("connection_id", conn.id.String()).
		Msg("connection send buffer full, closing connection")
	conn.closeSocket()
}

// Shutdown closes every connection and empties the registry
func (cm *ConnectionManager) Shutdown() {
	cm.cancel()

	cm.mu.Lock()
	conns := lo.Keys(cm.connections)
	for _, conn := range conns {
		cm.unregisterLocked(conn)
	}
	cm.mu.Unlock()

	log.Info().Int("connections", len(conns)).Msg("connection manager shut down")
}

// Stats returns statistics about active connections
func (cm *ConnectionManager) Stats() ConnectionStats {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	return ConnectionStats{
		ActiveConnections: len(cm.connections),
		TotalRegistered:   cm.registered.Load(),
		TotalEvicted:      cm.evicted.Load(),
	}
}

// ID returns the connection identifier
func (c *Connection) ID() string {
	return c.id.String()
}

// Send queues a private message for this connection
func (c *Connection) Send(text string) {
	c.manager.Unicast(c, text)
}

func (c *Connection) closeSocket() {
	if c.conn != nil {
		c.conn.Close()
	}
}

// writePump is the only writer on the socket. It exits when the send queue is
// closed or a write fails.
func (c *Connection) writePump() {
	ticker := time.NewTicker(c.manager.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.closeSocket()
		c.manager.Unregister(c)
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.manager.config.WriteTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, []byte(message)); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.id.String()).
					Msg("failed to write message to WebSocket")
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.manager.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.id.String()).
					Msg("failed to send ping")
				return
			}
		}
	}
}

// readPump hands every inbound frame to the handler in arrival order
func (c *Connection) readPump() {
	defer func() {
		c.manager.Unregister(c)
		c.closeSocket()
	}()

	c.conn.SetReadLimit(c.manager.config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.manager.config.ReadTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.manager.config.ReadTimeout))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				log.Error().
					Err(err).
					Str("connection_id", c.id.String()).
					Msg("unexpected WebSocket close error")
			}
			return
		}

		if c.handler != nil {
			c.handler.HandleMessage(c.manager.ctx, c, message)
		}
		c.conn.SetReadDeadline(time.Now().Add(c.manager.config.ReadTimeout))
	}
}
