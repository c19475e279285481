package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/arenaclock/go/internal/notify"
)

// ConnectionManager manages scoreboard viewer connections, grouped by side.
type ConnectionManager struct {
	sideConnections map[string]map[*Connection]bool
	mu              sync.RWMutex

	upgrader websocket.Upgrader
	config   ConnectionConfig
	clock    clockwork.Clock

	broadcastCh chan BroadcastMessage
}

// Connection is one viewer's WebSocket.
type Connection struct {
	ID      string
	Side    string
	Conn    *websocket.Conn
	Send    chan []byte
	Manager *ConnectionManager

	ConnectedAt time.Time
}

type ConnectionConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	BroadcastBuffer int
	CheckOrigin     func(r *http.Request) bool
	Clock           clockwork.Clock
}

type BroadcastMessage struct {
	Side  string
	Event *ClockEvent
}

func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  1024,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		BroadcastBuffer: 256,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
		Clock: clockwork.NewRealClock(),
	}
}

func NewConnectionManager(config ConnectionConfig) *ConnectionManager {
	if config.BroadcastBuffer <= 0 {
		config.BroadcastBuffer = 256
	}
	if config.Clock == nil {
		config.Clock = clockwork.NewRealClock()
	}
	return &ConnectionManager{
		sideConnections: make(map[string]map[*Connection]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config:      config,
		clock:       config.Clock,
		broadcastCh: make(chan BroadcastMessage, config.BroadcastBuffer),
	}
}

var _ notify.Notifier = (*ConnectionManager)(nil)

// Start processes broadcasts until ctx is done.
func (cm *ConnectionManager) Start(ctx context.Context) {
	log.Info().Msg("connection manager started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("connection manager shutting down")
			cm.closeAll()
			return
		case message := <-cm.broadcastCh:
			cm.handleBroadcast(message)
		}
	}
}

// TextureChanged queues a TextureUpdated event for viewers of the side.
func (cm *ConnectionManager) TextureChanged(_ context.Context, u notify.TextureUpdate) error {
	event, err := NewTextureUpdatedEvent(u)
	if err != nil {
		return err
	}
	if !cm.BroadcastToSide(u.Side, event) {
		return fmt.Errorf("broadcast channel full, dropped %s update for %s", u.Side, u.SurfaceID)
	}
	return nil
}

// UpgradeConnection upgrades the request and registers the viewer for side.
// Messages in initial are queued before the viewer is registered, so they are
// written ahead of any broadcast.
func (cm *ConnectionManager) UpgradeConnection(w http.ResponseWriter, r *http.Request, side string, initial ...[]byte) (*Connection, error) {
	conn, err := cm.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to upgrade connection: %w", err)
	}

	connection := &Connection{
		ID:          uuid.New().String(),
		Side:        side,
		Conn:        conn,
		Send:        make(chan []byte, 256+len(initial)),
		Manager:     cm,
		ConnectedAt: cm.clock.Now(),
	}
	for _, data := range initial {
		connection.Send <- data
	}

	cm.registerConnection(connection)

	go connection.writePump()
	go connection.readPump()

	log.Info().
		Str("connection_id", connection.ID).
		Str("side", side).
		Msg("viewer connected")

	return connection, nil
}

func (cm *ConnectionManager) registerConnection(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.sideConnections[conn.Side] == nil {
		cm.sideConnections[conn.Side] = make(map[*Connection]bool)
	}
	cm.sideConnections[conn.Side][conn] = true

	log.Debug().
		Str("connection_id", conn.ID).
		Str("side", conn.Side).
		Int("total_connections", len(cm.sideConnections[conn.Side])).
		Msg("connection registered")
}

func (cm *ConnectionManager) unregisterConnection(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	connections, exists := cm.sideConnections[conn.Side]
	if !exists {
		return
	}
	if _, exists := connections[conn]; !exists {
		return
	}
	delete(connections, conn)
	close(conn.Send)

	if len(connections) == 0 {
		delete(cm.sideConnections, conn.Side)
	}

	log.Info().
		Str("connection_id", conn.ID).
		Str("side", conn.Side).
		Msg("viewer disconnected")
}

// BroadcastToSide queues event for every viewer of side. It reports false
// when the queue is full and the event was dropped.
func (cm *ConnectionManager) BroadcastToSide(side string, event *ClockEvent) bool {
	select {
	case cm.broadcastCh <- BroadcastMessage{Side: side, Event: event}:
		return true
	default:
		log.Warn().Str("side", side).Msg("broadcast channel full, dropping message")
		return false
	}
}

func (cm *ConnectionManager) handleBroadcast(message BroadcastMessage) {
	data, err := json.Marshal(message.Event)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal event for broadcast")
		return
	}

	// Sends happen under the read lock so unregisterConnection cannot close a
	// Send channel mid-delivery.
	cm.mu.RLock()
	connections := cm.sideConnections[message.Side]
	delivered := len(connections)
	var slow []*Connection
	for conn := range connections {
		select {
		case conn.Send <- data:
		default:
			slow = append(slow, conn)
		}
	}
	cm.mu.RUnlock()

	for _, conn := range slow {
		log.Warn().
			Str("connection_id", conn.ID).
			Str("side", conn.Side).
			Msg("connection send buffer full, closing connection")
		cm.unregisterConnection(conn)
		conn.Conn.Close()
	}

	if delivered > 0 {
		log.Debug().
			Str("event_type", string(message.Event.Type)).
			Str("side", message.Side).
			Int("connections", delivered-len(slow)).
			Msg("event broadcasted")
	}
}

func (cm *ConnectionManager) closeAll() {
	cm.mu.RLock()
	var all []*Connection
	for _, connections := range cm.sideConnections {
		for conn := range connections {
			all = append(all, conn)
		}
	}
	cm.mu.RUnlock()

	for _, conn := range all {
		cm.unregisterConnection(conn)
	}
}

// GetConnectionStats returns viewer counts per side.
func (cm *ConnectionManager) GetConnectionStats() map[string]interface{} {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	total := 0
	sideCounts := make(map[string]int)
	for side, connections := range cm.sideConnections {
		total += len(connections)
		sideCounts[side] = len(connections)
	}

	return map[string]interface{}{
		"total_connections": total,
		"side_connections":  sideCounts,
	}
}

// Socket deadlines stay on wall time since the network stack enforces them.
func (c *Connection) writePump() {
	ticker := c.Manager.clock.NewTicker(c.Manager.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
		c.Manager.unregisterConnection(c)
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error().Err(err).Str("connection_id", c.ID).Msg("failed to write message to WebSocket")
				return
			}

		case <-ticker.Chan():
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Error().Err(err).Str("connection_id", c.ID).Msg("failed to send ping")
				return
			}
		}
	}
}

// readPump only drains control frames; viewers have nothing to send.
func (c *Connection) readPump() {
	defer func() {
		c.Manager.unregisterConnection(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(c.Manager.config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("connection_id", c.ID).Msg("unexpected WebSocket close error")
			}
			return
		}
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	}
}
