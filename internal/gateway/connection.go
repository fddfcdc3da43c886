package gateway

import (
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	heartbeatInterval = 41250 * time.Millisecond
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
	maxMessageSize    = 4096
	sendBufferSize    = 256
)

// Connection represents a single WebSocket client connection.
type Connection struct {
	UserID    int64
	SessionID string
	Conn      *websocket.Conn
	Send      chan []byte
	manager   *Manager
	sequence  atomic.Int64

	closeOnce sync.Once
	done      chan struct{}

	lastHeartbeat atomic.Int64 // unix millis of the client's last heartbeat
}

func newConnection(conn *websocket.Conn, manager *Manager) *Connection {
	c := &Connection{
		Conn:    conn,
		Send:    make(chan []byte, sendBufferSize),
		manager: manager,
		done:    make(chan struct{}),
	}
	c.lastHeartbeat.Store(time.Now().UnixMilli())
	return c
}

// NextSequence increments and returns the next sequence number.
func (c *Connection) NextSequence() int64 {
	return c.sequence.Add(1)
}

// SendPayload marshals and queues a payload to be sent.
func (c *Connection) SendPayload(p Payload) {
	data, err := json.Marshal(p)
	if err != nil {
		slog.Error("marshal error", "userID", c.UserID, "error", err)
		return
	}
	select {
	case c.Send <- data:
	default:
		slog.Warn("send buffer full, dropping message", "userID", c.UserID)
	}
}

// SendEvent sends a dispatch event with a sequence number.
func (c *Connection) SendEvent(name string, data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		slog.Error("marshal event error", "event", name, "error", err)
		return
	}
	seq := c.NextSequence()
	c.SendPayload(Payload{
		Op:       OpDispatch,
		Data:     raw,
		Sequence: &seq,
		Event:    &name,
	})
}

// Close terminates the connection.
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.Conn.Close()
	})
}

// writePump drains the send channel onto the socket and closes the
// connection when the client stops answering heartbeats.
func (c *Connection) writePump() {
	ticker := time.NewTicker(heartbeatInterval)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case data, ok := <-c.Send:
			if !ok {
				return
			}
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			// The client owes us a heartbeat roughly every interval; allow
			// one missed beat before dropping the connection.
			last := time.UnixMilli(c.lastHeartbeat.Load())
			if time.Since(last) > 2*heartbeatInterval {
				slog.Debug("heartbeat timeout", "userID", c.UserID)
				return
			}
		case <-c.done:
			return
		}
	}
}

// readPump consumes client payloads until the socket closes.
func (c *Connection) readPump() {
	defer func() {
		c.manager.unregister(c)
		c.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			return
		}
		_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))

		var p Payload
		if err := json.Unmarshal(data, &p); err != nil {
			continue
		}

		switch p.Op {
		case OpHeartbeat:
			c.lastHeartbeat.Store(time.Now().UnixMilli())
			c.SendPayload(Payload{Op: OpHeartbeatAck})
		case OpPresenceUpdate:
			var update ClientPresenceUpdate
			if err := json.Unmarshal(p.Data, &update); err == nil {
				c.manager.updatePresence(c.UserID, update.Status)
			}
		}
	}
}
