package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/mvasilev/concord/internal/auth"
	"github.com/mvasilev/concord/internal/database"
	"github.com/mvasilev/concord/internal/notify"
	"github.com/mvasilev/concord/internal/redis"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Manager tracks active WebSocket connections and routes events to them.
type Manager struct {
	mu            sync.RWMutex
	connections   map[int64]*Connection    // userID → connection
	subscriptions map[int64]map[int64]bool // serverID → set of userIDs

	tokens   *auth.TokenService
	servers  database.ServerRepository
	settings database.NotificationSettingsRepository
	redis    *redis.Client
}

// NewManager creates a gateway Manager.
func NewManager(
	tokens *auth.TokenService,
	servers database.ServerRepository,
	settings database.NotificationSettingsRepository,
	redisClient *redis.Client,
) *Manager {
	return &Manager{
		connections:   make(map[int64]*Connection),
		subscriptions: make(map[int64]map[int64]bool),
		tokens:        tokens,
		servers:       servers,
		settings:      settings,
		redis:         redisClient,
	}
}

// HandleWebSocket upgrades the HTTP request and runs the identify
// handshake: HELLO, then an IDENTIFY from the client within 10 seconds,
// then READY.
func (m *Manager) HandleWebSocket(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return nil
	}

	conn := newConnection(ws, m)
	conn.SendPayload(Payload{Op: OpHello, Data: mustMarshal(HelloData{
		HeartbeatInterval: int(heartbeatInterval.Milliseconds()),
	})})
	go conn.writePump()

	_ = ws.SetReadDeadline(time.Now().Add(10 * time.Second))
	_, data, err := ws.ReadMessage()
	if err != nil {
		conn.Close()
		return nil
	}

	var p Payload
	if err := json.Unmarshal(data, &p); err != nil || p.Op != OpIdentify {
		conn.Close()
		return nil
	}
	var identify IdentifyData
	if err := json.Unmarshal(p.Data, &identify); err != nil {
		conn.Close()
		return nil
	}
	claims, err := m.tokens.ValidateAccessToken(identify.Token)
	if err != nil {
		conn.Close()
		return nil
	}

	conn.UserID = claims.UserID
	conn.SessionID = uuid.NewString()
	m.register(conn)

	// Subscribe to every server the user belongs to.
	ctx := c.Request().Context()
	serverList, err := m.servers.GetByMember(ctx, conn.UserID)
	if err != nil {
		slog.Error("loading member servers", "userID", conn.UserID, "error", err)
	}
	serverIDs := make([]int64, 0, len(serverList))
	for _, s := range serverList {
		m.SubscribeToServer(conn.UserID, s.ID)
		serverIDs = append(serverIDs, s.ID)
	}

	conn.SendEvent(EventReady, ReadyData{
		SessionID: conn.SessionID,
		UserID:    conn.UserID,
		Servers:   serverIDs,
	})

	m.updatePresence(conn.UserID, "online")
	conn.readPump()
	return nil
}

func (m *Manager) register(c *Connection) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// One connection per user; a newer one displaces the old.
	if old, ok := m.connections[c.UserID]; ok {
		old.Close()
	}
	m.connections[c.UserID] = c
}

func (m *Manager) unregister(c *Connection) {
	m.mu.Lock()
	if existing, ok := m.connections[c.UserID]; ok && existing == c {
		delete(m.connections, c.UserID)
		for serverID, members := range m.subscriptions {
			delete(members, c.UserID)
			if len(members) == 0 {
				delete(m.subscriptions, serverID)
			}
		}
		m.mu.Unlock()
		go m.clearPresenceWithGrace(c.UserID)
		return
	}
	m.mu.Unlock()
}

// clearPresenceWithGrace waits before marking a user offline, giving a
// reconnect a chance to land first.
func (m *Manager) clearPresenceWithGrace(userID int64) {
	time.Sleep(10 * time.Second)

	m.mu.RLock()
	_, stillConnected := m.connections[userID]
	m.mu.RUnlock()
	if stillConnected {
		return
	}

	m.updatePresence(userID, "offline")
}

// updatePresence stores presence in Redis and broadcasts it to every
// server the user is subscribed to.
func (m *Manager) updatePresence(userID int64, status string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.redis.SetPresence(ctx, userID, status); err != nil {
		slog.Error("storing presence", "userID", userID, "error", err)
	}

	m.mu.RLock()
	var serverIDs []int64
	for serverID, members := range m.subscriptions {
		if members[userID] {
			serverIDs = append(serverIDs, serverID)
		}
	}
	m.mu.RUnlock()

	for _, serverID := range serverIDs {
		m.DispatchToServer(serverID, EventPresenceUpdate, PresenceUpdateData{
			UserID: userID,
			Status: status,
		})
	}
}

// SubscribeToServer adds a user to a server's event fan-out.
func (m *Manager) SubscribeToServer(userID, serverID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.subscriptions[serverID] == nil {
		m.subscriptions[serverID] = make(map[int64]bool)
	}
	m.subscriptions[serverID][userID] = true
}

// UnsubscribeFromServer removes a user from a server's event fan-out.
func (m *Manager) UnsubscribeFromServer(userID, serverID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if members, ok := m.subscriptions[serverID]; ok {
		delete(members, userID)
		if len(members) == 0 {
			delete(m.subscriptions, serverID)
		}
	}
}

// DispatchToServer sends an event to every connected subscriber of a server.
func (m *Manager) DispatchToServer(serverID int64, event string, data any) {
	m.mu.RLock()
	var conns []*Connection
	for userID := range m.subscriptions[serverID] {
		if c, ok := m.connections[userID]; ok {
			conns = append(conns, c)
		}
	}
	m.mu.RUnlock()

	for _, c := range conns {
		c.SendEvent(event, data)
	}
}

// DispatchToUser sends an event to one user, if connected.
func (m *Manager) DispatchToUser(userID int64, event string, data any) {
	m.mu.RLock()
	c, ok := m.connections[userID]
	m.mu.RUnlock()
	if ok {
		c.SendEvent(event, data)
	}
}

// DispatchMessage fans a new message out to its recipients, resolving each
// recipient's notification outcome at dispatch time. The author always
// receives the plain event. Settings are loaded fresh per dispatch; an
// error loading a recipient's settings degrades to default behavior rather
// than dropping the event.
func (m *Manager) DispatchMessage(recipients []int64, authorID int64, nctx notify.Context, mentions []int64, message any) {
	now := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, userID := range recipients {
		m.mu.RLock()
		c, ok := m.connections[userID]
		m.mu.RUnlock()
		if !ok {
			continue
		}

		if userID == authorID {
			c.SendEvent(EventMessageCreate, MessageEvent{Message: message})
			continue
		}

		var delivery Delivery
		settings, err := m.settings.Get(ctx, userID)
		if err != nil {
			slog.Error("loading notification settings", "userID", userID, "error", err)
			delivery = Delivery{Notify: true}
		} else {
			delivery = classifyDelivery(*settings, nctx, mentionsUser(mentions, userID), now)
		}

		c.SendEvent(EventMessageCreate, MessageEvent{
			Message: message,
			Notify:  delivery.Notify,
			Silent:  delivery.Silent,
		})
	}
}

func mustMarshal(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}
