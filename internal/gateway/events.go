package gateway

import "encoding/json"

// Op codes for gateway payloads.
const (
	OpDispatch       = 0
	OpHeartbeat      = 1
	OpIdentify       = 2
	OpPresenceUpdate = 3
	OpHello          = 10
	OpHeartbeatAck   = 11
)

// Event names for DISPATCH payloads.
const (
	EventReady                 = "READY"
	EventMessageCreate         = "MESSAGE_CREATE"
	EventMessageUpdate         = "MESSAGE_UPDATE"
	EventMessageDelete         = "MESSAGE_DELETE"
	EventServerCreate          = "SERVER_CREATE"
	EventServerUpdate          = "SERVER_UPDATE"
	EventServerDelete          = "SERVER_DELETE"
	EventChannelCreate         = "CHANNEL_CREATE"
	EventChannelUpdate         = "CHANNEL_UPDATE"
	EventChannelDelete         = "CHANNEL_DELETE"
	EventServerMemberAdd       = "SERVER_MEMBER_ADD"
	EventServerMemberRemove    = "SERVER_MEMBER_REMOVE"
	EventServerMemberUpdate    = "SERVER_MEMBER_UPDATE"
	EventServerRoleCreate      = "SERVER_ROLE_CREATE"
	EventServerRoleUpdate      = "SERVER_ROLE_UPDATE"
	EventServerRoleDelete      = "SERVER_ROLE_DELETE"
	EventChannelOverrideUpdate = "CHANNEL_OVERRIDE_UPDATE"
	EventChannelOverrideDelete = "CHANNEL_OVERRIDE_DELETE"
	EventPresenceUpdate        = "PRESENCE_UPDATE"
)

// Payload is the envelope for all gateway messages.
type Payload struct {
	Op       int             `json:"op"`
	Data     json.RawMessage `json:"d,omitempty"`
	Sequence *int64          `json:"s,omitempty"`
	Event    *string         `json:"t,omitempty"`
}

// IdentifyData is sent by the client in an Op 2 IDENTIFY.
type IdentifyData struct {
	Token string `json:"token"`
}

// HelloData is sent by the server after WebSocket connect.
type HelloData struct {
	HeartbeatInterval int `json:"heartbeat_interval"`
}

// ReadyData is sent by the server after successful IDENTIFY.
type ReadyData struct {
	SessionID string  `json:"session_id"`
	UserID    int64   `json:"user_id,string"`
	Servers   []int64 `json:"servers"`
}

// PresenceUpdateData is the payload for PRESENCE_UPDATE events.
type PresenceUpdateData struct {
	UserID int64  `json:"user_id,string"`
	Status string `json:"status"`
}

// ClientPresenceUpdate is sent by the client in an Op 3 PRESENCE_UPDATE.
type ClientPresenceUpdate struct {
	Status string `json:"status"`
}

// MessageEvent wraps a message for MESSAGE_CREATE dispatch. Notify and
// Silent carry the recipient's resolved notification outcome: Notify is
// false when the recipient's effective level suppresses this message, and
// Silent is true when the recipient is inside quiet hours. The message
// itself is always delivered so clients can render history.
type MessageEvent struct {
	Message any  `json:"message"`
	Notify  bool `json:"notify"`
	Silent  bool `json:"silent"`
}
