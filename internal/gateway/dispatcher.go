package gateway

import "github.com/mvasilev/concord/internal/notify"

// Dispatcher is the interface services use to push events to connected
// WebSocket clients. The concrete Manager implements it.
type Dispatcher interface {
	DispatchToServer(serverID int64, event string, data any)
	DispatchToUser(userID int64, event string, data any)
	DispatchMessage(recipients []int64, authorID int64, ctx notify.Context, mentions []int64, message any)
	SubscribeToServer(userID, serverID int64)
	UnsubscribeFromServer(userID, serverID int64)
}
