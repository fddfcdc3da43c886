package api

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/mvasilev/concord/internal/auth"
	"github.com/mvasilev/concord/internal/database"
	"github.com/mvasilev/concord/internal/gateway"
	"github.com/mvasilev/concord/internal/permissions"
	"github.com/mvasilev/concord/internal/redis"
)

// Dependencies holds all handler instances and middleware for route wiring.
type Dependencies struct {
	Auth          *AuthHandler
	Servers       *ServerHandler
	Channels      *ChannelHandler
	Users         *UserHandler
	Messages      *MessageHandler
	Roles         *RoleHandler
	Notifications *NotificationHandler
	Uploads       *UploadHandler
	Gateway       *gateway.Manager

	TokenService *auth.TokenService
	Redis        *redis.Client

	ServerRepo   database.ServerRepository
	ChannelRepo  database.ChannelRepository
	RoleRepo     database.RoleRepository
	OverrideRepo database.ChannelOverrideRepository
}

// SetupRouter registers all API routes on the Echo instance.
func SetupRouter(e *echo.Echo, deps *Dependencies) {
	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	// WebSocket gateway
	e.GET("/gateway", deps.Gateway.HandleWebSocket)

	v1 := e.Group("/api/v1")

	// Auth routes — no auth middleware, stricter rate limit
	authGroup := v1.Group("/auth",
		RateLimitMiddleware(deps.Redis, 5, time.Minute),
	)
	authGroup.POST("/register", deps.Auth.Register)
	authGroup.POST("/login", deps.Auth.Login)
	authGroup.POST("/refresh", deps.Auth.Refresh)

	// Protected routes — require JWT auth + general rate limit
	authMw := deps.TokenService.Middleware()
	protected := v1.Group("", authMw,
		RateLimitMiddleware(deps.Redis, 50, time.Minute),
	)

	// Auth (protected)
	protected.POST("/auth/logout", deps.Auth.Logout)

	// Users
	protected.GET("/users/@me", deps.Users.GetMe)
	protected.PATCH("/users/@me", deps.Users.UpdateMe)
	protected.GET("/users/:id", deps.Users.GetUser)
	protected.GET("/users/@me/servers", deps.Servers.ListMyServers)
	protected.POST("/users/@me/avatar", deps.Uploads.UploadAvatar)

	// Notification preferences
	protected.GET("/users/@me/notifications", deps.Notifications.GetSettings)
	protected.PATCH("/users/@me/notifications", deps.Notifications.UpdateSettings)
	protected.PUT("/users/@me/notifications/:target/:id", deps.Notifications.SetLevelOverride)
	protected.PUT("/users/@me/notifications/:target/:id/mute", deps.Notifications.Mute)
	protected.DELETE("/users/@me/notifications/:target/:id", deps.Notifications.ClearOverride)

	// Servers
	protected.POST("/servers", deps.Servers.CreateServer)
	protected.GET("/servers/:id", deps.Servers.GetServer)
	protected.PATCH("/servers/:id", deps.Servers.UpdateServer)
	protected.DELETE("/servers/:id", deps.Servers.DeleteServer)
	protected.POST("/servers/:id/members/@me", deps.Servers.JoinServer)
	protected.DELETE("/servers/:id/members/@me", deps.Servers.LeaveServer)
	protected.GET("/servers/:id/members", deps.Servers.ListMembers)
	protected.POST("/servers/:id/icon", deps.Uploads.UploadServerIcon)

	// Channels
	protected.POST("/servers/:id/channels", deps.Channels.CreateChannel)
	protected.GET("/servers/:id/channels", deps.Channels.ListChannels)
	protected.GET("/channels/:id", deps.Channels.GetChannel)
	protected.PATCH("/channels/:id", deps.Channels.UpdateChannel)
	protected.DELETE("/channels/:id", deps.Channels.DeleteChannel)
	protected.GET("/channels/:id/permissions", deps.Channels.ListOverrides)

	// Roles — gated on manageRoles at the server level
	manageRoles := RequireServerPermission(permissions.ManageRoles, deps.ServerRepo, deps.RoleRepo)
	protected.POST("/servers/:id/roles", deps.Roles.CreateRole, manageRoles)
	protected.GET("/servers/:id/roles", deps.Roles.ListRoles)
	protected.PATCH("/servers/:id/roles/:role_id", deps.Roles.UpdateRole, manageRoles)
	protected.DELETE("/servers/:id/roles/:role_id", deps.Roles.DeleteRole, manageRoles)
	protected.PUT("/servers/:id/members/:user_id/roles/:role_id", deps.Roles.AssignRole, manageRoles)
	protected.DELETE("/servers/:id/members/:user_id/roles/:role_id", deps.Roles.RemoveRole, manageRoles)

	// Channel permission overrides — gated on manageRoles in the channel
	manageChannelRoles := RequireChannelPermission(permissions.ManageRoles, deps.ServerRepo, deps.ChannelRepo, deps.RoleRepo, deps.OverrideRepo)
	protected.PUT("/channels/:id/permissions", deps.Roles.SetChannelOverride, manageChannelRoles)
	protected.DELETE("/channels/:id/permissions", deps.Roles.DeleteChannelOverride, manageChannelRoles)

	// Messages
	protected.POST("/channels/:id/messages", deps.Messages.SendMessage)
	protected.GET("/channels/:id/messages", deps.Messages.GetMessages)
	protected.PATCH("/messages/:id", deps.Messages.EditMessage)
	protected.DELETE("/messages/:id", deps.Messages.DeleteMessage)

	// Conversations
	protected.POST("/users/@me/conversations", deps.Messages.SendDirectMessage)
	protected.GET("/users/@me/conversations", deps.Messages.ListConversations)
	protected.GET("/conversations/:id/messages", deps.Messages.GetConversationMessages)
}
