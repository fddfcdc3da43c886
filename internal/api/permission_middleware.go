package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/mvasilev/concord/internal/auth"
	"github.com/mvasilev/concord/internal/database"
	"github.com/mvasilev/concord/internal/permissions"
)

// RequireServerPermission returns middleware that checks server-level
// permissions. It expects the route to have a ":id" param for the server ID.
func RequireServerPermission(
	key permissions.Key,
	servers database.ServerRepository,
	roles database.RoleRepository,
) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			serverID, err := strconv.ParseInt(c.Param("id"), 10, 64)
			if err != nil {
				return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid server id")
			}

			userID := auth.GetUserID(c)
			ctx := c.Request().Context()

			// Server owner has all permissions.
			server, err := servers.GetByID(ctx, serverID)
			if err != nil {
				return Error(c, http.StatusInternalServerError, "INTERNAL", "internal server error")
			}
			if server == nil {
				return Error(c, http.StatusNotFound, "NOT_FOUND", "server not found")
			}
			if server.OwnerID == userID {
				return next(c)
			}

			memberRoles, err := roles.GetByMember(ctx, serverID, userID)
			if err != nil {
				return Error(c, http.StatusInternalServerError, "INTERNAL", "internal server error")
			}

			if !permissions.Resolve(key, memberRoles, nil, userID) {
				return Error(c, http.StatusForbidden, "FORBIDDEN", "you do not have permission to perform this action")
			}

			return next(c)
		}
	}
}

// RequireChannelPermission returns middleware that checks channel-level
// permissions, overrides included. It expects the route to have a ":id"
// param for the channel ID.
func RequireChannelPermission(
	key permissions.Key,
	servers database.ServerRepository,
	channels database.ChannelRepository,
	roles database.RoleRepository,
	overrides database.ChannelOverrideRepository,
) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			channelID, err := strconv.ParseInt(c.Param("id"), 10, 64)
			if err != nil {
				return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid channel id")
			}

			userID := auth.GetUserID(c)
			ctx := c.Request().Context()

			channel, err := channels.GetByID(ctx, channelID)
			if err != nil {
				return Error(c, http.StatusInternalServerError, "INTERNAL", "internal server error")
			}
			if channel == nil {
				return Error(c, http.StatusNotFound, "NOT_FOUND", "channel not found")
			}

			// Server owner has all permissions.
			server, err := servers.GetByID(ctx, channel.ServerID)
			if err != nil {
				return Error(c, http.StatusInternalServerError, "INTERNAL", "internal server error")
			}
			if server == nil {
				return Error(c, http.StatusNotFound, "NOT_FOUND", "server not found")
			}
			if server.OwnerID == userID {
				return next(c)
			}

			memberRoles, err := roles.GetByMember(ctx, channel.ServerID, userID)
			if err != nil {
				return Error(c, http.StatusInternalServerError, "INTERNAL", "internal server error")
			}

			channelOverrides, err := overrides.GetByChannel(ctx, channelID)
			if err != nil {
				return Error(c, http.StatusInternalServerError, "INTERNAL", "internal server error")
			}

			if !permissions.Resolve(key, memberRoles, channelOverrides, userID) {
				return Error(c, http.StatusForbidden, "FORBIDDEN", "you do not have permission to perform this action")
			}

			return next(c)
		}
	}
}
