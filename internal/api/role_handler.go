package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/mvasilev/concord/internal/auth"
	"github.com/mvasilev/concord/internal/models"
	"github.com/mvasilev/concord/internal/service"
)

// RoleHandler handles role and channel override endpoints.
type RoleHandler struct {
	service *service.RoleService
}

// NewRoleHandler creates a RoleHandler.
func NewRoleHandler(svc *service.RoleService) *RoleHandler {
	return &RoleHandler{service: svc}
}

type createRoleRequest struct {
	Name        string          `json:"name"`
	Color       int             `json:"color"`
	Position    int             `json:"position"`
	Mentionable bool            `json:"mentionable"`
	Permissions map[string]bool `json:"permissions"`
}

// CreateRole handles POST /api/v1/servers/:id/roles.
func (h *RoleHandler) CreateRole(c echo.Context) error {
	serverID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid server id")
	}

	var req createRoleRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	actorID := auth.GetUserID(c)

	role, err := h.service.CreateRole(c.Request().Context(), serverID, actorID, req.Name, req.Color, req.Position, req.Mentionable, req.Permissions)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusCreated, role)
}

// ListRoles handles GET /api/v1/servers/:id/roles.
func (h *RoleHandler) ListRoles(c echo.Context) error {
	serverID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid server id")
	}

	roles, err := h.service.ListRoles(c.Request().Context(), serverID)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusOK, roles)
}

type updateRoleRequest struct {
	Name        *string         `json:"name,omitempty"`
	Color       *int            `json:"color,omitempty"`
	Position    *int            `json:"position,omitempty"`
	Mentionable *bool           `json:"mentionable,omitempty"`
	Permissions map[string]bool `json:"permissions,omitempty"`
}

// UpdateRole handles PATCH /api/v1/servers/:id/roles/:role_id.
func (h *RoleHandler) UpdateRole(c echo.Context) error {
	serverID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid server id")
	}

	roleID, err := strconv.ParseInt(c.Param("role_id"), 10, 64)
	if err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid role id")
	}

	var req updateRoleRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	actorID := auth.GetUserID(c)

	role, err := h.service.UpdateRole(c.Request().Context(), serverID, actorID, roleID, service.RoleUpdate{
		Name:        req.Name,
		Color:       req.Color,
		Position:    req.Position,
		Mentionable: req.Mentionable,
		Flags:       req.Permissions,
	})
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusOK, role)
}

// DeleteRole handles DELETE /api/v1/servers/:id/roles/:role_id.
func (h *RoleHandler) DeleteRole(c echo.Context) error {
	serverID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid server id")
	}

	roleID, err := strconv.ParseInt(c.Param("role_id"), 10, 64)
	if err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid role id")
	}

	actorID := auth.GetUserID(c)

	if err := h.service.DeleteRole(c.Request().Context(), serverID, actorID, roleID); err != nil {
		return mapServiceError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// AssignRole handles PUT /api/v1/servers/:id/members/:user_id/roles/:role_id.
func (h *RoleHandler) AssignRole(c echo.Context) error {
	serverID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid server id")
	}

	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid user id")
	}

	roleID, err := strconv.ParseInt(c.Param("role_id"), 10, 64)
	if err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid role id")
	}

	actorID := auth.GetUserID(c)

	if err := h.service.AssignRole(c.Request().Context(), serverID, actorID, userID, roleID); err != nil {
		return mapServiceError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// RemoveRole handles DELETE /api/v1/servers/:id/members/:user_id/roles/:role_id.
func (h *RoleHandler) RemoveRole(c echo.Context) error {
	serverID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid server id")
	}

	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid user id")
	}

	roleID, err := strconv.ParseInt(c.Param("role_id"), 10, 64)
	if err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid role id")
	}

	actorID := auth.GetUserID(c)

	if err := h.service.RemoveRole(c.Request().Context(), serverID, actorID, userID, roleID); err != nil {
		return mapServiceError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

type setOverrideRequest struct {
	RoleID int64    `json:"role_id,string,omitempty"`
	UserID int64    `json:"user_id,string,omitempty"`
	Allow  []string `json:"allow"`
	Deny   []string `json:"deny"`
}

// SetChannelOverride handles PUT /api/v1/channels/:id/permissions.
func (h *RoleHandler) SetChannelOverride(c echo.Context) error {
	channelID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid channel id")
	}

	var req setOverrideRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	override, err := h.service.SetChannelOverride(c.Request().Context(), channelID, models.ChannelOverride{
		RoleID: req.RoleID,
		UserID: req.UserID,
		Allow:  req.Allow,
		Deny:   req.Deny,
	})
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusOK, override)
}

// DeleteChannelOverride handles DELETE /api/v1/channels/:id/permissions.
// The target comes from role_id or user_id query parameters.
func (h *RoleHandler) DeleteChannelOverride(c echo.Context) error {
	channelID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid channel id")
	}

	roleID, _ := strconv.ParseInt(c.QueryParam("role_id"), 10, 64)
	userID, _ := strconv.ParseInt(c.QueryParam("user_id"), 10, 64)

	if err := h.service.DeleteChannelOverride(c.Request().Context(), channelID, roleID, userID); err != nil {
		return mapServiceError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}
