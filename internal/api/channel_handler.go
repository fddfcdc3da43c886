package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/mvasilev/concord/internal/auth"
	"github.com/mvasilev/concord/internal/models"
	"github.com/mvasilev/concord/internal/service"
)

// ChannelHandler handles channel endpoints.
type ChannelHandler struct {
	service *service.ChannelService
}

// NewChannelHandler creates a ChannelHandler.
func NewChannelHandler(svc *service.ChannelService) *ChannelHandler {
	return &ChannelHandler{service: svc}
}

type createChannelRequest struct {
	Name     string `json:"name"`
	Type     int    `json:"type"`
	ParentID *int64 `json:"parent_id,string,omitempty"`
}

// CreateChannel handles POST /api/v1/servers/:id/channels.
func (h *ChannelHandler) CreateChannel(c echo.Context) error {
	serverID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid server id")
	}

	var req createChannelRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	userID := auth.GetUserID(c)

	channel, err := h.service.CreateChannel(c.Request().Context(), serverID, userID, req.Name, models.ChannelType(req.Type), req.ParentID)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusCreated, channel)
}

// ListChannels handles GET /api/v1/servers/:id/channels.
func (h *ChannelHandler) ListChannels(c echo.Context) error {
	serverID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid server id")
	}

	userID := auth.GetUserID(c)

	channels, err := h.service.ListChannels(c.Request().Context(), serverID, userID)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusOK, channels)
}

// GetChannel handles GET /api/v1/channels/:id.
func (h *ChannelHandler) GetChannel(c echo.Context) error {
	channelID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid channel id")
	}

	userID := auth.GetUserID(c)

	channel, err := h.service.GetChannel(c.Request().Context(), channelID, userID)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusOK, channel)
}

type updateChannelRequest struct {
	Name     *string `json:"name,omitempty"`
	Topic    *string `json:"topic,omitempty"`
	Position *int    `json:"position,omitempty"`
}

// UpdateChannel handles PATCH /api/v1/channels/:id.
func (h *ChannelHandler) UpdateChannel(c echo.Context) error {
	channelID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid channel id")
	}

	var req updateChannelRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	userID := auth.GetUserID(c)

	channel, err := h.service.UpdateChannel(c.Request().Context(), channelID, userID, req.Name, req.Topic, req.Position)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusOK, channel)
}

// DeleteChannel handles DELETE /api/v1/channels/:id.
func (h *ChannelHandler) DeleteChannel(c echo.Context) error {
	channelID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid channel id")
	}

	userID := auth.GetUserID(c)

	if err := h.service.DeleteChannel(c.Request().Context(), channelID, userID); err != nil {
		return mapServiceError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// ListOverrides handles GET /api/v1/channels/:id/permissions.
func (h *ChannelHandler) ListOverrides(c echo.Context) error {
	channelID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid channel id")
	}

	userID := auth.GetUserID(c)

	overrides, err := h.service.ListChannelOverrides(c.Request().Context(), channelID, userID)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusOK, overrides)
}
